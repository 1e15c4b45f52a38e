package sqlite

import (
	"context"
	"database/sql"

	"github.com/slrhq/hireops/pkg/models"
)

func (r *SQLiteRepo) ListIntakeSchemas(ctx context.Context) ([]models.IntakeSchema, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT version, description, schema_json, created, updated FROM intake_schemas ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.IntakeSchema
	for rows.Next() {
		var s models.IntakeSchema
		var desc sql.NullString
		if err := rows.Scan(&s.Version, &desc, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
			return nil, err
		}
		s.Description = desc.String

		out = append(out, s)
	}

	return out, rows.Err()
}
