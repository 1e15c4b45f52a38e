package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slrhq/hireops/pkg/models"
)

const openingCols = `id, code, title, headcount_required, is_active, requested_by_person_id, created, updated`

func (r *SQLiteRepo) CreateOpening(ctx context.Context, o *models.Opening) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("opening is nil")
	}

	ts := now()
	if o.Created == 0 {
		o.Created = ts
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO openings (code, title, headcount_required, is_active, requested_by_person_id, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.Code, o.Title, o.HeadcountRequired, boolInt(o.IsActive), o.RequestedByID, o.Created, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetOpening(ctx context.Context, id int64) (*models.Opening, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+openingCols+` FROM openings WHERE id = ?`, id)
	return scanOpening(row)
}

func (r *SQLiteRepo) GetOpeningByCode(ctx context.Context, code string) (*models.Opening, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+openingCols+` FROM openings WHERE code = ?`, code)
	return scanOpening(row)
}

func (r *SQLiteRepo) ListOpenings(ctx context.Context, activeOnly bool) ([]models.Opening, error) {
	q := `SELECT ` + openingCols + ` FROM openings`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY created DESC`

	rows, err := r.conn.QueryRows(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Opening
	for rows.Next() {
		o, err := scanOpeningRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateOpening(ctx context.Context, o *models.Opening) error {
	if o == nil {
		return fmt.Errorf("opening is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE openings SET title = ?, headcount_required = ?, is_active = ?, updated = ? WHERE id = ?`,
		o.Title, o.HeadcountRequired, boolInt(o.IsActive), now(), o.ID)
	return err
}

// NextOpeningNumber returns the next sequence number for code issuance.
func (r *SQLiteRepo) NextOpeningNumber(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM openings`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanOpening(row *sql.Row) (*models.Opening, error) {
	o, err := scanOpeningRows(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func scanOpeningRows(s rowScanner) (*models.Opening, error) {
	var o models.Opening
	var active int
	var requestedBy sql.NullInt64
	if err := s.Scan(&o.ID, &o.Code, &o.Title, &o.HeadcountRequired, &active, &requestedBy, &o.Created, &o.Updated); err != nil {
		return nil, err
	}
	o.IsActive = active != 0
	if requestedBy.Valid {
		o.RequestedByID = &requestedBy.Int64
	}

	return &o, nil
}
