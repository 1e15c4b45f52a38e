package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/slrhq/hireops/pkg/models"
)

func (r *SQLiteRepo) CreatePerson(ctx context.Context, p *models.Person) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("person is nil")
	}

	signals, err := json.Marshal(p.Signals)
	if err != nil {
		return 0, fmt.Errorf("marshal role signals: %w", err)
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO people (name, email, password_hash, role_id, role_signals, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Email, p.PasswordHash, nullStr(string(p.Signals.RoleID)), string(signals), now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, role_signals, updated FROM people WHERE id = ?`, id)
	return scanPerson(row)
}

func (r *SQLiteRepo) GetPersonByEmail(ctx context.Context, email string) (*models.Person, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, role_signals, updated FROM people WHERE email = ?`, email)
	return scanPerson(row)
}

func scanPerson(row *sql.Row) (*models.Person, error) {
	var p models.Person
	var pw, signals sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &pw, &signals, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		p.PasswordHash = pw.String
	}
	if signals.Valid && signals.String != "" {
		// malformed stored signals degrade to no capability, never an error
		_ = json.Unmarshal([]byte(signals.String), &p.Signals)
	}

	return &p, nil
}
