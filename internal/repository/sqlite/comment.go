package sqlite

import (
	"context"
	"fmt"

	"github.com/slrhq/hireops/pkg/models"
)

func (r *SQLiteRepo) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("comment is nil")
	}

	if c.Created == 0 {
		c.Created = now()
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO candidate_comments (candidate_id, author_id, body, is_internal, created) VALUES (?, ?, ?, ?, ?)`,
		c.CandidateID, c.AuthorID, c.Body, boolInt(c.IsInternal), c.Created)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListCommentsByCandidate(ctx context.Context, candidateID int64, includeInternal bool) ([]models.Comment, error) {
	q := `SELECT id, candidate_id, author_id, body, is_internal, created FROM candidate_comments WHERE candidate_id = ?`
	if !includeInternal {
		q += ` AND is_internal = 0`
	}
	q += ` ORDER BY created ASC`

	rows, err := r.conn.QueryRows(ctx, q, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		var internal int
		if err := rows.Scan(&c.ID, &c.CandidateID, &c.AuthorID, &c.Body, &internal, &c.Created); err != nil {
			return nil, err
		}
		c.IsInternal = internal != 0

		out = append(out, c)
	}

	return out, rows.Err()
}
