package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

const candidateCols = `id, code, name, email, opening_id, stage, status, screening_result,
	caf_sent_at, caf_submitted_at, l1_interview_count, l2_interview_count,
	l1_feedback_submitted, l2_feedback_submitted, needs_hr_review,
	source_origin, source_channel, resume_url, stage_entered_at, created, updated`

func (r *SQLiteRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("candidate is nil")
	}

	ts := now()
	if c.Created == 0 {
		c.Created = ts
	}
	if c.StageEnteredAt == 0 {
		c.StageEnteredAt = ts
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO candidates
		(code, name, email, opening_id, stage, status, screening_result, caf_sent_at, caf_submitted_at,
		 l1_interview_count, l2_interview_count, l1_feedback_submitted, l2_feedback_submitted,
		 needs_hr_review, source_origin, source_channel, resume_url, stage_entered_at, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Name, c.Email, c.OpeningID, c.Stage, c.Status, nullStr(c.ScreeningResult),
		c.CAFSentAt, c.CAFSubmittedAt, c.L1InterviewCount, c.L2InterviewCount,
		boolInt(c.L1FeedbackSubmitted), boolInt(c.L2FeedbackSubmitted), boolInt(c.NeedsHRReview),
		c.SourceOrigin, nullStr(c.SourceChannel), nullStr(c.ResumeURL), c.StageEnteredAt, c.Created, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+candidateCols+` FROM candidates WHERE id = ?`, id)
	return scanCandidate(row)
}

func (r *SQLiteRepo) GetCandidateByCode(ctx context.Context, code string) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+candidateCols+` FROM candidates WHERE code = ?`, code)
	return scanCandidate(row)
}

func (r *SQLiteRepo) FindCandidateByOpeningAndEmail(ctx context.Context, openingID *int64, email string) (*models.Candidate, error) {
	var row *sql.Row
	if openingID == nil {
		row = r.conn.QueryRow(ctx, `SELECT `+candidateCols+` FROM candidates WHERE opening_id IS NULL AND email = ?`, email)
	} else {
		row = r.conn.QueryRow(ctx, `SELECT `+candidateCols+` FROM candidates WHERE opening_id = ? AND email = ?`, *openingID, email)
	}
	return scanCandidate(row)
}

func (r *SQLiteRepo) ListCandidates(ctx context.Context, f repository.CandidateFilter) ([]models.Candidate, error) {
	q := `SELECT ` + candidateCols + ` FROM candidates`
	var where []string
	var args []any

	if len(f.Stages) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(f.Stages)), ",")
		where = append(where, `stage IN (`+ph+`)`)
		for _, s := range f.Stages {
			args = append(args, s)
		}
	}
	if f.OpeningID > 0 {
		where = append(where, `opening_id = ?`)
		args = append(args, f.OpeningID)
	}
	switch f.StatusView {
	case "", "all":
	default:
		where = append(where, `status = ?`)
		args = append(args, f.StatusView)
	}
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY created DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	q += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		c, err := scanCandidateRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	if c == nil {
		return fmt.Errorf("candidate is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE candidates SET
		name = ?, email = ?, opening_id = ?, stage = ?, status = ?, screening_result = ?,
		caf_sent_at = ?, caf_submitted_at = ?, l1_interview_count = ?, l2_interview_count = ?,
		l1_feedback_submitted = ?, l2_feedback_submitted = ?, needs_hr_review = ?,
		resume_url = ?, stage_entered_at = ?, updated = ?
		WHERE id = ?`,
		c.Name, c.Email, c.OpeningID, c.Stage, c.Status, nullStr(c.ScreeningResult),
		c.CAFSentAt, c.CAFSubmittedAt, c.L1InterviewCount, c.L2InterviewCount,
		boolInt(c.L1FeedbackSubmitted), boolInt(c.L2FeedbackSubmitted), boolInt(c.NeedsHRReview),
		nullStr(c.ResumeURL), c.StageEnteredAt, now(), c.ID)
	return err
}

// NextCandidateNumber returns the next sequence number for code issuance.
// Candidates are never deleted, so MAX(id)+1 never reissues a code.
func (r *SQLiteRepo) NextCandidateNumber(ctx context.Context) (int64, error) {
	row := r.conn.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM candidates`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row *sql.Row) (*models.Candidate, error) {
	c, err := scanCandidateRows(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func scanCandidateRows(s rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var screening, channel, resume sql.NullString
	var opening sql.NullInt64
	var cafSent, cafSubmitted sql.NullInt64
	var l1fb, l2fb, needsReview int
	if err := s.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &opening, &c.Stage, &c.Status, &screening,
		&cafSent, &cafSubmitted, &c.L1InterviewCount, &c.L2InterviewCount,
		&l1fb, &l2fb, &needsReview,
		&c.SourceOrigin, &channel, &resume, &c.StageEnteredAt, &c.Created, &c.Updated); err != nil {
		return nil, err
	}
	if opening.Valid {
		c.OpeningID = &opening.Int64
	}
	if screening.Valid {
		c.ScreeningResult = screening.String
	}
	if channel.Valid {
		c.SourceChannel = channel.String
	}
	if resume.Valid {
		c.ResumeURL = resume.String
	}
	if cafSent.Valid {
		c.CAFSentAt = &cafSent.Int64
	}
	if cafSubmitted.Valid {
		c.CAFSubmittedAt = &cafSubmitted.Int64
	}
	c.L1FeedbackSubmitted = l1fb != 0
	c.L2FeedbackSubmitted = l2fb != 0
	c.NeedsHRReview = needsReview != 0

	return &c, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
