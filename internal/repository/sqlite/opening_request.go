package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/pkg/models"
)

const openingRequestCols = `id, opening_code, title, headcount_delta, hiring_manager_person_id,
	hiring_manager_email, gl_details, l2_details, request_reason, source_portal,
	status, rejected_reason, approval_note, raised_by_person_id, created, updated`

func (r *SQLiteRepo) CreateOpeningRequest(ctx context.Context, req *models.OpeningRequest) (int64, error) {
	if req == nil {
		return 0, fmt.Errorf("opening request is nil")
	}

	ts := now()
	if req.Created == 0 {
		req.Created = ts
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO opening_requests
		(opening_code, title, headcount_delta, hiring_manager_person_id, hiring_manager_email,
		 gl_details, l2_details, request_reason, source_portal, status, raised_by_person_id, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullStr(req.OpeningCode), nullStr(req.Title), req.HeadcountDelta, req.HiringManagerID,
		nullStr(req.HiringManagerEmail), nullStr(req.GLDetails), nullStr(req.L2Details),
		nullStr(req.RequestReason), nullStr(req.SourcePortal), req.Status, req.RaisedByID, req.Created, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetOpeningRequest(ctx context.Context, id int64) (*models.OpeningRequest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+openingRequestCols+` FROM opening_requests WHERE id = ?`, id)
	req, err := scanOpeningRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return req, err
}

func (r *SQLiteRepo) ListOpeningRequests(ctx context.Context, status string) ([]models.OpeningRequest, error) {
	q := `SELECT ` + openingRequestCols + ` FROM opening_requests`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created DESC`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OpeningRequest
	for rows.Next() {
		req, err := scanOpeningRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}

	return out, rows.Err()
}

// ApplyOpeningRequest is the atomic approval unit: the status flip away
// from pending and the headcount increment commit together or not at all.
func (r *SQLiteRepo) ApplyOpeningRequest(ctx context.Context, requestID, openingID int64, delta int, note string, hiringManagerID *int64) error {
	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}

	ts := now()
	res, err := tx.ExecContext(ctx, `UPDATE opening_requests SET status = ?, approval_note = ?, hiring_manager_person_id = COALESCE(?, hiring_manager_person_id), updated = ? WHERE id = ? AND status = ?`,
		models.RequestApplied, nullStr(note), hiringManagerID, ts, requestID, models.RequestPendingHRApproval)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n == 0 {
		_ = tx.Rollback()
		return apperr.Newf(apperr.CodeInvalidTransition, "opening request %d is not pending", requestID)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE openings SET headcount_required = headcount_required + ?, updated = ? WHERE id = ?`, delta, ts, openingID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepo) RejectOpeningRequest(ctx context.Context, requestID int64, reason string) error {
	res, err := r.conn.Exec(ctx, `UPDATE opening_requests SET status = ?, rejected_reason = ?, updated = ? WHERE id = ? AND status = ?`,
		models.RequestRejected, reason, now(), requestID, models.RequestPendingHRApproval)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.CodeInvalidTransition, "opening request %d is not pending", requestID)
	}
	return nil
}

func (r *SQLiteRepo) OverrideOpeningRequestStatus(ctx context.Context, requestID int64, status string) error {
	res, err := r.conn.Exec(ctx, `UPDATE opening_requests SET status = ?, updated = ? WHERE id = ?`, status, now(), requestID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
	}
	return nil
}

func (r *SQLiteRepo) DeleteOpeningRequest(ctx context.Context, requestID int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM opening_requests WHERE id = ?`, requestID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
	}
	return nil
}

func scanOpeningRequest(s rowScanner) (*models.OpeningRequest, error) {
	var req models.OpeningRequest
	var code, title, hmEmail, gl, l2, reason, portal, rejected, note sql.NullString
	var hmID, raisedBy sql.NullInt64
	if err := s.Scan(&req.ID, &code, &title, &req.HeadcountDelta, &hmID, &hmEmail,
		&gl, &l2, &reason, &portal, &req.Status, &rejected, &note, &raisedBy,
		&req.Created, &req.Updated); err != nil {
		return nil, err
	}
	req.OpeningCode = code.String
	req.Title = title.String
	req.HiringManagerEmail = hmEmail.String
	req.GLDetails = gl.String
	req.L2Details = l2.String
	req.RequestReason = reason.String
	req.SourcePortal = portal.String
	req.RejectedReason = rejected.String
	req.ApprovalNote = note.String
	if hmID.Valid {
		req.HiringManagerID = &hmID.Int64
	}
	if raisedBy.Valid {
		req.RaisedByID = &raisedBy.Int64
	}

	return &req, nil
}
