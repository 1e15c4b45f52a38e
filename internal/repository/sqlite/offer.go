package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/pkg/models"
)

const offerCols = `id, candidate_id, designation_title, gross_ctc_annual, currency, joining_date,
	status, approval_decision, decision_reason, approval_token, token_expires_at, created, updated`

func (r *SQLiteRepo) CreateOffer(ctx context.Context, o *models.Offer) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("offer is nil")
	}

	ts := now()
	if o.Created == 0 {
		o.Created = ts
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO offers (candidate_id, designation_title, gross_ctc_annual, currency, joining_date, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CandidateID, o.DesignationTitle, o.GrossCTCAnnual, o.Currency, nullStr(o.JoiningDate), o.Status, o.Created, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetOffer(ctx context.Context, id int64) (*models.Offer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+offerCols+` FROM offers WHERE id = ?`, id)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *SQLiteRepo) GetOfferByToken(ctx context.Context, token string) (*models.Offer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+offerCols+` FROM offers WHERE approval_token = ?`, token)
	o, err := scanOffer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *SQLiteRepo) ListOffers(ctx context.Context, status string) ([]models.Offer, error) {
	q := `SELECT ` + offerCols + ` FROM offers`
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

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}

	return out, rows.Err()
}

// UpdateOffer rewrites the editable fields plus status. Used for draft
// edits and the approved->sent / sent->viewed style progressions.
func (r *SQLiteRepo) UpdateOffer(ctx context.Context, o *models.Offer) error {
	if o == nil {
		return fmt.Errorf("offer is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE offers SET designation_title = ?, gross_ctc_annual = ?, currency = ?, joining_date = ?, status = ?, updated = ? WHERE id = ?`,
		o.DesignationTitle, o.GrossCTCAnnual, o.Currency, nullStr(o.JoiningDate), o.Status, now(), o.ID)
	return err
}

// MarkOfferPending issues the approval credential and starts a fresh
// approval cycle: any prior decision is cleared so the new token gets
// exactly one decision.
func (r *SQLiteRepo) MarkOfferPending(ctx context.Context, offerID int64, token string, expiresAt int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE offers SET status = ?, approval_token = ?, token_expires_at = ?, approval_decision = NULL, decision_reason = NULL, updated = ? WHERE id = ? AND status = ?`,
		models.OfferPendingApproval, token, expiresAt, now(), offerID, models.OfferDraft)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.CodeInvalidTransition, "offer %d is not a draft", offerID)
	}
	return nil
}

// RecordOfferDecision is the atomic decision unit: the decision store and
// the status flip commit together. The conditional write on a null
// approval_decision makes replays no-ops; the token row survives so a
// replayed call can read back the stored decision.
func (r *SQLiteRepo) RecordOfferDecision(ctx context.Context, offerID int64, decision, reason, newStatus string) error {
	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE offers SET approval_decision = ?, decision_reason = ?, status = ?, updated = ? WHERE id = ? AND status = ? AND approval_decision IS NULL`,
		decision, nullStr(reason), newStatus, now(), offerID, models.OfferPendingApproval)
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
		return apperr.Newf(apperr.CodeConflict, "offer %d already decided", offerID)
	}

	return tx.Commit()
}

func scanOffer(s rowScanner) (*models.Offer, error) {
	var o models.Offer
	var joining, decision, reason, token sql.NullString
	var expires sql.NullInt64
	if err := s.Scan(&o.ID, &o.CandidateID, &o.DesignationTitle, &o.GrossCTCAnnual, &o.Currency,
		&joining, &o.Status, &decision, &reason, &token, &expires, &o.Created, &o.Updated); err != nil {
		return nil, err
	}
	o.JoiningDate = joining.String
	o.ApprovalDecision = decision.String
	o.DecisionReason = reason.String
	o.ApprovalToken = token.String
	if expires.Valid {
		o.TokenExpiresAt = &expires.Int64
	}

	return &o, nil
}
