package approvals

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/capability"
	"github.com/slrhq/hireops/internal/notify"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

// OpeningRequests runs the headcount request/approval workflow. Every
// operation re-checks capability at call time; nothing trusts a gate
// decision taken earlier in a client flow.
type OpeningRequests struct {
	requests repository.OpeningRequestRepo
	openings repository.OpeningRepo
	people   repository.PersonRepo
	emitter  *notify.Emitter
	logger   *slog.Logger
}

func NewOpeningRequests(rr repository.OpeningRequestRepo, or repository.OpeningRepo, pr repository.PersonRepo, emitter *notify.Emitter, logger *slog.Logger) *OpeningRequests {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpeningRequests{requests: rr, openings: or, people: pr, emitter: emitter, logger: logger}
}

// RaiseInput is the payload for a new opening request. Exactly one of
// OpeningCode (existing opening) or Title (opening to be created on
// approval) supplies the opening identity.
type RaiseInput struct {
	OpeningCode        string
	Title              string
	HeadcountDelta     int
	HiringManagerID    *int64
	HiringManagerEmail string
	GLDetails          string
	L2Details          string
	Reason             string
	SourcePortal       string
	RaisedByID         *int64
}

func (s *OpeningRequests) Raise(ctx context.Context, in RaiseInput, caps capability.Set) (*models.OpeningRequest, error) {
	if !caps.CanRaiseOpeningRequest() {
		return nil, apperr.New(apperr.CodeUnauthorized, "raising an opening request requires hr or viewer capability")
	}

	code := strings.TrimSpace(in.OpeningCode)
	title := strings.TrimSpace(in.Title)
	if (code == "") == (title == "") {
		return nil, apperr.New(apperr.CodeInvalidRequest, "supply exactly one of opening_code or title")
	}
	if in.HeadcountDelta < 0 {
		return nil, apperr.New(apperr.CodeInvalidRequest, "headcount_delta must not be negative")
	}
	if in.HeadcountDelta == 0 {
		// zero-delta requests exist only to register a hiring manager
		if in.HiringManagerID == nil {
			return nil, apperr.New(apperr.CodeInvalidRequest, "zero-delta request requires a hiring manager person id")
		}
		p, err := s.people.GetPerson(ctx, *in.HiringManagerID)
		if err != nil {
			return nil, fmt.Errorf("resolve hiring manager: %w", err)
		}
		if p == nil {
			return nil, apperr.Newf(apperr.CodeInvalidRequest, "hiring manager person %d not found", *in.HiringManagerID)
		}
	}
	if code != "" {
		o, err := s.openings.GetOpeningByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("lookup opening %s: %w", code, err)
		}
		if o == nil {
			return nil, apperr.Newf(apperr.CodeNotFound, "opening %s not found", code)
		}
	}

	req := &models.OpeningRequest{
		OpeningCode:        code,
		Title:              title,
		HeadcountDelta:     in.HeadcountDelta,
		HiringManagerID:    in.HiringManagerID,
		HiringManagerEmail: strings.TrimSpace(in.HiringManagerEmail),
		GLDetails:          in.GLDetails,
		L2Details:          in.L2Details,
		RequestReason:      in.Reason,
		SourcePortal:       in.SourcePortal,
		Status:             models.RequestPendingHRApproval,
		RaisedByID:         in.RaisedByID,
	}
	id, err := s.requests.CreateOpeningRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create opening request: %w", err)
	}
	req.ID = id

	s.logger.Info("opening request raised", slog.Int64("id", id), slog.Int("delta", in.HeadcountDelta))
	return req, nil
}

// Approve applies the request: the opening is created first when the
// request carried a title, then the headcount increment and status flip
// commit as one atomic unit in the repository.
func (s *OpeningRequests) Approve(ctx context.Context, requestID int64, hiringManagerOverride *int64, note string, caps capability.Set) (*models.OpeningRequest, error) {
	if !caps.CanApproveOpeningRequest() {
		return nil, apperr.New(apperr.CodeUnauthorized, "approving an opening request requires hr capability")
	}

	req, err := s.requests.GetOpeningRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load opening request: %w", err)
	}
	if req == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
	}
	if req.Status != models.RequestPendingHRApproval {
		return nil, apperr.Newf(apperr.CodeInvalidTransition, "opening request %d is %s", requestID, req.Status)
	}

	var opening *models.Opening
	if req.OpeningCode != "" {
		opening, err = s.openings.GetOpeningByCode(ctx, req.OpeningCode)
		if err != nil {
			return nil, fmt.Errorf("lookup opening %s: %w", req.OpeningCode, err)
		}
		if opening == nil {
			return nil, apperr.Newf(apperr.CodeNotFound, "opening %s not found", req.OpeningCode)
		}
	} else {
		n, err := s.openings.NextOpeningNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("next opening number: %w", err)
		}
		opening = &models.Opening{
			Code:          fmt.Sprintf("OPN-%04d", n),
			Title:         req.Title,
			IsActive:      true,
			RequestedByID: req.RaisedByID,
		}
		id, err := s.openings.CreateOpening(ctx, opening)
		if err != nil {
			return nil, fmt.Errorf("create opening: %w", err)
		}
		opening.ID = id
	}

	if err := s.requests.ApplyOpeningRequest(ctx, requestID, opening.ID, req.HeadcountDelta, note, hiringManagerOverride); err != nil {
		return nil, err
	}

	s.emitter.OpeningRequestDecided(ctx, requestID, models.RequestApplied)
	return s.requests.GetOpeningRequest(ctx, requestID)
}

func (s *OpeningRequests) Reject(ctx context.Context, requestID int64, reason string, caps capability.Set) (*models.OpeningRequest, error) {
	if !caps.CanApproveOpeningRequest() {
		return nil, apperr.New(apperr.CodeUnauthorized, "rejecting an opening request requires hr capability")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "rejected_reason is required")
	}

	if err := s.requests.RejectOpeningRequest(ctx, requestID, reason); err != nil {
		return nil, err
	}

	s.emitter.OpeningRequestDecided(ctx, requestID, models.RequestRejected)
	return s.requests.GetOpeningRequest(ctx, requestID)
}

// Override forces a request into any workflow state, bypassing the normal
// approver. No opening mutation happens here.
func (s *OpeningRequests) Override(ctx context.Context, requestID int64, status string, caps capability.Set) (*models.OpeningRequest, error) {
	if !caps.CanManageOpeningRequest() {
		return nil, apperr.New(apperr.CodeUnauthorized, "overriding an opening request requires superadmin capability")
	}
	switch status {
	case models.RequestPendingHRApproval, models.RequestApplied, models.RequestRejected:
	default:
		return nil, apperr.Newf(apperr.CodeInvalidRequest, "unknown opening request status %q", status)
	}

	if err := s.requests.OverrideOpeningRequestStatus(ctx, requestID, status); err != nil {
		return nil, err
	}

	return s.requests.GetOpeningRequest(ctx, requestID)
}

// Delete is irreversible and allowed regardless of status.
func (s *OpeningRequests) Delete(ctx context.Context, requestID int64, caps capability.Set) error {
	if !caps.CanManageOpeningRequest() {
		return apperr.New(apperr.CodeUnauthorized, "deleting an opening request requires superadmin capability")
	}
	return s.requests.DeleteOpeningRequest(ctx, requestID)
}
