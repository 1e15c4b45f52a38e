package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/notify"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

// Legacy screening synonyms still arriving from sheet imports.
var screeningSynonyms = map[string]string{
	"green": models.ScreeningLow,
	"amber": models.ScreeningMedium,
	"red":   models.ScreeningHigh,
}

// NormalizeScreening maps legacy color synonyms onto the canonical
// screening result. Unknown values are dropped, not rejected.
func NormalizeScreening(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if canon, ok := screeningSynonyms[s]; ok {
		return canon
	}
	switch s {
	case models.ScreeningLow, models.ScreeningMedium, models.ScreeningHigh:
		return s
	}
	return ""
}

// Service owns candidate creation. Every intake path (ui, public apply,
// sheet ingestion) runs through it so the invariants hold everywhere:
// system-issued SLR code, initial stage enquiry, dedupe by opening+email.
type Service struct {
	candidates repository.CandidateRepo
	openings   repository.OpeningRepo
	emitter    *notify.Emitter
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(cr repository.CandidateRepo, or repository.OpeningRepo, emitter *notify.Emitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{candidates: cr, openings: or, emitter: emitter, logger: logger, now: time.Now}
}

// CreateInput is one incoming application, whatever the door it came through.
type CreateInput struct {
	Name            string
	Email           string
	OpeningCode     string
	SourceOrigin    string
	SourceChannel   string
	ResumeURL       string
	ScreeningResult string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Candidate, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "name and email are required")
	}

	origin := in.SourceOrigin
	switch origin {
	case models.SourceUI, models.SourcePublicApply, models.SourceGoogleSheet:
	case "":
		origin = models.SourceUI
	default:
		return nil, apperr.Newf(apperr.CodeInvalidRequest, "unknown source_origin %q", origin)
	}

	var openingID *int64
	if code := strings.TrimSpace(in.OpeningCode); code != "" {
		o, err := s.openings.GetOpeningByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("lookup opening %s: %w", code, err)
		}
		if o == nil {
			return nil, apperr.Newf(apperr.CodeNotFound, "opening %s not found", code)
		}
		openingID = &o.ID
	}

	existing, err := s.candidates.FindCandidateByOpeningAndEmail(ctx, openingID, email)
	if err != nil {
		return nil, fmt.Errorf("dedupe lookup: %w", err)
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.CodeConflict, "candidate %s already applied for this opening", existing.Code)
	}

	n, err := s.candidates.NextCandidateNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("next candidate number: %w", err)
	}

	ts := s.now().UTC().UnixMilli()
	c := &models.Candidate{
		Code:            fmt.Sprintf("SLR-%04d", n),
		Name:            name,
		Email:           email,
		OpeningID:       openingID,
		Stage:           models.StageEnquiry,
		Status:          models.StatusActive,
		ScreeningResult: NormalizeScreening(in.ScreeningResult),
		SourceOrigin:    origin,
		SourceChannel:   strings.TrimSpace(in.SourceChannel),
		ResumeURL:       strings.TrimSpace(in.ResumeURL),
		StageEnteredAt:  ts,
		Created:         ts,
	}
	id, err := s.candidates.CreateCandidate(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	c.ID = id

	s.emitter.Changed(ctx, "candidate", id)
	return c, nil
}

// MarkCAFSent records that the assessment form went out.
func (s *Service) MarkCAFSent(ctx context.Context, candidateID int64) (*models.Candidate, error) {
	c, err := s.candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load candidate: %w", err)
	}
	if c == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "candidate %d not found", candidateID)
	}

	ts := s.now().UTC().UnixMilli()
	c.CAFSentAt = &ts
	if err := s.candidates.UpdateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	return c, nil
}

// SubmitCAF records a form submission. A submission with no prior send is
// invalid input but tolerated: logged and stored, never blocking.
func (s *Service) SubmitCAF(ctx context.Context, candidateID int64) (*models.Candidate, error) {
	c, err := s.candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load candidate: %w", err)
	}
	if c == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "candidate %d not found", candidateID)
	}

	if c.CAFSentAt == nil {
		s.logger.Warn("caf submitted without a recorded send", slog.String("candidate", c.Code))
	}
	ts := s.now().UTC().UnixMilli()
	c.CAFSubmittedAt = &ts
	if err := s.candidates.UpdateCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}

	s.emitter.Changed(ctx, "candidate", candidateID)
	return c, nil
}
