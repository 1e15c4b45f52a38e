package approvals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/capability"
	"github.com/slrhq/hireops/internal/notify"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

// DefaultTokenTTL bounds how long an external approver can sit on an
// offer before the link goes stale.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Offers runs the compensation-offer approval gate. The decision endpoint
// is authenticated solely by the bearer token issued here, not by a
// session.
type Offers struct {
	offers     repository.OfferRepo
	candidates repository.CandidateRepo
	emitter    *notify.Emitter
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewOffers(or repository.OfferRepo, cr repository.CandidateRepo, emitter *notify.Emitter, tokenTTL time.Duration, logger *slog.Logger) *Offers {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Offers{offers: or, candidates: cr, emitter: emitter, tokenTTL: tokenTTL, logger: logger, now: time.Now}
}

func (s *Offers) Create(ctx context.Context, o *models.Offer, caps capability.Set) (*models.Offer, error) {
	if !caps.CanRequestOfferApproval() {
		return nil, apperr.New(apperr.CodeUnauthorized, "creating an offer requires hr capability")
	}
	if o == nil || o.CandidateID <= 0 || strings.TrimSpace(o.DesignationTitle) == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "candidate_id and designation_title are required")
	}

	c, err := s.candidates.GetCandidate(ctx, o.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("lookup candidate: %w", err)
	}
	if c == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "candidate %d not found", o.CandidateID)
	}

	o.Status = models.OfferDraft
	id, err := s.offers.CreateOffer(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	return s.offers.GetOffer(ctx, id)
}

// RequestApproval issues a fresh single-use bearer token and moves the
// offer to pending_approval. Only a draft (including a rejected offer
// returned to draft) can enter a new approval cycle.
func (s *Offers) RequestApproval(ctx context.Context, offerID int64, caps capability.Set) (*models.Offer, error) {
	if !caps.CanRequestOfferApproval() {
		return nil, apperr.New(apperr.CodeUnauthorized, "requesting offer approval requires hr capability")
	}

	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "offer %d not found", offerID)
	}

	token := uuid.NewString()
	expires := s.now().Add(s.tokenTTL).UTC().UnixMilli()
	if err := s.offers.MarkOfferPending(ctx, offerID, token, expires); err != nil {
		return nil, err
	}

	s.logger.Info("offer approval requested", slog.Int64("offer_id", offerID))
	return s.offers.GetOffer(ctx, offerID)
}

// Decide records the token holder's single decision. Replays with the
// same token return the stored decision without re-applying side effects.
// An expired token fails closed with no state change.
func (s *Offers) Decide(ctx context.Context, token, decision, reason string) (*models.Offer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.New(apperr.CodeTokenInvalid, "approval token is required")
	}

	offer, err := s.offers.GetOfferByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("lookup offer by token: %w", err)
	}
	if offer == nil {
		return nil, apperr.New(apperr.CodeTokenInvalid, "approval token not found")
	}

	// idempotent replay: decision already stored for this token
	if offer.ApprovalDecision != "" {
		return offer, nil
	}

	if offer.TokenExpiresAt == nil || s.now().UTC().UnixMilli() > *offer.TokenExpiresAt {
		return nil, apperr.New(apperr.CodeTokenExpired, "approval token has expired")
	}

	var newStatus string
	switch decision {
	case models.DecisionApproved:
		newStatus = models.OfferApproved
	case models.DecisionRejected:
		if strings.TrimSpace(reason) == "" {
			return nil, apperr.New(apperr.CodeInvalidRequest, "reason is required to reject an offer")
		}
		// rejection returns the offer to draft; the reason is retained
		newStatus = models.OfferDraft
	default:
		return nil, apperr.Newf(apperr.CodeInvalidRequest, "decision must be %q or %q", models.DecisionApproved, models.DecisionRejected)
	}

	if err := s.offers.RecordOfferDecision(ctx, offer.ID, decision, reason, newStatus); err != nil {
		// lost a race with a concurrent decision: serve the stored one
		if apperr.Is(err, apperr.CodeConflict) {
			return s.offers.GetOffer(ctx, offer.ID)
		}
		return nil, err
	}

	s.emitter.OfferDecided(ctx, offer.ID, decision)
	return s.offers.GetOffer(ctx, offer.ID)
}

// MarkSent releases an approved offer to the candidate.
func (s *Offers) MarkSent(ctx context.Context, offerID int64, caps capability.Set) (*models.Offer, error) {
	if !caps.CanRequestOfferApproval() {
		return nil, apperr.New(apperr.CodeUnauthorized, "sending an offer requires hr capability")
	}

	offer, err := s.offers.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return nil, apperr.Newf(apperr.CodeNotFound, "offer %d not found", offerID)
	}
	if offer.Status != models.OfferApproved {
		return nil, apperr.Newf(apperr.CodeInvalidTransition, "offer %d is %s, approval unlocks sending", offerID, offer.Status)
	}

	offer.Status = models.OfferSent
	if err := s.offers.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}

	s.emitter.Changed(ctx, "offer", offerID)
	return s.offers.GetOffer(ctx, offerID)
}
