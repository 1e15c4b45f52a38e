package repository

import (
	"context"

	"github.com/slrhq/hireops/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// CandidateFilter narrows candidate listings. Zero values mean "no filter".
type CandidateFilter struct {
	Stages     []string
	OpeningID  int64
	StatusView string // all|active|hired|rejected
	Limit      int
	Offset     int
}

type CandidateRepo interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error)
	GetCandidate(ctx context.Context, id int64) (*models.Candidate, error)
	GetCandidateByCode(ctx context.Context, code string) (*models.Candidate, error)
	FindCandidateByOpeningAndEmail(ctx context.Context, openingID *int64, email string) (*models.Candidate, error)
	ListCandidates(ctx context.Context, f CandidateFilter) ([]models.Candidate, error)
	UpdateCandidate(ctx context.Context, c *models.Candidate) error
	NextCandidateNumber(ctx context.Context) (int64, error)
}

type CommentRepo interface {
	CreateComment(ctx context.Context, c *models.Comment) (int64, error)
	ListCommentsByCandidate(ctx context.Context, candidateID int64, includeInternal bool) ([]models.Comment, error)
}

type OpeningRepo interface {
	CreateOpening(ctx context.Context, o *models.Opening) (int64, error)
	GetOpening(ctx context.Context, id int64) (*models.Opening, error)
	GetOpeningByCode(ctx context.Context, code string) (*models.Opening, error)
	ListOpenings(ctx context.Context, activeOnly bool) ([]models.Opening, error)
	UpdateOpening(ctx context.Context, o *models.Opening) error
	NextOpeningNumber(ctx context.Context) (int64, error)
}

type OpeningRequestRepo interface {
	CreateOpeningRequest(ctx context.Context, r *models.OpeningRequest) (int64, error)
	GetOpeningRequest(ctx context.Context, id int64) (*models.OpeningRequest, error)
	ListOpeningRequests(ctx context.Context, status string) ([]models.OpeningRequest, error)
	// ApplyOpeningRequest flips the request to applied and bumps the
	// opening's headcount in one atomic unit. Fails without mutation if
	// the request is no longer pending.
	ApplyOpeningRequest(ctx context.Context, requestID, openingID int64, delta int, note string, hiringManagerID *int64) error
	RejectOpeningRequest(ctx context.Context, requestID int64, reason string) error
	OverrideOpeningRequestStatus(ctx context.Context, requestID int64, status string) error
	DeleteOpeningRequest(ctx context.Context, requestID int64) error
}

type OfferRepo interface {
	CreateOffer(ctx context.Context, o *models.Offer) (int64, error)
	GetOffer(ctx context.Context, id int64) (*models.Offer, error)
	GetOfferByToken(ctx context.Context, token string) (*models.Offer, error)
	ListOffers(ctx context.Context, status string) ([]models.Offer, error)
	UpdateOffer(ctx context.Context, o *models.Offer) error
	// MarkOfferPending issues the approval credential and moves the offer
	// to pending_approval, clearing any previous decision.
	MarkOfferPending(ctx context.Context, offerID int64, token string, expiresAt int64) error
	// RecordOfferDecision stores the decision, flips the status, and
	// invalidates the token in one atomic unit. Fails without mutation if
	// a decision is already stored.
	RecordOfferDecision(ctx context.Context, offerID int64, decision, reason, newStatus string) error
}

type PersonRepo interface {
	CreatePerson(ctx context.Context, p *models.Person) (int64, error)
	GetPerson(ctx context.Context, id int64) (*models.Person, error)
	GetPersonByEmail(ctx context.Context, email string) (*models.Person, error)
}

type SchemaRepo interface {
	ListIntakeSchemas(ctx context.Context) ([]models.IntakeSchema, error)
}
