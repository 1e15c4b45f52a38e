package mock

import (
	"context"
	"strings"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

// In-memory test doubles for the repository interfaces. Error fields
// inject failures; zero values behave like an empty store.
type Mocks struct {
	Candidates *CandidateRepo
	Openings   *OpeningRepo
	Requests   *OpeningRequestRepo
	Offers     *OfferRepo
	People     *PersonRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Candidates: &CandidateRepo{},
		Openings:   &OpeningRepo{},
		Requests:   &OpeningRequestRepo{},
		Offers:     &OfferRepo{},
		People:     &PersonRepo{},
	}
}

type CandidateRepo struct {
	Stored    []*models.Candidate
	CreateErr error
	UpdateErr error
}

func (m *CandidateRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	cp := *c
	cp.ID = int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *CandidateRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	for _, c := range m.Stored {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *CandidateRepo) GetCandidateByCode(ctx context.Context, code string) (*models.Candidate, error) {
	for _, c := range m.Stored {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *CandidateRepo) FindCandidateByOpeningAndEmail(ctx context.Context, openingID *int64, email string) (*models.Candidate, error) {
	for _, c := range m.Stored {
		if !strings.EqualFold(c.Email, email) {
			continue
		}
		switch {
		case openingID == nil && c.OpeningID == nil:
			cp := *c
			return &cp, nil
		case openingID != nil && c.OpeningID != nil && *openingID == *c.OpeningID:
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *CandidateRepo) ListCandidates(ctx context.Context, f repository.CandidateFilter) ([]models.Candidate, error) {
	out := make([]models.Candidate, 0, len(m.Stored))
	for _, c := range m.Stored {
		out = append(out, *c)
	}
	return out, nil
}

func (m *CandidateRepo) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i, s := range m.Stored {
		if s.ID == c.ID {
			cp := *c
			m.Stored[i] = &cp
			return nil
		}
	}
	return apperr.Newf(apperr.CodeNotFound, "candidate %d not found", c.ID)
}

func (m *CandidateRepo) NextCandidateNumber(ctx context.Context) (int64, error) {
	return int64(len(m.Stored) + 1), nil
}

type OpeningRepo struct {
	Stored    []*models.Opening
	CreateErr error
}

func (m *OpeningRepo) CreateOpening(ctx context.Context, o *models.Opening) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	cp := *o
	cp.ID = int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *OpeningRepo) GetOpening(ctx context.Context, id int64) (*models.Opening, error) {
	for _, o := range m.Stored {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *OpeningRepo) GetOpeningByCode(ctx context.Context, code string) (*models.Opening, error) {
	for _, o := range m.Stored {
		if o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *OpeningRepo) ListOpenings(ctx context.Context, activeOnly bool) ([]models.Opening, error) {
	out := make([]models.Opening, 0, len(m.Stored))
	for _, o := range m.Stored {
		if activeOnly && !o.IsActive {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *OpeningRepo) UpdateOpening(ctx context.Context, o *models.Opening) error {
	for i, s := range m.Stored {
		if s.ID == o.ID {
			cp := *o
			m.Stored[i] = &cp
			return nil
		}
	}
	return apperr.Newf(apperr.CodeNotFound, "opening %d not found", o.ID)
}

func (m *OpeningRepo) NextOpeningNumber(ctx context.Context) (int64, error) {
	return int64(len(m.Stored) + 1), nil
}

type OpeningRequestRepo struct {
	Stored   []*models.OpeningRequest
	ApplyErr error
}

func (m *OpeningRequestRepo) CreateOpeningRequest(ctx context.Context, r *models.OpeningRequest) (int64, error) {
	cp := *r
	cp.ID = int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *OpeningRequestRepo) GetOpeningRequest(ctx context.Context, id int64) (*models.OpeningRequest, error) {
	for _, r := range m.Stored {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *OpeningRequestRepo) ListOpeningRequests(ctx context.Context, status string) ([]models.OpeningRequest, error) {
	out := make([]models.OpeningRequest, 0, len(m.Stored))
	for _, r := range m.Stored {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *OpeningRequestRepo) ApplyOpeningRequest(ctx context.Context, requestID, openingID int64, delta int, note string, hiringManagerID *int64) error {
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	for _, r := range m.Stored {
		if r.ID != requestID {
			continue
		}
		if r.Status != models.RequestPendingHRApproval {
			return apperr.Newf(apperr.CodeInvalidTransition, "opening request %d is %s", requestID, r.Status)
		}
		r.Status = models.RequestApplied
		r.ApprovalNote = note
		if hiringManagerID != nil {
			r.HiringManagerID = hiringManagerID
		}
		return nil
	}
	return apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
}

func (m *OpeningRequestRepo) RejectOpeningRequest(ctx context.Context, requestID int64, reason string) error {
	for _, r := range m.Stored {
		if r.ID != requestID {
			continue
		}
		if r.Status != models.RequestPendingHRApproval {
			return apperr.Newf(apperr.CodeInvalidTransition, "opening request %d is %s", requestID, r.Status)
		}
		r.Status = models.RequestRejected
		r.RejectedReason = reason
		return nil
	}
	return apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
}

func (m *OpeningRequestRepo) OverrideOpeningRequestStatus(ctx context.Context, requestID int64, status string) error {
	for _, r := range m.Stored {
		if r.ID == requestID {
			r.Status = status
			return nil
		}
	}
	return apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
}

func (m *OpeningRequestRepo) DeleteOpeningRequest(ctx context.Context, requestID int64) error {
	for i, r := range m.Stored {
		if r.ID == requestID {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return apperr.Newf(apperr.CodeNotFound, "opening request %d not found", requestID)
}

type OfferRepo struct {
	Stored []*models.Offer
}

func (m *OfferRepo) CreateOffer(ctx context.Context, o *models.Offer) (int64, error) {
	cp := *o
	cp.ID = int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *OfferRepo) GetOffer(ctx context.Context, id int64) (*models.Offer, error) {
	for _, o := range m.Stored {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *OfferRepo) GetOfferByToken(ctx context.Context, token string) (*models.Offer, error) {
	for _, o := range m.Stored {
		if o.ApprovalToken != "" && o.ApprovalToken == token {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *OfferRepo) ListOffers(ctx context.Context, status string) ([]models.Offer, error) {
	out := make([]models.Offer, 0, len(m.Stored))
	for _, o := range m.Stored {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *OfferRepo) UpdateOffer(ctx context.Context, o *models.Offer) error {
	for i, s := range m.Stored {
		if s.ID == o.ID {
			cp := *o
			m.Stored[i] = &cp
			return nil
		}
	}
	return apperr.Newf(apperr.CodeNotFound, "offer %d not found", o.ID)
}

func (m *OfferRepo) MarkOfferPending(ctx context.Context, offerID int64, token string, expiresAt int64) error {
	for _, o := range m.Stored {
		if o.ID != offerID {
			continue
		}
		if o.Status != models.OfferDraft {
			return apperr.Newf(apperr.CodeInvalidTransition, "offer %d is %s", offerID, o.Status)
		}
		o.Status = models.OfferPendingApproval
		o.ApprovalToken = token
		o.TokenExpiresAt = &expiresAt
		o.ApprovalDecision = ""
		o.DecisionReason = ""
		return nil
	}
	return apperr.Newf(apperr.CodeNotFound, "offer %d not found", offerID)
}

func (m *OfferRepo) RecordOfferDecision(ctx context.Context, offerID int64, decision, reason, newStatus string) error {
	for _, o := range m.Stored {
		if o.ID != offerID {
			continue
		}
		if o.Status != models.OfferPendingApproval || o.ApprovalDecision != "" {
			return apperr.Newf(apperr.CodeConflict, "offer %d decision already recorded", offerID)
		}
		o.ApprovalDecision = decision
		o.DecisionReason = reason
		o.Status = newStatus
		return nil
	}
	return apperr.Newf(apperr.CodeNotFound, "offer %d not found", offerID)
}

type PersonRepo struct {
	Stored    []*models.Person
	CreateErr error
}

func (m *PersonRepo) CreatePerson(ctx context.Context, p *models.Person) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	cp := *p
	cp.ID = int64(len(m.Stored) + 1)
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *PersonRepo) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	for _, p := range m.Stored {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *PersonRepo) GetPersonByEmail(ctx context.Context, email string) (*models.Person, error) {
	for _, p := range m.Stored {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}
