package api

import (
	"net/http"
	"time"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/attention"
	"github.com/slrhq/hireops/pkg/repository"
)

type DashboardHandler struct {
	candidateRepo repository.CandidateRepo
	requestRepo   repository.OpeningRequestRepo
	offerRepo     repository.OfferRepo
}

func NewDashboardHandler(cr repository.CandidateRepo, rr repository.OpeningRequestRepo, or repository.OfferRepo) *DashboardHandler {
	return &DashboardHandler{candidateRepo: cr, requestRepo: rr, offerRepo: or}
}

// Attention recomputes the dashboard counts from current state on every
// call. Nothing here is cached or persisted.
func (h *DashboardHandler) Attention(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanAccessCandidate360() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "attention dashboard requires hr capability"))
		return
	}

	ctx := r.Context()

	cands, err := h.candidateRepo.ListCandidates(ctx, repository.CandidateFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	reqs, err := h.requestRepo.ListOpeningRequests(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	offers, err := h.offerRepo.ListOffers(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}

	counts := attention.Compute(attention.Snapshot{
		Candidates:      cands,
		OpeningRequests: reqs,
		Offers:          offers,
	}, time.Now())

	writeJSON(w, counts, http.StatusOK)
}
