package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/approvals"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

type OffersHandler struct {
	offerRepo repository.OfferRepo
	workflow  *approvals.Offers
}

func NewOffersHandler(or repository.OfferRepo, wf *approvals.Offers) *OffersHandler {
	return &OffersHandler{offerRepo: or, workflow: wf}
}

type createOfferRequest struct {
	CandidateID      int64  `json:"candidate_id"`
	DesignationTitle string `json:"designation_title"`
	GrossCTCAnnual   int64  `json:"gross_ctc_annual"`
	Currency         string `json:"currency,omitempty"`
	JoiningDate      string `json:"joining_date,omitempty"`
}

func (h *OffersHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	offer, err := h.workflow.Create(r.Context(), &models.Offer{
		CandidateID:      req.CandidateID,
		DesignationTitle: req.DesignationTitle,
		GrossCTCAnnual:   req.GrossCTCAnnual,
		Currency:         req.Currency,
		JoiningDate:      req.JoiningDate,
	}, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, offer, http.StatusCreated)
}

func (h *OffersHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanRequestOfferApproval() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "listing offers requires hr capability"))
		return
	}

	offers, err := h.offerRepo.ListOffers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	writeJSON(w, map[string]any{"items": offers}, http.StatusOK)
}

func (h *OffersHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanRequestOfferApproval() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "viewing offers requires hr capability"))
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	offer, err := h.offerRepo.GetOffer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if offer == nil {
		writeError(w, apperr.Newf(apperr.CodeNotFound, "offer %d not found", id))
		return
	}
	writeJSON(w, offer, http.StatusOK)
}

// RequestApproval issues the approval credential. The token is excluded
// from normal offer serialization, so it rides back only in this response
// for HR to place in the approver's link.
func (h *OffersHandler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	offer, err := h.workflow.RequestApproval(r.Context(), id, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"offer":            offer,
		"approval_token":   offer.ApprovalToken,
		"token_expires_at": offer.TokenExpiresAt,
	}, http.StatusOK)
}

func (h *OffersHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	offer, err := h.workflow.MarkSent(r.Context(), id, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, offer, http.StatusOK)
}

type decideRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

// Decide is the open endpoint behind the emailed approval link. The
// bearer token in the path is the only credential.
func (h *OffersHandler) Decide(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	offer, err := h.workflow.Decide(r.Context(), token, req.Decision, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, offer, http.StatusOK)
}
