package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/approvals"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

type OpeningsHandler struct {
	openingRepo repository.OpeningRepo
	requestRepo repository.OpeningRequestRepo
	workflow    *approvals.OpeningRequests
}

func NewOpeningsHandler(or repository.OpeningRepo, rr repository.OpeningRequestRepo, wf *approvals.OpeningRequests) *OpeningsHandler {
	return &OpeningsHandler{openingRepo: or, requestRepo: rr, workflow: wf}
}

func (h *OpeningsHandler) ListOpenings(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	openings, err := h.openingRepo.ListOpenings(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if openings == nil {
		openings = []models.Opening{}
	}
	writeJSON(w, map[string]any{"items": openings}, http.StatusOK)
}

type createOpeningRequest struct {
	Title             string `json:"title"`
	HeadcountRequired int    `json:"headcount_required"`
}

func (h *OpeningsHandler) CreateOpening(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanCreateOpening() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "creating openings requires superadmin capability"))
		return
	}

	var req createOpeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}
	if req.Title == "" {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "title is required"))
		return
	}
	if req.HeadcountRequired < 0 {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "headcount_required must not be negative"))
		return
	}

	n, err := h.openingRepo.NextOpeningNumber(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	requestedBy := personIDFrom(r)
	o := &models.Opening{
		Code:              fmt.Sprintf("OPN-%04d", n),
		Title:             req.Title,
		HeadcountRequired: req.HeadcountRequired,
		IsActive:          true,
	}
	if requestedBy > 0 {
		o.RequestedByID = &requestedBy
	}
	id, err := h.openingRepo.CreateOpening(r.Context(), o)
	if err != nil {
		writeError(w, err)
		return
	}
	o.ID = id

	writeJSON(w, o, http.StatusCreated)
}

type toggleOpeningRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *OpeningsHandler) ToggleOpening(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanToggleOpening() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "toggling openings requires hr or superadmin capability"))
		return
	}

	o, ok := h.loadOpening(w, r)
	if !ok {
		return
	}

	var req toggleOpeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	o.IsActive = req.IsActive
	if err := h.openingRepo.UpdateOpening(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, o, http.StatusOK)
}

type raiseOpeningRequest struct {
	OpeningCode        string `json:"opening_code,omitempty"`
	Title              string `json:"title,omitempty"`
	HeadcountDelta     int    `json:"headcount_delta"`
	HiringManagerID    *int64 `json:"hiring_manager_person_id,omitempty"`
	HiringManagerEmail string `json:"hiring_manager_email,omitempty"`
	GLDetails          string `json:"gl_details,omitempty"`
	L2Details          string `json:"l2_details,omitempty"`
	Reason             string `json:"request_reason,omitempty"`
	SourcePortal       string `json:"source_portal,omitempty"`
}

func (h *OpeningsHandler) RaiseRequest(w http.ResponseWriter, r *http.Request) {
	var req raiseOpeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	var raisedBy *int64
	if id := personIDFrom(r); id > 0 {
		raisedBy = &id
	}
	created, err := h.workflow.Raise(r.Context(), approvals.RaiseInput{
		OpeningCode:        req.OpeningCode,
		Title:              req.Title,
		HeadcountDelta:     req.HeadcountDelta,
		HiringManagerID:    req.HiringManagerID,
		HiringManagerEmail: req.HiringManagerEmail,
		GLDetails:          req.GLDetails,
		L2Details:          req.L2Details,
		Reason:             req.Reason,
		SourcePortal:       req.SourcePortal,
		RaisedByID:         raisedBy,
	}, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *OpeningsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanRaiseOpeningRequest() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "listing opening requests requires hr or viewer capability"))
		return
	}

	status := r.URL.Query().Get("status")
	reqs, err := h.requestRepo.ListOpeningRequests(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []models.OpeningRequest{}
	}
	writeJSON(w, map[string]any{"items": reqs}, http.StatusOK)
}

type approveRequestBody struct {
	HiringManagerID *int64 `json:"hiring_manager_person_id,omitempty"`
	Note            string `json:"approval_note,omitempty"`
}

func (h *OpeningsHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body approveRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	req, err := h.workflow.Approve(r.Context(), id, body.HiringManagerID, body.Note, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, req, http.StatusOK)
}

type rejectRequestBody struct {
	Reason string `json:"rejected_reason"`
}

func (h *OpeningsHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body rejectRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	req, err := h.workflow.Reject(r.Context(), id, body.Reason, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, req, http.StatusOK)
}

type overrideRequestBody struct {
	Status string `json:"status"`
}

func (h *OpeningsHandler) OverrideRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body overrideRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	req, err := h.workflow.Override(r.Context(), id, body.Status, capsFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, req, http.StatusOK)
}

func (h *OpeningsHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.workflow.Delete(r.Context(), id, capsFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OpeningsHandler) loadOpening(w http.ResponseWriter, r *http.Request) (*models.Opening, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	o, err := h.openingRepo.GetOpening(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if o == nil {
		writeError(w, apperr.Newf(apperr.CodeNotFound, "opening %d not found", id))
		return nil, false
	}
	return o, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid id"))
		return 0, false
	}
	return id, true
}
