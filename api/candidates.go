package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/funnel"
	"github.com/slrhq/hireops/internal/intake"
	"github.com/slrhq/hireops/internal/notify"
	"github.com/slrhq/hireops/pkg/models"
	"github.com/slrhq/hireops/pkg/repository"
)

type CandidatesHandler struct {
	candidateRepo repository.CandidateRepo
	commentRepo   repository.CommentRepo
	intake        *intake.Service
	emitter       *notify.Emitter
}

func NewCandidatesHandler(cr repository.CandidateRepo, com repository.CommentRepo, svc *intake.Service, emitter *notify.Emitter) *CandidatesHandler {
	return &CandidatesHandler{candidateRepo: cr, commentRepo: com, intake: svc, emitter: emitter}
}

// ListCandidates returns the candidate projection with triage fields
// recomputed at read time. Filters: stage (multi-valued), opening_id,
// view (all|active|hired|rejected).
func (h *CandidatesHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f repository.CandidateFilter
	for _, raw := range q["stage"] {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			canon, ok := funnel.NormalizeStage(s)
			if !ok {
				writeError(w, apperr.Newf(apperr.CodeInvalidRequest, "unknown stage %q", s))
				return
			}
			f.Stages = append(f.Stages, canon)
		}
	}
	if v := q.Get("opening_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid opening_id"))
			return
		}
		f.OpeningID = id
	}
	switch view := q.Get("view"); view {
	case "", "all", models.StatusActive, models.StatusHired, models.StatusRejected:
		f.StatusView = view
	default:
		writeError(w, apperr.Newf(apperr.CodeInvalidRequest, "unknown view %q", view))
		return
	}
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			f.Limit = v
		}
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			f.Offset = v
		}
	}

	cands, err := h.candidateRepo.ListCandidates(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	views := make([]models.CandidateView, 0, len(cands))
	for _, c := range cands {
		views = append(views, funnel.View(c, now))
	}

	writeJSON(w, map[string]any{"items": views, "count": len(views)}, http.StatusOK)
}

func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).CanAccessCandidate360() {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "candidate 360 requires hr capability"))
		return
	}

	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	writeJSON(w, funnel.View(*c, time.Now()), http.StatusOK)
}

type createCandidateRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	OpeningCode     string `json:"opening_code,omitempty"`
	SourceChannel   string `json:"source_channel,omitempty"`
	ResumeURL       string `json:"resume_url,omitempty"`
	ScreeningResult string `json:"screening_result,omitempty"`
}

func (h *CandidatesHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).IsHR {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "creating candidates requires hr capability"))
		return
	}

	var req createCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	c, err := h.intake.Create(r.Context(), intake.CreateInput{
		Name:            req.Name,
		Email:           req.Email,
		OpeningCode:     req.OpeningCode,
		SourceOrigin:    models.SourceUI,
		SourceChannel:   req.SourceChannel,
		ResumeURL:       req.ResumeURL,
		ScreeningResult: req.ScreeningResult,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, funnel.View(*c, time.Now()), http.StatusCreated)
}

type advanceStageRequest struct {
	Stage string `json:"stage"`
}

func (h *CandidatesHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	var req advanceStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	from := c.Stage
	if err := funnel.Advance(c, req.Stage, capsFrom(r), time.Now()); err != nil {
		writeError(w, err)
		return
	}
	if err := h.candidateRepo.UpdateCandidate(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}

	h.emitter.StageChanged(r.Context(), c.ID, from, c.Stage)
	writeJSON(w, funnel.View(*c, time.Now()), http.StatusOK)
}

type commentRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// CreateComment stores a comment. is_internal is silently forced to false
// for actors without the internal-notes capability, never rejected.
func (h *CandidatesHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "body is required"))
		return
	}

	if req.IsInternal && !capsFrom(r).CanWriteInternalNotes() {
		req.IsInternal = false
	}

	comment := &models.Comment{
		CandidateID: c.ID,
		AuthorID:    personIDFrom(r),
		Body:        req.Body,
		IsInternal:  req.IsInternal,
	}
	id, err := h.commentRepo.CreateComment(r.Context(), comment)
	if err != nil {
		writeError(w, err)
		return
	}
	comment.ID = id

	h.emitter.Changed(r.Context(), "candidate", c.ID)
	writeJSON(w, comment, http.StatusCreated)
}

func (h *CandidatesHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	includeInternal := capsFrom(r).CanWriteInternalNotes()
	comments, err := h.commentRepo.ListCommentsByCandidate(r.Context(), c.ID, includeInternal)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	writeJSON(w, map[string]any{"items": comments}, http.StatusOK)
}

func (h *CandidatesHandler) MarkCAFSent(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).IsHR {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "caf dispatch requires hr capability"))
		return
	}

	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	updated, err := h.intake.MarkCAFSent(r.Context(), c.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, funnel.View(*updated, time.Now()), http.StatusOK)
}

func (h *CandidatesHandler) SubmitCAF(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	updated, err := h.intake.SubmitCAF(r.Context(), c.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, funnel.View(*updated, time.Now()), http.StatusOK)
}

type reviewFlagRequest struct {
	NeedsHRReview bool `json:"needs_hr_review"`
}

// SetReviewFlag toggles the manual attention override.
func (h *CandidatesHandler) SetReviewFlag(w http.ResponseWriter, r *http.Request) {
	if !capsFrom(r).IsHR {
		writeError(w, apperr.New(apperr.CodeUnauthorized, "review flag requires hr capability"))
		return
	}

	c, ok := h.loadCandidate(w, r)
	if !ok {
		return
	}

	var req reviewFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	c.NeedsHRReview = req.NeedsHRReview
	if err := h.candidateRepo.UpdateCandidate(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}

	h.emitter.Changed(r.Context(), "candidate", c.ID)
	writeJSON(w, funnel.View(*c, time.Now()), http.StatusOK)
}

func (h *CandidatesHandler) loadCandidate(w http.ResponseWriter, r *http.Request) (*models.Candidate, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid candidate id"))
		return nil, false
	}

	c, err := h.candidateRepo.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if c == nil {
		writeError(w, apperr.Newf(apperr.CodeNotFound, "candidate %d not found", id))
		return nil, false
	}
	return c, true
}
