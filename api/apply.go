package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/slrhq/hireops/internal/apperr"
	"github.com/slrhq/hireops/internal/funnel"
	"github.com/slrhq/hireops/internal/intake"
	"github.com/slrhq/hireops/pkg/models"
)

// ApplyHandler serves the public application form: no session, payload
// checked against the stored intake schema before it reaches the core.
type ApplyHandler struct {
	intake *intake.Service
	loader *intake.Loader
}

func NewApplyHandler(svc *intake.Service, loader *intake.Loader) *ApplyHandler {
	return &ApplyHandler{intake: svc, loader: loader}
}

type applyRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	OpeningCode     string `json:"opening_code,omitempty"`
	SourceChannel   string `json:"source_channel,omitempty"`
	ResumeURL       string `json:"resume_url,omitempty"`
	ScreeningResult string `json:"screening_result,omitempty"`
}

func (h *ApplyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "unreadable body"))
		return
	}

	keyErrs, err := h.loader.Validate(r.Context(), "v1", body)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.CodeInvalidRequest, "payload validation failed", err))
		return
	}
	if len(keyErrs) > 0 {
		writeError(w, apperr.Newf(apperr.CodeInvalidRequest, "payload invalid: %s", keyErrs[0].Message))
		return
	}

	var req applyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidRequest, "invalid json"))
		return
	}

	c, err := h.intake.Create(r.Context(), intake.CreateInput{
		Name:            req.Name,
		Email:           req.Email,
		OpeningCode:     req.OpeningCode,
		SourceOrigin:    models.SourcePublicApply,
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
