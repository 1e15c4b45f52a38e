package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/slrhq/hireops/internal/apperr"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Plain
// errors are treated as internal and their detail withheld from the caller.
func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperr.CodeUnauthorized:
		status = http.StatusForbidden
	case apperr.CodeInvalidRequest:
		status = http.StatusBadRequest
	case apperr.CodeInvalidTransition:
		status = http.StatusConflict
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeTokenExpired, apperr.CodeTokenInvalid:
		status = http.StatusUnauthorized
	case apperr.CodeConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("internal error", slog.Any("err", err))
		writeJSON(w, errorResponse{Error: "internal error"}, status)
		return
	}

	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	writeJSON(w, errorResponse{Error: msg, Code: string(code)}, status)
}
