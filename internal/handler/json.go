package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/payment"
)

const (
	msgBadRequest = "Requête invalide."
	msgInternal   = "Une erreur inattendue est survenue. Veuillez réessayer."
	maxBodyBytes  = 1 << 20
)

// result is the record every JSON endpoint answers with.
type result map[string]any

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeOK sends a successful result record. message may be empty.
func writeOK(w http.ResponseWriter, status int, message string, fields result) {
	body := result{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError sends a failed result record.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, result{"success": false, "error": message, "code": code})
}

// writeFailure maps err to a failed result record. Errors that carry no
// shopper-facing message are logged and answered with a generic 500.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var perr *payment.Error
	if errors.As(err, &perr) {
		writeError(w, http.StatusPaymentRequired, perr.Code, perr.Message)
		return
	}
	msg, ok := domain.Message(err)
	if !ok {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", msgInternal)
		return
	}
	writeError(w, statusOf(err), domain.Code(err), msg)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrCorruptState):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// readJSON decodes the request body into the given destination. An empty
// body leaves dst untouched.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid_input", msgBadRequest)
	return false
}
