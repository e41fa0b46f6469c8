// Package response writes JSON success and error bodies for the HTTP API.
package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/truestate/sales/internal/domain"
)

// Error codes used in ErrorResponse.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// internalErrorJSON is written when even the error body cannot be encoded.
const internalErrorJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorDetail describes a single offending field.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the inner error object.
type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details"`
}

// ErrorResponse is the envelope for every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// OK writes data as JSON with 200 OK.
func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// Error writes an ErrorResponse with the given status.
func Error(w http.ResponseWriter, code, message string, status int, details ...ErrorDetail) {
	if details == nil {
		details = []ErrorDetail{}
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// BadRequest writes a 400 with code INVALID_INPUT.
func BadRequest(w http.ResponseWriter, message string, details ...ErrorDetail) {
	Error(w, CodeInvalidInput, message, http.StatusBadRequest, details...)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, CodeNotFound, message, http.StatusNotFound)
}

// PayloadTooLarge writes a 413.
func PayloadTooLarge(w http.ResponseWriter) {
	Error(w, CodePayloadTooLarge, "request body exceeds size limit", http.StatusRequestEntityTooLarge)
}

// InternalError writes a generic 500. Internal details never reach the client.
func InternalError(w http.ResponseWriter) {
	Error(w, CodeInternalError, "internal server error", http.StatusInternalServerError)
}

// FromDomainError logs err and writes a 500. Store failures, untranslatable
// queries and cancelled requests all surface the same way; the log carries
// the detail.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		slog.ErrorContext(r.Context(), "sales store unavailable", "error", err)
	case errors.Is(err, domain.ErrUnsupportedField), errors.Is(err, domain.ErrUnsupportedClause):
		slog.ErrorContext(r.Context(), "query not translatable by store", "error", err)
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err)
	}
	InternalError(w)
}

// writeJSON encodes into a buffer first so an encoding failure can still
// produce a 500 instead of a truncated 2xx body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(internalErrorJSON))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
