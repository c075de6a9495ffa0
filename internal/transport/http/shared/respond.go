// Package shared holds the response envelope used by every handler.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "peakform/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded domain error to its HTTP status and envelope.
// Uncoded errors are reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{
		Error:   string(code),
		Message: "internal server error",
	}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}
