package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hrmportal/internal/platform/validation"
)

// Failure is the error body every non-2xx JSON response carries. Message is
// the text a front-end shows the user.
type Failure struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Issues    []validation.Issue `json:"issues,omitempty"`
	RequestID string             `json:"requestId,omitempty"`
}

// WriteJSON encodes payload as-is. Success bodies are the resource itself,
// never wrapped.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Failure{Code: code, Message: message, RequestID: requestID})
}

// Invalid reports a validation error with its individual issues.
func Invalid(w http.ResponseWriter, err error, requestID string) {
	body := Failure{Code: "invalid_request", Message: err.Error(), RequestID: requestID}
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		body.Issues = vErr.Issues
	}
	WriteJSON(w, http.StatusBadRequest, body)
}

// Decode reads a JSON body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
