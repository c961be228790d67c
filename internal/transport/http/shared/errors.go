package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/validation"
	"hrmportal/internal/transport/http/api"
	"hrmportal/internal/transport/http/middleware"
)

// WriteError maps a domain or store error onto the JSON error convention.
// Anything unrecognised is logged and reported as a 500 with a generic text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, validation.ErrInvalid):
		api.Invalid(w, err, reqID)
	case errors.As(err, &maxBytes):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", reqID)
	case errors.Is(err, demostore.ErrNotFound), errors.Is(err, payroll.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", reqID)
	case errors.Is(err, demostore.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "a record with the same email already exists", reqID)
	case errors.Is(err, leave.ErrNotPending):
		api.Fail(w, http.StatusConflict, "leave_not_pending", err.Error(), reqID)
	case errors.Is(err, leave.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
	case errors.Is(err, demostore.ErrInsufficientBalance):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_balance", err.Error(), reqID)
	case errors.Is(err, payroll.ErrAlreadyProcessed):
		api.Fail(w, http.StatusConflict, "already_processed", err.Error(), reqID)
	case errors.Is(err, payroll.ErrNotPDF), errors.Is(err, payroll.ErrPayslipTooLarge):
		api.Fail(w, http.StatusBadRequest, "invalid_file", err.Error(), reqID)
	default:
		slog.Error("request failed", "err", err, "path", r.URL.Path, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", reqID)
	}
}

// DecodeJSON reads the body into dst and writes a 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := api.Decode(r, dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			WriteError(w, r, err)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// CurrentUser returns the caller or writes a 401.
func CurrentUser(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
	}
	return user, ok
}

// SelfOr allows the caller to act on their own record, or anyone's when the
// role holds c.
func SelfOr(w http.ResponseWriter, r *http.Request, matrix *auth.MatrixStore, c auth.Capability, employeeID string) bool {
	user, ok := CurrentUser(w, r)
	if !ok {
		return false
	}
	if user.UserID == employeeID || matrix.Allows(user.Role, c) {
		return true
	}
	api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
	return false
}
