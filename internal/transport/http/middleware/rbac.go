package middleware

import (
	"net/http"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/transport/http/api"
)

// RequirePermission checks the caller's role against the live matrix, so a
// roles update takes effect on the next request.
func RequirePermission(c auth.Capability, matrix *auth.MatrixStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !matrix.Allows(user.Role, c) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
