package shared

import (
	"log/slog"
	"net/http"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/transport/http/middleware"
)

// Audit records action by the signed-in user. Failures are only logged.
func Audit(r *http.Request, store audit.Store, action, entityType, entityID string, before, after any) {
	if store == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	e, err := audit.NewEvent(user.UserID, action, entityType, entityID, before, after)
	if err == nil {
		e.RequestID = middleware.GetRequestID(r.Context())
		e.IP = middleware.ClientIP(r)
		err = store.Record(r.Context(), e)
	}
	if err != nil {
		slog.Warn("audit write failed", "action", action, "err", err)
	}
}
