package authhandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/validation"
	"hrmportal/internal/transport/http/api"
	"hrmportal/internal/transport/http/middleware"
	"hrmportal/internal/transport/http/shared"
)

type Handler struct {
	Store  *demostore.Store
	Secret string
	TTL    time.Duration
}

func NewHandler(store *demostore.Store, secret string, ttl time.Duration) *Handler {
	return &Handler{Store: store, Secret: secret, TTL: ttl}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.With(middleware.RequireAuth).Post("/logout", h.HandleLogout)
		r.With(middleware.RequireAuth).Get("/me", h.HandleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := validation.New()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if err := v.Err(); err != nil {
		shared.WriteError(w, r, err)
		return
	}

	user, err := h.Store.Authenticate(strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Email: user.Email, Role: user.Role}, h.TTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, auth.LoginResult{User: user, Token: token})
}

// HandleLogout revokes the presented token for the rest of its lifetime.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(w, r)
	if !ok {
		return
	}
	h.Store.Revoke(user.TokenID, time.Now().Add(h.TTL))
	api.NoContent(w)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.CurrentUser(w, r)
	if !ok {
		return
	}
	me, err := h.Store.UserByID(user.UserID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "account no longer exists", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, me)
}
