package settingshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/settings"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/transport/http/api"
	"hrmportal/internal/transport/http/middleware"
	"hrmportal/internal/transport/http/shared"
)

const maxLogoBytes = 2 << 20

type Handler struct {
	Store  *demostore.Store
	Matrix *auth.MatrixStore
	Audit  audit.Store
}

func NewHandler(store *demostore.Store, matrix *auth.MatrixStore, trail audit.Store) *Handler {
	return &Handler{Store: store, Matrix: matrix, Audit: trail}
}

// The roles matrix is readable by any signed-in user: the client needs it to
// decide what to show.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.CapSettingsView, h.Matrix)).Get("/company", h.handleCompany)
		r.With(middleware.RequirePermission(auth.CapSettingsEdit, h.Matrix)).Put("/company", h.handleUpdateCompany)
		r.With(middleware.RequirePermission(auth.CapSettingsEdit, h.Matrix)).Post("/company/logo", h.handleLogo)
		r.With(middleware.RequireAuth).Get("/company/logo", h.handleGetLogo)
		r.With(middleware.RequireAuth).Get("/roles", h.handleRoles)
		r.With(middleware.RequirePermission(auth.CapSettingsEdit, h.Matrix)).Put("/roles", h.handleSaveRoles)
		r.With(middleware.RequirePermission(auth.CapSettingsEdit, h.Matrix)).Get("/audit", h.handleAudit)
	})
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Store.Company())
}

func (h *Handler) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var c settings.Company
	if !shared.DecodeJSON(w, r, &c) {
		return
	}
	before := h.Store.Company()
	updated, err := h.Store.UpdateCompany(r.Context(), c)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCompanyUpdate, "company", "", before, updated)
	api.Success(w, updated)
}

func (h *Handler) handleLogo(w http.ResponseWriter, r *http.Request) {
	file, err := shared.ReadUpload(r, "logo", maxLogoBytes)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	updated, err := h.Store.SetLogo(r.Context(), file)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, updated)
}

func (h *Handler) handleGetLogo(w http.ResponseWriter, r *http.Request) {
	file, err := h.Store.Logo()
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteFile(w, file)
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	api.Success(w, settings.RolesPayload{Roles: h.Store.Roles()})
}

func (h *Handler) handleSaveRoles(w http.ResponseWriter, r *http.Request) {
	var payload settings.RolesPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	before := h.Store.Roles()
	m, _, err := h.Store.SaveRoles(r.Context(), payload.Roles)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	saved := m.Wire()
	shared.Audit(r, h.Audit, audit.ActionRolesUpdate, "roles", "", before, saved)
	api.Success(w, settings.RolesPayload{Roles: saved})
}

// handleAudit lists recorded changes, newest first. Query parameters
// action, actor, limit and offset narrow the page.
func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		api.Success(w, []audit.Event{})
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	events, err := h.Audit.List(r.Context(), audit.Filter{Action: q.Get("action"), ActorID: q.Get("actor")}, limit, offset)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, events)
}
