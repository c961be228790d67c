package leavehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/transport/http/api"
	"hrmportal/internal/transport/http/middleware"
	"hrmportal/internal/transport/http/shared"
)

type Handler struct {
	Store  *demostore.Store
	Matrix *auth.MatrixStore
}

func NewHandler(store *demostore.Store, matrix *auth.MatrixStore) *Handler {
	return &Handler{Store: store, Matrix: matrix}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.CapLeaveView, h.Matrix)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.CapLeaveApply, h.Matrix)).Post("/", h.handleApply)
		r.With(middleware.RequirePermission(auth.CapLeaveView, h.Matrix)).Get("/balance", h.handleBalance)
		r.With(middleware.RequirePermission(auth.CapLeaveView, h.Matrix)).Get("/employee/{id}", h.handleByEmployee)
		r.With(middleware.RequirePermission(auth.CapLeaveApprove, h.Matrix)).Put("/{id}/status", h.handleStatus)
		r.With(middleware.RequirePermission(auth.CapLeaveApply, h.Matrix)).Put("/{id}/cancel", h.handleCancel)
	})
}

// handleList returns every request to approvers and only the caller's own
// to everyone else.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if h.Matrix.Allows(user.Role, auth.CapLeaveApprove) {
		api.Success(w, h.Store.ListLeave())
		return
	}
	api.Success(w, h.Store.LeaveByEmployee(user.UserID))
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !shared.SelfOr(w, r, h.Matrix, auth.CapLeaveApprove, id) {
		return
	}
	api.Success(w, h.Store.LeaveByEmployee(id))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := user.UserID
	if requested := r.URL.Query().Get("employeeId"); requested != "" {
		if !shared.SelfOr(w, r, h.Matrix, auth.CapLeaveApprove, requested) {
			return
		}
		employeeID = requested
	}
	balance, err := h.Store.Balance(employeeID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, balance)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var in leave.ApplyInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	req, err := h.Store.ApplyLeave(user.UserID, in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, req)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var in leave.StatusInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	req, err := h.Store.SetLeaveStatus(chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, req)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	req, err := h.Store.CancelLeave(chi.URLParam(r, "id"), user.UserID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, req)
}
