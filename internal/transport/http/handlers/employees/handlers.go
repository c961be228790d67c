package employeeshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/transport/http/api"
	"hrmportal/internal/transport/http/middleware"
	"hrmportal/internal/transport/http/shared"
)

const maxAvatarBytes = 2 << 20

type Handler struct {
	Store  *demostore.Store
	Matrix *auth.MatrixStore
}

func NewHandler(store *demostore.Store, matrix *auth.MatrixStore) *Handler {
	return &Handler{Store: store, Matrix: matrix}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.CapEmployeesView, h.Matrix)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.CapEmployeesCreate, h.Matrix)).Post("/", h.handleCreate)
		r.With(middleware.RequireAuth).Get("/{id}", h.handleGet)
		r.With(middleware.RequirePermission(auth.CapEmployeesEdit, h.Matrix)).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.CapEmployeesDelete, h.Matrix)).Delete("/{id}", h.handleDelete)
		r.With(middleware.RequireAuth).Post("/{id}/avatar", h.handleAvatar)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	list := h.Store.ListEmployees()
	for i := range list {
		employees.FilterFields(&list[i], user.Role, list[i].ID == user.UserID)
	}
	api.Success(w, list)
}

// handleGet lets anyone read their own record; other records need
// employees.view.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !shared.SelfOr(w, r, h.Matrix, auth.CapEmployeesView, id) {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Store.Employee(id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	employees.FilterFields(&emp, user.Role, emp.ID == user.UserID)
	api.Success(w, emp)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in employees.Input
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	emp, err := h.Store.CreateEmployee(in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, emp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in employees.Input
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	emp, err := h.Store.UpdateEmployee(chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, emp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(chi.URLParam(r, "id")); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.NoContent(w)
}

// handleAvatar accepts the image but only keeps a reference to it; the demo
// server does not serve avatars back.
func (h *Handler) handleAvatar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !shared.SelfOr(w, r, h.Matrix, auth.CapEmployeesEdit, id) {
		return
	}
	file, err := shared.ReadUpload(r, "avatar", maxAvatarBytes)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	emp, err := h.Store.SetAvatar(id, "/uploads/avatars/"+id+"/"+file.Name)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, emp)
}
