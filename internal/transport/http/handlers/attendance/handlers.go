package attendancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/auth"
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

// Roles without attendance.edit only ever see and mark their own days.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.CapAttendanceView, h.Matrix)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.CapAttendanceMark, h.Matrix)).Post("/", h.handleMark)
		r.With(middleware.RequirePermission(auth.CapAttendanceEdit, h.Matrix)).Post("/bulk", h.handleBulk)
		r.With(middleware.RequirePermission(auth.CapAttendanceView, h.Matrix)).Get("/employee/{id}", h.handleByEmployee)
		r.With(middleware.RequirePermission(auth.CapAttendanceEdit, h.Matrix)).Put("/{id}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	records := h.Store.ListAttendance(r.URL.Query().Get("date"))
	if !h.Matrix.Allows(user.Role, auth.CapAttendanceEdit) {
		own := records[:0]
		for _, rec := range records {
			if rec.EmployeeID == user.UserID {
				own = append(own, rec)
			}
		}
		records = own
	}
	api.Success(w, records)
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !shared.SelfOr(w, r, h.Matrix, auth.CapAttendanceEdit, id) {
		return
	}
	api.Success(w, h.Store.AttendanceByEmployee(id))
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	var in attendance.MarkInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	if !shared.SelfOr(w, r, h.Matrix, auth.CapAttendanceEdit, in.EmployeeID) {
		return
	}
	rec, err := h.Store.MarkAttendance(in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, rec)
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	var in attendance.BulkInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	recs, err := h.Store.MarkBulk(in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, recs)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in attendance.UpdateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	rec, err := h.Store.UpdateAttendance(chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, rec)
}
