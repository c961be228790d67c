package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/reports"
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
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.CapReportsExport, h.Matrix)).Post("/generate", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.CapReportsView, h.Matrix)).Get("/recent", h.handleRecent)
		r.With(middleware.RequirePermission(auth.CapReportsView, h.Matrix)).Get("/{id}/download", h.handleDownload)
		r.With(middleware.RequirePermission(auth.CapReportsExport, h.Matrix)).Post("/schedule", h.handleSchedule)
		r.With(middleware.RequirePermission(auth.CapReportsView, h.Matrix)).Get("/scheduled", h.handleScheduled)
	})
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/stats", h.handleStats)
		r.Get("/departments", h.handleDepartments)
	})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var in reports.GenerateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	rep, err := h.Store.GenerateReport(in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, rep)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Store.RecentReports())
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	file, err := h.Store.ReportFile(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteFile(w, file)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var in reports.ScheduleInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	sched, err := h.Store.ScheduleReport(in)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, sched)
}

func (h *Handler) handleScheduled(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Store.Schedules())
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Store.Stats())
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Store.Departments())
}
