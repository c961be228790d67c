package payrollhandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/email"
	"hrmportal/internal/transport/http/api"
	"hrmportal/internal/transport/http/middleware"
	"hrmportal/internal/transport/http/shared"
)

type Handler struct {
	Store  *demostore.Store
	Matrix *auth.MatrixStore
	Mailer email.Mailer
	From   string
	Audit  audit.Store
}

func NewHandler(store *demostore.Store, matrix *auth.MatrixStore, mailer email.Mailer, from string, trail audit.Store) *Handler {
	return &Handler{Store: store, Matrix: matrix, Mailer: mailer, From: from, Audit: trail}
}

// Running payroll for a period needs payroll.approve; preparing and sending
// payslips needs payroll.generate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.CapPayrollView, h.Matrix)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.CapPayrollView, h.Matrix)).Get("/employee/{id}", h.handleByEmployee)
		r.With(middleware.RequirePermission(auth.CapPayrollGenerate, h.Matrix)).Get("/period/{year}/{month}", h.handleByPeriod)
		r.With(middleware.RequirePermission(auth.CapPayrollApprove, h.Matrix)).Post("/process", h.handleProcess)
		r.With(middleware.RequirePermission(auth.CapPayrollGenerate, h.Matrix)).Post("/upload", h.handleUpload)
		r.With(middleware.RequirePermission(auth.CapPayrollView, h.Matrix)).Get("/{id}/download", h.handleDownload)
		r.With(middleware.RequirePermission(auth.CapPayrollGenerate, h.Matrix)).Post("/{id}/email", h.handleEmail)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if h.Matrix.Allows(user.Role, auth.CapPayrollGenerate) {
		api.Success(w, h.Store.ListPayroll())
		return
	}
	api.Success(w, h.Store.PayrollByEmployee(user.UserID))
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !shared.SelfOr(w, r, h.Matrix, auth.CapPayrollGenerate, id) {
		return
	}
	api.Success(w, h.Store.PayrollByEmployee(id))
}

func (h *Handler) handleByPeriod(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.PayrollByPeriod(payroll.Period{Month: chi.URLParam(r, "month"), Year: chi.URLParam(r, "year")})
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, recs)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var p payroll.Period
	if !shared.DecodeJSON(w, r, &p) {
		return
	}
	res, err := h.Store.ProcessPayroll(p)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionPayrollProcess, "payroll_period", res.Period.String(), nil, map[string]int{"processed": res.Processed})
	api.Success(w, res)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, err := shared.ReadUpload(r, "file", payroll.MaxPayslipBytes)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Name), ".pdf") {
		shared.WriteError(w, r, payroll.ErrNotPDF)
		return
	}
	file.ContentType = "application/pdf"
	p := payroll.Period{Month: r.FormValue("month"), Year: r.FormValue("year")}
	rec, err := h.Store.AttachPayslip(r.FormValue("employeeId"), p, file)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Created(w, rec)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.PayrollRecord(id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if !shared.SelfOr(w, r, h.Matrix, auth.CapPayrollGenerate, rec.EmployeeID) {
		return
	}
	file, err := h.Store.Payslip(id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteFile(w, file)
}

// handleEmail sends the payslip to the employee's address and marks a
// processed record as paid.
func (h *Handler) handleEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.PayrollRecord(id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	emp, err := h.Store.Employee(rec.EmployeeID)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	file, err := h.Store.Payslip(id)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}

	period := payroll.Period{Month: rec.Month, Year: rec.Year}
	err = h.Mailer.Send(r.Context(), email.Message{
		From:    h.From,
		To:      emp.Email,
		Subject: fmt.Sprintf("Your payslip for %s", period),
		Body:    fmt.Sprintf("Hello %s,\n\nYour payslip for %s is attached.\n", emp.Name, period),
		Attachments: []email.Attachment{
			{Filename: file.Name, ContentType: file.ContentType, Data: file.Data},
		},
	})
	if err != nil {
		slog.Warn("payslip email failed", "payrollId", id, "err", err)
		api.Fail(w, http.StatusBadGateway, "email_failed", "could not send the payslip email", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := h.Store.MarkPaid(id); err != nil && !errors.Is(err, payroll.ErrRecordNotFound) {
		slog.Warn("mark payroll paid failed", "payrollId", id, "err", err)
	}
	shared.Audit(r, h.Audit, audit.ActionPayslipEmail, "payroll_record", id, nil, map[string]string{"recipient": emp.Email})
	api.Success(w, payroll.EmailResult{Sent: true, Recipient: emp.Email})
}
