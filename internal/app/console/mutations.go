package console

import (
	"context"
	"io"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/domain/reports"
	"hrmportal/internal/domain/settings"
	"hrmportal/internal/querycache"
	apiclient "hrmportal/internal/transport/http/client"
)

// Writes are gated locally, then run through the cache so the affected keys
// are invalidated only when the server accepted the change.

var (
	employeeKeys   = []querycache.Key{querycache.AllOf(ResourceEmployees), querycache.AllOf(ResourceDashboard)}
	attendanceKeys = []querycache.Key{querycache.AllOf(ResourceAttendance), DashboardStatsKey()}
	leaveKeys      = []querycache.Key{querycache.AllOf(ResourceLeave), DashboardStatsKey()}
	payrollKeys    = []querycache.Key{querycache.AllOf(ResourcePayroll), DashboardStatsKey()}
	reportKeys     = []querycache.Key{querycache.AllOf(ResourceReports)}
	settingsKeys   = []querycache.Key{querycache.AllOf(ResourceSettings)}
)

// withNames adds the modules that carry denormalised employee names.
func withNames(keys []querycache.Key) []querycache.Key {
	out := append([]querycache.Key{}, keys...)
	return append(out,
		querycache.AllOf(ResourceAttendance),
		querycache.AllOf(ResourceLeave),
		querycache.AllOf(ResourcePayroll),
	)
}

func (a *App) CreateEmployee(ctx context.Context, in employees.Input) (employees.Employee, error) {
	if _, err := a.require(auth.CapEmployeesCreate); err != nil {
		return employees.Employee{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (employees.Employee, error) {
		return a.Employees.Create(ctx, in)
	}, employeeKeys...)
}

func (a *App) UpdateEmployee(ctx context.Context, id string, in employees.Input) (employees.Employee, error) {
	if _, err := a.requireSelfOr(auth.CapEmployeesEdit, id); err != nil {
		return employees.Employee{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (employees.Employee, error) {
		return a.Employees.Update(ctx, id, in)
	}, withNames(employeeKeys)...)
}

func (a *App) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := a.require(auth.CapEmployeesDelete); err != nil {
		return err
	}
	return a.Cache.Mutate(ctx, func(ctx context.Context) error {
		return a.Employees.Delete(ctx, id)
	}, withNames(employeeKeys)...)
}

func (a *App) UploadAvatar(ctx context.Context, id, filename string, content io.Reader) (employees.Employee, error) {
	if _, err := a.requireSelfOr(auth.CapEmployeesEdit, id); err != nil {
		return employees.Employee{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (employees.Employee, error) {
		return a.Employees.UploadAvatar(ctx, id, filename, content)
	}, employeeKeys...)
}

// MarkAttendance records a day for in.EmployeeID, which defaults to the
// signed-in user.
func (a *App) MarkAttendance(ctx context.Context, in attendance.MarkInput) (attendance.Record, error) {
	sess, err := a.require(auth.CapAttendanceMark)
	if err != nil {
		return attendance.Record{}, err
	}
	if in.EmployeeID == "" {
		in.EmployeeID = sess.UserID
	}
	if _, err := a.requireSelfOr(auth.CapAttendanceEdit, in.EmployeeID); err != nil {
		return attendance.Record{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (attendance.Record, error) {
		return a.Attendance.Mark(ctx, in)
	}, attendanceKeys...)
}

func (a *App) MarkBulkAttendance(ctx context.Context, in attendance.BulkInput) ([]attendance.Record, error) {
	if _, err := a.require(auth.CapAttendanceEdit); err != nil {
		return nil, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) ([]attendance.Record, error) {
		return a.Attendance.MarkBulk(ctx, in)
	}, attendanceKeys...)
}

func (a *App) UpdateAttendance(ctx context.Context, id string, in attendance.UpdateInput) (attendance.Record, error) {
	if _, err := a.require(auth.CapAttendanceEdit); err != nil {
		return attendance.Record{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (attendance.Record, error) {
		return a.Attendance.Update(ctx, id, in)
	}, attendanceKeys...)
}

// ApplyLeave validates the request before anything else: an inverted range
// never reaches the network and never invalidates.
func (a *App) ApplyLeave(ctx context.Context, in leave.ApplyInput) (leave.Request, error) {
	if _, err := a.require(auth.CapLeaveApply); err != nil {
		return leave.Request{}, err
	}
	if _, err := in.Validate(); err != nil {
		return leave.Request{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (leave.Request, error) {
		return a.Leave.Apply(ctx, in)
	}, leaveKeys...)
}

func (a *App) SetLeaveStatus(ctx context.Context, id string, in leave.StatusInput) (leave.Request, error) {
	if _, err := a.require(auth.CapLeaveApprove); err != nil {
		return leave.Request{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (leave.Request, error) {
		return a.Leave.SetStatus(ctx, id, in)
	}, leaveKeys...)
}

func (a *App) CancelLeave(ctx context.Context, id string) (leave.Request, error) {
	if _, err := a.require(auth.CapLeaveApply); err != nil {
		return leave.Request{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (leave.Request, error) {
		return a.Leave.Cancel(ctx, id)
	}, leaveKeys...)
}

func (a *App) ProcessPayroll(ctx context.Context, p payroll.Period) (payroll.ProcessResult, error) {
	if _, err := a.require(auth.CapPayrollApprove); err != nil {
		return payroll.ProcessResult{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (payroll.ProcessResult, error) {
		return a.Payroll.Process(ctx, p)
	}, payrollKeys...)
}

func (a *App) UploadPayslip(ctx context.Context, u payroll.PayslipUpload) (payroll.Record, error) {
	if _, err := a.require(auth.CapPayrollGenerate); err != nil {
		return payroll.Record{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (payroll.Record, error) {
		return a.Payroll.UploadPayslip(ctx, u)
	}, payrollKeys...)
}

// EmailPayslip sends the payslip and marks the record paid server-side.
func (a *App) EmailPayslip(ctx context.Context, id string) (payroll.EmailResult, error) {
	if _, err := a.require(auth.CapPayrollGenerate); err != nil {
		return payroll.EmailResult{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (payroll.EmailResult, error) {
		return a.Payroll.Email(ctx, id)
	}, payrollKeys...)
}

// DownloadPayslip is not cached: files are fetched on demand.
func (a *App) DownloadPayslip(ctx context.Context, id string) (apiclient.File, error) {
	if _, err := a.require(auth.CapPayrollView); err != nil {
		return apiclient.File{}, err
	}
	return a.Payroll.Download(ctx, id)
}

func (a *App) GenerateReport(ctx context.Context, in reports.GenerateInput) (reports.Report, error) {
	if _, err := a.require(auth.CapReportsExport); err != nil {
		return reports.Report{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (reports.Report, error) {
		return a.Reports.Generate(ctx, in)
	}, reportKeys...)
}

func (a *App) ScheduleReport(ctx context.Context, in reports.ScheduleInput) (reports.Schedule, error) {
	if _, err := a.require(auth.CapReportsExport); err != nil {
		return reports.Schedule{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (reports.Schedule, error) {
		return a.Reports.Schedule(ctx, in)
	}, reportKeys...)
}

func (a *App) DownloadReport(ctx context.Context, id string) (apiclient.File, error) {
	if _, err := a.require(auth.CapReportsView); err != nil {
		return apiclient.File{}, err
	}
	return a.Reports.Download(ctx, id)
}

func (a *App) UpdateCompany(ctx context.Context, c settings.Company) (settings.Company, error) {
	if _, err := a.require(auth.CapSettingsEdit); err != nil {
		return settings.Company{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (settings.Company, error) {
		return a.Settings.UpdateCompany(ctx, c)
	}, settingsKeys...)
}

func (a *App) UploadLogo(ctx context.Context, filename string, content io.Reader) (settings.Company, error) {
	if _, err := a.require(auth.CapSettingsEdit); err != nil {
		return settings.Company{}, err
	}
	return querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (settings.Company, error) {
		return a.Settings.UploadLogo(ctx, filename, content)
	}, settingsKeys...)
}

// SaveRoles stores m on the server and, only once that succeeded, swaps the
// local matrix for the one the server returned.
func (a *App) SaveRoles(ctx context.Context, m auth.Matrix) (auth.Matrix, error) {
	if _, err := a.require(auth.CapSettingsEdit); err != nil {
		return auth.Matrix{}, err
	}
	saved, err := querycache.MutateValue(ctx, a.Cache, func(ctx context.Context) (auth.Matrix, error) {
		return a.Settings.SaveRoles(ctx, m)
	}, settingsKeys...)
	if err != nil {
		return auth.Matrix{}, err
	}
	a.Matrix.Update(saved)
	return saved, nil
}
