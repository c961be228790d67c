package console

import (
	"context"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/domain/reports"
	"hrmportal/internal/domain/settings"
	"hrmportal/internal/querycache"
)

// Reads go through the cache: a fresh entry is served without a request and
// concurrent reads of one key share a single fetch.

func (a *App) ListEmployees(ctx context.Context) ([]employees.Employee, error) {
	if _, err := a.require(auth.CapEmployeesView); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, EmployeesKey(), a.Employees.List)
}

// WatchEmployees subscribes listener to the employee list and starts a fetch
// when needed. The returned snapshot is the state at subscription time.
func (a *App) WatchEmployees(listener querycache.Listener) (querycache.Snapshot, func(), error) {
	if _, err := a.require(auth.CapEmployeesView); err != nil {
		return querycache.Snapshot{}, func() {}, err
	}
	snap, unsubscribe := a.Cache.Watch(EmployeesKey(), func(ctx context.Context) (any, error) {
		return a.Employees.List(ctx)
	}, listener)
	return snap, unsubscribe, nil
}

func (a *App) Employee(ctx context.Context, id string) (employees.Employee, error) {
	if _, err := a.requireSelfOr(auth.CapEmployeesView, id); err != nil {
		return employees.Employee{}, err
	}
	return querycache.Load(ctx, a.Cache, EmployeeKey(id), func(ctx context.Context) (employees.Employee, error) {
		return a.Employees.Get(ctx, id)
	})
}

// AttendanceOn lists one day's records; the server trims it to the caller's
// own records without attendance.edit.
func (a *App) AttendanceOn(ctx context.Context, date string) ([]attendance.Record, error) {
	if _, err := a.require(auth.CapAttendanceView); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, AttendanceKey(date), func(ctx context.Context) ([]attendance.Record, error) {
		return a.Attendance.List(ctx, date)
	})
}

func (a *App) EmployeeAttendance(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	if _, err := a.requireSelfOr(auth.CapAttendanceEdit, employeeID); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, EmployeeAttendanceKey(employeeID), func(ctx context.Context) ([]attendance.Record, error) {
		return a.Attendance.ByEmployee(ctx, employeeID)
	})
}

func (a *App) LeaveRequests(ctx context.Context) ([]leave.Request, error) {
	if _, err := a.require(auth.CapLeaveView); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, LeaveKey(), a.Leave.List)
}

func (a *App) WatchLeave(listener querycache.Listener) (querycache.Snapshot, func(), error) {
	if _, err := a.require(auth.CapLeaveView); err != nil {
		return querycache.Snapshot{}, func() {}, err
	}
	snap, unsubscribe := a.Cache.Watch(LeaveKey(), func(ctx context.Context) (any, error) {
		return a.Leave.List(ctx)
	}, listener)
	return snap, unsubscribe, nil
}

func (a *App) EmployeeLeave(ctx context.Context, employeeID string) ([]leave.Request, error) {
	if _, err := a.requireSelfOr(auth.CapLeaveApprove, employeeID); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, EmployeeLeaveKey(employeeID), func(ctx context.Context) ([]leave.Request, error) {
		return a.Leave.ByEmployee(ctx, employeeID)
	})
}

func (a *App) LeaveBalance(ctx context.Context) (leave.Balance, error) {
	if _, err := a.require(auth.CapLeaveView); err != nil {
		return leave.Balance{}, err
	}
	return querycache.Load(ctx, a.Cache, LeaveBalanceKey(), a.Leave.Balance)
}

func (a *App) PayrollRecords(ctx context.Context) ([]payroll.Record, error) {
	if _, err := a.require(auth.CapPayrollView); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, PayrollKey(), a.Payroll.List)
}

func (a *App) EmployeePayroll(ctx context.Context, employeeID string) ([]payroll.Record, error) {
	if _, err := a.requireSelfOr(auth.CapPayrollGenerate, employeeID); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, EmployeePayrollKey(employeeID), func(ctx context.Context) ([]payroll.Record, error) {
		return a.Payroll.ByEmployee(ctx, employeeID)
	})
}

func (a *App) PayrollPeriod(ctx context.Context, p payroll.Period) ([]payroll.Record, error) {
	if _, err := a.require(auth.CapPayrollGenerate); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, PayrollPeriodKey(p), func(ctx context.Context) ([]payroll.Record, error) {
		return a.Payroll.ByPeriod(ctx, p)
	})
}

func (a *App) RecentReports(ctx context.Context) ([]reports.Report, error) {
	if _, err := a.require(auth.CapReportsView); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, RecentReportsKey(), a.Reports.Recent)
}

func (a *App) ReportSchedules(ctx context.Context) ([]reports.Schedule, error) {
	if _, err := a.require(auth.CapReportsView); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, ReportSchedulesKey(), a.Reports.Scheduled)
}

func (a *App) DashboardStats(ctx context.Context) (reports.Stats, error) {
	if _, err := a.user(); err != nil {
		return reports.Stats{}, err
	}
	return querycache.Load(ctx, a.Cache, DashboardStatsKey(), a.Reports.DashboardStats)
}

func (a *App) Departments(ctx context.Context) ([]reports.DepartmentCount, error) {
	if _, err := a.user(); err != nil {
		return nil, err
	}
	return querycache.Load(ctx, a.Cache, DepartmentsKey(), a.Reports.Departments)
}

func (a *App) Company(ctx context.Context) (settings.Company, error) {
	if _, err := a.require(auth.CapSettingsView); err != nil {
		return settings.Company{}, err
	}
	return querycache.Load(ctx, a.Cache, CompanyKey(), a.Settings.Company)
}

// AuditTrail is read straight from the server: any write can add to it.
func (a *App) AuditTrail(ctx context.Context, f audit.Filter, limit int) ([]audit.Event, error) {
	if _, err := a.require(auth.CapSettingsEdit); err != nil {
		return nil, err
	}
	return a.Settings.Audit(ctx, f, limit)
}
