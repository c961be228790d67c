package console

import (
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/querycache"
)

// Cache resources. Every read of a module lives under its resource so a
// write can invalidate the whole module with querycache.AllOf.
const (
	ResourceEmployees  = "employees"
	ResourceAttendance = "attendance"
	ResourceLeave      = "leave"
	ResourcePayroll    = "payroll"
	ResourceReports    = "reports"
	ResourceDashboard  = "dashboard"
	ResourceSettings   = "settings"
)

func EmployeesKey() querycache.Key { return querycache.NewKey(ResourceEmployees, "list") }

func EmployeeKey(id string) querycache.Key { return querycache.NewKey(ResourceEmployees, "id", id) }

func AttendanceKey(date string) querycache.Key {
	return querycache.NewKey(ResourceAttendance, "date", date)
}

func EmployeeAttendanceKey(employeeID string) querycache.Key {
	return querycache.NewKey(ResourceAttendance, "employee", employeeID)
}

func LeaveKey() querycache.Key { return querycache.NewKey(ResourceLeave, "list") }

func EmployeeLeaveKey(employeeID string) querycache.Key {
	return querycache.NewKey(ResourceLeave, "employee", employeeID)
}

func LeaveBalanceKey() querycache.Key { return querycache.NewKey(ResourceLeave, "balance") }

func PayrollKey() querycache.Key { return querycache.NewKey(ResourcePayroll, "list") }

func EmployeePayrollKey(employeeID string) querycache.Key {
	return querycache.NewKey(ResourcePayroll, "employee", employeeID)
}

func PayrollPeriodKey(p payroll.Period) querycache.Key {
	p = p.Normalize()
	return querycache.NewKey(ResourcePayroll, "period", p.Year, p.Month)
}

func RecentReportsKey() querycache.Key { return querycache.NewKey(ResourceReports, "recent") }

func ReportSchedulesKey() querycache.Key { return querycache.NewKey(ResourceReports, "scheduled") }

func DashboardStatsKey() querycache.Key { return querycache.NewKey(ResourceDashboard, "stats") }

func DepartmentsKey() querycache.Key { return querycache.NewKey(ResourceDashboard, "departments") }

func CompanyKey() querycache.Key { return querycache.NewKey(ResourceSettings, "company") }

func RolesKey() querycache.Key { return querycache.NewKey(ResourceSettings, "roles") }
