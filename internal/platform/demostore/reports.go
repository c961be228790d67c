package demostore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/domain/reports"
)

const recentReports = 10

// GenerateReport renders the requested report and keeps it for download.
func (s *Store) GenerateReport(in reports.GenerateInput) (reports.Report, error) {
	if err := in.Validate(); err != nil {
		return reports.Report{}, err
	}
	in = in.Normalized()

	table := s.reportTable(in)
	data, contentType, ext, err := reports.Render(table, in.Format)
	if err != nil {
		return reports.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rep := &reports.Report{
		ID:         newID(),
		ReportType: in.ReportType,
		Format:     in.Format,
		Month:      in.Month,
		Year:       in.Year,
		Department: in.Department,
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}
	rep.DownloadURL = "/api/reports/" + rep.ID + "/download"
	s.reports = append(s.reports, rep)
	s.reportFiles[rep.ID] = File{
		Name:        fmt.Sprintf("%s-report-%s.%s", in.ReportType, rep.ID[:8], ext),
		ContentType: contentType,
		Data:        data,
	}
	return *rep, nil
}

// RecentReports lists the latest generated reports, newest first.
func (s *Store) RecentReports() []reports.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []reports.Report{}
	for i := len(s.reports) - 1; i >= 0 && len(out) < recentReports; i-- {
		out = append(out, *s.reports[i])
	}
	return out
}

func (s *Store) ReportFile(id string) (File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.reportFiles[id]
	if !ok {
		return File{}, ErrNotFound
	}
	return file, nil
}

func (s *Store) ScheduleReport(in reports.ScheduleInput) (reports.Schedule, error) {
	if err := in.Validate(); err != nil {
		return reports.Schedule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sched := &reports.Schedule{
		ID:         newID(),
		ReportType: strings.ToLower(strings.TrimSpace(in.ReportType)),
		Frequency:  strings.ToLower(strings.TrimSpace(in.Frequency)),
		Day:        in.Day,
		DayOfWeek:  in.DayOfWeek,
		Recipients: strings.Join(reports.Recipients(in.Recipients), ", "),
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}
	s.schedules = append(s.schedules, sched)
	return *sched, nil
}

func (s *Store) Schedules() []reports.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]reports.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, *sched)
	}
	return out
}

// ClaimDueSchedules returns the schedules due on now's date that have not
// run that day yet, and records them as run.
func (s *Store) ClaimDueSchedules(now time.Time) []reports.Schedule {
	date := now.Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []reports.Schedule
	for _, sched := range s.schedules {
		if s.lastRun[sched.ID] == date || !sched.DueOn(now) {
			continue
		}
		s.lastRun[sched.ID] = date
		due = append(due, *sched)
	}
	return due
}

// Stats summarises today for the dashboard.
func (s *Store) Stats() reports.Stats {
	today := s.today()
	month, year := s.now().Month(), s.now().Year()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st reports.Stats
	st.TotalEmployees = len(s.employees)
	for _, emp := range s.employees {
		if emp.Status == employees.StatusActive {
			st.ActiveEmployees++
		}
	}
	for _, rec := range s.attendance {
		if rec.Date == today && rec.Status != attendance.StatusAbsent {
			st.PresentToday++
		}
	}
	for _, req := range s.leaves {
		switch {
		case req.Status == leave.StatusPending:
			st.PendingLeaves++
		case req.Status == leave.StatusApproved && req.StartDate <= today && today <= req.EndDate:
			st.OnLeaveToday++
		}
	}
	p := periodOf(int(month), year)
	for _, rec := range s.payroll {
		if rec.Month == p.Month && rec.Year == p.Year && rec.Status != payroll.StatusPending {
			st.PayrollProcessed++
		}
	}
	return st
}

func (s *Store) reportTable(in reports.GenerateInput) reports.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title := strings.ToUpper(in.ReportType[:1]) + in.ReportType[1:] + " report"
	if in.Month != "" && in.Year != "" {
		title += " " + payroll.Period{Month: in.Month, Year: in.Year}.String()
	}
	inPeriod := func(date string) bool {
		if in.Year != "" && !strings.HasPrefix(date, in.Year) {
			return false
		}
		if in.Month != "" {
			m, _ := strconv.Atoi(in.Month)
			if len(date) < 7 || date[5:7] != fmt.Sprintf("%02d", m) {
				return false
			}
		}
		return true
	}
	inDept := func(employeeID string) bool {
		if in.Department == "" {
			return true
		}
		emp, ok := s.employees[employeeID]
		return ok && strings.EqualFold(emp.Department, in.Department)
	}

	t := reports.Table{Title: title}
	switch in.ReportType {
	case reports.TypeEmployee:
		t.Columns = []string{"Name", "Email", "Department", "Role", "Status", "Join date"}
		for _, id := range s.empOrder {
			emp := s.employees[id]
			if inDept(id) {
				t.Rows = append(t.Rows, []string{emp.Name, emp.Email, emp.Department, emp.Role, emp.Status, emp.JoinDate})
			}
		}
	case reports.TypeAttendance:
		t.Columns = []string{"Date", "Employee", "Status", "Check in", "Check out"}
		for _, rec := range s.attendance {
			if inPeriod(rec.Date) && inDept(rec.EmployeeID) {
				t.Rows = append(t.Rows, []string{rec.Date, rec.EmployeeName, rec.Status, rec.CheckIn, rec.CheckOut})
			}
		}
	case reports.TypeLeave:
		t.Columns = []string{"Employee", "Type", "From", "To", "Status"}
		for _, req := range s.leaves {
			if inPeriod(req.StartDate) && inDept(req.EmployeeID) {
				t.Rows = append(t.Rows, []string{req.EmployeeName, req.Type, req.StartDate, req.EndDate, req.Status})
			}
		}
	case reports.TypePayroll:
		t.Columns = []string{"Employee", "Period", "Basic", "HRA", "Allowances", "Deductions", "Net", "Status"}
		for _, rec := range s.payroll {
			if in.Month != "" && rec.Month != strconv.Itoa(atoi(in.Month)) {
				continue
			}
			if in.Year != "" && rec.Year != in.Year {
				continue
			}
			if !inDept(rec.EmployeeID) {
				continue
			}
			t.Rows = append(t.Rows, []string{
				rec.EmployeeName, payroll.Period{Month: rec.Month, Year: rec.Year}.String(),
				money(rec.Basic), money(rec.HRA), money(rec.Allowances), money(rec.Deductions), money(rec.NetSalary),
				rec.Status,
			})
		}
	}
	return t
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func atoi(v string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}
