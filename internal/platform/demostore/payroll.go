package demostore

import (
	"fmt"
	"strconv"

	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/payroll"
)

func (s *Store) ListPayroll() []payroll.Record {
	return s.filterPayroll(func(*payroll.Record) bool { return true })
}

func (s *Store) PayrollByEmployee(employeeID string) []payroll.Record {
	return s.filterPayroll(func(r *payroll.Record) bool { return r.EmployeeID == employeeID })
}

func (s *Store) PayrollByPeriod(p payroll.Period) ([]payroll.Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.Normalize()
	return s.filterPayroll(func(r *payroll.Record) bool { return r.Month == p.Month && r.Year == p.Year }), nil
}

func (s *Store) PayrollRecord(id string) (payroll.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec := s.payrollLocked(id); rec != nil {
		return *rec, nil
	}
	return payroll.Record{}, payroll.ErrRecordNotFound
}

func (s *Store) filterPayroll(keep func(*payroll.Record) bool) []payroll.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []payroll.Record{}
	for i := len(s.payroll) - 1; i >= 0; i-- {
		if keep(s.payroll[i]) {
			out = append(out, *s.payroll[i])
		}
	}
	return out
}

// ProcessPayroll creates a processed record for every active employee with a
// salary who has none for the period yet. A period already fully processed
// reports ErrAlreadyProcessed.
func (s *Store) ProcessPayroll(p payroll.Period) (payroll.ProcessResult, error) {
	if err := p.Validate(); err != nil {
		return payroll.ProcessResult{}, err
	}
	p = p.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	result := payroll.ProcessResult{Period: p, Records: []payroll.Record{}}
	eligible := 0
	for _, id := range s.empOrder {
		emp := s.employees[id]
		if emp.Status != employees.StatusActive || emp.Salary == nil {
			continue
		}
		eligible++
		if s.periodRecordLocked(id, p) != nil {
			continue
		}
		rec := s.newPayrollLocked(emp, p, payroll.StatusProcessed)
		result.Records = append(result.Records, *rec)
	}
	if eligible > 0 && len(result.Records) == 0 {
		return payroll.ProcessResult{}, payroll.ErrAlreadyProcessed
	}
	result.Processed = len(result.Records)
	return result, nil
}

func (s *Store) newPayrollLocked(emp *employees.Employee, p payroll.Period, status string) *payroll.Record {
	var c payroll.Components
	if emp.Salary != nil {
		c = payroll.Split(*emp.Salary)
	}
	rec := &payroll.Record{
		ID:           newID(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Month:        p.Month,
		Year:         p.Year,
		Basic:        c.Basic,
		HRA:          c.HRA,
		Allowances:   c.Allowances,
		Deductions:   c.Deductions,
		NetSalary:    payroll.NetSalary(c),
		Status:       status,
	}
	s.payroll = append(s.payroll, rec)
	return rec
}

// AttachPayslip stores an uploaded payslip against the employee's record for
// the period, creating a pending record when payroll has not run yet.
func (s *Store) AttachPayslip(employeeID string, p payroll.Period, file File) (payroll.Record, error) {
	if err := p.Validate(); err != nil {
		return payroll.Record{}, err
	}
	if int64(len(file.Data)) > payroll.MaxPayslipBytes {
		return payroll.Record{}, payroll.ErrPayslipTooLarge
	}
	p = p.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[employeeID]
	if !ok {
		return payroll.Record{}, ErrNotFound
	}
	rec := s.periodRecordLocked(employeeID, p)
	if rec == nil {
		rec = s.newPayrollLocked(emp, p, payroll.StatusPending)
	}
	s.payslips[rec.ID] = file
	rec.PayslipURL = "/api/payroll/" + rec.ID + "/download"
	return *rec, nil
}

// Payslip returns the uploaded payslip of a record, or renders one.
func (s *Store) Payslip(id string) (File, error) {
	s.mu.RLock()
	rec := s.payrollLocked(id)
	if rec == nil {
		s.mu.RUnlock()
		return File{}, payroll.ErrRecordNotFound
	}
	if file, ok := s.payslips[id]; ok {
		s.mu.RUnlock()
		return file, nil
	}
	copyRec := *rec
	company := s.company
	s.mu.RUnlock()

	data, err := payroll.RenderPayslip(payroll.PayslipHeader{
		CompanyName: company.Name,
		Address:     company.Address,
		Email:       company.Email,
	}, copyRec)
	if err != nil {
		return File{}, fmt.Errorf("render payslip: %w", err)
	}
	return File{
		Name:        fmt.Sprintf("payslip-%s-%s.pdf", copyRec.EmployeeID, payroll.Period{Month: copyRec.Month, Year: copyRec.Year}),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// MarkPaid flags a processed record as paid once its payslip went out.
func (s *Store) MarkPaid(id string) (payroll.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.payrollLocked(id)
	if rec == nil {
		return payroll.Record{}, payroll.ErrRecordNotFound
	}
	if rec.Status == payroll.StatusProcessed {
		rec.Status = payroll.StatusPaid
	}
	return *rec, nil
}

func (s *Store) payrollLocked(id string) *payroll.Record {
	for _, rec := range s.payroll {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

func (s *Store) periodRecordLocked(employeeID string, p payroll.Period) *payroll.Record {
	for _, rec := range s.payroll {
		if rec.EmployeeID == employeeID && rec.Month == p.Month && rec.Year == p.Year {
			return rec
		}
	}
	return nil
}

func periodOf(month int, year int) payroll.Period {
	return payroll.Period{Month: strconv.Itoa(month), Year: strconv.Itoa(year)}
}
