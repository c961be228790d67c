package demostore

import (
	"sort"
	"strings"

	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/reports"
)

func (s *Store) ListEmployees() []employees.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]employees.Employee, 0, len(s.empOrder))
	for _, id := range s.empOrder {
		out = append(out, *s.employees[id])
	}
	return out
}

func (s *Store) Employee(id string) (employees.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return employees.Employee{}, ErrNotFound
	}
	return *emp, nil
}

func (s *Store) CreateEmployee(in employees.Input) (employees.Employee, error) {
	if err := in.ValidateCreate(); err != nil {
		return employees.Employee{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEmployeeLocked(newID(), in)
}

func (s *Store) createEmployeeLocked(id string, in employees.Input) (employees.Employee, error) {
	for _, existing := range s.employees {
		if strings.EqualFold(existing.Email, strings.TrimSpace(in.Email)) {
			return employees.Employee{}, ErrConflict
		}
	}
	emp := &employees.Employee{ID: id, Status: employees.StatusActive, JoinDate: s.today()}
	in.Apply(emp)
	s.employees[id] = emp
	s.empOrder = append(s.empOrder, id)
	s.balances[id] = leave.DefaultBalance()
	return *emp, nil
}

func (s *Store) UpdateEmployee(id string, in employees.Input) (employees.Employee, error) {
	if err := in.ValidateUpdate(); err != nil {
		return employees.Employee{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[id]
	if !ok {
		return employees.Employee{}, ErrNotFound
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		for otherID, other := range s.employees {
			if otherID != id && strings.EqualFold(other.Email, email) {
				return employees.Employee{}, ErrConflict
			}
		}
	}
	in.Apply(emp)
	s.renameLocked(id, emp.Name)
	return *emp, nil
}

func (s *Store) DeleteEmployee(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[id]; !ok {
		return ErrNotFound
	}
	delete(s.employees, id)
	delete(s.balances, id)
	for i, candidate := range s.empOrder {
		if candidate == id {
			s.empOrder = append(s.empOrder[:i], s.empOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SetAvatar records ref as the avatar of employee id.
func (s *Store) SetAvatar(id, ref string) (employees.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[id]
	if !ok {
		return employees.Employee{}, ErrNotFound
	}
	emp.Avatar = ref
	return *emp, nil
}

// Departments counts employees per department, largest first.
func (s *Store) Departments() []reports.DepartmentCount {
	s.mu.RLock()
	counts := map[string]int{}
	for _, emp := range s.employees {
		dept := emp.Department
		if dept == "" {
			dept = "Unassigned"
		}
		counts[dept]++
	}
	s.mu.RUnlock()

	out := make([]reports.DepartmentCount, 0, len(counts))
	for dept, n := range counts {
		out = append(out, reports.DepartmentCount{Department: dept, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Department < out[j].Department
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// renameLocked keeps denormalised employee names in step.
func (s *Store) renameLocked(id, name string) {
	for _, rec := range s.attendance {
		if rec.EmployeeID == id {
			rec.EmployeeName = name
		}
	}
	for _, req := range s.leaves {
		if req.EmployeeID == id {
			req.EmployeeName = name
		}
	}
	for _, rec := range s.payroll {
		if rec.EmployeeID == id {
			rec.EmployeeName = name
		}
	}
}
