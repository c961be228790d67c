package demostore

import (
	"fmt"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/employees"
	"hrmportal/internal/domain/leave"
	"hrmportal/internal/domain/payroll"
	"hrmportal/internal/domain/settings"
)

// DemoCredential is a seeded login.
type DemoCredential struct {
	Email    string
	Password string
	Role     auth.Role
}

var DemoCredentials = []DemoCredential{
	{Email: "admin@example.com", Password: "admin123", Role: auth.RoleAdmin},
	{Email: "hr@example.com", Password: "hr123", Role: auth.RoleHR},
	{Email: "employee@example.com", Password: "employee123", Role: auth.RoleEmployee},
}

type seedEmployee struct {
	id          string
	name        string
	email       string
	department  string
	designation string
	role        string
	salary      float64
	joinDate    string
}

var seedEmployees = []seedEmployee{
	{"1", "Admin User", "admin@example.com", "Management", "Administrator", "admin", 120000, "2020-01-15"},
	{"2", "HR Manager", "hr@example.com", "Human Resources", "HR Manager", "hr", 90000, "2021-03-01"},
	{"3", "John Employee", "employee@example.com", "Engineering", "Software Engineer", "employee", 75000, "2022-06-20"},
	{"4", "Jane Smith", "jane.smith@example.com", "Engineering", "Senior Engineer", "employee", 82000, "2021-09-12"},
	{"5", "Mike Johnson", "mike.johnson@example.com", "Sales", "Account Executive", "employee", 60000, "2023-02-06"},
}

// Seed loads the demo dataset. It is a no-op on a store that already has
// logins.
func (s *Store) Seed() error {
	s.mu.RLock()
	seeded := len(s.accounts) > 0
	s.mu.RUnlock()
	if seeded {
		return nil
	}

	s.mu.Lock()
	s.company = settings.Company{
		Name:    "Acme Corporation",
		Address: "123 Business St, City, Country",
		Email:   "info@acme.com",
		Phone:   "+1 234 567 8900",
		Website: "https://acme.example.com",
	}
	for _, se := range seedEmployees {
		salary := se.salary
		if _, err := s.createEmployeeLocked(se.id, employees.Input{
			Name:        se.name,
			Email:       se.email,
			Phone:       "+1 555 0100",
			Department:  se.department,
			Designation: se.designation,
			Role:        se.role,
			JoinDate:    se.joinDate,
			Salary:      &salary,
		}); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("seed employee %s: %w", se.email, err)
		}
	}
	s.mu.Unlock()

	for i, cred := range DemoCredentials {
		emp := seedEmployees[i]
		user := auth.User{ID: emp.id, Name: emp.name, Email: cred.Email, Role: cred.Role}
		if err := s.AddUser(user, cred.Password); err != nil {
			return fmt.Errorf("seed user %s: %w", cred.Email, err)
		}
	}

	now := s.now()
	today := now.Format("2006-01-02")
	s.mu.Lock()
	for _, se := range seedEmployees[:4] {
		s.markLocked(s.employees[se.id], today, attendance.StatusPresent, "09:00", "")
	}
	s.markLocked(s.employees["5"], today, attendance.StatusLate, "10:15", "")

	prev := now.AddDate(0, -1, 0)
	prevPeriod := periodOf(int(prev.Month()), prev.Year())
	for _, id := range s.empOrder {
		s.newPayrollLocked(s.employees[id], prevPeriod, payroll.StatusPaid)
	}
	s.mu.Unlock()

	next := now.AddDate(0, 0, 7).Format("2006-01-02")
	nextEnd := now.AddDate(0, 0, 9).Format("2006-01-02")
	if _, err := s.ApplyLeave("3", leave.ApplyInput{Type: leave.TypeVacation, StartDate: next, EndDate: nextEnd, Reason: "Family trip"}); err != nil {
		return fmt.Errorf("seed leave: %w", err)
	}
	sick, err := s.ApplyLeave("4", leave.ApplyInput{Type: leave.TypeSick, StartDate: today, EndDate: today, Reason: "Flu"})
	if err != nil {
		return fmt.Errorf("seed leave: %w", err)
	}
	if _, err := s.SetLeaveStatus(sick.ID, leave.StatusInput{Status: leave.StatusApproved}); err != nil {
		return fmt.Errorf("seed leave: %w", err)
	}
	return nil
}
