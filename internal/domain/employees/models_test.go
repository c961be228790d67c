package employees

import (
	"errors"
	"testing"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/platform/validation"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		ok    bool
	}{
		{"valid", Input{Name: "Jane", Email: "jane@example.com", Status: "active", JoinDate: "2024-01-02"}, true},
		{"missing name", Input{Email: "jane@example.com"}, false},
		{"bad email", Input{Name: "Jane", Email: "jane"}, false},
		{"bad status", Input{Name: "Jane", Email: "jane@example.com", Status: "retired"}, false},
		{"bad date", Input{Name: "Jane", Email: "jane@example.com", JoinDate: "02/01/2024"}, false},
	}
	for _, tc := range tests {
		err := tc.input.ValidateCreate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, validation.ErrInvalid) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestApplyKeepsUnsetFields(t *testing.T) {
	emp := Employee{ID: "e1", Name: "Jane", Email: "jane@example.com", Department: "Ops", Status: StatusActive}
	Input{Department: "Finance", Status: "INACTIVE"}.Apply(&emp)

	if emp.Name != "Jane" || emp.Department != "Finance" || emp.Status != StatusInactive {
		t.Fatalf("unexpected employee after apply: %+v", emp)
	}
}

func TestFilterFields(t *testing.T) {
	salary := 5000.0
	base := Employee{ID: "e1", Salary: &salary, Address: "1 Main St"}

	emp := base
	FilterFields(&emp, auth.RoleHR, false)
	if emp.Salary == nil {
		t.Fatal("hr should see salary")
	}

	emp = base
	FilterFields(&emp, auth.RoleEmployee, true)
	if emp.Salary == nil {
		t.Fatal("employee should see own salary")
	}

	emp = base
	FilterFields(&emp, auth.RoleEmployee, false)
	if emp.Salary != nil || emp.Address != "" {
		t.Fatal("expected colleague salary hidden")
	}
}
