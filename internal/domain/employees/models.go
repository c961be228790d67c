package employees

import (
	"strings"

	"hrmportal/internal/platform/validation"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Department  string   `json:"department"`
	Role        string   `json:"role"`
	JoinDate    string   `json:"joinDate"`
	Status      string   `json:"status"`
	Avatar      string   `json:"avatar,omitempty"`
	Salary      *float64 `json:"salary,omitempty"`
	Address     string   `json:"address,omitempty"`
	Designation string   `json:"designation,omitempty"`
}

// Input is the create/update body. Zero fields are left to the server.
type Input struct {
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Department  string   `json:"department,omitempty"`
	Role        string   `json:"role,omitempty"`
	JoinDate    string   `json:"joinDate,omitempty"`
	Status      string   `json:"status,omitempty"`
	Salary      *float64 `json:"salary,omitempty"`
	Address     string   `json:"address,omitempty"`
	Designation string   `json:"designation,omitempty"`
}

// ValidateCreate checks the fields a new record cannot do without.
func (in Input) ValidateCreate() error {
	v := validation.New()
	v.Required("name", in.Name, "is required")
	v.Required("email", in.Email, "is required")
	in.validateCommon(v)
	return v.Err()
}

func (in Input) ValidateUpdate() error {
	v := validation.New()
	in.validateCommon(v)
	return v.Err()
}

func (in Input) validateCommon(v *validation.Validator) {
	if email := strings.TrimSpace(in.Email); email != "" && !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	v.Enum("status", in.Status, []string{StatusActive, StatusInactive}, "must be active or inactive")
	if in.JoinDate != "" {
		v.Date("joinDate", in.JoinDate)
	}
	if in.Salary != nil && *in.Salary < 0 {
		v.Add("salary", "must not be negative")
	}
}

// Apply copies the non-zero fields of in onto e.
func (in Input) Apply(e *Employee) {
	set := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = strings.TrimSpace(src)
		}
	}
	set(&e.Name, in.Name)
	set(&e.Email, in.Email)
	set(&e.Phone, in.Phone)
	set(&e.Department, in.Department)
	set(&e.Role, in.Role)
	set(&e.JoinDate, in.JoinDate)
	set(&e.Status, strings.ToLower(in.Status))
	set(&e.Address, in.Address)
	set(&e.Designation, in.Designation)
	if in.Salary != nil {
		salary := *in.Salary
		e.Salary = &salary
	}
}
