package attendance

import (
	"strings"

	"hrmportal/internal/platform/validation"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusHalfDay = "half-day"
	StatusLate    = "late"
)

var statuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusLate}

type Record struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	CheckIn      string `json:"checkIn,omitempty"`
	CheckOut     string `json:"checkOut,omitempty"`
}

type MarkInput struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	CheckIn    string `json:"checkIn,omitempty"`
	CheckOut   string `json:"checkOut,omitempty"`
}

func (in MarkInput) Validate() error {
	v := validation.New()
	v.Required("employeeId", in.EmployeeID, "is required")
	validateMark(v, in.Date, in.Status, in.CheckIn, in.CheckOut)
	return v.Err()
}

// BulkInput marks every active employee for one day.
type BulkInput struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
}

func (in BulkInput) Validate() error {
	v := validation.New()
	validateMark(v, in.Date, in.Status, in.CheckIn, in.CheckOut)
	return v.Err()
}

type UpdateInput struct {
	Status   string `json:"status,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
}

func (in UpdateInput) Validate() error {
	v := validation.New()
	v.Enum("status", in.Status, statuses, "must be one of present, absent, half-day, late")
	validateClock(v, in.CheckIn, in.CheckOut)
	return v.Err()
}

func (in UpdateInput) Apply(r *Record) {
	if s := strings.ToLower(strings.TrimSpace(in.Status)); s != "" {
		r.Status = s
	}
	if in.CheckIn != "" {
		r.CheckIn = in.CheckIn
	}
	if in.CheckOut != "" {
		r.CheckOut = in.CheckOut
	}
}

func validateMark(v *validation.Validator, date, status, checkIn, checkOut string) {
	v.Required("date", date, "is required")
	if date != "" {
		v.Date("date", date)
	}
	v.Required("status", status, "is required")
	v.Enum("status", status, statuses, "must be one of present, absent, half-day, late")
	validateClock(v, checkIn, checkOut)
}

// validateClock accepts HH:MM wall clock values.
func validateClock(v *validation.Validator, checkIn, checkOut string) {
	in, inOK := parseClock(checkIn)
	out, outOK := parseClock(checkOut)
	if checkIn != "" && !inOK {
		v.Add("checkIn", "must be HH:MM")
	}
	if checkOut != "" && !outOK {
		v.Add("checkOut", "must be HH:MM")
	}
	if inOK && outOK && out < in {
		v.Add("checkOut", "must be after checkIn")
	}
}

func parseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}
	h := int(value[0]-'0')*10 + int(value[1]-'0')
	m := int(value[3]-'0')*10 + int(value[4]-'0')
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, false
		}
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
