package leave

import "time"

const (
	TypeCasual   = "casual"
	TypeSick     = "sick"
	TypeVacation = "vacation"
	TypeOther    = "other"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var Types = []string{TypeCasual, TypeSick, TypeVacation, TypeOther}

type Request struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Type         string `json:"type"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	AppliedOn    string `json:"appliedOn"`
	Comment      string `json:"comment,omitempty"`
}

// Balance is the remaining allowance in days.
type Balance struct {
	Casual   float64 `json:"casual"`
	Sick     float64 `json:"sick"`
	Vacation float64 `json:"vacation"`
	Total    float64 `json:"total"`
}

// Deduct takes days off the bucket for leaveType. "other" leave is unpaid
// and has no bucket.
func (b *Balance) Deduct(leaveType string, days float64) {
	switch leaveType {
	case TypeCasual:
		b.Casual -= days
	case TypeSick:
		b.Sick -= days
	case TypeVacation:
		b.Vacation -= days
	default:
		return
	}
	b.Total = b.Casual + b.Sick + b.Vacation
}

func DefaultBalance() Balance {
	b := Balance{Casual: 12, Sick: 10, Vacation: 15}
	b.Total = b.Casual + b.Sick + b.Vacation
	return b
}

type ApplyInput struct {
	Type      string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

type StatusInput struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// Period is a validated, parsed leave range.
type Period struct {
	Start time.Time
	End   time.Time
	Days  float64
}
