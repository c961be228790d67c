package leave

import (
	"errors"
	"strings"
	"time"

	"hrmportal/internal/platform/validation"
)

var (
	ErrNotPending = errors.New("leave request is not pending")
	ErrNotOwner   = errors.New("leave request belongs to another employee")
)

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// Validate rejects an application before it is sent: known type, non-empty
// reason, and startDate on or before endDate.
func (in ApplyInput) Validate() (Period, error) {
	v := validation.New()
	v.Required("leaveType", in.Type, "is required")
	v.Enum("leaveType", in.Type, Types, "must be one of casual, sick, vacation, other")
	v.Required("reason", in.Reason, "is required")
	v.Required("startDate", in.StartDate, "is required")
	v.Required("endDate", in.EndDate, "is required")

	var start, end time.Time
	if in.StartDate != "" {
		start, _ = v.Date("startDate", in.StartDate)
	}
	if in.EndDate != "" {
		end, _ = v.Date("endDate", in.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if err := v.Err(); err != nil {
		return Period{}, err
	}

	days, err := CalculateDays(start, end)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end, Days: days}, nil
}

func (in StatusInput) Validate() error {
	v := validation.New()
	v.Required("status", in.Status, "is required")
	v.Enum("status", in.Status, []string{StatusApproved, StatusRejected}, "must be approved or rejected")
	return v.Err()
}

// Decide moves a pending request to approved or rejected.
func Decide(req *Request, in StatusInput) error {
	if req.Status != StatusPending {
		return ErrNotPending
	}
	req.Status = strings.ToLower(strings.TrimSpace(in.Status))
	req.Comment = strings.TrimSpace(in.Comment)
	return nil
}

// Cancel withdraws a pending request on behalf of its owner.
func Cancel(req *Request, employeeID string) error {
	if req.EmployeeID != employeeID {
		return ErrNotOwner
	}
	if req.Status != StatusPending {
		return ErrNotPending
	}
	req.Status = StatusCancelled
	return nil
}
