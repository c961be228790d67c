package demostore

import (
	"strings"

	"hrmportal/internal/domain/leave"
)

func (s *Store) ListLeave() []leave.Request {
	return s.filterLeave(func(*leave.Request) bool { return true })
}

func (s *Store) LeaveByEmployee(employeeID string) []leave.Request {
	return s.filterLeave(func(r *leave.Request) bool { return r.EmployeeID == employeeID })
}

func (s *Store) filterLeave(keep func(*leave.Request) bool) []leave.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []leave.Request{}
	for i := len(s.leaves) - 1; i >= 0; i-- {
		if keep(s.leaves[i]) {
			out = append(out, *s.leaves[i])
		}
	}
	return out
}

func (s *Store) Balance(employeeID string) (leave.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[employeeID]
	if !ok {
		return leave.Balance{}, ErrNotFound
	}
	return b, nil
}

// ApplyLeave files a pending request. Paid leave types must fit in the
// remaining balance; it is only deducted on approval.
func (s *Store) ApplyLeave(employeeID string, in leave.ApplyInput) (leave.Request, error) {
	period, err := in.Validate()
	if err != nil {
		return leave.Request{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[employeeID]
	if !ok {
		return leave.Request{}, ErrNotFound
	}
	leaveType := strings.ToLower(strings.TrimSpace(in.Type))
	remaining := s.balances[employeeID]
	remaining.Deduct(leaveType, period.Days)
	if remaining.Casual < 0 || remaining.Sick < 0 || remaining.Vacation < 0 {
		return leave.Request{}, ErrInsufficientBalance
	}

	req := &leave.Request{
		ID:           newID(),
		EmployeeID:   employeeID,
		EmployeeName: emp.Name,
		Type:         leaveType,
		StartDate:    period.Start.Format("2006-01-02"),
		EndDate:      period.End.Format("2006-01-02"),
		Reason:       strings.TrimSpace(in.Reason),
		Status:       leave.StatusPending,
		AppliedOn:    s.today(),
	}
	s.leaves = append(s.leaves, req)
	return *req, nil
}

// SetLeaveStatus approves or rejects a pending request.
func (s *Store) SetLeaveStatus(id string, in leave.StatusInput) (leave.Request, error) {
	if err := in.Validate(); err != nil {
		return leave.Request{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.leaveLocked(id)
	if req == nil {
		return leave.Request{}, ErrNotFound
	}
	if err := leave.Decide(req, in); err != nil {
		return leave.Request{}, err
	}
	if req.Status == leave.StatusApproved {
		period, err := leave.ApplyInput{Type: req.Type, StartDate: req.StartDate, EndDate: req.EndDate, Reason: req.Reason}.Validate()
		if err == nil {
			b := s.balances[req.EmployeeID]
			b.Deduct(req.Type, period.Days)
			s.balances[req.EmployeeID] = b
		}
	}
	return *req, nil
}

func (s *Store) CancelLeave(id, employeeID string) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.leaveLocked(id)
	if req == nil {
		return leave.Request{}, ErrNotFound
	}
	if err := leave.Cancel(req, employeeID); err != nil {
		return leave.Request{}, err
	}
	return *req, nil
}

func (s *Store) leaveLocked(id string) *leave.Request {
	for _, req := range s.leaves {
		if req.ID == id {
			return req
		}
	}
	return nil
}
