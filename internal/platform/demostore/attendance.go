package demostore

import (
	"sort"
	"strings"

	"hrmportal/internal/domain/attendance"
	"hrmportal/internal/domain/employees"
)

// ListAttendance returns the records of one day, or every record when date
// is empty.
func (s *Store) ListAttendance(date string) []attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []attendance.Record{}
	for _, rec := range s.attendance {
		if date == "" || rec.Date == date {
			out = append(out, *rec)
		}
	}
	sortAttendance(out)
	return out
}

func (s *Store) AttendanceByEmployee(employeeID string) []attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []attendance.Record{}
	for _, rec := range s.attendance {
		if rec.EmployeeID == employeeID {
			out = append(out, *rec)
		}
	}
	sortAttendance(out)
	return out
}

// MarkAttendance creates or replaces the record of one employee for one day.
func (s *Store) MarkAttendance(in attendance.MarkInput) (attendance.Record, error) {
	if err := in.Validate(); err != nil {
		return attendance.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[in.EmployeeID]
	if !ok {
		return attendance.Record{}, ErrNotFound
	}
	return s.markLocked(emp, in.Date, in.Status, in.CheckIn, in.CheckOut), nil
}

// MarkBulk marks every active employee for one day.
func (s *Store) MarkBulk(in attendance.BulkInput) ([]attendance.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []attendance.Record{}
	for _, id := range s.empOrder {
		emp := s.employees[id]
		if emp.Status != employees.StatusActive {
			continue
		}
		out = append(out, s.markLocked(emp, in.Date, in.Status, in.CheckIn, in.CheckOut))
	}
	return out, nil
}

func (s *Store) markLocked(emp *employees.Employee, date, status, checkIn, checkOut string) attendance.Record {
	status = strings.ToLower(strings.TrimSpace(status))
	for _, rec := range s.attendance {
		if rec.EmployeeID == emp.ID && rec.Date == date {
			rec.Status = status
			rec.CheckIn = checkIn
			rec.CheckOut = checkOut
			return *rec
		}
	}
	rec := &attendance.Record{
		ID:           newID(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Date:         date,
		Status:       status,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
	}
	s.attendance = append(s.attendance, rec)
	return *rec
}

func (s *Store) UpdateAttendance(id string, in attendance.UpdateInput) (attendance.Record, error) {
	if err := in.Validate(); err != nil {
		return attendance.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.attendance {
		if rec.ID == id {
			in.Apply(rec)
			return *rec, nil
		}
	}
	return attendance.Record{}, ErrNotFound
}

func sortAttendance(recs []attendance.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Date == recs[j].Date {
			return recs[i].EmployeeName < recs[j].EmployeeName
		}
		return recs[i].Date > recs[j].Date
	})
}
