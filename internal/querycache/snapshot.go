package querycache

import "time"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Snapshot is a point-in-time copy of one entry. A failed refetch keeps the
// previous Data and reports Status=StatusError with Err set.
type Snapshot struct {
	Key       Key
	Data      any
	HasData   bool
	Status    Status
	Err       error
	FetchedAt time.Time
	Stale     bool
	Fetching  bool
}

// Data returns the snapshot's value as T.
func Data[T any](s Snapshot) (T, bool) {
	var zero T
	if !s.HasData {
		return zero, false
	}
	v, ok := s.Data.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
