// Package audit records who changed permissions, company settings and
// payroll, and when.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ActionRolesUpdate    = "settings.roles.update"
	ActionCompanyUpdate  = "settings.company.update"
	ActionPayrollProcess = "payroll.process"
	ActionPayslipEmail   = "payroll.payslip.email"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorID    string
}

func (f Filter) Match(e Event) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	return f.ActorID == "" || e.ActorID == f.ActorID
}

// Store is an append-only event log, newest first on read.
type Store interface {
	Record(ctx context.Context, e Event) error
	List(ctx context.Context, f Filter, limit, offset int) ([]Event, error)
}

// NewEvent builds an event with before/after snapshots marshalled as JSON.
func NewEvent(actorID, action, entityType, entityID string, before, after any) (Event, error) {
	e := Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	var err error
	if e.Before, err = marshal(before); err != nil {
		return Event{}, err
	}
	if e.After, err = marshal(after); err != nil {
		return Event{}, err
	}
	return e, nil
}

func marshal(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Memory keeps the latest events in process and echoes each to the logger.
// The demo server uses it when no database is configured.
type Memory struct {
	mu     sync.RWMutex
	events []Event
	max    int
	logger *slog.Logger
}

func NewMemory(max int, logger *slog.Logger) *Memory {
	if max <= 0 {
		max = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{max: max, logger: logger}
}

func (m *Memory) Record(_ context.Context, e Event) error {
	m.mu.Lock()
	m.events = append(m.events, e)
	if len(m.events) > m.max {
		m.events = m.events[len(m.events)-m.max:]
	}
	m.mu.Unlock()
	m.logger.Info("audit", "action", e.Action, "actor", e.ActorID, "entity", strings.TrimSpace(e.EntityType+" "+e.EntityID), "requestId", e.RequestID)
	return nil
}

func (m *Memory) List(_ context.Context, f Filter, limit, offset int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Event{}
	skipped := 0
	for i := len(m.events) - 1; i >= 0; i-- {
		if !f.Match(m.events[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.events[i])
	}
	return out, nil
}
