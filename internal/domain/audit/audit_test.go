package audit

import (
	"context"
	"testing"

	"hrmportal/internal/platform/logging"
)

func TestMemoryListNewestFirst(t *testing.T) {
	m := NewMemory(3, logging.Discard())
	ctx := context.Background()
	for _, action := range []string{ActionRolesUpdate, ActionCompanyUpdate, ActionPayrollProcess, ActionRolesUpdate} {
		e, err := NewEvent("1", action, "settings", "", nil, map[string]string{"a": "b"})
		if err != nil {
			t.Fatalf("new event: %v", err)
		}
		if err := m.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, _ := m.List(ctx, Filter{}, 0, 0)
	if len(all) != 3 {
		t.Fatalf("expected the oldest event dropped, got %d events", len(all))
	}
	if all[0].Action != ActionRolesUpdate || all[2].Action != ActionCompanyUpdate {
		t.Fatalf("unexpected order: %s .. %s", all[0].Action, all[2].Action)
	}

	roles, _ := m.List(ctx, Filter{Action: ActionRolesUpdate}, 0, 0)
	if len(roles) != 1 {
		t.Fatalf("expected one roles event, got %d", len(roles))
	}

	page, _ := m.List(ctx, Filter{}, 1, 1)
	if len(page) != 1 || page[0].Action != ActionPayrollProcess {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestNewEventSnapshots(t *testing.T) {
	e, err := NewEvent("1", ActionCompanyUpdate, "company", "", map[string]string{"name": "Old"}, map[string]string{"name": "New"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if string(e.Before) != `{"name":"Old"}` || string(e.After) != `{"name":"New"}` {
		t.Fatalf("unexpected snapshots %s %s", e.Before, e.After)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatal("expected id and timestamp")
	}
}
