package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrmportal/internal/domain/audit"
	"hrmportal/internal/domain/auth"
	"hrmportal/internal/domain/settings"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}
	return pool
}

func TestSettingsStoreRoundTrip(t *testing.T) {
	store := NewSettingsStore(testPool(t))
	ctx := context.Background()

	company := settings.Company{Name: "Acme", Email: "info@acme.com", Address: "1 Main St"}
	if err := store.SaveCompany(ctx, company); err != nil {
		t.Fatalf("save company: %v", err)
	}
	got, ok, err := store.LoadCompany(ctx)
	if err != nil || !ok {
		t.Fatalf("load company: %v %v", ok, err)
	}
	if got.Name != "Acme" || got.Email != "info@acme.com" {
		t.Fatalf("unexpected company %+v", got)
	}

	m := auth.DefaultMatrix().With(auth.RoleHR, auth.CapSettingsView, true)
	if err := store.SaveRoles(ctx, m.Wire()); err != nil {
		t.Fatalf("save roles: %v", err)
	}
	roles, ok, err := store.LoadRoles(ctx)
	if err != nil || !ok {
		t.Fatalf("load roles: %v %v", ok, err)
	}
	loaded, gaps := auth.MatrixFromWire(roles)
	if len(gaps) != 0 {
		t.Fatalf("unexpected gaps %v", gaps)
	}
	if loaded != m {
		t.Fatal("role matrix did not survive the round trip")
	}
}

func TestJobRunStore(t *testing.T) {
	pool := testPool(t)
	runs := NewJobRunStore(pool)
	ctx := context.Background()

	id, err := runs.StartRun(ctx, "scheduled_report")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := runs.FinishRun(ctx, id, "completed", []byte(`{"reportId":"r1"}`)); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	var status string
	if err := pool.QueryRow(ctx, "SELECT status FROM job_runs WHERE id = $1", id).Scan(&status); err != nil {
		t.Fatalf("query run: %v", err)
	}
	if status != "completed" {
		t.Fatalf("expected completed, got %q", status)
	}
}

func TestAuditStore(t *testing.T) {
	pool := testPool(t)
	store := NewAuditStore(pool)
	ctx := context.Background()

	actor := "audit-test-" + time.Now().Format("150405.000000")
	e, err := audit.NewEvent(actor, audit.ActionRolesUpdate, "roles", "", nil, map[string]bool{"ok": true})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := store.Record(ctx, e); err != nil {
		t.Fatalf("record: %v", err)
	}
	events, err := store.List(ctx, audit.Filter{ActorID: actor}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].Action != audit.ActionRolesUpdate || len(events[0].Before) != 0 {
		t.Fatalf("unexpected events %+v", events)
	}
}
