package auth

import (
	"strings"
	"testing"
)

func TestCapabilityTableComplete(t *testing.T) {
	seen := map[string]struct{}{}
	for _, c := range Capabilities() {
		if c.Module() == "" || c.Action() == "" {
			t.Fatalf("capability %d has no table entry", c)
		}
		if _, ok := seen[c.String()]; ok {
			t.Fatalf("duplicate capability %s", c)
		}
		seen[c.String()] = struct{}{}
	}
	if len(seen) != 17 {
		t.Fatalf("expected 17 capabilities, got %d", len(seen))
	}
}

func TestCanIsTotal(t *testing.T) {
	m := DefaultMatrix()
	for _, role := range Roles {
		for _, c := range Capabilities() {
			// Must not panic and must agree with Allows.
			if m.Can(role, c.Module(), c.Action()) != m.Allows(role, c) {
				t.Fatalf("Can and Allows disagree for %s %s", role, c)
			}
		}
	}

	if m.Can("auditor", ModuleEmployees, ActionView) {
		t.Fatal("unknown role must be denied")
	}
	if m.Can(RoleAdmin, "timesheets", ActionView) {
		t.Fatal("unknown module must be denied")
	}
	if m.Can(RoleAdmin, ModuleLeave, ActionDelete) {
		t.Fatal("action outside the module's set must be denied")
	}
}

func TestDefaultMatrix(t *testing.T) {
	m := DefaultMatrix()
	tests := []struct {
		role   Role
		module Module
		action Action
		want   bool
	}{
		{RoleAdmin, ModuleSettings, ActionEdit, true},
		{RoleAdmin, ModuleEmployees, ActionDelete, true},
		{RoleHR, ModuleEmployees, ActionDelete, false},
		{RoleHR, ModulePayroll, ActionGenerate, true},
		{RoleHR, ModulePayroll, ActionApprove, false},
		{RoleHR, ModuleSettings, ActionView, false},
		{RoleEmployee, ModuleLeave, ActionApply, true},
		{RoleEmployee, ModuleLeave, ActionApprove, false},
		{RoleEmployee, ModuleEmployees, ActionView, false},
		{RoleEmployee, ModuleAttendance, ActionEdit, false},
	}
	for _, tc := range tests {
		if got := m.Can(tc.role, tc.module, tc.action); got != tc.want {
			t.Fatalf("Can(%s, %s, %s) = %v, want %v", tc.role, tc.module, tc.action, got, tc.want)
		}
	}
}

func TestMatrixFromWireDeniesMissingEntries(t *testing.T) {
	m, gaps := MatrixFromWire([]RolePermission{
		{
			Role: RoleHR,
			Permissions: map[Module]map[Action]bool{
				ModuleEmployees: {ActionView: true},
				"timesheets":    {ActionView: true},
			},
		},
	})

	if !m.Can(RoleHR, ModuleEmployees, ActionView) {
		t.Fatal("expected explicit grant to survive")
	}
	if m.Can(RoleHR, ModuleEmployees, ActionCreate) {
		t.Fatal("expected omitted entry to be denied")
	}
	if m.Can(RoleAdmin, ModuleSettings, ActionEdit) {
		t.Fatal("expected omitted role to be denied")
	}

	joined := strings.Join(gaps, "\n")
	for _, want := range []string{"missing role admin", "missing role employee", "hr: missing employees.create", "hr: unknown timesheets.view"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected gap %q in %v", want, gaps)
		}
	}
}

func TestWireRoundTripIsTotal(t *testing.T) {
	original := DefaultMatrix().With(RoleEmployee, CapReportsView, true)
	rebuilt, gaps := MatrixFromWire(original.Wire())
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", gaps)
	}
	if rebuilt != original {
		t.Fatal("expected wire rendering to rebuild the same matrix")
	}
}

func TestMatrixStoreUpdateVisibleImmediately(t *testing.T) {
	store := NewMatrixStore(DefaultMatrix())
	if !store.Can(RoleHR, ModuleLeave, ActionApprove) {
		t.Fatal("expected default hr leave approval")
	}

	updated := store.Load().With(RoleHR, CapLeaveApprove, false)
	if !store.Can(RoleHR, ModuleLeave, ActionApprove) {
		t.Fatal("editing a loaded copy must not leak into the store")
	}

	store.Update(updated)
	if store.Can(RoleHR, ModuleLeave, ActionApprove) {
		t.Fatal("expected update to take effect")
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" HR ")
	if err != nil || role != RoleHR {
		t.Fatalf("expected hr, got %q (%v)", role, err)
	}
	if _, err := ParseRole("manager"); err == nil {
		t.Fatal("expected unknown role error")
	}
}
