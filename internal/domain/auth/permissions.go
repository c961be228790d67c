package auth

import (
	"sort"
	"strings"
)

type Module string

type Action string

const (
	ModuleEmployees  Module = "employees"
	ModuleAttendance Module = "attendance"
	ModuleLeave      Module = "leave"
	ModulePayroll    Module = "payroll"
	ModuleReports    Module = "reports"
	ModuleSettings   Module = "settings"
)

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionMark     Action = "mark"
	ActionApply    Action = "apply"
	ActionApprove  Action = "approve"
	ActionGenerate Action = "generate"
	ActionExport   Action = "export"
)

// Capability is one (module, action) pair of the closed permission set.
type Capability int

const (
	CapEmployeesView Capability = iota
	CapEmployeesCreate
	CapEmployeesEdit
	CapEmployeesDelete
	CapAttendanceView
	CapAttendanceMark
	CapAttendanceEdit
	CapLeaveView
	CapLeaveApply
	CapLeaveApprove
	CapPayrollView
	CapPayrollGenerate
	CapPayrollApprove
	CapReportsView
	CapReportsExport
	CapSettingsView
	CapSettingsEdit

	capabilityCount
)

var capabilityTable = [capabilityCount]struct {
	module Module
	action Action
}{
	CapEmployeesView:   {ModuleEmployees, ActionView},
	CapEmployeesCreate: {ModuleEmployees, ActionCreate},
	CapEmployeesEdit:   {ModuleEmployees, ActionEdit},
	CapEmployeesDelete: {ModuleEmployees, ActionDelete},
	CapAttendanceView:  {ModuleAttendance, ActionView},
	CapAttendanceMark:  {ModuleAttendance, ActionMark},
	CapAttendanceEdit:  {ModuleAttendance, ActionEdit},
	CapLeaveView:       {ModuleLeave, ActionView},
	CapLeaveApply:      {ModuleLeave, ActionApply},
	CapLeaveApprove:    {ModuleLeave, ActionApprove},
	CapPayrollView:     {ModulePayroll, ActionView},
	CapPayrollGenerate: {ModulePayroll, ActionGenerate},
	CapPayrollApprove:  {ModulePayroll, ActionApprove},
	CapReportsView:     {ModuleReports, ActionView},
	CapReportsExport:   {ModuleReports, ActionExport},
	CapSettingsView:    {ModuleSettings, ActionView},
	CapSettingsEdit:    {ModuleSettings, ActionEdit},
}

func (c Capability) Module() Module {
	if c < 0 || c >= capabilityCount {
		return ""
	}
	return capabilityTable[c].module
}

func (c Capability) Action() Action {
	if c < 0 || c >= capabilityCount {
		return ""
	}
	return capabilityTable[c].action
}

func (c Capability) String() string {
	if c < 0 || c >= capabilityCount {
		return "unknown"
	}
	return string(c.Module()) + "." + string(c.Action())
}

// Capabilities returns the full enumerated set in table order.
func Capabilities() []Capability {
	out := make([]Capability, 0, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		out = append(out, c)
	}
	return out
}

func CapabilityFor(module Module, action Action) (Capability, bool) {
	m := Module(strings.ToLower(strings.TrimSpace(string(module))))
	a := Action(strings.ToLower(strings.TrimSpace(string(action))))
	for c := Capability(0); c < capabilityCount; c++ {
		if capabilityTable[c].module == m && capabilityTable[c].action == a {
			return c, true
		}
	}
	return 0, false
}

// Matrix is the total role x capability table. The zero value denies
// everything.
type Matrix struct {
	grants [roleCount][capabilityCount]bool
}

// Can never fails: tuples outside the enumerated set are denied.
func (m Matrix) Can(role Role, module Module, action Action) bool {
	c, ok := CapabilityFor(module, action)
	if !ok {
		return false
	}
	return m.Allows(role, c)
}

func (m Matrix) Allows(role Role, c Capability) bool {
	r, ok := role.index()
	if !ok || c < 0 || c >= capabilityCount {
		return false
	}
	return m.grants[r][c]
}

// With returns a copy of m with a single grant changed.
func (m Matrix) With(role Role, c Capability, allowed bool) Matrix {
	r, ok := role.index()
	if !ok || c < 0 || c >= capabilityCount {
		return m
	}
	m.grants[r][c] = allowed
	return m
}

// Granted lists the capabilities a role holds.
func (m Matrix) Granted(role Role) []Capability {
	r, ok := role.index()
	if !ok {
		return nil
	}
	var out []Capability
	for c := Capability(0); c < capabilityCount; c++ {
		if m.grants[r][c] {
			out = append(out, c)
		}
	}
	return out
}

func DefaultMatrix() Matrix {
	var m Matrix
	for _, c := range Capabilities() {
		m = m.With(RoleAdmin, c, true)
	}
	for _, c := range []Capability{
		CapEmployeesView, CapEmployeesCreate, CapEmployeesEdit,
		CapAttendanceView, CapAttendanceMark, CapAttendanceEdit,
		CapLeaveView, CapLeaveApply, CapLeaveApprove,
		CapPayrollView, CapPayrollGenerate,
		CapReportsView, CapReportsExport,
	} {
		m = m.With(RoleHR, c, true)
	}
	for _, c := range []Capability{
		CapAttendanceView, CapAttendanceMark,
		CapLeaveView, CapLeaveApply,
		CapPayrollView,
	} {
		m = m.With(RoleEmployee, c, true)
	}
	return m
}

// RolePermission is the settings/roles wire shape.
type RolePermission struct {
	Role        Role                       `json:"role"`
	Permissions map[Module]map[Action]bool `json:"permissions"`
}

// Wire renders every role with every enumerated entry present.
func (m Matrix) Wire() []RolePermission {
	out := make([]RolePermission, 0, roleCount)
	for _, role := range Roles {
		perms := map[Module]map[Action]bool{}
		for _, c := range Capabilities() {
			actions, ok := perms[c.Module()]
			if !ok {
				actions = map[Action]bool{}
				perms[c.Module()] = actions
			}
			actions[c.Action()] = m.Allows(role, c)
		}
		out = append(out, RolePermission{Role: role, Permissions: perms})
	}
	return out
}

// MatrixFromWire builds a matrix from a server payload. Entries the payload
// omits are denied; the second return value names them (and anything the
// payload carried that is not part of the enumerated set) for logging.
func MatrixFromWire(entries []RolePermission) (Matrix, []string) {
	var m Matrix
	var gaps []string
	seen := map[Role]bool{}

	for _, entry := range entries {
		role, err := ParseRole(string(entry.Role))
		if err != nil {
			gaps = append(gaps, "unknown role "+string(entry.Role))
			continue
		}
		seen[role] = true
		for module, actions := range entry.Permissions {
			for action, allowed := range actions {
				c, ok := CapabilityFor(module, action)
				if !ok {
					gaps = append(gaps, string(role)+": unknown "+string(module)+"."+string(action))
					continue
				}
				m = m.With(role, c, allowed)
			}
		}
		for _, c := range Capabilities() {
			actions := lookupModule(entry.Permissions, c.Module())
			if _, ok := lookupAction(actions, c.Action()); !ok {
				gaps = append(gaps, string(role)+": missing "+c.String())
			}
		}
	}
	for _, role := range Roles {
		if !seen[role] {
			gaps = append(gaps, "missing role "+string(role))
		}
	}
	sort.Strings(gaps)
	return m, gaps
}

func lookupModule(perms map[Module]map[Action]bool, module Module) map[Action]bool {
	for candidate, actions := range perms {
		if Module(strings.ToLower(string(candidate))) == module {
			return actions
		}
	}
	return nil
}

func lookupAction(actions map[Action]bool, action Action) (bool, bool) {
	for candidate, allowed := range actions {
		if Action(strings.ToLower(string(candidate))) == action {
			return allowed, true
		}
	}
	return false, false
}
