package auth

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEmployee Role = "employee"
)

const roleCount = 3

// Roles lists every known role in matrix order.
var Roles = [roleCount]Role{RoleAdmin, RoleHR, RoleEmployee}

func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := role.index(); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, value)
	}
	return role, nil
}

func (r Role) Valid() bool {
	_, ok := r.index()
	return ok
}

func (r Role) index() (int, bool) {
	for i, candidate := range Roles {
		if candidate == r {
			return i, true
		}
	}
	return 0, false
}
