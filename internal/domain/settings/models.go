package settings

import (
	"encoding/json"
	"strings"

	"hrmportal/internal/domain/auth"
	"hrmportal/internal/platform/validation"
)

type Company struct {
	Name    string `json:"name"`
	Logo    string `json:"logo,omitempty"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
}

func (c Company) Validate() error {
	v := validation.New()
	v.Required("name", c.Name, "is required")
	v.Required("email", c.Email, "is required")
	if email := strings.TrimSpace(c.Email); email != "" && !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	return v.Err()
}

// RolesPayload is the body of PUT /settings/roles.
type RolesPayload struct {
	Roles []auth.RolePermission `json:"roles"`
}

// decodeRoles accepts either a bare array or a {"roles": [...]} object.
func decodeRoles(raw json.RawMessage) ([]auth.RolePermission, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var out []auth.RolePermission
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapped RolesPayload
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Roles, nil
}
