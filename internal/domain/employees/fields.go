package employees

import "hrmportal/internal/domain/auth"

// FilterFields strips compensation data the viewer may not see. Admin and hr
// see everything; everyone else only sees their own salary.
func FilterFields(emp *Employee, viewer auth.Role, isSelf bool) {
	if viewer == auth.RoleAdmin || viewer == auth.RoleHR {
		return
	}
	if isSelf {
		return
	}
	emp.Salary = nil
	emp.Address = ""
}
