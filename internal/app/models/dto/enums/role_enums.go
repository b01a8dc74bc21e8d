package enums

// StaffRole is the role claim carried by staff tokens.
type StaffRole string

const (
	RoleAdmin     StaffRole = "ADMIN"
	RolePrincipal StaffRole = "PRINCIPAL"
	RoleClerk     StaffRole = "CLERK"
	RoleTeacher   StaffRole = "TEACHER"
)

// SettingsEditors may change school settings and class routines.
var SettingsEditors = []StaffRole{RoleAdmin, RolePrincipal}

// AdmissionEditors may admit and reassign students.
var AdmissionEditors = []StaffRole{RoleAdmin, RolePrincipal, RoleClerk}

// Strings converts roles for middleware that compares claim strings.
func Strings(roles []StaffRole) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
