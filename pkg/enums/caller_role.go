package enums

import "fmt"

// CallerRole is the closed set of caller classes recognised by the portal.
type CallerRole string

const (
	CallerRolePublic  CallerRole = "public"
	CallerRoleClub    CallerRole = "club"
	CallerRoleCouncil CallerRole = "cc"
)

var validCallerRoles = []CallerRole{
	CallerRolePublic,
	CallerRoleClub,
	CallerRoleCouncil,
}

// String implements fmt.Stringer.
func (r CallerRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CallerRole.
func (r CallerRole) IsValid() bool {
	for _, candidate := range validCallerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCallerRole converts raw input into a CallerRole.
func ParseCallerRole(value string) (CallerRole, error) {
	for _, candidate := range validCallerRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid caller role %q", value)
}
