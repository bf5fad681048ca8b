package enums

import "fmt"

// AdminRole is the role carried in back-office access tokens.
type AdminRole string

const (
	AdminRoleOperator AdminRole = "operator"
	AdminRoleOwner    AdminRole = "owner"
)

var validAdminRoles = []AdminRole{
	AdminRoleOperator,
	AdminRoleOwner,
}

// String implements fmt.Stringer.
func (a AdminRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdminRole.
func (a AdminRole) IsValid() bool {
	for _, candidate := range validAdminRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdminRole converts raw input into an AdminRole.
func ParseAdminRole(value string) (AdminRole, error) {
	role := AdminRole(value)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid admin role %q", value)
	}
	return role, nil
}
