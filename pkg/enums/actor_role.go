package enums

import "fmt"

// ActorRole is the marketplace role carried in an access token.
type ActorRole string

const (
	ActorRoleFarmer  ActorRole = "farmer"
	ActorRoleBuyer   ActorRole = "buyer"
	ActorRoleVendor  ActorRole = "vendor"
	ActorRoleOfficer ActorRole = "officer"
	ActorRoleAdmin   ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	ActorRoleFarmer,
	ActorRoleBuyer,
	ActorRoleVendor,
	ActorRoleOfficer,
	ActorRoleAdmin,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into a ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}

// CanInspect reports whether the role may decide quality certifications.
func (a ActorRole) CanInspect() bool {
	return a == ActorRoleOfficer || a == ActorRoleAdmin
}
