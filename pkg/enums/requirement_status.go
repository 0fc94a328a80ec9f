package enums

import "fmt"

// RequirementStatus maps to the requirement_status_enum enum in Postgres.
type RequirementStatus string

const (
	RequirementStatusOpen      RequirementStatus = "open"
	RequirementStatusFulfilled RequirementStatus = "fulfilled"
	RequirementStatusExpired   RequirementStatus = "expired"
)

var validRequirementStatuses = []RequirementStatus{
	RequirementStatusOpen,
	RequirementStatusFulfilled,
	RequirementStatusExpired,
}

// String implements fmt.Stringer.
func (r RequirementStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequirementStatus.
func (r RequirementStatus) IsValid() bool {
	for _, candidate := range validRequirementStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRequirementStatus converts raw input into a RequirementStatus.
func ParseRequirementStatus(value string) (RequirementStatus, error) {
	for _, candidate := range validRequirementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid requirement status %q", value)
}
