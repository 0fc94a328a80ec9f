package enums

import "fmt"

// CertificationStatus tracks an inspection request.
type CertificationStatus string

const (
	CertificationStatusPending  CertificationStatus = "pending"
	CertificationStatusApproved CertificationStatus = "approved"
	CertificationStatusRejected CertificationStatus = "rejected"
)

var validCertificationStatuses = []CertificationStatus{
	CertificationStatusPending,
	CertificationStatusApproved,
	CertificationStatusRejected,
}

// String implements fmt.Stringer.
func (c CertificationStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CertificationStatus.
func (c CertificationStatus) IsValid() bool {
	for _, candidate := range validCertificationStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCertificationStatus converts raw input into a CertificationStatus.
func ParseCertificationStatus(value string) (CertificationStatus, error) {
	for _, candidate := range validCertificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid certification status %q", value)
}
