package enums

import "fmt"

// QualityStatus maps to the quality_status_enum enum in Postgres.
type QualityStatus string

const (
	QualityStatusUnchecked QualityStatus = "unchecked"
	QualityStatusPending   QualityStatus = "pending"
	QualityStatusApproved  QualityStatus = "approved"
	QualityStatusRejected  QualityStatus = "rejected"
)

var validQualityStatuses = []QualityStatus{
	QualityStatusUnchecked,
	QualityStatusPending,
	QualityStatusApproved,
	QualityStatusRejected,
}

// String implements fmt.Stringer.
func (q QualityStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QualityStatus.
func (q QualityStatus) IsValid() bool {
	for _, candidate := range validQualityStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQualityStatus converts raw input into a QualityStatus.
func ParseQualityStatus(value string) (QualityStatus, error) {
	for _, candidate := range validQualityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quality status %q", value)
}

// AcceptsResult reports whether an inspection result may still be recorded.
func (q QualityStatus) AcceptsResult() bool {
	return q == QualityStatusUnchecked || q == QualityStatusPending
}
