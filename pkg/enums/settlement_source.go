package enums

import "fmt"

// SettlementSourceType names the aggregate a ledger transaction settles. Together with the source id it is the idempotence key.
type SettlementSourceType string

const (
	SettlementSourceListing          SettlementSourceType = "listing"
	SettlementSourceRequirementOffer SettlementSourceType = "requirement_offer"
	SettlementSourceVendorOrder      SettlementSourceType = "vendor_order"
)

var validSettlementSourceTypes = []SettlementSourceType{
	SettlementSourceListing,
	SettlementSourceRequirementOffer,
	SettlementSourceVendorOrder,
}

// String implements fmt.Stringer.
func (s SettlementSourceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SettlementSourceType.
func (s SettlementSourceType) IsValid() bool {
	for _, candidate := range validSettlementSourceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSettlementSourceType converts raw input into a SettlementSourceType.
func ParseSettlementSourceType(value string) (SettlementSourceType, error) {
	for _, candidate := range validSettlementSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement source type %q", value)
}
