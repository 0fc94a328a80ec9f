package enums

import "fmt"

// VendorOrderKind distinguishes equipment rentals from input sales.
type VendorOrderKind string

const (
	VendorOrderKindRental VendorOrderKind = "rental"
	VendorOrderKindSale   VendorOrderKind = "sale"
)

var validVendorOrderKinds = []VendorOrderKind{
	VendorOrderKindRental,
	VendorOrderKindSale,
}

// String implements fmt.Stringer.
func (v VendorOrderKind) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorOrderKind.
func (v VendorOrderKind) IsValid() bool {
	for _, candidate := range validVendorOrderKinds {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorOrderKind converts raw input into a VendorOrderKind.
func ParseVendorOrderKind(value string) (VendorOrderKind, error) {
	for _, candidate := range validVendorOrderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor order kind %q", value)
}
