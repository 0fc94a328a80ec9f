package enums

import "fmt"

// SaleChannel identifies which of the mutually exclusive channels a listing routes to.
type SaleChannel string

const (
	SaleChannelMarketplace SaleChannel = "marketplace"
	SaleChannelMSP         SaleChannel = "msp"
	SaleChannelRequirement SaleChannel = "requirement"
)

var validSaleChannels = []SaleChannel{
	SaleChannelMarketplace,
	SaleChannelMSP,
	SaleChannelRequirement,
}

// String implements fmt.Stringer.
func (s SaleChannel) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleChannel.
func (s SaleChannel) IsValid() bool {
	for _, candidate := range validSaleChannels {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleChannel converts raw input into a SaleChannel.
func ParseSaleChannel(value string) (SaleChannel, error) {
	for _, candidate := range validSaleChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale channel %q", value)
}
