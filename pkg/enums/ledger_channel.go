package enums

import "fmt"

// LedgerChannel records which path produced a transaction.
type LedgerChannel string

const (
	LedgerChannelMarketplace LedgerChannel = "marketplace"
	LedgerChannelMSP         LedgerChannel = "msp"
	LedgerChannelRequirement LedgerChannel = "requirement"
	LedgerChannelVendorOrder LedgerChannel = "vendor_order"
)

var validLedgerChannels = []LedgerChannel{
	LedgerChannelMarketplace,
	LedgerChannelMSP,
	LedgerChannelRequirement,
	LedgerChannelVendorOrder,
}

// String implements fmt.Stringer.
func (l LedgerChannel) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerChannel.
func (l LedgerChannel) IsValid() bool {
	for _, candidate := range validLedgerChannels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLedgerChannel converts raw input into a LedgerChannel.
func ParseLedgerChannel(value string) (LedgerChannel, error) {
	for _, candidate := range validLedgerChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger channel %q", value)
}

// LedgerChannelFor maps a sale channel onto its ledger channel.
func LedgerChannelFor(channel SaleChannel) LedgerChannel {
	switch channel {
	case SaleChannelMarketplace:
		return LedgerChannelMarketplace
	case SaleChannelMSP:
		return LedgerChannelMSP
	case SaleChannelRequirement:
		return LedgerChannelRequirement
	}
	return ""
}
