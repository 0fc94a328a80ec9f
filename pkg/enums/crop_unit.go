package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CropUnit is the measurement unit a crop batch quantity is recorded in.
type CropUnit string

const (
	CropUnitKilogram CropUnit = "kg"
	CropUnitQuintal  CropUnit = "quintal"
	CropUnitTonne    CropUnit = "tonne"
)

var validCropUnits = []CropUnit{
	CropUnitKilogram,
	CropUnitQuintal,
	CropUnitTonne,
}

// String implements fmt.Stringer.
func (c CropUnit) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CropUnit.
func (c CropUnit) IsValid() bool {
	for _, candidate := range validCropUnits {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCropUnit converts raw input into a CropUnit.
func ParseCropUnit(value string) (CropUnit, error) {
	for _, candidate := range validCropUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid crop unit %q", value)
}

// Kilograms returns how many kilograms one unit holds.
func (c CropUnit) Kilograms() int64 {
	switch c {
	case CropUnitQuintal:
		return 100
	case CropUnitTonne:
		return 1000
	default:
		return 1
	}
}

// Convert expresses quantity, measured in c, in the target unit.
func (c CropUnit) Convert(quantity decimal.Decimal, target CropUnit) decimal.Decimal {
	if c == target {
		return quantity
	}
	kg := quantity.Mul(decimal.NewFromInt(c.Kilograms()))
	return kg.Div(decimal.NewFromInt(target.Kilograms()))
}
