package validators

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
)

// Money and quantities travel as strings so no precision is lost to float64.
func validateDecimalString(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return true
	}
	value, err := decimal.NewFromString(raw)
	return err == nil && value.IsPositive()
}

func validateUUIDOrEmpty(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return true
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

// ParseDecimal converts a validated body field. field names the JSON key in
// the error details.
func ParseDecimal(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decimal").
			WithDetails(map[string]string{field: "must be a positive decimal"})
	}
	return value, nil
}

// ParseOptionalDecimal returns nil for an empty value.
func ParseOptionalDecimal(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := ParseDecimal(field, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
