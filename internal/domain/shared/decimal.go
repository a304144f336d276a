package shared

import "github.com/shopspring/decimal"

// DecimalPlaces is the scale of every stored amount and quantity
const DecimalPlaces int32 = 4

// FitsScale reports whether d can be stored without rounding
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(DecimalPlaces))
}

// CheckScale returns a validation error carrying code when d has more
// decimal places than the store keeps.
func CheckScale(code, field string, d decimal.Decimal) error {
	if FitsScale(d) {
		return nil
	}
	return NewDomainError(code, field+" cannot have more than 4 decimal places")
}
