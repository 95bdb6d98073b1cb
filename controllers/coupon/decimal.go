package couponControllers

import "github.com/shopspring/decimal"

// decimalField parses an optional decimal request field; empty means zero.
func decimalField(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
