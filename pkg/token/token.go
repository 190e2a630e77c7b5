// Package token handles amounts of the payment token. Amounts move through
// the system as integer strings denominated in the smallest indivisible unit
// (octas for APT); human-readable amounts are a display convenience derived
// with one conversion factor shared by every call site.
package token

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the octa conversion exponent for APT: 1 APT = 10^8 octas.
const DefaultDecimals = 8

// ValidateUnits checks that s is a non-negative integer amount in the
// smallest unit.
func ValidateUnits(s string) error {
	if s == "" {
		return fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("amount %q is negative", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("amount %q is not an integer number of smallest units", s)
	}
	return nil
}

// UnitsToHuman converts an integer smallest-unit amount to its display
// amount by dividing by 10^decimals.
func UnitsToHuman(units string, decimals int) (string, error) {
	if err := ValidateUnits(units); err != nil {
		return "", err
	}
	d, err := decimal.NewFromString(units)
	if err != nil {
		return "", fmt.Errorf("parse amount: %w", err)
	}
	return d.Shift(int32(-decimals)).String(), nil
}

// HumanToUnits converts a display amount to the integer smallest-unit amount.
// It fails if the amount has more fractional digits than the token supports.
func HumanToUnits(human string, decimals int) (string, error) {
	d, err := decimal.NewFromString(human)
	if err != nil {
		return "", fmt.Errorf("parse amount: %w", err)
	}
	if d.IsNegative() {
		return "", fmt.Errorf("amount %q is negative", human)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return "", fmt.Errorf("amount %q has more than %d decimal places", human, decimals)
	}
	return shifted.String(), nil
}
