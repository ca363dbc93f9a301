package pricing

import (
	"fmt"

	"convoyage-platform/internal/models"

	"github.com/shopspring/decimal"
)

// VAT is the fixed French VAT rate applied to every price on the
// platform. All HT/TTC conversion goes through this file so that a
// single rounding rule (2 decimal places, half away from zero) is
// applied everywhere a price is stored or displayed.
var (
	vatMultiplier = decimal.RequireFromString("1.20")
)

// ParsePrice parses a decimal price string. Malformed input is rejected
// with ErrParse rather than coerced to zero.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("pricing.ParsePrice(%q): %w", s, models.ErrParse)
	}
	return d, nil
}

// TTCOf converts a pre-tax amount to its taxed equivalent, rounded to
// two decimal places.
func TTCOf(ht decimal.Decimal) decimal.Decimal {
	return ht.Mul(vatMultiplier).Round(2)
}

// HTOf converts a taxed amount back to its pre-tax equivalent, rounded
// to two decimal places.
func HTOf(ttc decimal.Decimal) decimal.Decimal {
	return ttc.Div(vatMultiplier).Round(2)
}

// ToTTC converts an HT decimal string to a TTC string with exactly two
// decimal places.
func ToTTC(priceHT string) (string, error) {
	ht, err := ParsePrice(priceHT)
	if err != nil {
		return "", err
	}
	return TTCOf(ht).StringFixed(2), nil
}

// ToHT converts a TTC decimal string back to an HT string with exactly
// two decimal places. Round-tripping through ToTTC then ToHT recovers
// the original value at 2-decimal precision.
func ToHT(priceTTC string) (string, error) {
	ttc, err := ParsePrice(priceTTC)
	if err != nil {
		return "", err
	}
	return HTOf(ttc).StringFixed(2), nil
}
