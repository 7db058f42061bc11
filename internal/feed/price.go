package feed

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidPrice reports whether s is a decimal number.
func ValidPrice(s string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil
}

// ApplyDiscount returns price reduced by pct percent, rounded half-up to two
// places. A blank, malformed or out-of-range (0, 100] discount leaves the
// price text untouched and reports false.
func ApplyDiscount(price, pct string) (string, bool) {
	pct = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(pct), "%"))
	if pct == "" {
		return price, false
	}
	p, err := decimal.NewFromString(pct)
	if err != nil || !p.IsPositive() || p.GreaterThan(hundred) {
		return price, false
	}
	base, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return price, false
	}
	factor := decimal.NewFromInt(1).Sub(p.Div(hundred))
	return base.Mul(factor).Round(2).StringFixed(2), true
}
