// Package currency converts billing currencies and amounts into the form the
// direct-debit gateway accepts.
package currency

import (
	"fmt"
	"math"
	"strings"

	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/shopspring/decimal"
)

// ISO 4217 minor-unit exponents of the currencies the gateway settles in.
var exponents = map[domain.GatewayCurrency]int32{
	domain.GatewayCurrencyUSD: 2,
	domain.GatewayCurrencyAUD: 2,
	domain.GatewayCurrencyCAD: 2,
	domain.GatewayCurrencyDKK: 2,
	domain.GatewayCurrencyEUR: 2,
	domain.GatewayCurrencyGBP: 2,
	domain.GatewayCurrencyNZD: 2,
	domain.GatewayCurrencySEK: 2,
}

// The gateway stores amounts as a signed 32-bit integer.
var maxMinorUnits = decimal.NewFromInt(math.MaxInt32)

func Supported() []domain.GatewayCurrency {
	return []domain.GatewayCurrency{
		domain.GatewayCurrencyUSD,
		domain.GatewayCurrencyAUD,
		domain.GatewayCurrencyCAD,
		domain.GatewayCurrencyDKK,
		domain.GatewayCurrencyEUR,
		domain.GatewayCurrencyGBP,
		domain.GatewayCurrencyNZD,
		domain.GatewayCurrencySEK,
	}
}

func ToGatewayCurrency(code string) (domain.GatewayCurrency, error) {
	c := domain.GatewayCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := exponents[c]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, code)
	}
	return c, nil
}

func FromGatewayCurrency(c domain.GatewayCurrency) (string, error) {
	normalized := domain.GatewayCurrency(strings.ToUpper(strings.TrimSpace(string(c))))
	if _, ok := exponents[normalized]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, string(c))
	}
	return string(normalized), nil
}

// ToMinorUnits converts a major-unit amount to gateway minor units. Amounts
// with more fractional digits than the currency allows are rejected rather
// than rounded.
func ToMinorUnits(amount decimal.Decimal, code string) (int64, error) {
	c, err := ToGatewayCurrency(code)
	if err != nil {
		return 0, err
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", domain.ErrAmountNotRepresentable, amount.String())
	}

	minor := amount.Shift(exponents[c])
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s %s has more than %d decimal places",
			domain.ErrAmountNotRepresentable, amount.String(), c, exponents[c])
	}
	if minor.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("%w: %s %s exceeds gateway limit", domain.ErrAmountNotRepresentable, amount.String(), c)
	}
	return minor.IntPart(), nil
}

func FromMinorUnits(minor int64, c domain.GatewayCurrency) (decimal.Decimal, error) {
	code, err := FromGatewayCurrency(c)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.New(minor, -exponents[domain.GatewayCurrency(code)]), nil
}
