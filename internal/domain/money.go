package domain

import (
	"fmt"
	"math"
	"strings"
)

// currencyExponents maps ISO-4217 codes to their canonical number of
// decimal places. Only currencies the platform actually prices in are
// listed; unknown codes are rejected at construction.
var currencyExponents = map[string]int{
	"PEN": 2,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"BRL": 2,
	"MXN": 2,
	"COP": 2,
	"CLP": 0,
	"JPY": 0,
}

// Money is an immutable monetary amount held in minor units (cents for
// two-decimal currencies) alongside its ISO-4217 code. Storing minor
// units as int64 keeps arithmetic exact; rounding only happens when a
// value is derived from a decimal figure, and then rounds half-to-even
// at the currency's canonical precision.
type Money struct {
	units    int64
	currency string
}

// NewMoney builds a Money from minor units. Amounts must be non-negative
// and the currency must be a known ISO-4217 code.
func NewMoney(units int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := currencyExponents[currency]; !ok {
		return Money{}, NewValidationError("currency", fmt.Sprintf("unknown currency code %q", currency))
	}
	if units < 0 {
		return Money{}, NewValidationError("amount", "money amount cannot be negative")
	}
	return Money{units: units, currency: currency}, nil
}

// MoneyFromFloat builds a Money from a decimal amount, rounding
// half-to-even at the currency's canonical precision.
func MoneyFromFloat(amount float64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	exp, ok := currencyExponents[currency]
	if !ok {
		return Money{}, NewValidationError("currency", fmt.Sprintf("unknown currency code %q", currency))
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, NewValidationError("amount", "money amount must be a finite number")
	}
	scaled := math.RoundToEven(amount * math.Pow10(exp))
	if scaled > math.MaxInt64 || scaled < math.MinInt64 {
		return Money{}, NewValidationError("amount", "money amount out of range")
	}
	return NewMoney(int64(scaled), currency)
}

// ZeroMoney returns the zero amount in the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(0, currency)
}

// Units returns the amount in minor units.
func (m Money) Units() int64 { return m.units }

// Currency returns the ISO-4217 code.
func (m Money) Currency() string { return m.currency }

// Float returns the amount as a decimal number. Display only.
func (m Money) Float() float64 {
	return float64(m.units) / math.Pow10(currencyExponents[m.currency])
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.units == 0 }

// Add returns m + other, failing on currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.units+other.units, m.currency)
}

// Sub returns m - other. It fails on currency mismatch, and with a
// negative-result violation instead of flooring at zero.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.units > m.units {
		return Money{}, NewInvariantError(RuleNegativeResult,
			"resulting money amount cannot be negative")
	}
	return NewMoney(m.units-other.units, m.currency)
}

// MulInt returns m scaled by a non-negative integer factor.
func (m Money) MulInt(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, NewInvariantError(RuleNegativeResult,
			"resulting money amount cannot be negative")
	}
	return NewMoney(m.units*factor, m.currency)
}

// MulFloat returns m scaled by a decimal factor, rounded half-to-even
// at the currency's canonical precision.
func (m Money) MulFloat(factor float64) (Money, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Money{}, NewValidationError("factor", "scale factor must be a finite number")
	}
	scaled := math.RoundToEven(float64(m.units) * factor)
	if scaled < 0 {
		return Money{}, NewInvariantError(RuleNegativeResult,
			"resulting money amount cannot be negative")
	}
	if scaled > math.MaxInt64 {
		return Money{}, NewValidationError("amount", "money amount out of range")
	}
	return NewMoney(int64(scaled), m.currency)
}

// Cmp compares two amounts of the same currency: -1, 0 or +1.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.units < other.units:
		return -1, nil
	case m.units > other.units:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equals reports value equality including currency.
func (m Money) Equals(other Money) bool {
	return m.units == other.units && m.currency == other.currency
}

func (m Money) String() string {
	exp := currencyExponents[m.currency]
	if exp == 0 {
		return fmt.Sprintf("%s %d", m.currency, m.units)
	}
	pow := int64(math.Pow10(exp))
	return fmt.Sprintf("%s %d.%0*d", m.currency, m.units/pow, exp, m.units%pow)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return NewInvariantError(RuleCurrencyMismatch,
			fmt.Sprintf("currency mismatch: %s vs %s", m.currency, other.currency))
	}
	return nil
}
