// Package core defines the money, date and category model shared by the
// storage, statistics and rate layers.
//
// All amounts are carried as int64 minor units (cents). Conversion to a
// displayed decimal happens only at the presentation boundary.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in minor units of some currency. The currency itself
// travels separately (Expense.SelectedCurrency / HomeCurrency).
type Money struct {
	Cents int64 `json:"cents"`
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Units returns the decimal value for display purposes only. Calculations
// stay in cents to avoid floating-point drift.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// Convert applies a multiplicative exchange factor to an amount in minor
// units and rounds half-up back to minor units.
func Convert(cents int64, factor float64) int64 {
	return int64(math.Floor(float64(cents)*factor + 0.5))
}

// Round2 rounds to two decimal places, half-up. Used for percentage display
// values; independent per-group rounding means percentages are not forced to
// sum to exactly 100.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ParseDecimalToCents converts a decimal string to cents. Accepts dot and
// comma separators, performs half-up rounding on the third decimal place,
// rejects signs and non-digits.
//
//	ParseDecimalToCents("12.34") -> 1234
//	ParseDecimalToCents("12,345") -> 1235 (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
