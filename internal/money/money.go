// Package money provides USD display formatting and strict parsing of
// user-entered amounts.
//
// This package is the input layer in front of the calculator: amounts are
// validated and parsed here, so the session's setters can assume well-formed
// numeric input and never see a parse failure.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates user input that is not an unsigned decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// amountPattern accepts unsigned decimal numbers only: digits, an optional
// single decimal point, optional trailing digits. No exponents, no thousands
// separators, no leading sign.
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]*)?$`)

// FormatUSD renders an amount as USD display text with a currency symbol and
// thousands grouping, rounded to exactly two decimal places.
//
// The output is built from the decimal's own digits, so amounts keep their
// exact value at any magnitude rather than passing through float64.
//
// Example: 1234.5 → "$1,234.50".
func FormatUSD(amount decimal.Decimal) string {
	whole, frac, _ := strings.Cut(amount.Round(2).StringFixed(2), ".")
	return "$" + groupThousands(whole) + "." + frac
}

// groupThousands inserts comma separators into a string of integer digits.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}

// ParseAmount parses user-entered amount text into a decimal.
//
// Formatted USD text is accepted back: a leading currency symbol and grouping
// separators are stripped before validation, so the display produced by
// FormatUSD round-trips. Anything else that is not a plain unsigned decimal
// number is rejected with ErrInvalidAmount.
func ParseAmount(text string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(text)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")

	if !amountPattern.MatchString(raw) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}

	// A bare trailing point ("100.") is valid input but not a valid decimal literal.
	raw = strings.TrimSuffix(raw, ".")

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}

	return amount, nil
}
