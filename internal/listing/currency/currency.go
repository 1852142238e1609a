// Package currency formats and parses the pt-BR monetary and numeric inputs
// used by the listing forms and the price filters.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Digits strips every rune that is not a decimal digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasDigits reports whether the input carries any digit at all.
func HasDigits(s string) bool {
	return Digits(s) != ""
}

// ParseCents reads the digits of a masked input as a cent amount:
// "950,00" -> 950, "1.234,56" -> 1234.56, "" -> 0.
func ParseCents(s string) float64 {
	d := Digits(s)
	if d == "" {
		return 0
	}
	v, err := strconv.ParseFloat(d, 64)
	if err != nil {
		return 0
	}
	return v / 100
}

// Format renders v with pt-BR grouping and exactly two decimals: 1234.5 -> "1.234,50".
func Format(v float64) string {
	cents := int64(math.Round(v * 100))
	neg := cents < 0
	if neg {
		cents = -cents
	}
	intPart := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// FormatInput is the live mask applied while the user types a money or area value.
func FormatInput(s string) string {
	return Format(ParseCents(s))
}

// FormatBRL renders a currency display value, e.g. "R$ 1.234,50".
func FormatBRL(v float64) string {
	return "R$ " + Format(v)
}

// FormatPhone masks a Brazilian phone number: "(DD)", "(DD) NNNNN", "(DD) NNNNN-NNNN".
func FormatPhone(s string) string {
	d := Digits(s)
	switch {
	case len(d) <= 2:
		return "(" + d + ")"
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:]
	default:
		end := len(d)
		if end > 11 {
			end = 11
		}
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:end]
	}
}
