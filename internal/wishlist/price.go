// Package wishlist implements the gift registry ledger: price parsing,
// contribution amounts, basket reconciliation and the reservation workflow.
package wishlist

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceNoise   = regexp.MustCompile(`[^0-9.,'\-]`)
	prefixRun    = regexp.MustCompile(`^[^\d-]+`)
	suffixRun    = regexp.MustCompile(`[^\d.,\s]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// CurrencyParts is the text surrounding the number in a price string.
type CurrencyParts struct {
	Prefix string
	Suffix string
}

// ParsePrice extracts the numeric amount from a free-text price such as
// "CHF 250", "120,50 €" or "1'234.50". When both ',' and '.' occur, the one
// appearing last is taken as the decimal separator.
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	digits := priceNoise.ReplaceAllString(text, "")
	digits = strings.ReplaceAll(digits, "'", "")
	if digits == "" {
		return 0, false
	}

	comma := strings.LastIndex(digits, ",")
	dot := strings.LastIndex(digits, ".")
	normalized := digits

	switch {
	case comma > -1 && dot > -1:
		if comma > dot {
			normalized = strings.ReplaceAll(normalized, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", ".")
		} else {
			normalized = strings.ReplaceAll(normalized, ",", "")
		}
	case comma > -1:
		normalized = strings.ReplaceAll(normalized, ",", ".")
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

// ExtractCurrencyParts returns the leading and trailing non-numeric text of a
// price. A token found at both ends is only reported as the prefix.
func ExtractCurrencyParts(text string) CurrencyParts {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CurrencyParts{}
	}

	prefix := strings.TrimSpace(prefixRun.FindString(trimmed))
	suffix := strings.TrimSpace(suffixRun.FindString(trimmed))
	if prefix != "" && suffix == prefix {
		suffix = ""
	}
	return CurrencyParts{Prefix: prefix, Suffix: suffix}
}
