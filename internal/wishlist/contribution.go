package wishlist

import (
	"math"
	"strconv"
)

// Amount is a display-ready contribution value.
type Amount struct {
	Label   string  `json:"label"`
	Numeric float64 `json:"numeric"`
	Prefix  string  `json:"-"`
	Suffix  string  `json:"-"`
}

// Contribution computes the share of price covered by selectedParts out of
// totalParts. An unparsable or non-positive price yields an empty Amount;
// amounts are advisory and never block a reservation.
func Contribution(price string, totalParts, selectedParts int) Amount {
	total, ok := ParsePrice(price)
	if !ok || total <= 0 {
		return Amount{}
	}

	perPart := total / float64(max(1, totalParts))
	numeric := math.Round(perPart*float64(max(1, selectedParts))*100) / 100
	cur := ExtractCurrencyParts(price)

	return Amount{
		Label:   formatLabel(numeric, cur),
		Numeric: numeric,
		Prefix:  cur.Prefix,
		Suffix:  cur.Suffix,
	}
}

// PricePerPart renders "<amount> pro Anteil" for gifts split into several
// parts. Single-part gifts get an empty string.
func PricePerPart(price string, parts int) string {
	if price == "" || parts <= 1 {
		return ""
	}
	a := Contribution(price, parts, 1)
	if a.Label == "" {
		return ""
	}
	return a.Label + " pro Anteil"
}

// SumAmounts totals a batch. The currency prefix or suffix is kept only when
// every amount agrees on it.
func SumAmounts(amounts []Amount) Amount {
	if len(amounts) == 0 {
		return Amount{}
	}

	var total float64
	cur := CurrencyParts{Prefix: amounts[0].Prefix, Suffix: amounts[0].Suffix}
	for _, a := range amounts {
		total += a.Numeric
		if a.Prefix != cur.Prefix {
			cur.Prefix = ""
		}
		if a.Suffix != cur.Suffix {
			cur.Suffix = ""
		}
	}
	if total <= 0 {
		return Amount{}
	}

	total = math.Round(total*100) / 100
	return Amount{
		Label:   formatLabel(total, cur),
		Numeric: total,
		Prefix:  cur.Prefix,
		Suffix:  cur.Suffix,
	}
}

func formatLabel(value float64, cur CurrencyParts) string {
	var formatted string
	if value == math.Trunc(value) {
		formatted = strconv.FormatFloat(value, 'f', 0, 64)
	} else {
		formatted = strconv.FormatFloat(value, 'f', 2, 64)
	}

	switch {
	case cur.Prefix != "":
		return cur.Prefix + " " + formatted
	case cur.Suffix != "":
		return formatted + " " + cur.Suffix
	default:
		return formatted
	}
}
