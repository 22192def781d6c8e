package wishlist

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PartCount is a requested number of parts. It decodes from a JSON number or
// numeric string and is normalized to max(1, round(n)); anything unreadable
// counts as a single part.
type PartCount int

// UnmarshalJSON implements json.Unmarshaler.
func (p *PartCount) UnmarshalJSON(data []byte) error {
	*p = PartCount(NormalizeParts(partsFromJSON(data)))
	return nil
}

func partsFromJSON(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0
	}
	return n
}

// NormalizeParts rounds n and lifts it to at least one part.
func NormalizeParts(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 1
	}
	r := math.Round(n)
	if r < 1 {
		return 1
	}
	if r > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(r)
}

// LineItem asks for parts of one gift.
type LineItem struct {
	GiftID string    `json:"giftId"`
	Parts  PartCount `json:"parts"`
}

// Submission is a contributor's reservation request for one or more gifts.
type Submission struct {
	Name    string
	Email   string
	Message string
	Items   []LineItem

	// EmailOptional accepts an empty e-mail address, as sent by the older
	// single-gift form. A non-empty address is still validated.
	EmailOptional bool
}

// request is one aggregated gift of a submission.
type request struct {
	giftID string
	parts  int
}

// aggregate sums parts per gift id, keeping first-seen order.
func aggregate(items []LineItem) ([]request, error) {
	if len(items) == 0 {
		return nil, invalid("Euer Korb ist leer.")
	}

	index := make(map[string]int, len(items))
	var out []request
	for _, it := range items {
		id := strings.TrimSpace(it.GiftID)
		if id == "" {
			return nil, invalid("Geschenk-ID fehlt.")
		}
		parts := max(1, int(it.Parts))
		if i, ok := index[id]; ok {
			out[i].parts += parts
			continue
		}
		index[id] = len(out)
		out = append(out, request{giftID: id, parts: parts})
	}
	return out, nil
}
