package models

import "encoding/json"

// GiftState is derived from a gift's remaining parts. The transition from
// available to exhausted is one way.
type GiftState string

const (
	GiftStateAvailable GiftState = "available"
	GiftStateExhausted GiftState = "exhausted"
)

// Gift is one row of the wishlist sheet.
type Gift struct {
	ID               string `json:"id"`
	Category         string `json:"category"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Price            string `json:"price"` // free text, e.g. "CHF 250" or "120,50 €"
	URL              string `json:"url"`
	ImageURL         string `json:"imageUrl"`
	TotalParts       int    `json:"totalParts"`
	ContributedParts int    `json:"contributedParts"`

	// RowNumber is the 1-based sheet row the gift was read from.
	RowNumber int `json:"-"`
}

// Remaining returns the parts still open for contribution, never below zero.
func (g Gift) Remaining() int {
	if r := g.TotalParts - g.ContributedParts; r > 0 {
		return r
	}
	return 0
}

// State reports whether the gift can still take contributions.
func (g Gift) State() GiftState {
	if g.Remaining() > 0 {
		return GiftStateAvailable
	}
	return GiftStateExhausted
}

// MarshalJSON adds the derived remainingParts field.
func (g Gift) MarshalJSON() ([]byte, error) {
	type plain Gift
	return json.Marshal(struct {
		plain
		RemainingParts int `json:"remainingParts"`
	}{plain: plain(g), RemainingParts: g.Remaining()})
}
