package wishlist

import "github.com/jredh-dev/hochzeit/pkg/models"

// BasketNotice is shown when reconciliation dropped entries.
const BasketNotice = "Einige Geschenke sind nicht mehr verfügbar und wurden aus dem Korb entfernt."

// BasketEntry is a single browser-held selection.
type BasketEntry struct {
	GiftID string `json:"giftId"`
	Parts  int    `json:"parts"`
}

// BasketResult is the basket after reconciliation against a fresh ledger.
type BasketResult struct {
	Entries []BasketEntry
	Removed bool
}

// ReconcileBasket merges entries for the same gift, drops entries whose gift
// vanished or is exhausted and clamps the rest to the parts still open.
// Running it on its own output is a no-op.
func ReconcileBasket(entries []BasketEntry, gifts []models.Gift) BasketResult {
	byID := make(map[string]models.Gift, len(gifts))
	for _, g := range gifts {
		byID[g.ID] = g
	}

	merged := mergeEntries(entries)
	res := BasketResult{Entries: make([]BasketEntry, 0, len(merged))}
	for _, e := range merged {
		g, ok := byID[e.GiftID]
		if !ok || g.Remaining() <= 0 {
			res.Removed = true
			continue
		}
		res.Entries = append(res.Entries, BasketEntry{
			GiftID: e.GiftID,
			Parts:  min(e.Parts, g.Remaining()),
		})
	}
	return res
}

// mergeEntries sums parts per gift id in first-seen order. Each entry counts
// for at least one part; entries without an id are dropped.
func mergeEntries(entries []BasketEntry) []BasketEntry {
	index := make(map[string]int, len(entries))
	out := make([]BasketEntry, 0, len(entries))
	for _, e := range entries {
		if e.GiftID == "" {
			continue
		}
		parts := max(1, e.Parts)
		if i, ok := index[e.GiftID]; ok {
			out[i].Parts += parts
			continue
		}
		index[e.GiftID] = len(out)
		out = append(out, BasketEntry{GiftID: e.GiftID, Parts: parts})
	}
	return out
}

// BasketItem is a reconciled entry joined with its gift for display.
type BasketItem struct {
	GiftID         string `json:"giftId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ImageURL       string `json:"imageUrl"`
	Price          string `json:"price"`
	PricePerPart   string `json:"pricePerPart"`
	Parts          int    `json:"parts"`
	TotalParts     int    `json:"totalParts"`
	RemainingParts int    `json:"remainingParts"`
	Amount         Amount `json:"amount"`
}

// BasketView is what the basket page renders.
type BasketView struct {
	Items   []BasketItem `json:"items"`
	Removed bool         `json:"removed"`
	Notice  string       `json:"notice,omitempty"`
	Total   Amount       `json:"total"`
}

// BuildBasketView reconciles entries against gifts and prices what is left.
func BuildBasketView(entries []BasketEntry, gifts []models.Gift) BasketView {
	res := ReconcileBasket(entries, gifts)
	byID := make(map[string]models.Gift, len(gifts))
	for _, g := range gifts {
		byID[g.ID] = g
	}

	view := BasketView{Items: make([]BasketItem, 0, len(res.Entries)), Removed: res.Removed}
	if res.Removed {
		view.Notice = BasketNotice
	}

	amounts := make([]Amount, 0, len(res.Entries))
	for _, e := range res.Entries {
		g := byID[e.GiftID]
		amount := Contribution(g.Price, g.TotalParts, e.Parts)
		amounts = append(amounts, amount)
		view.Items = append(view.Items, BasketItem{
			GiftID:         g.ID,
			Title:          g.Title,
			Description:    g.Description,
			ImageURL:       g.ImageURL,
			Price:          g.Price,
			PricePerPart:   PricePerPart(g.Price, g.TotalParts),
			Parts:          e.Parts,
			TotalParts:     g.TotalParts,
			RemainingParts: g.Remaining(),
			Amount:         amount,
		})
	}
	view.Total = SumAmounts(amounts)
	return view
}
