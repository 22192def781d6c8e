// Package program describes the wedding weekend's program items guests can
// register for.
package program

import (
	"fmt"
	"time"
)

// Option is one item of the program.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`

	// Offsets from midnight of the main (Saturday) event day.
	StartOffset time.Duration `json:"-"`
	EndOffset   time.Duration `json:"-"`
}

// Options is the program in display order.
var Options = []Option{
	{
		ID:          "nachmittag",
		Label:       "Samstag: Mittagessen & Apéro",
		Description: "Aperitivi, Musik und Sonnenuntergang auf der Südhalde 1.",
		StartOffset: 12 * time.Hour,
		EndOffset:   17 * time.Hour,
	},
	{
		ID:          "abend",
		Label:       "Samstag: Abendessen & Party",
		Description: "Feines Essen, Tanz und gemütliches Beisammensein - Party!!!.",
		StartOffset: 18 * time.Hour,
		EndOffset:   26 * time.Hour,
	},
	{
		ID:          "brunch",
		Label:       "Sonntag: Abschiedsbrunch",
		Description: "Gemütlicher Ausklang mit Kaffee und feinen Leckereien.",
		StartOffset: 34 * time.Hour,
		EndOffset:   37 * time.Hour,
	},
}

// Lookup returns the option with the given id.
func Lookup(id string) (Option, bool) {
	for _, o := range Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Location is the timezone the program times are given in.
const Location = "Europe/Zurich"

// Day parses the main event day (YYYY-MM-DD) in the program timezone.
func Day(date string) (time.Time, error) {
	loc, err := time.LoadLocation(Location)
	if err != nil {
		loc = time.FixedZone("CET", 3600)
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date %q: %w", date, err)
	}
	return day, nil
}

// Span returns the start and end of o on the given event day. Offsets are
// added as wall-clock hours so a DST change does not shift the times.
func (o Option) Span(day time.Time) (start, end time.Time) {
	return wallClock(day, o.StartOffset), wallClock(day, o.EndOffset)
}

func wallClock(day time.Time, offset time.Duration) time.Time {
	days := int(offset / (24 * time.Hour))
	rest := offset % (24 * time.Hour)
	d := day.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()).Add(rest)
}
