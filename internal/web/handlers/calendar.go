package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jredh-dev/hochzeit/internal/ical"
	"github.com/jredh-dev/hochzeit/internal/program"
)

// Calendar serves the program as an iCalendar file.
// GET /events.ics
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Event.Date == "" {
		http.NotFound(w, r)
		return
	}

	day, err := program.Day(h.cfg.Event.Date)
	if err != nil {
		h.log.Error("invalid event date", zap.String("date", h.cfg.Event.Date), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	name := "Hochzeit"
	if h.cfg.Event.Couple != "" {
		name = "Hochzeit " + h.cfg.Event.Couple
	}

	cal := ical.Calendar{Name: name, Stamp: h.now().UTC()}
	for _, o := range program.Options {
		start, end := o.Span(day)
		cal.Events = append(cal.Events, ical.Event{
			UID:         o.ID + "-" + strings.ReplaceAll(h.cfg.Event.Date, "-", "") + "@hochzeit",
			Summary:     o.Label,
			Description: o.Description,
			Location:    h.cfg.Event.Location,
			URL:         h.cfg.Event.SiteURL,
			Start:       start,
			End:         end,
			Reminder:    24 * time.Hour,
		})
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"hochzeit.ics\"")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(ical.Generate(cal)))
}
