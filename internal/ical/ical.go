// Package ical renders the wedding program as an RFC 5545 calendar that
// guests can import.
package ical

import (
	"fmt"
	"strings"
	"time"
)

// Event is one VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time

	// Reminder, if positive, adds a display alarm this long before Start.
	Reminder time.Duration
}

// Calendar holds the VCALENDAR metadata.
type Calendar struct {
	Name   string
	Stamp  time.Time // DTSTAMP for every event
	Events []Event
}

// Generate produces the iCalendar document.
func Generate(cal Calendar) string {
	var b strings.Builder

	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//jredh-dev//hochzeit//DE\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	if cal.Name != "" {
		writeProp(&b, "X-WR-CALNAME", escapeText(cal.Name))
	}

	for _, e := range cal.Events {
		writeEvent(&b, e, cal.Stamp)
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func writeEvent(b *strings.Builder, e Event, stamp time.Time) {
	b.WriteString("BEGIN:VEVENT\r\n")
	writeProp(b, "UID", e.UID)
	writeProp(b, "DTSTAMP", formatDateTime(stamp))
	writeProp(b, "DTSTART", formatDateTime(e.Start))
	if !e.End.IsZero() {
		writeProp(b, "DTEND", formatDateTime(e.End))
	}
	writeProp(b, "SUMMARY", escapeText(e.Summary))
	if e.Description != "" {
		writeProp(b, "DESCRIPTION", escapeText(e.Description))
	}
	if e.Location != "" {
		writeProp(b, "LOCATION", escapeText(e.Location))
	}
	if e.URL != "" {
		writeProp(b, "URL", e.URL)
	}
	writeProp(b, "STATUS", "CONFIRMED")

	if e.Reminder > 0 {
		b.WriteString("BEGIN:VALARM\r\n")
		writeProp(b, "TRIGGER", "-"+formatDuration(e.Reminder))
		writeProp(b, "ACTION", "DISPLAY")
		writeProp(b, "DESCRIPTION", escapeText(e.Summary))
		b.WriteString("END:VALARM\r\n")
	}

	b.WriteString("END:VEVENT\r\n")
}

// writeProp folds lines longer than 75 octets without splitting a UTF-8
// sequence.
func writeProp(b *strings.Builder, name, value string) {
	line := name + ":" + value
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = 74 // continuation lines start with a space
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool { return c&0xC0 != 0x80 }

func formatDateTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatDuration converts d to an iCal DURATION value such as PT1H or P1D.
func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("P%dD", int(d/(24*time.Hour)))
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("PT%dH%dM", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("PT%dH", hours)
	default:
		return fmt.Sprintf("PT%dM", minutes)
	}
}

// escapeText escapes special characters per RFC 5545 section 3.3.11.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
