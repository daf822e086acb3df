package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "shiftcal/internal/log"
)

// ParsedEvent is a flattened read-back of a VEVENT, used to inspect
// generated or merged calendars.
type ParsedEvent struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Categories  []string
	Alarms      int
}

// Events parses a serialized calendar and returns its VEVENT components.
// Every other component (VTIMEZONE, VTODO, ...) is dropped.
func Events(r io.Reader) ([]*ical.VEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar: %w", err)
	}
	return cal.Events(), nil
}

// ParseEvents parses r and flattens every VEVENT. Events that fail to
// decode are logged and skipped.
func ParseEvents(r io.Reader) ([]ParsedEvent, error) {
	events, err := Events(r)
	if err != nil {
		return nil, err
	}

	out := make([]ParsedEvent, 0, len(events))
	for _, ve := range events {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr)
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	// TEXT values arrive unescaped from the library.
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	// Foreign calendars may list several categories on one line.
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out.Categories = append(out.Categories, c)
			}
		}
	}

	// TZID handling is left to the library.
	if start, err := ve.GetStartAt(); err == nil {
		out.Start = start
	}
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	}

	out.Alarms = len(ve.Alarms())
	return out, nil
}
