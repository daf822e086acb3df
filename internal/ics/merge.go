package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	ical "github.com/arran4/golang-ical"

	appLog "shiftcal/internal/log"
)

// Merge reads every calendar in paths, keeps their events and writes them
// into one fresh calendar on w. A VTIMEZONE is carried over only when a
// kept event refers to its TZID; every other component is dropped. Missing
// files are skipped with a warning; unreadable or malformed files fail the
// merge. It returns the number of events written.
func Merge(w io.Writer, paths []string, tz string) (int, error) {
	var (
		events    []*ical.VEvent
		timezones = make(map[string]*ical.VTimezone)
	)

	for _, path := range paths {
		cal, err := readCalendar(path)
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("calendar file does not exist; skipping", "path", path)
			continue
		}
		if err != nil {
			return 0, err
		}
		for _, vtz := range cal.Timezones() {
			id := timezoneID(vtz)
			if _, ok := timezones[id]; id != "" && !ok {
				timezones[id] = vtz
			}
		}
		found := cal.Events()
		events = append(events, found...)
		appLog.Debug("calendar merged", "path", path, "event_count", len(found))
	}

	merged := NewCalendar(tz)
	for _, id := range referencedTZIDs(events) {
		if vtz, ok := timezones[id]; ok {
			merged.AddVTimezone(vtz)
		}
	}
	for _, ev := range events {
		merged.Components = append(merged.Components, ev)
	}

	if _, err := io.WriteString(w, merged.Serialize()); err != nil {
		return len(events), fmt.Errorf("ics: write merged calendar: %w", err)
	}
	return len(events), nil
}

// MergeFiles merges paths into the file at out. Every input is read before
// out is replaced, so out may be one of the inputs.
func MergeFiles(out string, paths []string, tz string) (int, error) {
	var buf bytes.Buffer
	n, err := Merge(&buf, paths, tz)
	if err != nil {
		return n, err
	}
	if err := writeFileAtomic(out, buf.Bytes()); err != nil {
		return n, err
	}
	appLog.Info("calendars merged", "path", out, "input_count", len(paths), "event_count", n)
	return n, nil
}

func readCalendar(path string) (*ical.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cal, err := ical.ParseCalendar(f)
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar %s: %w", path, err)
	}
	return cal, nil
}

func timezoneID(vtz *ical.VTimezone) string {
	if p := vtz.GetProperty(ical.ComponentPropertyTzid); p != nil {
		return p.Value
	}
	return ""
}

// referencedTZIDs returns the TZID parameters of event start and end times
// in first-seen order.
func referencedTZIDs(events []*ical.VEvent) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, ev := range events {
		for _, prop := range []ical.ComponentProperty{ical.ComponentPropertyDtStart, ical.ComponentPropertyDtEnd} {
			p := ev.GetProperty(prop)
			if p == nil {
				continue
			}
			for _, id := range p.ICalParameters[string(ical.ParameterTzid)] {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}
