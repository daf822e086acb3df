package ics

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

const (
	ProductID       = "-//ShiftPlan to ICS Converter//EN"
	DefaultTimezone = "Europe/Berlin"
)

// DefaultLocation resolves DefaultTimezone, falling back to UTC when the
// zone database is unavailable.
func DefaultLocation() *time.Location {
	return ResolveLocation(DefaultTimezone)
}

// ResolveLocation loads an IANA zone name, falling back to UTC with an
// error log.
func ResolveLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to UTC", err, "name", name)
		return time.UTC
	}
	return loc
}

// NewCalendar returns an empty VCALENDAR with the fixed product metadata.
func NewCalendar(tz string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)
	if tz != "" {
		cal.SetXWRTimezone(tz)
	}
	return cal
}

// GenerateOptions configures Generate.
type GenerateOptions struct {
	Reminders ReminderSet
	// All is the overlap context. Nil means the shifts being generated.
	All      []*model.Shift
	Location *time.Location
	Now      func() time.Time
}

// Build synthesizes one event per shift inside a fresh calendar. UIDs that
// would repeat within the calendar get a numeric suffix.
func Build(shifts []*model.Shift, opts GenerateOptions) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = DefaultLocation()
	}
	all := opts.All
	if all == nil {
		all = shifts
	}

	cal := NewCalendar(loc.String())
	cal.AddVTimezone(NewTimezone(loc, shiftYears(shifts, loc)))
	evOpts := EventOptions{
		Reminders: opts.Reminders,
		All:       all,
		Location:  loc,
		Now:       opts.Now,
	}

	seen := make(map[string]int, len(shifts))
	for _, s := range shifts {
		ev := NewEvent(s, evOpts)
		uid := EventUID(s)
		if n := seen[uid]; n > 0 {
			ev.SetProperty(ical.ComponentPropertyUniqueId, dedupeUID(uid, n+1))
		}
		seen[uid]++
		cal.Components = append(cal.Components, ev)
	}
	return cal
}

// Generate serializes the calendar of shifts to w.
func Generate(w io.Writer, shifts []*model.Shift, opts GenerateOptions) error {
	cal := Build(shifts, opts)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("ics: write calendar: %w", err)
	}
	return nil
}

// WriteFile generates the calendar into path, replacing any existing file.
// The file only appears once the whole calendar has been serialized.
func WriteFile(path string, shifts []*model.Shift, opts GenerateOptions) error {
	var buf bytes.Buffer
	if err := Generate(&buf, shifts, opts); err != nil {
		return err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}

	appLog.Info("calendar written", "path", path, "event_count", len(shifts))
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".shiftcal-*.ics.tmp")
	if err != nil {
		return fmt.Errorf("ics: create %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ics: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ics: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("ics: replace %s: %w", path, err)
	}
	return nil
}

// shiftYears lists the years touched by shifts in loc.
func shiftYears(shifts []*model.Shift, loc *time.Location) []int {
	var years []int
	for _, s := range shifts {
		years = append(years, s.StartAt(loc).Year(), s.EndAt(loc).Year())
	}
	return years
}

func dedupeUID(uid string, n int) string {
	local, domain, ok := strings.Cut(uid, "@")
	if !ok {
		return uid + "-" + strconv.Itoa(n)
	}
	return local + "-" + strconv.Itoa(n) + "@" + domain
}
