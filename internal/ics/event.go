package ics

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"shiftcal/internal/model"
	"shiftcal/internal/overlap"
)

const (
	// uidDomain is the namespace suffix of every generated UID.
	uidDomain = "shiftplan-to-ics"

	categoryWork    = "WORK"
	categorySpecial = "SPECIAL"

	reminderText    = "Reminder: Work shift starting in 1 hour"
	reminderTrigger = "-PT1H"

	icalLocalLayout = "20060102T150405"
)

// ReminderSet holds display names (marker stripped) that get an alarm.
type ReminderSet map[string]struct{}

// NewReminderSet builds a set from names, ignoring blanks.
func NewReminderSet(names ...string) ReminderSet {
	set := make(ReminderSet, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Has reports exact membership.
func (r ReminderSet) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// EventOptions carries the context used to enrich a single event.
type EventOptions struct {
	// Reminders selects shifts that get a one-hour VALARM.
	Reminders ReminderSet
	// All is searched for concurrent shifts. Nil means only the shift
	// itself, which never yields overlaps.
	All []*model.Shift
	// Location is applied to DTSTART/DTEND. Nil means DefaultLocation().
	Location *time.Location
	// Now stamps DTSTAMP/CREATED. Nil means time.Now.
	Now func() time.Time
}

func (o EventOptions) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return DefaultLocation()
}

func (o EventOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// NewEvent synthesizes the VEVENT for one shift.
func NewEvent(s *model.Shift, opts EventOptions) *ical.VEvent {
	loc := opts.location()
	displayName := s.DisplayName()
	special := s.IsSpecial()

	ev := ical.NewEvent(EventUID(s))

	summary := displayName
	if special {
		summary += model.SpecialMarker
	}
	ev.SetSummary(summary)

	tzid := &ical.KeyValues{Key: "TZID", Value: []string{loc.String()}}
	ev.SetProperty(ical.ComponentPropertyDtStart, s.StartAt(loc).Format(icalLocalLayout), tzid)
	ev.SetProperty(ical.ComponentPropertyDtEnd, s.EndAt(loc).Format(icalLocalLayout), tzid)

	now := opts.now().In(loc)
	ev.SetDtStampTime(now)
	ev.SetCreatedTime(now)

	all := opts.All
	if all == nil {
		all = []*model.Shift{s}
	}
	if concurrent := overlap.Find(s, all); len(concurrent) > 0 {
		ev.SetDescription(describeOverlaps(concurrent))
	}

	// One CATEGORIES line per tag; a joined TEXT value would escape the comma.
	ev.AddCategory(categoryWork)
	if special {
		ev.AddCategory(categorySpecial)
	}

	if opts.Reminders.Has(displayName) {
		alarm := ev.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetDescription(reminderText)
		alarm.SetTrigger(reminderTrigger)
	}

	return ev
}

// EventUID derives a stable identifier from the start time and a 32-bit
// hash of the raw description.
func EventUID(s *model.Shift) string {
	sum := sha256.Sum256([]byte(s.Description))
	h := binary.BigEndian.Uint32(sum[:4])
	return fmt.Sprintf("%s-%d@%s", s.StartAt(time.UTC).Format(icalLocalLayout), h, uidDomain)
}

func describeOverlaps(shifts []*model.Shift) string {
	lines := make([]string, 0, len(shifts))
	for _, o := range shifts {
		lines = append(lines, fmt.Sprintf("%s %s %s", o.Start, o.End, o.Description))
	}
	return strings.Join(lines, "\n")
}
