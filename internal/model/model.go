package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// SpecialMarker flags a shift label as special ("Julia*").
const SpecialMarker = "*"

// ErrInvalidName is returned when a shift label contains a digit or a colon.
var ErrInvalidName = errors.New("invalid shift name")

// Clock is a time of day without seconds.
type Clock struct {
	Hour   int
	Minute int
}

// NewClock validates hour/minute ranges.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("clock out of range: %02d:%02d", hour, minute)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// Before reports whether c is earlier in the day than o.
func (c Clock) Before(o Clock) bool { return c.Minutes() < o.Minutes() }

// String formats c as "HH:MM".
func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Shift is one work interval parsed from a roster line.
//
// Shifts are passed around as *Shift and never mutated after NewShift, so
// pointer identity distinguishes two shifts with identical fields.
type Shift struct {
	// Date is the start day at midnight UTC; only year/month/day are used.
	Date        time.Time
	Start       Clock
	End         Clock
	Description string
}

// NewShift validates the description, normalizes its special marker and
// returns the shift. Descriptions containing digits or colons are rejected
// with ErrInvalidName.
func NewShift(date time.Time, start, end Clock, description string) (*Shift, error) {
	if !ValidName(description) {
		return nil, fmt.Errorf("%w: %q contains numbers or colons", ErrInvalidName, description)
	}
	y, m, d := date.Date()
	return &Shift{
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Start:       start,
		End:         end,
		Description: NormalizeMarker(description),
	}, nil
}

// SpansMidnight reports whether the shift ends on the following day.
func (s *Shift) SpansMidnight() bool {
	return s.End.Before(s.Start)
}

// StartAt returns the start datetime in loc.
func (s *Shift) StartAt(loc *time.Location) time.Time {
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, s.Start.Hour, s.Start.Minute, 0, 0, loc)
}

// EndAt returns the end datetime in loc, on the next day for shifts that
// span midnight.
func (s *Shift) EndAt(loc *time.Location) time.Time {
	y, m, d := s.Date.Date()
	if s.SpansMidnight() {
		d++
	}
	return time.Date(y, m, d, s.End.Hour, s.End.Minute, 0, 0, loc)
}

// IsSpecial reports whether the description carries the special marker.
func (s *Shift) IsSpecial() bool {
	return strings.Contains(s.Description, SpecialMarker)
}

// DisplayName is the description with the trailing marker stripped.
func (s *Shift) DisplayName() string {
	return DisplayName(s.Description)
}

func (s *Shift) String() string {
	midnight := ""
	if s.SpansMidnight() {
		midnight = " (spans midnight)"
	}
	return fmt.Sprintf("Shift(%s, %s - %s%s, %q)", s.Date.Format("2006-01-02"), s.Start, s.End, midnight, s.Description)
}

// ValidName reports whether name is free of digits and colons.
func ValidName(name string) bool {
	for _, r := range name {
		if unicode.IsDigit(r) || r == ':' {
			return false
		}
	}
	return true
}

// NormalizeMarker trims the description and moves any special marker to
// the end with no whitespace before it: " Name * " -> "Name*",
// "Na*me" -> "Name*".
func NormalizeMarker(description string) string {
	description = strings.TrimSpace(description)
	if !strings.Contains(description, SpecialMarker) {
		return description
	}
	if strings.HasSuffix(description, SpecialMarker) {
		base := strings.TrimRight(description, SpecialMarker+" ")
		if !strings.Contains(base, SpecialMarker) {
			return strings.TrimSpace(base) + SpecialMarker
		}
	}
	base := strings.TrimSpace(strings.ReplaceAll(description, SpecialMarker, ""))
	return base + SpecialMarker
}

// DisplayName strips trailing markers and surrounding whitespace.
func DisplayName(description string) string {
	return strings.TrimSpace(strings.TrimRight(description, SpecialMarker))
}
