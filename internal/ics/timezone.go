package ics

import (
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"
)

// NewTimezone describes loc as a VTIMEZONE for the given years. Every
// offset change inside those years becomes one STANDARD or DAYLIGHT
// block; a zone without changes gets a single STANDARD block.
func NewTimezone(loc *time.Location, years []int) *ical.VTimezone {
	tz := ical.NewTimezone(loc.String())

	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	added := 0
	for i, year := range sorted {
		if i > 0 && year == sorted[i-1] {
			continue
		}
		for _, tr := range transitions(loc, year) {
			addObservance(tz, tr)
			added++
		}
	}

	if added == 0 {
		ref := time.Date(1970, 1, 1, 0, 0, 0, 0, loc)
		if len(sorted) > 0 {
			ref = time.Date(sorted[0], 1, 1, 0, 0, 0, 0, loc)
		}
		name, offset := ref.Zone()
		addObservance(tz, transition{
			at:         time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(offset) * time.Second),
			fromOffset: offset,
			toOffset:   offset,
			toName:     name,
		})
	}
	return tz
}

// transition is one offset change of a zone.
type transition struct {
	at         time.Time
	fromOffset int
	toOffset   int
	toName     string
	toDST      bool
}

// transitions lists the offset changes of loc that happen during year.
func transitions(loc *time.Location, year int) []transition {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	stop := time.Date(year+1, 1, 1, 0, 0, 0, 0, loc)

	var out []transition
	t := start
	for {
		_, end := t.ZoneBounds()
		if end.IsZero() || !end.Before(stop) {
			return out
		}
		_, from := end.Add(-time.Second).Zone()
		after := end.In(loc)
		name, to := after.Zone()
		if from != to {
			out = append(out, transition{
				at:         end,
				fromOffset: from,
				toOffset:   to,
				toName:     name,
				toDST:      after.IsDST(),
			})
		}
		t = end
	}
}

func addObservance(tz *ical.VTimezone, tr transition) {
	var block *ical.ComponentBase
	if tr.toDST {
		daylight := &ical.Daylight{}
		tz.Components = append(tz.Components, daylight)
		block = &daylight.ComponentBase
	} else {
		block = &tz.AddStandard().ComponentBase
	}

	// DTSTART is the wall time of the change, read in the old offset.
	local := tr.at.In(time.FixedZone("", tr.fromOffset))
	block.SetProperty(ical.ComponentPropertyDtStart, local.Format(icalLocalLayout))
	block.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetfrom), utcOffset(tr.fromOffset))
	block.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetto), utcOffset(tr.toOffset))
	if tr.toName != "" {
		block.SetProperty(ical.ComponentProperty(ical.PropertyTzname), tr.toName)
	}
}

// utcOffset formats seconds east of UTC as "+HHMM".
func utcOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d%02d", sign, seconds/3600, seconds%3600/60)
}
