package parser

import (
	"regexp"
	"strconv"
	"time"

	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

// dateLinePattern accepts any prefix before day.month[.year], then two time
// tokens and the description. The year group is matched but never used.
var dateLinePattern = regexp.MustCompile(
	`^.*?(\d{1,2})[.\-/](\d{1,2})(?:[.\-/](\d{2,4}))?\s+(\d{1,2}(?:[:.]\d{1,2})?)\s+(\d{1,2}(?:[:.]\d{1,2})?)\s+(.*)`,
)

var continuationPattern = regexp.MustCompile(`([\d:]+)\s+([\d:]+)(?:\s+(.+))?`)

// DateLine is the structured result of a line that carries its own date.
type DateLine struct {
	Date          time.Time
	Start         model.Clock
	End           model.Clock
	Description   string
	SpansMidnight bool
}

// Shift converts the record into a model.Shift.
func (d DateLine) Shift() (*model.Shift, error) {
	return model.NewShift(d.Date, d.Start, d.End, d.Description)
}

// ParseDateLine extracts date, times and description from a line like
// "Mi. 30.04 17:00 01:00 Thomas". The year is always the year of
// p's clock. Invalid names are logged; invalid dates and times are dropped
// silently.
func (p *Parser) ParseDateLine(line string) (DateLine, bool) {
	line = Clean(line)

	m := dateLinePattern.FindStringSubmatch(line)
	if m == nil {
		return DateLine{}, false
	}
	dayStr, monthStr := m[1], m[2]
	startStr, endStr, description := m[4], m[5], m[6]

	if !model.ValidName(description) {
		appLog.Warn("invalid shift name contains numbers or colons; skipping", "name", description)
		return DateLine{}, false
	}
	description = model.NormalizeMarker(description)

	dayNum, _ := strconv.Atoi(dayStr)
	monthNum, _ := strconv.Atoi(monthStr)
	date, ok := civilDate(p.now().Year(), monthNum, dayNum)
	if !ok {
		return DateLine{}, false
	}

	start, ok := ParseClock(startStr)
	if !ok {
		return DateLine{}, false
	}
	end, ok := ParseClock(endStr)
	if !ok {
		return DateLine{}, false
	}

	return DateLine{
		Date:          date,
		Start:         start,
		End:           end,
		Description:   description,
		SpansMidnight: end.Before(start),
	}, true
}

// ParseContinuationLine parses "18:00 02:00 Julia *" against the carried
// date. Rejections are logged as warnings.
func (p *Parser) ParseContinuationLine(line string, date time.Time) (*model.Shift, bool) {
	line = Clean(line)

	m := continuationPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	startStr, endStr, description := m[1], m[2], m[3]

	if !model.ValidName(description) {
		appLog.Warn("invalid shift name contains numbers or colons; skipping", "name", description)
		return nil, false
	}

	start, ok := ParseClock(startStr)
	if !ok {
		appLog.Warn("unparseable start time; skipping", "line", line, "time", startStr)
		return nil, false
	}
	end, ok := ParseClock(endStr)
	if !ok {
		appLog.Warn("unparseable end time; skipping", "line", line, "time", endStr)
		return nil, false
	}

	shift, err := model.NewShift(date, start, end, description)
	if err != nil {
		appLog.Error("continuation line rejected", err, "line", line)
		return nil, false
	}
	return shift, true
}

// civilDate builds a UTC midnight date, rejecting values time.Date would
// otherwise normalize (31 April -> 1 May).
func civilDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
