package parser

import (
	"strings"
	"time"

	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

// Parser holds the clock used to substitute the year on dated lines.
// The zero value uses time.Now.
type Parser struct {
	Now func() time.Time
}

// New returns a Parser whose year comes from now. A nil now means time.Now.
func New(now func() time.Time) *Parser {
	return &Parser{Now: now}
}

func (p *Parser) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// lineState is the carried-date accumulator of a single ParseShifts call.
type lineState struct {
	date    time.Time
	hasDate bool
}

// ParseShifts parses one input unit into shifts in line order. Each call
// starts without a carried date.
func (p *Parser) ParseShifts(text string) []*model.Shift {
	var (
		state  lineState
		shifts []*model.Shift
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if dl, ok := p.ParseDateLine(line); ok {
			shift, err := dl.Shift()
			if err != nil {
				appLog.Error("dated line rejected", err, "line", line)
				continue
			}
			state.date, state.hasDate = dl.Date, true
			shifts = append(shifts, shift)
			continue
		}

		if !state.hasDate {
			continue
		}
		if shift, ok := p.ParseContinuationLine(line, state.date); ok {
			shifts = append(shifts, shift)
		}
	}

	appLog.Debug("roster parsed", "shift_count", len(shifts))
	return shifts
}

// ParseShifts parses text with a Parser that uses the current year.
func ParseShifts(text string) []*model.Shift {
	return New(nil).ParseShifts(text)
}
