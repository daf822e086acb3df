package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"shiftcal/internal/model"
)

var (
	bareHour   = regexp.MustCompile(`^\d{1,2}$`)
	hourMinute = regexp.MustCompile(`^(\d{1,2})[:.]?(\d{2})$`)

	// shortMinuteLayouts accept one-digit minutes ("9:5" is 09:05).
	shortMinuteLayouts = []string{"15:4", "15.4"}
)

// ParseClock parses a single time token ("9", "14", "9:30", "17.00",
// "1430", "930"). Other tokens go through the short-minute layouts and
// then dateparse, which is only trusted when the token names a time of day.
// ok is false when nothing could make sense of the token.
func ParseClock(token string) (c model.Clock, ok bool) {
	token = Clean(token)
	if token == "" {
		return model.Clock{}, false
	}

	if bareHour.MatchString(token) {
		h, _ := strconv.Atoi(token)
		if c, err := model.NewClock(h, 0); err == nil {
			return c, true
		}
	}

	if m := hourMinute.FindStringSubmatch(token); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if c, err := model.NewClock(h, mm); err == nil {
			return c, true
		}
	}

	return fallbackClock(token)
}

func fallbackClock(token string) (c model.Clock, ok bool) {
	for _, layout := range shortMinuteLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return model.Clock{Hour: t.Hour(), Minute: t.Minute()}, true
		}
	}
	if !hasTimeOfDay(token) {
		return model.Clock{}, false
	}

	// dateparse panics on a few pathological inputs in older releases.
	defer func() {
		if r := recover(); r != nil {
			c, ok = model.Clock{}, false
		}
	}()

	t, err := dateparse.ParseAny(token)
	if err != nil {
		return model.Clock{}, false
	}
	return model.Clock{Hour: t.Hour(), Minute: t.Minute()}, true
}

// hasTimeOfDay reports whether token carries a clock component dateparse
// can read. A bare number like "1430" is a year to dateparse, not a time.
func hasTimeOfDay(token string) bool {
	lower := strings.ToLower(token)
	return strings.Contains(lower, ":") ||
		strings.HasSuffix(lower, "am") ||
		strings.HasSuffix(lower, "pm")
}
