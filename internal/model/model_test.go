package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewShiftSpansMidnight(t *testing.T) {
	cases := []struct {
		name       string
		start, end Clock
		spans      bool
		endDay     int
	}{
		{"evening", Clock{17, 0}, Clock{1, 0}, true, 1},
		{"day", Clock{8, 0}, Clock{16, 0}, false, 30},
		{"ends at midnight", Clock{16, 0}, Clock{0, 0}, true, 1},
		{"equal times", Clock{9, 0}, Clock{9, 0}, false, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewShift(day(2023, 4, 30), tc.start, tc.end, "Thomas")
			require.NoError(t, err)
			assert.Equal(t, tc.spans, s.SpansMidnight())
			assert.Equal(t, tc.end.Before(tc.start), s.SpansMidnight())
			assert.Equal(t, tc.endDay, s.EndAt(time.UTC).Day())
			assert.Equal(t, 30, s.StartAt(time.UTC).Day())
		})
	}
}

func TestNewShiftRejectsInvalidName(t *testing.T) {
	for _, name := range []string{"Name1", "Team: A", "3"} {
		_, err := NewShift(day(2023, 4, 30), Clock{8, 0}, Clock{9, 0}, name)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}
}

func TestNewShiftNormalizesDate(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	s, err := NewShift(time.Date(2023, 4, 30, 23, 15, 0, 0, loc), Clock{8, 0}, Clock{9, 0}, "A")
	require.NoError(t, err)
	assert.Equal(t, day(2023, 4, 30), s.Date)
}

func TestNormalizeMarker(t *testing.T) {
	cases := map[string]string{
		" Name * ":       "Name*",
		"Julia *":        "Julia*",
		"Julia*":         "Julia*",
		"Ju*lia":         "Julia*",
		"Night Shift **": "Night Shift*",
		"Plain":          "Plain",
		"  ":             "",
	}
	for in, want := range cases {
		got := NormalizeMarker(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, NormalizeMarker(got), "idempotent for %q", in)
	}
}

func TestDisplayNameAndSpecial(t *testing.T) {
	s, err := NewShift(day(2023, 5, 2), Clock{9, 0}, Clock{17, 0}, "Julia *")
	require.NoError(t, err)
	assert.True(t, s.IsSpecial())
	assert.Equal(t, "Julia", s.DisplayName())
	assert.Equal(t, "Julia*", s.Description)
}

func TestNewClock(t *testing.T) {
	c, err := NewClock(23, 59)
	require.NoError(t, err)
	assert.Equal(t, "23:59", c.String())

	_, err = NewClock(24, 0)
	assert.Error(t, err)
	_, err = NewClock(1, 60)
	assert.Error(t, err)
}

func TestClockOrderingAndFormat(t *testing.T) {
	early, late := Clock{Hour: 9, Minute: 5}, Clock{Hour: 17}
	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
	assert.False(t, early.Before(early))
	assert.Equal(t, "09:05", early.String())
	assert.Equal(t, "00:00", Clock{}.String())
}
