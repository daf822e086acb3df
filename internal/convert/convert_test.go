package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/ics"
	"shiftcal/internal/model"
	"shiftcal/internal/parser"
)

const roster = `Mi. 30.04 17:00 01:00 Thomas
18:00 02:00 Julia *
Do. 01.05 08:00 16:00 Sarah
`

const secondRoster = `# week two
Fr. 02.05 09:00 17:00 Thomas
10:00 14:00 Max
`

func fixedParser() *parser.Parser {
	return parser.New(func() time.Time { return time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC) })
}

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunWritesNamedCalendar(t *testing.T) {
	dir := t.TempDir()
	in1 := writeInput(t, dir, "week1.txt", roster)
	in2 := writeInput(t, dir, "week2.roster", secondRoster)
	outDir := filepath.Join(dir, "out")

	res, err := Run([]string{in1, in2}, Options{
		OutputDir: outDir,
		Reminders: ics.NewReminderSet("Thomas"),
		Location:  time.UTC,
		Parser:    fixedParser(),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "Shifts_30-04_02-05.ics"), res.Path)
	assert.Equal(t, time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC), res.First)
	assert.Equal(t, time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC), res.Last)
	assert.Len(t, res.Shifts, 5)
	assert.Equal(t, 3, res.Days())

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()
	events, err := ics.ParseEvents(f)
	require.NoError(t, err)
	require.Len(t, events, 5)

	alarms := 0
	for _, ev := range events {
		alarms += ev.Alarms
	}
	assert.Equal(t, 2, alarms)
}

func TestRunCarriedDateDoesNotCrossFiles(t *testing.T) {
	dir := t.TempDir()
	in1 := writeInput(t, dir, "a.txt", "Mi. 30.04 17:00 01:00 Thomas\n")
	in2 := writeInput(t, dir, "b.txt", "18:00 02:00 Julia\nSa. 03.05 08:00 12:00 Max\n")

	shifts, err := ParseFiles([]string{in1, in2}, fixedParser())
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "Thomas", shifts[0].Description)
	assert.Equal(t, "Max", shifts[1].Description)
}

func TestParseFilesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseFiles([]string{filepath.Join(dir, "missing.txt")}, fixedParser())
	assert.Error(t, err)

	img := writeInput(t, dir, "scan.png", "\x89PNG")
	_, err = ParseFiles([]string{img}, fixedParser())
	assert.True(t, errors.Is(err, ErrUnsupportedInput), err)

	empty := writeInput(t, dir, "empty.txt", "nothing to see\n")
	_, err = ParseFiles([]string{empty}, fixedParser())
	assert.True(t, errors.Is(err, ErrNoShifts), err)
}

func TestReadInputRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	bin := writeInput(t, dir, "blob.dat", string([]byte{0xff, 0xfe, 0x00, 0x41}))
	_, err := ReadInput(bin)
	assert.True(t, errors.Is(err, ErrUnsupportedInput), err)
}

func TestWriteOverlapContextIncludesFilteredOut(t *testing.T) {
	all := fixedParser().ParseShifts(roster)
	require.Len(t, all, 3)

	res, err := Write(all, Options{
		OutputDir: t.TempDir(),
		Filter:    Filter{Include: []string{"Thomas"}},
		Location:  time.UTC,
	})
	require.NoError(t, err)
	require.Len(t, res.Shifts, 1)
	assert.Equal(t, "Shifts_30-04_30-04.ics", filepath.Base(res.Path))

	f, err := os.Open(res.Path)
	require.NoError(t, err)
	defer f.Close()
	events, err := ics.ParseEvents(f)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "18:00 02:00 Julia*", events[0].Description)
}

func TestWriteUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	blocker := writeInput(t, dir, "file", "x")
	all := fixedParser().ParseShifts(roster)

	_, err := Write(all, Options{OutputDir: filepath.Join(blocker, "sub"), Location: time.UTC})
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	all := fixedParser().ParseShifts(roster + "08:00 12:00 Max\n")
	require.Len(t, all, 4)
	names := func(shifts []*model.Shift) []string {
		out := make([]string, 0, len(shifts))
		for _, s := range shifts {
			out = append(out, s.Description)
		}
		return out
	}

	got, err := Filter{}.Apply(all)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = Filter{Include: []string{"Thomas"}}.Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thomas"}, names(got))

	got, err = Filter{Include: []string{"Thomas"}, IncludeSpecial: true}.Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thomas", "Julia*"}, names(got))

	got, err = Filter{Include: []string{"Julia"}}.Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Julia*"}, names(got), "include matches the display name")

	got, err = Filter{Exclude: []string{"Julia", "Max"}}.Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Thomas", "Sarah"}, names(got))

	_, err = Filter{Include: []string{"Nobody"}}.Apply(all)
	assert.True(t, errors.Is(err, ErrNoShifts))

	_, err = Filter{Exclude: []string{"Thomas", "Julia", "Sarah", "Max"}}.Apply(all)
	assert.True(t, errors.Is(err, ErrNoShifts))
}

func TestFileNameAndSpan(t *testing.T) {
	assert.Equal(t, "Shifts_05-12_09-01.ics",
		FileName(time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))

	first, last := Span(nil)
	assert.True(t, first.IsZero())
	assert.True(t, last.IsZero())
}
