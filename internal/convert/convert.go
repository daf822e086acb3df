package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"shiftcal/internal/ics"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
	"shiftcal/internal/parser"
)

var (
	// ErrNoShifts means parsing or filtering left nothing to write.
	ErrNoShifts = errors.New("no shifts")
	// ErrUnsupportedInput is returned for images and binary files.
	ErrUnsupportedInput = errors.New("unsupported input file")
)

// Options controls a conversion run.
type Options struct {
	// OutputDir receives the generated calendar; created if missing.
	OutputDir string
	Reminders ics.ReminderSet
	Filter    Filter
	Location  *time.Location
	// Parser is used for every input; nil uses the current year.
	Parser *parser.Parser
}

// Result describes a finished conversion. Path and the First/Last span
// are what a remote sync needs.
type Result struct {
	Path   string
	First  time.Time
	Last   time.Time
	Shifts []*model.Shift
	// All holds every parsed shift before filtering.
	All []*model.Shift
}

// Days counts the distinct dates covered by the written shifts.
func (r Result) Days() int {
	seen := make(map[time.Time]struct{}, len(r.Shifts))
	for _, s := range r.Shifts {
		seen[s.Date] = struct{}{}
	}
	return len(seen)
}

// ParseFiles reads and parses every input in order. Each file starts with
// no carried date. A file without shifts is logged and skipped; a file
// that cannot be read fails the run.
func ParseFiles(paths []string, p *parser.Parser) ([]*model.Shift, error) {
	var all []*model.Shift
	for _, path := range paths {
		text, err := ReadInput(path)
		if err != nil {
			return nil, err
		}
		shifts := p.ParseShifts(text)
		if len(shifts) == 0 {
			appLog.Warn("no shifts parsed from file", "path", path)
			continue
		}
		appLog.Debug("shifts parsed", "path", path, "shift_count", len(shifts))
		all = append(all, shifts...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w parsed from the input files", ErrNoShifts)
	}
	return all, nil
}

// Run converts the input files into one calendar file in opts.OutputDir.
func Run(paths []string, opts Options) (Result, error) {
	all, err := ParseFiles(paths, opts.Parser)
	if err != nil {
		return Result{}, err
	}
	return Write(all, opts)
}

// Write filters all, names the output after the date span and writes it.
// Overlaps are computed against all, not just the filtered shifts.
func Write(all []*model.Shift, opts Options) (Result, error) {
	shifts, err := opts.Filter.Apply(all)
	if err != nil {
		return Result{}, err
	}

	first, last := Span(shifts)
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("convert: create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(first, last))
	err = ics.WriteFile(path, shifts, ics.GenerateOptions{
		Reminders: opts.Reminders,
		All:       all,
		Location:  opts.Location,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Path: path, First: first, Last: last, Shifts: shifts, All: all}, nil
}

// Span returns the earliest and latest shift date.
func Span(shifts []*model.Shift) (first, last time.Time) {
	if len(shifts) == 0 {
		return time.Time{}, time.Time{}
	}
	dates := make([]time.Time, 0, len(shifts))
	for _, s := range shifts {
		dates = append(dates, s.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates[0], dates[len(dates)-1]
}

// FileName is "Shifts_<DD-MM>_<DD-MM>.ics" for the given span.
func FileName(first, last time.Time) string {
	return fmt.Sprintf("Shifts_%s_%s.ics", first.Format("02-01"), last.Format("02-01"))
}

// ReadInput returns the text of one input unit. Images would need OCR and
// are rejected, as is anything that is not valid UTF-8.
func ReadInput(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return "", fmt.Errorf("%w: %s (image input needs OCR)", ErrUnsupportedInput, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("convert: read input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not UTF-8 text", ErrUnsupportedInput, path)
	}
	return string(data), nil
}
