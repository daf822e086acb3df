// Package parser turns free-text shift rosters into model.Shift values.
//
// Each line is cleaned first (Clean), then tried as a dated line
// ("Mi. 30.04 17:00 01:00 Thomas") and, when a date has already been seen
// in the same input, as a continuation line ("18:00 02:00 Julia *").
// Lines matching neither are skipped; one bad line never aborts the rest.
package parser

import (
	"regexp"
	"strings"
)

var (
	disallowedChars = regexp.MustCompile(`[^A-Za-z0-9*:.\s]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Clean keeps ASCII letters, digits, '*', ':', '.' and whitespace, removes
// everything else, collapses whitespace runs and trims the result.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = disallowedChars.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
