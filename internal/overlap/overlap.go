// Package overlap finds shifts that run at the same time.
package overlap

import (
	"time"

	"shiftcal/internal/model"
)

// Overlaps reports whether a and b intersect as half-open intervals
// [start, end). It is symmetric.
func Overlaps(a, b *model.Shift) bool {
	aStart, aEnd := a.StartAt(time.UTC), a.EndAt(time.UTC)
	bStart, bEnd := b.StartAt(time.UTC), b.EndAt(time.UTC)
	return bStart.Before(aEnd) && bEnd.After(aStart)
}

// Find returns every candidate that overlaps target, in candidate order.
// target itself is skipped by pointer identity, so a distinct shift with
// identical fields is still reported.
func Find(target *model.Shift, candidates []*model.Shift) []*model.Shift {
	var out []*model.Shift
	for _, other := range candidates {
		if other == target || other == nil {
			continue
		}
		if Overlaps(target, other) {
			out = append(out, other)
		}
	}
	return out
}
