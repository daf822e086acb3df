package convert

import (
	"fmt"

	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
)

// Filter narrows shifts by display name before serialization.
type Filter struct {
	// Include keeps only these names. Empty means keep everything.
	Include []string
	// Exclude drops these names after Include ran.
	Exclude []string
	// IncludeSpecial also keeps special (*) shifts when Include is set.
	IncludeSpecial bool
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Apply returns the shifts that pass the filter, in input order. It returns
// ErrNoShifts if none are left.
func (f Filter) Apply(shifts []*model.Shift) ([]*model.Shift, error) {
	if len(shifts) == 0 {
		return nil, fmt.Errorf("%w to filter", ErrNoShifts)
	}
	out := shifts

	if len(f.Include) > 0 {
		include := nameSet(f.Include)
		kept := make([]*model.Shift, 0, len(out))
		for _, s := range out {
			_, named := include[s.DisplayName()]
			if named || (f.IncludeSpecial && s.IsSpecial()) {
				kept = append(kept, s)
			}
		}
		out = kept
		appLog.Debug("applied include filter", "remaining", len(out))
		if len(out) == 0 {
			return nil, fmt.Errorf("%w left after include filter", ErrNoShifts)
		}
	}

	if len(f.Exclude) > 0 {
		exclude := nameSet(f.Exclude)
		kept := make([]*model.Shift, 0, len(out))
		for _, s := range out {
			if _, drop := exclude[s.DisplayName()]; !drop {
				kept = append(kept, s)
			}
		}
		out = kept
		appLog.Debug("applied exclude filter", "remaining", len(out))
		if len(out) == 0 {
			return nil, fmt.Errorf("%w left after exclude filter", ErrNoShifts)
		}
	}

	return out, nil
}
