package overlap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/model"
)

func shift(t *testing.T, y int, m time.Month, d, sh, sm, eh, em int, name string) *model.Shift {
	t.Helper()
	s, err := model.NewShift(time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		model.Clock{Hour: sh, Minute: sm}, model.Clock{Hour: eh, Minute: em}, name)
	require.NoError(t, err)
	return s
}

func TestFindMidnightShifts(t *testing.T) {
	a := shift(t, 2023, 4, 30, 17, 0, 1, 0, "A")
	b := shift(t, 2023, 4, 30, 18, 0, 2, 0, "B")
	c := shift(t, 2023, 5, 1, 10, 0, 12, 0, "C")
	all := []*model.Shift{a, b, c}

	assert.Equal(t, []*model.Shift{b}, Find(a, all))
	assert.Equal(t, []*model.Shift{a}, Find(b, all))
	assert.Empty(t, Find(c, all))
}

func TestFindKeepsCandidateOrder(t *testing.T) {
	thomas := shift(t, 2023, 4, 30, 17, 0, 1, 0, "Thomas")
	julia := shift(t, 2023, 4, 30, 18, 0, 2, 0, "Julia")
	alice := shift(t, 2023, 4, 30, 16, 0, 20, 0, "Alice")
	bob := shift(t, 2023, 4, 30, 19, 0, 23, 0, "Bob")
	charlie := shift(t, 2023, 4, 30, 22, 0, 6, 0, "Charlie")
	dave := shift(t, 2023, 5, 1, 10, 0, 12, 0, "Dave")
	all := []*model.Shift{thomas, julia, alice, bob, charlie, dave}

	got := Find(thomas, all)
	assert.Equal(t, []*model.Shift{julia, alice, bob, charlie}, got)
}

func TestFindIdentityNotEquality(t *testing.T) {
	a := shift(t, 2023, 4, 30, 8, 0, 16, 0, "Twin")
	b := shift(t, 2023, 4, 30, 8, 0, 16, 0, "Twin")
	require.Equal(t, *a, *b)

	all := []*model.Shift{a, b}
	assert.Equal(t, []*model.Shift{b}, Find(a, all))
	assert.Equal(t, []*model.Shift{a}, Find(b, all))
	assert.NotContains(t, Find(a, all), a)
}

func TestFindTargetOnly(t *testing.T) {
	a := shift(t, 2023, 4, 30, 8, 0, 16, 0, "Solo")
	assert.Empty(t, Find(a, []*model.Shift{a}))
	assert.Empty(t, Find(a, nil))
}

func TestOverlapsSymmetricAndOpen(t *testing.T) {
	early := shift(t, 2023, 4, 30, 8, 0, 12, 0, "Early")
	late := shift(t, 2023, 4, 30, 12, 0, 16, 0, "Late")
	mid := shift(t, 2023, 4, 30, 11, 0, 13, 0, "Mid")
	night := shift(t, 2023, 4, 29, 22, 0, 9, 0, "Night")

	shifts := []*model.Shift{early, late, mid, night}
	for _, x := range shifts {
		for _, y := range shifts {
			if x == y {
				continue
			}
			assert.Equal(t, Overlaps(x, y), Overlaps(y, x), "%s/%s", x.Description, y.Description)
		}
	}

	assert.False(t, Overlaps(early, late), "touching intervals do not overlap")
	assert.True(t, Overlaps(early, mid))
	assert.True(t, Overlaps(late, mid))
	assert.True(t, Overlaps(night, early), "night shift runs into the next morning")
	assert.False(t, Overlaps(night, late))
}
