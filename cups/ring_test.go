package cups_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gregoryjjb/cups/cups"
)

var example = []int{3, 8, 9, 1, 2, 5, 4, 6, 7}

func labels(vs ...int) []cups.Label {
	out := make([]cups.Label, len(vs))
	for i, v := range vs {
		out[i] = cups.Label(v)
	}
	return out
}

func TestNew(t *testing.T) {
	r, err := cups.New(example)
	require.NoError(t, err)

	assert.Equal(t, cups.Label(3), r.Current())
	assert.Equal(t, cups.Label(9), r.MaxLabel())
	assert.Equal(t, 9, r.Len())
	assert.Equal(t, uint64(0), r.Rounds())
	assert.Equal(t, labels(example...), r.Labels())
	assert.Equal(t, cups.Label(3), r.Next(7), "last label wraps to the first")
	assert.NoError(t, r.Verify())
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want error
	}{
		{name: "empty", in: nil, want: cups.ErrTooFewCups},
		{name: "three cups", in: []int{1, 2, 3}, want: cups.ErrTooFewCups},
		{name: "zero", in: []int{1, 2, 0, 3, 4}, want: cups.ErrLabelRange},
		{name: "negative", in: []int{1, 2, -3, 4}, want: cups.ErrLabelRange},
		{name: "above capacity", in: []int{1, 2, 3, cups.MaxCapacity + 1}, want: cups.ErrLabelRange},
		{name: "duplicate", in: []int{1, 2, 3, 2, 4}, want: cups.ErrDuplicateLabel},
		{name: "duplicate head", in: []int{4, 1, 2, 3, 4}, want: cups.ErrDuplicateLabel},
		{name: "duplicate tail", in: []int{1, 2, 3, 4, 4}, want: cups.ErrDuplicateLabel},
		{name: "gap", in: []int{1, 2, 3, 5, 6}, want: cups.ErrMissingLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := cups.New(tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, r)
		})
	}
}

func TestNewExtended(t *testing.T) {
	r, err := cups.NewExtended(example, 20)
	require.NoError(t, err)

	assert.Equal(t, cups.Label(20), r.MaxLabel())
	assert.Equal(t, labels(3, 8, 9, 1, 2, 5, 4, 6, 7, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20), r.Labels())
	assert.Equal(t, cups.Label(3), r.Next(20))
	assert.NoError(t, r.Verify())

	t.Run("NoPaddingNeeded", func(t *testing.T) {
		r, err := cups.NewExtended(example, 9)
		require.NoError(t, err)
		assert.Equal(t, labels(example...), r.Labels())
	})

	t.Run("BelowExplicitLabels", func(t *testing.T) {
		_, err := cups.NewExtended(example, 8)
		assert.ErrorIs(t, err, cups.ErrCapacity)
	})

	t.Run("BeyondCapacity", func(t *testing.T) {
		_, err := cups.NewExtended(example, cups.MaxCapacity+1)
		assert.ErrorIs(t, err, cups.ErrCapacity)
	})

	t.Run("SmallInputPaddedToMinimum", func(t *testing.T) {
		r, err := cups.NewExtended([]int{2, 1}, 4)
		require.NoError(t, err)
		assert.Equal(t, labels(2, 1, 3, 4), r.Labels())
	})
}

func TestRound(t *testing.T) {
	r, err := cups.New(example)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), r.Round())
	assert.Equal(t, cups.Move{
		Current:     3,
		Picked:      [3]cups.Label{8, 9, 1},
		Destination: 2,
	}, r.LastMove())
	assert.Equal(t, cups.Label(2), r.Current())
	assert.Equal(t, labels(2, 8, 9, 1, 5, 4, 6, 7, 3), r.Labels())

	// Destination wraps past 1 and skips all three picked cups.
	assert.Equal(t, uint64(2), r.Round())
	assert.Equal(t, cups.Move{
		Current:     2,
		Picked:      [3]cups.Label{8, 9, 1},
		Destination: 7,
	}, r.LastMove())
	assert.Equal(t, labels(5, 4, 6, 7, 8, 9, 1, 3, 2), r.Labels())
}

func TestRoundDestinationIsCurrent(t *testing.T) {
	r, err := cups.New([]int{1, 2, 3, 4})
	require.NoError(t, err)

	r.Round()
	assert.Equal(t, cups.Label(1), r.LastMove().Destination)
	assert.Equal(t, cups.Label(2), r.Current())
	assert.Equal(t, labels(2, 3, 4, 1), r.Labels())
	assert.NoError(t, r.Verify())
}

func TestRoundInvariants(t *testing.T) {
	r, err := cups.NewExtended(example, 50)
	require.NoError(t, err)

	want := make(map[cups.Label]int)
	for _, l := range r.Labels() {
		want[l]++
	}

	for i := uint64(1); i <= 500; i++ {
		before := r.Current()
		require.Equal(t, i, r.Round())

		move := r.LastMove()
		assert.Equal(t, before, move.Current)
		assert.NotContains(t, move.Picked[:], move.Destination)
		assert.NotContains(t, move.Picked[:], move.Current)
		assert.Equal(t, move.Picked[0], r.Next(move.Destination))
		assert.Equal(t, r.Current(), r.Next(move.Current))
		require.NoError(t, r.Verify(), "round %d", i)

		got := make(map[cups.Label]int)
		for _, l := range r.Labels() {
			got[l]++
		}
		require.Equal(t, want, got)
	}
}

func TestPlayUntil(t *testing.T) {
	r, err := cups.New(example)
	require.NoError(t, err)

	r.PlayUntil(10)
	assert.Equal(t, uint64(10), r.Rounds())

	r.PlayUntil(5)
	assert.Equal(t, uint64(10), r.Rounds(), "never goes backwards")
}

func TestLabelOrder(t *testing.T) {
	r, err := cups.New(example)
	require.NoError(t, err)

	assert.Equal(t, "25467389", r.LabelOrder())

	r.PlayUntil(10)
	assert.Equal(t, "92658374", r.LabelOrder())
	assert.Equal(t, "92658374", r.LabelOrder(), "query has no side effects")
	assert.Equal(t, uint64(10), r.Rounds())

	r.PlayUntil(100)
	assert.Equal(t, "67384529", r.LabelOrder())
}

func TestLabelOrderMultiDigit(t *testing.T) {
	r, err := cups.NewExtended([]int{1, 2, 3}, 12)
	require.NoError(t, err)

	assert.Equal(t, "23456789101112", r.LabelOrder())
}

func TestProduct(t *testing.T) {
	r, err := cups.New(example)
	require.NoError(t, err)

	r.PlayUntil(10)
	a, b := r.StarCups()
	assert.Equal(t, cups.Label(9), a)
	assert.Equal(t, cups.Label(2), b)
	assert.Equal(t, uint64(18), r.Product())
}

func TestProductExtended(t *testing.T) {
	if testing.Short() {
		t.Skip("ten million rounds over a million cups")
	}

	r, err := cups.NewExtended(example, cups.MaxCapacity)
	require.NoError(t, err)

	r.PlayUntil(10_000_000)

	a, b := r.StarCups()
	assert.Equal(t, cups.Label(934001), a)
	assert.Equal(t, cups.Label(159792), b)
	assert.Equal(t, uint64(149245887792), r.Product())
	assert.NoError(t, r.Verify())
}

func TestString(t *testing.T) {
	r, err := cups.New(example)
	require.NoError(t, err)

	assert.Equal(t, "(3) 8 9 1 2 5 4 6 7", r.String())

	big, err := cups.NewExtended(example, 100)
	require.NoError(t, err)
	assert.Contains(t, big.String(), " ...")
}
