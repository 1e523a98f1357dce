package cups_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"gregoryjjb/cups/cups"
)

// sliceGame plays the game by copying slices around. It is far too slow
// for real use but simple enough to trust.
type sliceGame struct {
	values   []int
	position int
}

func (g *sliceGame) round() {
	n := len(g.values)
	current := g.values[g.position]

	rotated := append(append([]int{}, g.values[g.position:]...), g.values[:g.position]...)
	picked := append([]int{}, rotated[1:4]...)
	rest := append([]int{current}, rotated[4:]...)

	dst := current
	for {
		dst--
		if dst == 0 {
			dst = n
		}
		if dst != picked[0] && dst != picked[1] && dst != picked[2] {
			break
		}
	}

	out := make([]int, 0, n)
	for _, v := range rest {
		out = append(out, v)
		if v == dst {
			out = append(out, picked...)
		}
	}

	g.values = out
	g.position = 1
}

func (g *sliceGame) labels() []cups.Label {
	out := make([]cups.Label, 0, len(g.values))
	for i := range g.values {
		out = append(out, cups.Label(g.values[(g.position+i)%len(g.values)]))
	}
	return out
}

func TestRingMatchesSliceGame(t *testing.T) {
	rng := rand.New(rand.NewSource(23))

	for _, size := range []int{4, 5, 9, 10, 17, 40} {
		for trial := 0; trial < 5; trial++ {
			perm := rng.Perm(size)
			for i := range perm {
				perm[i]++
			}

			ring, err := cups.New(perm)
			require.NoError(t, err)
			ref := &sliceGame{values: append([]int{}, perm...)}

			for round := 1; round <= 200; round++ {
				ring.Round()
				ref.round()
				require.Equal(t, ref.labels(), ring.Labels(), "size %d trial %d round %d", size, trial, round)
			}
		}
	}
}
