// Package cups simulates the crab's cup game on a ring of labeled cups.
//
// The ring is stored as a successor arena indexed by label: next[l] is the
// label of the cup clockwise from cup l. Every round is a constant number of
// arena reads and writes, which keeps a one million cup ring playable for
// tens of millions of rounds.
package cups

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxCapacity is the largest label an arena can hold.
const MaxCapacity = 1_000_000

// minCups is the smallest ring that has a current cup plus three to pick.
const minCups = 4

var (
	ErrTooFewCups     = errors.New("too few cups")
	ErrLabelRange     = errors.New("label out of range")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrMissingLabel   = errors.New("missing label")
	ErrCapacity       = errors.New("capacity exceeded")
	ErrBrokenRing     = errors.New("broken ring")
)

// Label identifies a cup and is also its index in the arena.
type Label uint32

// Move describes what happened during the most recent round.
type Move struct {
	Current     Label
	Picked      [3]Label
	Destination Label
}

// Ring is the game state. It is not safe for concurrent use.
type Ring struct {
	next    []Label // next[0] is unused
	current Label
	max     Label
	rounds  uint64
	last    Move
}

// New builds a ring holding exactly the given labels in clockwise order.
// The labels must be a permutation of 1..len(labels).
func New(labels []int) (*Ring, error) {
	return build(labels, 0)
}

// NewExtended builds a ring from the given labels followed by every label
// from max(labels)+1 up to extendTo in increasing order.
func NewExtended(labels []int, extendTo int) (*Ring, error) {
	if extendTo > MaxCapacity {
		return nil, fmt.Errorf("%w: cannot extend to %d cups, limit is %d", ErrCapacity, extendTo, MaxCapacity)
	}
	return build(labels, extendTo)
}

func build(labels []int, extendTo int) (*Ring, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels given", ErrTooFewCups)
	}

	highest := 0
	for _, v := range labels {
		if v < 1 || v > MaxCapacity {
			return nil, fmt.Errorf("%w: %d is not within 1..%d", ErrLabelRange, v, MaxCapacity)
		}
		if v > highest {
			highest = v
		}
	}

	top := highest
	if extendTo != 0 {
		if extendTo < highest {
			return nil, fmt.Errorf("%w: cannot extend to %d, labels already reach %d", ErrCapacity, extendTo, highest)
		}
		top = extendTo
	}
	if top < minCups {
		return nil, fmt.Errorf("%w: need at least %d cups, have %d", ErrTooFewCups, minCups, top)
	}

	// Allocated once; the ring never grows.
	next := make([]Label, top+1)

	first := Label(labels[0])
	last := first
	for _, v := range labels[1:] {
		l := Label(v)
		// Every label seen so far has a successor, except the tail.
		if next[l] != 0 || l == last {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateLabel, v)
		}
		next[last] = l
		last = l
	}

	if len(labels) != highest {
		for l := 1; l <= highest; l++ {
			if next[l] == 0 && Label(l) != last {
				return nil, fmt.Errorf("%w: %d (labels must cover 1..%d)", ErrMissingLabel, l, highest)
			}
		}
	}

	for l := Label(highest + 1); l <= Label(top); l++ {
		next[last] = l
		last = l
	}
	next[last] = first

	return &Ring{
		next:    next,
		current: first,
		max:     Label(top),
	}, nil
}

// Round plays a single move and returns the number of rounds played so far.
func (r *Ring) Round() uint64 {
	next := r.next
	cur := r.current

	p0 := next[cur]
	p1 := next[p0]
	p2 := next[p1]
	next[cur] = next[p2]

	dst := cur
	for {
		dst--
		if dst == 0 {
			dst = r.max
		}
		if dst != p0 && dst != p1 && dst != p2 {
			break
		}
	}

	next[p2] = next[dst]
	next[dst] = p0

	r.last = Move{Current: cur, Picked: [3]Label{p0, p1, p2}, Destination: dst}
	r.current = next[cur]
	r.rounds++
	return r.rounds
}

// PlayUntil plays rounds until the round counter reaches target.
func (r *Ring) PlayUntil(target uint64) {
	for r.rounds < target {
		r.Round()
	}
}

func (r *Ring) Rounds() uint64 {
	return r.rounds
}

func (r *Ring) Current() Label {
	return r.current
}

// MaxLabel is the highest label in the ring. The destination search wraps
// from 1 to MaxLabel.
func (r *Ring) MaxLabel() Label {
	return r.max
}

// Len is the number of cups in the ring.
func (r *Ring) Len() int {
	return int(r.max)
}

// LastMove returns the move made by the latest round. It is the zero Move
// before the first round.
func (r *Ring) LastMove() Move {
	return r.last
}

// Next returns the label clockwise from l.
func (r *Ring) Next(l Label) Label {
	return r.next[l]
}

// Labels returns every label in clockwise order starting at the current cup.
func (r *Ring) Labels() []Label {
	out := make([]Label, 0, r.max)
	l := r.current
	for i := Label(0); i < r.max; i++ {
		out = append(out, l)
		l = r.next[l]
	}
	return out
}

const maxRendered = 64

// String renders the ring from the current cup, which is wrapped in parentheses.
func (r *Ring) String() string {
	var sb strings.Builder
	l := r.current
	for i := 0; i < int(r.max) && i < maxRendered; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i == 0 {
			sb.WriteByte('(')
			sb.WriteString(strconv.FormatUint(uint64(l), 10))
			sb.WriteByte(')')
		} else {
			sb.WriteString(strconv.FormatUint(uint64(l), 10))
		}
		l = r.next[l]
	}
	if int(r.max) > maxRendered {
		sb.WriteString(" ...")
	}
	return sb.String()
}

// Verify walks the ring from cup 1 and checks that it forms one cycle through
// all MaxLabel cups. A non-nil error means the ring is corrupt and must not be
// used further.
func (r *Ring) Verify() error {
	if len(r.next) != int(r.max)+1 {
		return fmt.Errorf("%w: arena holds %d slots for %d cups", ErrBrokenRing, len(r.next), r.max)
	}
	if r.current < 1 || r.current > r.max {
		return fmt.Errorf("%w: current cup %d outside 1..%d", ErrBrokenRing, r.current, r.max)
	}

	l := Label(1)
	for step := Label(1); step <= r.max; step++ {
		l = r.next[l]
		if l < 1 || l > r.max {
			return fmt.Errorf("%w: step %d reached label %d outside 1..%d", ErrBrokenRing, step, l, r.max)
		}
		if l == 1 && step != r.max {
			return fmt.Errorf("%w: cycle through cup 1 has %d cups, want %d", ErrBrokenRing, step, r.max)
		}
	}
	if l != 1 {
		return fmt.Errorf("%w: cup 1 not reached again after %d steps", ErrBrokenRing, r.max)
	}
	return nil
}
