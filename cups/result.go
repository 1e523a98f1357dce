package cups

import (
	"strconv"
	"strings"
)

// LabelOrder concatenates the labels clockwise after cup 1, excluding cup 1.
func (r *Ring) LabelOrder() string {
	var sb strings.Builder
	sb.Grow(int(r.max))

	var buf [10]byte
	l := r.next[1]
	for i := Label(1); i < r.max; i++ {
		sb.Write(strconv.AppendUint(buf[:0], uint64(l), 10))
		l = r.next[l]
	}
	return sb.String()
}

// StarCups returns the two cups immediately clockwise of cup 1.
func (r *Ring) StarCups() (Label, Label) {
	a := r.next[1]
	return a, r.next[a]
}

// Product multiplies the two cups after cup 1.
func (r *Ring) Product() uint64 {
	a, b := r.StarCups()
	return uint64(a) * uint64(b)
}
