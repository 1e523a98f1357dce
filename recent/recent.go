// Package recent keeps the last few values pushed to it in a fixed,
// preallocated circular buffer.
package recent

import "sync"

type History[T any] struct {
	values   []T
	position int
	full     bool
	mu       sync.Mutex
}

// New returns a history holding at most size values. size must be positive.
func New[T any](size int) *History[T] {
	if size <= 0 {
		panic("recent: size must be positive")
	}
	return &History[T]{
		values: make([]T, size),
	}
}

// Push records v, evicting the oldest value when the history is full.
func (h *History[T]) Push(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.values[h.position] = v
	h.position++

	if h.position >= len(h.values) {
		h.position = 0
		h.full = true
	}
}

func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.full {
		return len(h.values)
	}
	return h.position
}

// Each calls fn for every value from oldest to newest.
func (h *History[T]) Each(fn func(T)) {
	for _, v := range h.Snapshot() {
		fn(v)
	}
}

// Snapshot copies the values out, oldest first.
func (h *History[T]) Snapshot() []T {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		return append([]T(nil), h.values[:h.position]...)
	}

	out := make([]T, 0, len(h.values))
	out = append(out, h.values[h.position:]...)
	return append(out, h.values[:h.position]...)
}

// Latest returns the most recent value, if any.
func (h *History[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if !h.full && h.position == 0 {
		return zero, false
	}

	i := h.position - 1
	if i < 0 {
		i = len(h.values) - 1
	}
	return h.values[i], true
}
