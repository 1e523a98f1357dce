package main

// CircularList walks a fixed list of values round and round, counting laps.
type CircularList[T any] struct {
	values   []T
	position int
	laps     int
}

func NewCircularList[T any](vs []T) *CircularList[T] {
	return &CircularList[T]{values: vs}
}

// Replace swaps in new values and rewinds to the first one.
func (cl *CircularList[T]) Replace(newValues []T) {
	cl.values = newValues
	cl.position = 0
	cl.laps = 0
}

func (cl *CircularList[T]) Clear() {
	cl.Replace(nil)
}

func (cl *CircularList[T]) Current() (T, bool) {
	var value T
	if len(cl.values) == 0 {
		return value, false
	}
	return cl.values[cl.position], true
}

func (cl *CircularList[T]) PeekNext() (T, bool) {
	var value T
	if len(cl.values) == 0 {
		return value, false
	}
	return cl.values[cl.nextPosition()], true
}

// Advance moves to the next value and reports whether that completed a lap.
func (cl *CircularList[T]) Advance() bool {
	if len(cl.values) == 0 {
		return false
	}
	cl.position = cl.nextPosition()
	if cl.position == 0 {
		cl.laps++
		return true
	}
	return false
}

func (cl *CircularList[T]) Len() int {
	return len(cl.values)
}

// Laps counts how many times Advance has wrapped back to the start.
func (cl *CircularList[T]) Laps() int {
	return cl.laps
}

func (cl *CircularList[T]) nextPosition() int {
	p := cl.position + 1
	if p >= len(cl.values) {
		p = 0
	}
	return p
}
