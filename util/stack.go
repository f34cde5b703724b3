package util

import "iter"

// Stack is a LIFO stack. The zero value is an empty stack.
type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}

// Pop removes and returns the most recently pushed item
func (s *Stack[A]) Pop() (A, bool) {
	var zero A
	if len(s.items) == 0 {
		return zero, false
	}
	last := len(s.items) - 1
	v := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return v, true
}

// Drain pops every item, most recently pushed first
func (s *Stack[A]) Drain() iter.Seq[A] {
	return func(yield func(A) bool) {
		for v, ok := s.Pop(); ok; v, ok = s.Pop() {
			if !yield(v) {
				return
			}
		}
	}
}
