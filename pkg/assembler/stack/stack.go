package stack

type Stack[T any] struct {
	a []T
}

// NewStack creates a new stack instance
func NewStack[T any](elm ...T) *Stack[T] {
	return &Stack[T]{a: append([]T(nil), elm...)}
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.a) < 1 {
		return zero, false
	}

	elm := s.a[len(s.a)-1]
	s.a[len(s.a)-1] = zero
	s.a = s.a[:len(s.a)-1]

	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.a) < 1 {
		var zero T
		return zero, false
	}

	return s.a[len(s.a)-1], true
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}
