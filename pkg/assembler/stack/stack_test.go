package stack_test

import (
	"loki/pkg/assembler/stack"
	"testing"
)

func TestStack(t *testing.T) {
	s := stack.NewStack(1, 2)
	s.Push(3)

	if s.Size() != 3 {
		t.Fatalf("Size: expected 3, got %d", s.Size())
	}
	if top, ok := s.Peek(); !ok || top != 3 {
		t.Errorf("Peek: expected 3, got %d", top)
	}

	for _, expected := range []int{3, 2, 1} {
		got, ok := s.Pop()
		if !ok || got != expected {
			t.Errorf("Pop: expected %d, got %d (ok=%v)", expected, got, ok)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Error("Pop on empty stack succeeded")
	}
	if _, ok := s.Peek(); ok {
		t.Error("Peek on empty stack succeeded")
	}
}
