package storage

import (
	"fmt"

	"github.com/ethflow/tracewalk/bytesx"
)

// Stack is an ordered sequence of fixed 32-byte tagged byte groups, index 0
// being the top.
type Stack struct {
	values []bytesx.ByteGroup
}

// NewStack returns an empty stack. It satisfies the factory shape expected
// by ContextSpecificStorage.
func NewStack() *Stack {
	return &Stack{}
}

// Peek returns the nth element from the top (0-indexed) without removing
// it.
func (s *Stack) Peek(index int) bytesx.ByteGroup {
	return s.values[len(s.values)-1-index]
}

// Push adds value to the top of the stack. value must be exactly 32
// bytes.
func (s *Stack) Push(value bytesx.ByteGroup) error {
	if value.Len() != 32 {
		return fmt.Errorf("storage: invalid size for stack push: %d", value.Len())
	}
	s.values = append(s.values, value)
	return nil
}

// Pop removes and returns the top element.
func (s *Stack) Pop() bytesx.ByteGroup {
	top := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return top
}

// Set overwrites the nth element from the top (0-indexed). value must be
// exactly 32 bytes.
func (s *Stack) Set(index int, value bytesx.ByteGroup) error {
	if value.Len() != 32 {
		return fmt.Errorf("storage: invalid size for stack set: %d", value.Len())
	}
	s.values[len(s.values)-1-index] = value
	return nil
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.values = nil
}

// Size returns the number of elements on the stack.
func (s *Stack) Size() int {
	return len(s.values)
}

// All returns every element, top first. Callers must not mutate the
// result.
func (s *Stack) All() []bytesx.ByteGroup {
	out := make([]bytesx.ByteGroup, len(s.values))
	for i := range out {
		out[i] = s.Peek(i)
	}
	return out
}

// Clone returns a deep-enough copy of s for use as a revert/commit
// snapshot. ByteGroups are immutable after construction, so only the
// backing slice needs copying.
func (s *Stack) Clone() *Stack {
	out := &Stack{values: make([]bytesx.ByteGroup, len(s.values))}
	copy(out.values, s.values)
	return out
}
