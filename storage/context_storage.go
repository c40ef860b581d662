package storage

import "github.com/ethflow/tracewalk/callcontext"

// ContextSpecificStorage holds one T per active call context: fresh on
// enter, discarded on exit or revert. Used for Stack and Memory, neither of
// which survives a sub-call.
type ContextSpecificStorage[T any] struct {
	factory func() T
	frames  []T
}

// NewContextSpecificStorage returns a storage with a single root-level
// frame produced by factory.
func NewContextSpecificStorage[T any](factory func() T) *ContextSpecificStorage[T] {
	return &ContextSpecificStorage[T]{
		factory: factory,
		frames:  []T{factory()},
	}
}

// Current returns the frame for the active call context.
func (s *ContextSpecificStorage[T]) Current() T {
	return s.frames[len(s.frames)-1]
}

// OnCallEnter pushes a fresh frame for the newly entered call context.
func (s *ContextSpecificStorage[T]) OnCallEnter(_, _ *callcontext.CallContext) {
	s.frames = append(s.frames, s.factory())
}

// OnCallExit discards the exiting call context's frame.
func (s *ContextSpecificStorage[T]) OnCallExit(_, _ *callcontext.CallContext) {
	s.frames = s.frames[:len(s.frames)-1]
}

// OnRevert discards the exiting call context's frame, same as a normal
// exit: stack and memory are never revertable, only discarded.
func (s *ContextSpecificStorage[T]) OnRevert(_, _ *callcontext.CallContext) {
	s.frames = s.frames[:len(s.frames)-1]
}
