package storage

import "github.com/ethflow/tracewalk/callcontext"

// LastExecutedSubContextStorage tracks, for each active call depth, the
// most recently exited direct child context. It is what RETURNDATASIZE /
// RETURNDATACOPY consult, and it always reflects only the most recent
// sub-call, even if several ran at the same depth in sequence.
type LastExecutedSubContextStorage struct {
	frames []*callcontext.CallContext
}

// NewLastExecutedSubContextStorage returns a storage with a single nil
// root-level frame (no sub-context has exited yet).
func NewLastExecutedSubContextStorage() *LastExecutedSubContextStorage {
	return &LastExecutedSubContextStorage{frames: []*callcontext.CallContext{nil}}
}

// Current returns the last sub-context that exited back to the active call
// context, or nil if none has.
func (s *LastExecutedSubContextStorage) Current() *callcontext.CallContext {
	return s.frames[len(s.frames)-1]
}

// OnCallEnter pushes a fresh (nil) frame for the newly entered context.
func (s *LastExecutedSubContextStorage) OnCallEnter(_, _ *callcontext.CallContext) {
	s.frames = append(s.frames, nil)
}

// OnCallExit pops the exiting context's frame and records it as the
// parent's most recent sub-context.
func (s *LastExecutedSubContextStorage) OnCallExit(current, _ *callcontext.CallContext) {
	s.frames = s.frames[:len(s.frames)-1]
	s.frames[len(s.frames)-1] = current
}

// OnRevert behaves exactly like OnCallExit: a reverted child's return data
// is still visible to the parent via RETURNDATASIZE/RETURNDATACOPY.
func (s *LastExecutedSubContextStorage) OnRevert(current, next *callcontext.CallContext) {
	s.OnCallExit(current, next)
}
