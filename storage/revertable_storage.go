package storage

import "github.com/ethflow/tracewalk/callcontext"

// cloner is satisfied by any storage value that can snapshot itself.
type cloner[T any] interface {
	Clone() T
}

// RevertableStorage holds a single current value of T plus a stack of
// snapshots. A call enter snapshots the current value; a normal exit
// discards the snapshot (commit); a revert restores it (rollback). Used
// for Balances and the two AddressKeyStorage instances (persistent,
// transient).
type RevertableStorage[T cloner[T]] struct {
	current   T
	snapshots []T
}

// NewRevertableStorage wraps initial as the root-level value.
func NewRevertableStorage[T cloner[T]](initial T) *RevertableStorage[T] {
	return &RevertableStorage[T]{current: initial}
}

// Current returns the live value.
func (r *RevertableStorage[T]) Current() T {
	return r.current
}

// OnCallEnter snapshots the current value.
func (r *RevertableStorage[T]) OnCallEnter(_, _ *callcontext.CallContext) {
	r.snapshots = append(r.snapshots, r.current.Clone())
}

// OnCallExit commits: the most recent snapshot is discarded, keeping
// whatever changes the exiting call context made.
func (r *RevertableStorage[T]) OnCallExit(_, _ *callcontext.CallContext) {
	r.snapshots = r.snapshots[:len(r.snapshots)-1]
}

// OnRevert rolls back: the current value is replaced by the most recent
// snapshot.
func (r *RevertableStorage[T]) OnRevert(_, _ *callcontext.CallContext) {
	last := len(r.snapshots) - 1
	r.current = r.snapshots[last]
	r.snapshots = r.snapshots[:last]
}
