// Package environment holds ParsingEnvironment, the per-transaction
// aggregate of every context-specific and revertable storage, plus the
// active call context and current step index. It is the single object the
// information-flow DSL reads from and writes to while parsing one
// transaction's trace.
package environment

import (
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/storage"
)

// hookable is satisfied by every storage ParsingEnvironment owns.
type hookable interface {
	OnCallEnter(current, next *callcontext.CallContext)
	OnCallExit(current, next *callcontext.CallContext)
	OnRevert(current, next *callcontext.CallContext)
}

// ParsingEnvironment is the mutable state threaded through a single
// transaction's parse. CurrentStepIndex advances once per trace line;
// CurrentCallContext tracks the active call/create frame.
type ParsingEnvironment struct {
	CurrentCallContext *callcontext.CallContext
	CurrentStepIndex   int

	stackStorage     *storage.ContextSpecificStorage[*storage.Stack]
	memoryStorage    *storage.ContextSpecificStorage[*storage.Memory]
	balancesStorage  *storage.RevertableStorage[*storage.Balances]
	transientStorage *storage.RevertableStorage[*storage.AddressKeyStorage]
	persistentStorage *storage.RevertableStorage[*storage.AddressKeyStorage]
	lastSubContext   *storage.LastExecutedSubContextStorage
}

// New builds a ParsingEnvironment rooted at rootCallContext, with every
// storage starting empty.
func New(rootCallContext *callcontext.CallContext) *ParsingEnvironment {
	return &ParsingEnvironment{
		CurrentCallContext: rootCallContext,
		CurrentStepIndex:   0,
		stackStorage:       storage.NewContextSpecificStorage(storage.NewStack),
		memoryStorage:      storage.NewContextSpecificStorage(storage.NewMemory),
		balancesStorage:    storage.NewRevertableStorage(storage.NewBalances()),
		transientStorage:   storage.NewRevertableStorage(storage.NewAddressKeyStorage()),
		persistentStorage:  storage.NewRevertableStorage(storage.NewAddressKeyStorage()),
		lastSubContext:     storage.NewLastExecutedSubContextStorage(),
	}
}

// storages returns every owned storage in the fixed order lifecycle hooks
// must fan out in: the last-executed-subcontext tracker first (so a
// freshly entered context starts with no visible sibling return data),
// then the two context-specific storages, then the three revertable ones.
func (e *ParsingEnvironment) storages() []hookable {
	return []hookable{
		e.lastSubContext,
		e.stackStorage,
		e.memoryStorage,
		e.balancesStorage,
		e.persistentStorage,
		e.transientStorage,
	}
}

// OnCallEnter fans out to every storage, then switches the active call
// context to next.
func (e *ParsingEnvironment) OnCallEnter(next *callcontext.CallContext) {
	for _, s := range e.storages() {
		s.OnCallEnter(e.CurrentCallContext, next)
	}
	e.CurrentCallContext = next
}

// OnCallExit fans out to every storage, then switches the active call
// context to next (the parent).
func (e *ParsingEnvironment) OnCallExit(next *callcontext.CallContext) {
	for _, s := range e.storages() {
		s.OnCallExit(e.CurrentCallContext, next)
	}
	e.CurrentCallContext = next
}

// OnRevert fans out to every storage, then switches the active call
// context to next (the parent).
func (e *ParsingEnvironment) OnRevert(next *callcontext.CallContext) {
	for _, s := range e.storages() {
		s.OnRevert(e.CurrentCallContext, next)
	}
	e.CurrentCallContext = next
}

// Stack returns the stack for the active call context.
func (e *ParsingEnvironment) Stack() *storage.Stack { return e.stackStorage.Current() }

// Memory returns the memory for the active call context.
func (e *ParsingEnvironment) Memory() *storage.Memory { return e.memoryStorage.Current() }

// Balances returns the live balances table.
func (e *ParsingEnvironment) Balances() *storage.Balances { return e.balancesStorage.Current() }

// TransientStorage returns the live transient storage table.
func (e *ParsingEnvironment) TransientStorage() *storage.AddressKeyStorage {
	return e.transientStorage.Current()
}

// PersistentStorage returns the live persistent storage table.
func (e *ParsingEnvironment) PersistentStorage() *storage.AddressKeyStorage {
	return e.persistentStorage.Current()
}

// LastExecutedSubContext returns the most recently exited direct child of
// the active call context, or nil.
func (e *ParsingEnvironment) LastExecutedSubContext() *callcontext.CallContext {
	return e.lastSubContext.Current()
}
