package storage

import "github.com/ethflow/tracewalk/callcontext"

// Hookable is implemented by every storage wrapper the parsing environment
// fans lifecycle events out to: ContextSpecificStorage (per-call-context
// Stack and Memory), RevertableStorage (Balances and the two
// AddressKeyStorage instances) and LastExecutedSubContextStorage.
type Hookable interface {
	OnCallEnter(current, next *callcontext.CallContext)
	OnCallExit(current, next *callcontext.CallContext)
	OnRevert(current, next *callcontext.CallContext)
}
