package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/stepidx"
	"github.com/ethflow/tracewalk/storage"
)

// addressKeyAccessor abstracts over persistent and transient storage so
// their get/set nodes share one implementation.
type addressKeyAccessor interface {
	Get(addr bytesx.HexString, key bytesx.ByteGroup) (bytesx.ByteGroup, bool)
	Set(addr bytesx.HexString, key bytesx.ByteGroup, value bytesx.ByteGroup)
}

type addressKeyGetNode struct {
	key     ResultNode
	fallbackStep int
	accessor func(env *environment.ParsingEnvironment) addressKeyAccessor
	recordAccess func(addr bytesx.HexString, key, value bytesx.ByteGroup) storage.StorageAccesses
}

func (n addressKeyGetNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	keyFlow := n.key.ComputeResult(env, oracle)
	addr := env.CurrentCallContext.StorageAddress

	value, ok := n.accessor(env).Get(addr, keyFlow.Result)
	if !ok {
		// Unknown slot: fall back to the trace's own post-execution stack
		// (the value SLOAD pushed), tagged with the fallback step
		// (PRESTATE, since this slot predates the transaction as far as
		// this flow is concerned).
		value = bytesx.FromHexString(oracle.StackPeek(0), n.fallbackStep).ToSize(32, n.fallbackStep)
	}

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(keyFlow.Accesses, n.recordAccess(addr, keyFlow.Result, value)),
			Writes:   keyFlow.Writes,
		},
		Result: value,
	}
}

type addressKeySetNode struct {
	key, value ResultNode
	accessor func(env *environment.ParsingEnvironment) addressKeyAccessor
	recordWrite func(addr bytesx.HexString, key, value bytesx.ByteGroup) storage.StorageWrites
}

func (n addressKeySetNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	keyFlow := n.key.ComputeResult(env, oracle)
	valueFlow := n.value.ComputeResult(env, oracle)
	addr := env.CurrentCallContext.StorageAddress

	return Flow{
		Accesses: storage.MergeAccesses(keyFlow.Accesses, valueFlow.Accesses),
		Writes:   storage.MergeWrites(keyFlow.Writes, valueFlow.Writes, n.recordWrite(addr, keyFlow.Result, valueFlow.Result)),
	}
}

// PersistentStorageGet reads a persistent storage slot (SLOAD), falling
// back to PRESTATE provenance for a slot never written this transaction.
func PersistentStorageGet(key ResultNode) ResultNode {
	return addressKeyGetNode{
		key:          key,
		fallbackStep: stepidx.Prestate,
		accessor: func(env *environment.ParsingEnvironment) addressKeyAccessor {
			return env.PersistentStorage()
		},
		recordAccess: func(addr bytesx.HexString, key, value bytesx.ByteGroup) storage.StorageAccesses {
			return storage.StorageAccesses{Persistent: []storage.PersistentStorageAccess{{Address: addr, Key: key, Value: value}}}
		},
	}
}

// PersistentStorageSet writes a persistent storage slot (SSTORE).
func PersistentStorageSet(key, value ResultNode) Node {
	return addressKeySetNode{
		key: key, value: value,
		accessor: func(env *environment.ParsingEnvironment) addressKeyAccessor {
			return env.PersistentStorage()
		},
		recordWrite: func(addr bytesx.HexString, key, value bytesx.ByteGroup) storage.StorageWrites {
			return storage.StorageWrites{Persistent: []storage.PersistentStorageWrite{{Address: addr, Key: key, Value: value}}}
		},
	}
}

// TransientStorageGet reads a transient storage slot (TLOAD), falling
// back to zero tagged with the current step for a slot never written
// this transaction (transient storage always starts zeroed).
func TransientStorageGet(key ResultNode) ResultNode {
	return addressKeyGetCurrentStepNode{key: key}
}

// addressKeyGetCurrentStepNode is like addressKeyGetNode but its
// fallback step is the evaluating environment's current step rather than
// a constant, since transient storage (unlike persistent storage) has no
// prestate to fall back to.
type addressKeyGetCurrentStepNode struct {
	key ResultNode
}

func (n addressKeyGetCurrentStepNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	keyFlow := n.key.ComputeResult(env, oracle)
	addr := env.CurrentCallContext.StorageAddress

	value, ok := env.TransientStorage().Get(addr, keyFlow.Result)
	if !ok {
		value = bytesx.Zeros(32, env.CurrentStepIndex)
	}

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(keyFlow.Accesses, storage.StorageAccesses{
				Transient: []storage.TransientStorageAccess{{Address: addr, Key: keyFlow.Result, Value: value}},
			}),
			Writes: keyFlow.Writes,
		},
		Result: value,
	}
}

// TransientStorageSet writes a transient storage slot (TSTORE).
func TransientStorageSet(key, value ResultNode) Node {
	return addressKeySetNode{
		key: key, value: value,
		accessor: func(env *environment.ParsingEnvironment) addressKeyAccessor {
			return env.TransientStorage()
		},
		recordWrite: func(addr bytesx.HexString, key, value bytesx.ByteGroup) storage.StorageWrites {
			return storage.StorageWrites{Transient: []storage.TransientStorageWrite{{Address: addr, Key: key, Value: value}}}
		},
	}
}
