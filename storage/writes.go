package storage

import "github.com/ethflow/tracewalk/bytesx"

// --- accesses -----------------------------------------------------------

// StackAccess records a read of the stack entry index positions below the
// top (0 = top) at the time of the read.
type StackAccess struct {
	Index int
	Value bytesx.ByteGroup
}

// MemoryAccess records a read of memory starting at Offset.
type MemoryAccess struct {
	Offset int
	Value  bytesx.ByteGroup
}

// PersistentStorageAccess records a read of a persistent storage slot.
type PersistentStorageAccess struct {
	Address bytesx.HexString
	Key     bytesx.ByteGroup
	Value   bytesx.ByteGroup
}

// TransientStorageAccess records a read of a transient storage slot.
type TransientStorageAccess struct {
	Address bytesx.HexString
	Key     bytesx.ByteGroup
	Value   bytesx.ByteGroup
}

// BalanceAccess records that an instruction observed addr's balance, as of
// the step it was last modified (or stepidx.Prestate).
type BalanceAccess struct {
	Address                bytesx.ByteGroup
	LastModifiedStepIndex int
}

// CalldataAccess records a read of the calldata starting at Offset.
type CalldataAccess struct {
	Offset int
	Value  bytesx.ByteGroup
}

// CallvalueAccess records a read of the call's value.
type CallvalueAccess struct {
	Value bytesx.ByteGroup
}

// ReturnDataAccess records a read of the last sub-context's return data.
type ReturnDataAccess struct {
	Offset int
	Size   int
	Value  bytesx.ByteGroup
}

// StorageAccesses is everything a single instruction read.
type StorageAccesses struct {
	Stack      []StackAccess
	Memory     []MemoryAccess
	Persistent []PersistentStorageAccess
	Transient  []TransientStorageAccess
	Balance    []BalanceAccess
	Calldata   []CalldataAccess
	Callvalue  []CallvalueAccess
	ReturnData *ReturnDataAccess
}

// MergeAccesses concatenates every list across accs and keeps the first
// non-nil ReturnData.
func MergeAccesses(accs ...StorageAccesses) StorageAccesses {
	var out StorageAccesses
	for _, a := range accs {
		out.Stack = append(out.Stack, a.Stack...)
		out.Memory = append(out.Memory, a.Memory...)
		out.Persistent = append(out.Persistent, a.Persistent...)
		out.Transient = append(out.Transient, a.Transient...)
		out.Balance = append(out.Balance, a.Balance...)
		out.Calldata = append(out.Calldata, a.Calldata...)
		out.Callvalue = append(out.Callvalue, a.Callvalue...)
		if out.ReturnData == nil {
			out.ReturnData = a.ReturnData
		}
	}
	return out
}

// Dependency is one provenance-contiguous slice of a single access,
// yielded by StorageAccesses.Dependencies for building the information
// flow graph.
type Dependency struct {
	ProducerStep int
	Group        bytesx.ByteGroup // nil for balance accesses
}

// Dependencies enumerates, for every access in a, one Dependency per
// provenance-contiguous byte run (balance accesses contribute exactly one
// Dependency each, with a nil Group, since they carry no bytes).
func (a StorageAccesses) Dependencies() []Dependency {
	var out []Dependency
	emit := func(g bytesx.ByteGroup) {
		for _, run := range g.SplitByDependencies() {
			for step := range run.DependsOnInstructionIndexes() {
				out = append(out, Dependency{ProducerStep: step, Group: run})
			}
		}
	}
	for _, sa := range a.Stack {
		emit(sa.Value)
	}
	for _, ma := range a.Memory {
		emit(ma.Value)
	}
	for _, pa := range a.Persistent {
		emit(pa.Value)
	}
	for _, ta := range a.Transient {
		emit(ta.Value)
	}
	for _, ca := range a.Calldata {
		emit(ca.Value)
	}
	for _, cv := range a.Callvalue {
		emit(cv.Value)
	}
	for _, ba := range a.Balance {
		out = append(out, Dependency{ProducerStep: ba.LastModifiedStepIndex})
	}
	if a.ReturnData != nil {
		emit(a.ReturnData.Value)
	}
	return out
}

// --- writes ---------------------------------------------------------------

// StackSet overwrites a stack entry in place.
type StackSet struct {
	Index int
	Value bytesx.ByteGroup
}

// StackPush appends a new 32-byte value to the stack.
type StackPush struct {
	Value bytesx.ByteGroup
}

// StackPop removes the stack's top entry.
type StackPop struct{}

// MemoryWrite places Value at Offset.
type MemoryWrite struct {
	Offset int
	Value  bytesx.ByteGroup
}

// CalldataWrite records the bytes copied by a CALL-family opcode into its
// child's calldata.
type CalldataWrite struct {
	Value bytesx.ByteGroup
}

// ReturnWrite records the bytes a RETURN/REVERT places into the current
// context's return data.
type ReturnWrite struct {
	Value bytesx.ByteGroup
}

// PersistentStorageWrite sets a persistent storage slot.
type PersistentStorageWrite struct {
	Address bytesx.HexString
	Key     bytesx.ByteGroup
	Value   bytesx.ByteGroup
}

// TransientStorageWrite sets a transient storage slot.
type TransientStorageWrite struct {
	Address bytesx.HexString
	Key     bytesx.ByteGroup
	Value   bytesx.ByteGroup
}

// BalanceTransferWrite moves value from one address to another.
type BalanceTransferWrite struct {
	From  bytesx.ByteGroup
	To    bytesx.ByteGroup
	Value bytesx.ByteGroup
}

// SelfdestructWrite moves an account's entire balance to To and removes
// it.
type SelfdestructWrite struct {
	From bytesx.ByteGroup
	To   bytesx.ByteGroup
}

// StorageWrites is everything a single instruction produced.
type StorageWrites struct {
	StackPops   []StackPop
	StackSets   []StackSet
	StackPushes []StackPush
	Memory      []MemoryWrite
	Calldata    *CalldataWrite
	ReturnData  *ReturnWrite
	Persistent  []PersistentStorageWrite
	Transient   []TransientStorageWrite
	Balance     []BalanceTransferWrite
	Selfdestruct []SelfdestructWrite
}

// MergeWrites concatenates every list across ws and keeps the first
// non-nil Calldata/ReturnData.
func MergeWrites(ws ...StorageWrites) StorageWrites {
	var out StorageWrites
	for _, w := range ws {
		out.StackPops = append(out.StackPops, w.StackPops...)
		out.StackSets = append(out.StackSets, w.StackSets...)
		out.StackPushes = append(out.StackPushes, w.StackPushes...)
		out.Memory = append(out.Memory, w.Memory...)
		out.Persistent = append(out.Persistent, w.Persistent...)
		out.Transient = append(out.Transient, w.Transient...)
		out.Balance = append(out.Balance, w.Balance...)
		out.Selfdestruct = append(out.Selfdestruct, w.Selfdestruct...)
		if out.Calldata == nil {
			out.Calldata = w.Calldata
		}
		if out.ReturnData == nil {
			out.ReturnData = w.ReturnData
		}
	}
	return out
}
