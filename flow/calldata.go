package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/storage"
)

// calldataRangeNode reads size bytes at the evaluated offset from the
// current call context's calldata, zero-padding (tagged with the current
// step) past its end. size is a Go int rather than a node because every
// call site reads a fixed-width word (CALLDATALOAD always reads 32
// bytes); only the offset varies per instruction.
type calldataRangeNode struct {
	offset ResultNode
	size   int
}

func (n calldataRangeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	offsetFlow := n.offset.ComputeResult(env, oracle)
	offset := asInt(offsetFlow)
	calldata := env.CurrentCallContext.Calldata

	var result bytesx.ByteGroup
	end := offset + n.size
	switch {
	case offset >= calldata.Len():
		result = bytesx.Zeros(n.size, env.CurrentStepIndex)
	case end <= calldata.Len():
		result = calldata.Slice(offset, end)
	default:
		result = calldata.Slice(offset, calldata.Len()).Concat(bytesx.Zeros(end-calldata.Len(), env.CurrentStepIndex))
	}

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(offsetFlow.Accesses,
				storage.StorageAccesses{Calldata: []storage.CalldataAccess{{Offset: offset, Value: result}}}),
			Writes: offsetFlow.Writes,
		},
		Result: result,
	}
}

// CalldataRange reads size bytes at offset from the calldata.
func CalldataRange(offset ResultNode, size int) ResultNode {
	return calldataRangeNode{offset: offset, size: size}
}

// calldataRangeDynamicNode is CalldataRange with a size that is itself
// computed from the trace (CALLDATACOPY's size operand), rather than a
// fixed width known at table-build time.
type calldataRangeDynamicNode struct {
	offset, size ResultNode
}

func (n calldataRangeDynamicNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	sizeFlow := n.size.ComputeResult(env, oracle)
	inner := calldataRangeNode{offset: n.offset, size: asInt(sizeFlow)}.ComputeResult(env, oracle)
	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(inner.Accesses, sizeFlow.Accesses),
			Writes:   storage.MergeWrites(inner.Writes, sizeFlow.Writes),
		},
		Result: inner.Result,
	}
}

// CalldataRangeDynamic reads size bytes (itself a computed value, e.g.
// CALLDATACOPY's size operand) at offset from the calldata.
func CalldataRangeDynamic(offset, size ResultNode) ResultNode {
	return calldataRangeDynamicNode{offset: offset, size: size}
}

// calldataSizeNode reports the calldata length, accessing the whole
// calldata buffer so its provenance flows into the reported size.
type calldataSizeNode struct{}

func (calldataSizeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	calldata := env.CurrentCallContext.Calldata
	return FlowWithResult{
		Flow: Flow{Accesses: storage.StorageAccesses{
			Calldata: []storage.CalldataAccess{{Offset: 0, Value: calldata}},
		}},
		Result: bytesx.FromHexString(bytesx.FromInt(calldata.Len()), env.CurrentStepIndex).ToSize(32, env.CurrentStepIndex),
	}
}

// CalldataSize reports the calldata length in bytes.
func CalldataSize() ResultNode {
	return calldataSizeNode{}
}

// calldataWriteNode records the bytes a CALL-family opcode copies into
// its child's calldata.
type calldataWriteNode struct {
	value ResultNode
}

func (n calldataWriteNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	value := n.value.ComputeResult(env, oracle)
	return Flow{
		Accesses: value.Accesses,
		Writes:   storage.MergeWrites(value.Writes, storage.StorageWrites{Calldata: &storage.CalldataWrite{Value: value.Result}}),
	}
}

// CalldataWrite records value as the bytes to seed a new child context's
// calldata with.
func CalldataWrite(value ResultNode) Node {
	return calldataWriteNode{value: value}
}

// callvalueNode reports the current call context's value.
type callvalueNode struct{}

func (callvalueNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	value := env.CurrentCallContext.Value
	return FlowWithResult{
		Flow:   Flow{Accesses: storage.StorageAccesses{Callvalue: []storage.CallvalueAccess{{Value: value}}}},
		Result: value,
	}
}

// Callvalue reports the current call context's value.
func Callvalue() ResultNode {
	return callvalueNode{}
}
