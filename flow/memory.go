package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/storage"
)

// oracleMemRangePeekNode reads a range straight from the trace's
// post-execution memory dump.
type oracleMemRangePeekNode struct {
	offset ResultNode
	size   ResultNode
}

func (n oracleMemRangePeekNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	offset := asInt(n.offset.ComputeResult(env, oracle))
	size := asInt(n.size.ComputeResult(env, oracle))
	value := oracle.Memory.Bytes()

	end := offset + size
	if end > len(value) {
		end = len(value)
	}
	lo := offset
	if lo > len(value) {
		lo = len(value)
	}
	return FlowWithResult{
		Result: bytesx.FromHexString(bytesx.FromBytes(value[lo:end]), env.CurrentStepIndex),
	}
}

// OracleMemRangePeek reads size bytes at offset from the trace's
// post-execution memory.
func OracleMemRangePeek(offset, size ResultNode) ResultNode {
	return oracleMemRangePeekNode{offset: offset, size: size}
}

// memRangeNode reads size tagged bytes at offset from the current call
// context's memory, recording a MemoryAccess.
type memRangeNode struct {
	offset ResultNode
	size   ResultNode
}

func (n memRangeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	offsetFlow := n.offset.ComputeResult(env, oracle)
	sizeFlow := n.size.ComputeResult(env, oracle)
	offset := asInt(offsetFlow)
	size := asInt(sizeFlow)
	result := env.Memory().Get(offset, size, env.CurrentStepIndex)

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(offsetFlow.Accesses, sizeFlow.Accesses,
				storage.StorageAccesses{Memory: []storage.MemoryAccess{{Offset: offset, Value: result}}}),
			Writes: storage.MergeWrites(offsetFlow.Writes, sizeFlow.Writes),
		},
		Result: result,
	}
}

// MemRange reads size bytes at offset from memory.
func MemRange(offset, size ResultNode) ResultNode {
	return memRangeNode{offset: offset, size: size}
}

// memSizeNode reports the current memory size, recording an access to
// the last word (the bytes that determine the size) so the size itself
// carries correct provenance.
type memSizeNode struct{}

func (memSizeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	size := env.Memory().Size()
	var access []storage.MemoryAccess
	if size > 0 {
		lastWord := env.Memory().Get(size-32, 32, env.CurrentStepIndex)
		access = []storage.MemoryAccess{{Offset: size - 32, Value: lastWord}}
	}
	return FlowWithResult{
		Flow:   Flow{Accesses: storage.StorageAccesses{Memory: access}},
		Result: bytesx.FromHexString(bytesx.FromInt(size), env.CurrentStepIndex).ToSize(32, env.CurrentStepIndex),
	}
}

// MemSize reports the current memory size in bytes.
func MemSize() ResultNode {
	return memSizeNode{}
}

// memWriteNode writes value at offset.
type memWriteNode struct {
	offset ResultNode
	value  ResultNode
}

func (n memWriteNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	offsetFlow := n.offset.ComputeResult(env, oracle)
	valueFlow := n.value.ComputeResult(env, oracle)
	offset := asInt(offsetFlow)

	return Flow{
		Accesses: storage.MergeAccesses(offsetFlow.Accesses, valueFlow.Accesses),
		Writes: storage.MergeWrites(offsetFlow.Writes, valueFlow.Writes,
			storage.StorageWrites{Memory: []storage.MemoryWrite{{Offset: offset, Value: valueFlow.Result}}}),
	}
}

// MemWrite writes value at offset.
func MemWrite(offset, value ResultNode) Node {
	return memWriteNode{offset: offset, value: value}
}
