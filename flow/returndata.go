package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/storage"
)

// returnDataRangeNode reads size bytes at offset from the last executed
// sub-context's return data. A size of zero produces no access at all
// (RETURNDATACOPY with size 0 never actually touches the return buffer).
// Reading past the end of what is available returns an empty result: in
// the EVM such a read makes the instruction halt exceptionally, so no
// synthesized padding is produced here.
type returnDataRangeNode struct {
	offset ResultNode
	size   ResultNode
}

func (n returnDataRangeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	offsetFlow := n.offset.ComputeResult(env, oracle)
	sizeFlow := n.size.ComputeResult(env, oracle)
	offset := asInt(offsetFlow)
	size := asInt(sizeFlow)

	if size == 0 {
		return FlowWithResult{
			Flow: Flow{Accesses: storage.MergeAccesses(offsetFlow.Accesses, sizeFlow.Accesses), Writes: storage.MergeWrites(offsetFlow.Writes, sizeFlow.Writes)},
		}
	}

	var returnData bytesx.ByteGroup
	if sub := env.LastExecutedSubContext(); sub != nil {
		returnData = sub.ReturnData
	}

	var result bytesx.ByteGroup
	if offset+size <= returnData.Len() {
		result = returnData.Slice(offset, offset+size)
	}

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(offsetFlow.Accesses, sizeFlow.Accesses,
				storage.StorageAccesses{ReturnData: &storage.ReturnDataAccess{Offset: offset, Size: size, Value: result}}),
			Writes: storage.MergeWrites(offsetFlow.Writes, sizeFlow.Writes),
		},
		Result: result,
	}
}

// ReturnDataRange reads size bytes at offset from the return data of the
// most recently exited sub-context.
func ReturnDataRange(offset, size ResultNode) ResultNode {
	return returnDataRangeNode{offset: offset, size: size}
}

// returnDataSizeNode reports the size of the last executed sub-context's
// return data.
type returnDataSizeNode struct{}

func (returnDataSizeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	var returnData bytesx.ByteGroup
	if sub := env.LastExecutedSubContext(); sub != nil {
		returnData = sub.ReturnData
	}
	return FlowWithResult{
		Flow: Flow{Accesses: storage.StorageAccesses{
			ReturnData: &storage.ReturnDataAccess{Offset: 0, Size: returnData.Len(), Value: returnData},
		}},
		Result: bytesx.FromHexString(bytesx.FromInt(returnData.Len()), env.CurrentStepIndex).ToSize(32, env.CurrentStepIndex),
	}
}

// ReturnDataSize reports the size of the last executed sub-context's
// return data.
func ReturnDataSize() ResultNode {
	return returnDataSizeNode{}
}

// returnDataWriteNode records the bytes a RETURN/REVERT places into the
// current context's return data.
type returnDataWriteNode struct {
	value ResultNode
}

func (n returnDataWriteNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	value := n.value.ComputeResult(env, oracle)
	return Flow{
		Accesses: value.Accesses,
		Writes:   storage.MergeWrites(value.Writes, storage.StorageWrites{ReturnData: &storage.ReturnWrite{Value: value.Result}}),
	}
}

// ReturnDataWrite records value as the current context's return data.
func ReturnDataWrite(value ResultNode) Node {
	return returnDataWriteNode{value: value}
}
