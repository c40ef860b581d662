package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/storage"
)

// stackArgNode reads the stack entry at the evaluated index and records a
// StackPop: it is how CALL-family and arithmetic opcodes consume their
// operands.
type stackArgNode struct {
	index ResultNode
}

func (n stackArgNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	index := asInt(n.index.ComputeResult(env, oracle))
	value := env.Stack().Peek(index)

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.StorageAccesses{Stack: []storage.StackAccess{{Index: index, Value: value}}},
			Writes:   storage.StorageWrites{StackPops: []storage.StackPop{{}}},
		},
		Result: value,
	}
}

// StackArg reads and pops the stack entry at index.
func StackArg(index ResultNode) ResultNode {
	return stackArgNode{index: index}
}

// stackPeekNode reads the stack entry at the evaluated index without
// popping it: used by DUP/SWAP, which need the value but leave the stack
// depth change to the driver.
type stackPeekNode struct {
	index ResultNode
}

func (n stackPeekNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	index := asInt(n.index.ComputeResult(env, oracle))
	value := env.Stack().Peek(index)

	return FlowWithResult{
		Flow:   Flow{Accesses: storage.StorageAccesses{Stack: []storage.StackAccess{{Index: index, Value: value}}}},
		Result: value,
	}
}

// StackPeek reads the stack entry at index without popping it.
func StackPeek(index ResultNode) ResultNode {
	return stackPeekNode{index: index}
}

// oracleStackPeekNode reads a value straight from the trace's
// post-execution stack, tagged with the current step: used for opcodes
// whose result cannot be derived from the current stack state alone
// (e.g. GAS, a pushed value with no stack-argument provenance).
type oracleStackPeekNode struct {
	index ResultNode
}

func (n oracleStackPeekNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	index := asInt(n.index.ComputeResult(env, oracle))
	value := oracle.StackPeek(index).AsSize(32)

	return FlowWithResult{
		Result: bytesx.FromHexString(value, env.CurrentStepIndex),
	}
}

// OracleStackPeek reads index entries from the top of the
// post-execution stack reported by the trace.
func OracleStackPeek(index ResultNode) ResultNode {
	return oracleStackPeekNode{index: index}
}

// stackPushNode appends a value to the stack.
type stackPushNode struct {
	value ResultNode
}

func (n stackPushNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	value := n.value.ComputeResult(env, oracle)
	return Flow{
		Accesses: value.Accesses,
		Writes:   storage.MergeWrites(value.Writes, storage.StorageWrites{StackPushes: []storage.StackPush{{Value: value.Result}}}),
	}
}

// StackPush pushes value onto the stack.
func StackPush(value ResultNode) Node {
	return stackPushNode{value: value}
}

// stackSetNode overwrites the stack entry at the evaluated index.
type stackSetNode struct {
	index ResultNode
	value ResultNode
}

func (n stackSetNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	index := n.index.ComputeResult(env, oracle)
	value := n.value.ComputeResult(env, oracle)
	return Flow{
		Accesses: storage.MergeAccesses(index.Accesses, value.Accesses),
		Writes:   storage.MergeWrites(index.Writes, value.Writes, storage.StorageWrites{StackSets: []storage.StackSet{{Index: asInt(index), Value: value.Result}}}),
	}
}

// StackSet overwrites the stack entry at index (used by SWAP).
func StackSet(index, value ResultNode) Node {
	return stackSetNode{index: index, value: value}
}
