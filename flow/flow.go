// Package flow implements the information-flow DSL: a small set of
// composable nodes that describe, per EVM opcode, which stack/memory/
// storage locations an instruction reads and writes. Each instruction's
// behavior is expressed once, declaratively, as a tree of these nodes;
// evaluating the tree against a ParsingEnvironment and an
// InstructionOutputOracle produces the StorageAccesses/StorageWrites pair
// the rest of the simulator consumes. Node trees are built once at
// package init as shared, immutable values: evaluating the same node
// twice against different environments is always safe.
package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/storage"
)

// Flow is the accesses and writes produced by evaluating a Node.
type Flow struct {
	Accesses storage.StorageAccesses
	Writes   storage.StorageWrites
}

// FlowWithResult is a Flow that additionally carries a value, produced by
// evaluating a ResultNode. The result is itself a ByteGroup so its
// provenance composes naturally when it feeds into another node.
type FlowWithResult struct {
	Flow
	Result bytesx.ByteGroup
}

// Node is a step in the information-flow DSL that produces accesses and
// writes but no value of its own: WritingNodes (stack_push, mem_write,
// ...) and Combine trees are Nodes.
type Node interface {
	Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow
}

// ResultNode is a Node that also produces a value: stack_arg, mem_range,
// balance_of, and so on. A ResultNode is not itself a Node; wrapping it
// with AsNode makes it usable wherever a Node is expected (its
// accesses/writes still apply; its result is simply unused).
type ResultNode interface {
	ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult
}

func mergeFlows(flows ...Flow) Flow {
	accesses := make([]storage.StorageAccesses, len(flows))
	writes := make([]storage.StorageWrites, len(flows))
	for i, f := range flows {
		accesses[i] = f.Accesses
		writes[i] = f.Writes
	}
	return Flow{
		Accesses: storage.MergeAccesses(accesses...),
		Writes:   storage.MergeWrites(writes...),
	}
}

// asFlow lets a ResultNode be evaluated as a plain Node, discarding its
// result but keeping its accesses/writes.
func asFlow(n ResultNode, env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	return n.ComputeResult(env, oracle).Flow
}

// asInt interprets a FlowWithResult's result as a non-negative integer,
// the way every index/offset/size argument in the DSL is read.
func asInt(f FlowWithResult) int {
	return int(f.Result.HexString().AsInt().Int64())
}
