package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
)

// constNode produces a fixed value, tagged with the evaluating
// environment's current step index, with no accesses or writes. It is
// how integer/hex literals enter a node tree (e.g. the stack index
// argument of stack_arg(0)).
type constNode struct {
	value bytesx.HexString
}

func (c constNode) ComputeResult(env *environment.ParsingEnvironment, _ environment.InstructionOutputOracle) FlowWithResult {
	return FlowWithResult{
		Result: bytesx.FromHexString(c.value, env.CurrentStepIndex),
	}
}

// Const wraps a HexString literal as a ResultNode.
func Const(h bytesx.HexString) ResultNode {
	return constNode{value: h}
}

// ConstInt wraps a non-negative integer literal as a ResultNode.
func ConstInt(v int) ResultNode {
	return constNode{value: bytesx.FromInt(v)}
}

// ConstHex wraps a hex-string literal (with or without "0x") as a
// ResultNode. Panics if s is not valid hex, so it is intended for
// constants baked into the instruction table, not for parsing trace
// data.
func ConstHex(s string) ResultNode {
	return constNode{value: bytesx.MustParse(s)}
}
