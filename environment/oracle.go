package environment

import "github.com/ethflow/tracewalk/bytesx"

// InstructionOutputOracle is the post-state data a trace line already
// tells us about the instruction that is about to execute, read one line
// ahead in the trace. The simulator never computes this itself: it is the
// "oracle" the information-flow DSL consults instead of re-executing
// opcode semantics.
type InstructionOutputOracle struct {
	Stack  []bytesx.HexString
	Memory bytesx.HexString
	// Depth is nil at the end of the trace, when there is no next event to
	// peek at.
	Depth *int
}

// StackPeek returns the value index entries from the top of the
// post-execution stack. Stack is already normalized top-first (see
// events.TraceEvent), so this is a direct index, not a reversal.
func (o InstructionOutputOracle) StackPeek(index int) bytesx.HexString {
	return o.Stack[index]
}

// HasNext reports whether this oracle corresponds to an actual next trace
// event (false only for the synthetic oracle built after the last line).
func (o InstructionOutputOracle) HasNext() bool {
	return o.Depth != nil
}
