// Package callmanager classifies the depth transition between two
// consecutive trace events and builds the call tree from a flat
// instruction list, per spec.md section 4.7.
package callmanager

import (
	"github.com/ethflow/tracewalk/instructions"
	"github.com/pkg/errors"
)

// Transition is how a single step's depth change was classified.
type Transition int

const (
	// SameDepth: no depth change. A CALL-family opcode that landed here
	// called a precompile or EOA (the driver applies ImmediateReturnWrites).
	SameDepth Transition = iota
	// Enter: depth increased by one; a CALL/CREATE-family opcode spawned a
	// new call context.
	Enter
	// ExitNormal: depth decreased by one after STOP/RETURN/SELFDESTRUCT.
	ExitNormal
	// ExitRevert: depth decreased by one after REVERT.
	ExitRevert
	// ExitExceptional: depth decreased by one after any other opcode — the
	// child aborted without a halting opcode.
	ExitExceptional
	// EndOfTrace: there is no next event.
	EndOfTrace
)

// ErrExpectedDepthChange is raised when depth increases by one after an
// opcode that is not CALL/CREATE-family. A CALL/CREATE-family opcode that
// leaves depth unchanged is classified as SameDepth, not as an error.
var ErrExpectedDepthChange = errors.New("callmanager: expected a call-context-entering opcode")

// ErrUnexpectedDepthChange is raised when the depth delta is outside
// {-1, 0, +1}.
var ErrUnexpectedDepthChange = errors.New("callmanager: depth delta outside {-1, 0, +1}")

// Classify determines the Transition for an instruction with the given
// opcode, executed at currentDepth, given the next trace event's depth
// (nil at end of trace).
func Classify(opcode int, currentDepth int, nextDepth *int) (Transition, error) {
	if nextDepth == nil {
		return EndOfTrace, nil
	}

	switch *nextDepth - currentDepth {
	case 0:
		return SameDepth, nil
	case 1:
		d, ok := instructions.Lookup(opcode)
		if !ok || !d.Kind.IsCallContextEntering() {
			return SameDepth, errors.Wrapf(ErrExpectedDepthChange, "opcode 0x%02x at depth %d", opcode, currentDepth)
		}
		return Enter, nil
	case -1:
		if currentDepth <= 1 {
			return SameDepth, errors.Wrapf(ErrUnexpectedDepthChange, "exit below root at depth %d", currentDepth)
		}
		switch {
		case instructions.IsRevert(opcode):
			return ExitRevert, nil
		case instructions.IsNormalHalt(opcode):
			return ExitNormal, nil
		default:
			return ExitExceptional, nil
		}
	default:
		return SameDepth, errors.Wrapf(ErrUnexpectedDepthChange, "delta %d at depth %d", *nextDepth-currentDepth, currentDepth)
	}
}

// MakesExceptionalHalt is the standalone predicate from spec.md section
// 4.7: true exactly when a depth drop of one follows an opcode that is
// none of STOP, RETURN, REVERT, SELFDESTRUCT.
func MakesExceptionalHalt(opcode, currentDepth, nextDepth int) bool {
	return nextDepth == currentDepth-1 && !instructions.IsHalting(opcode) && !instructions.IsRevert(opcode)
}
