// Package callcontext holds the CallContext value type shared by the
// environment, storage, instructions and callmanager packages. It is kept
// free of dependencies on those packages so that it can sit underneath all
// of them in the import graph; the driver wires everything else together.
package callcontext

import "github.com/ethflow/tracewalk/bytesx"

// HaltType classifies how a CallContext finished executing.
type HaltType int

const (
	// HaltNone means the context has not exited yet.
	HaltNone HaltType = iota
	// HaltNormal covers STOP, RETURN, SELFDESTRUCT and (with Reverted set)
	// REVERT.
	HaltNormal
	// HaltExceptional covers an implicit depth drop without a halting
	// opcode: the child aborted without a halt opcode.
	HaltExceptional
)

func (h HaltType) String() string {
	switch h {
	case HaltNormal:
		return "normal"
	case HaltExceptional:
		return "exceptional"
	default:
		return "none"
	}
}

// CallContext is a single call/create frame of the transaction under
// analysis. Instances are arena-owned by the driver (traceevm.EVM) for the
// lifetime of a single transaction's parse; pointers between them are
// stable for that lifetime. InitiatingInstructionIndex is a step index
// (not a pointer) into the driver's instruction arena, per the arena
// ownership design used throughout this module to avoid cyclic references.
type CallContext struct {
	Parent *CallContext

	Calldata bytesx.ByteGroup
	Value    bytesx.ByteGroup

	Depth int

	MsgSender      bytesx.HexString
	CodeAddress    bytesx.HexString
	StorageAddress bytesx.HexString

	// InitiatingInstructionIndex is the step index of the CALL/CREATE-family
	// instruction that created this context, or -1 for the root context.
	InitiatingInstructionIndex int

	ReturnData bytesx.ByteGroup
	Reverted   bool
	HaltType   HaltType

	IsContractInitialization bool
}

// New constructs a CallContext, canonicalizing the address fields to their
// 20-byte form.
func New(
	parent *CallContext,
	calldata, value bytesx.ByteGroup,
	depth int,
	msgSender, codeAddress, storageAddress bytesx.HexString,
	initiatingInstructionIndex int,
	isContractInitialization bool,
) *CallContext {
	return &CallContext{
		Parent:                     parent,
		Calldata:                   calldata,
		Value:                      value,
		Depth:                      depth,
		MsgSender:                  msgSender.AsSize(20),
		CodeAddress:                codeAddress.AsSize(20),
		StorageAddress:             storageAddress.AsSize(20),
		InitiatingInstructionIndex: initiatingInstructionIndex,
		HaltType:                   HaltNone,
		IsContractInitialization:   isContractInitialization,
	}
}

// Root returns the outermost call context of c's transaction (c itself
// when c has no parent).
func (c *CallContext) Root() *CallContext {
	if c.Parent == nil {
		return c
	}
	return c.Parent.Root()
}
