// Package parsetx ties the parsing environment, the trace EVM driver, the
// call tree builder and the flow-graph builder together into a single
// per-transaction entry point.
package parsetx

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/callmanager"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/events"
	"github.com/ethflow/tracewalk/flowgraph"
	"github.com/ethflow/tracewalk/instructions"
	"github.com/ethflow/tracewalk/metadata"
	"github.com/ethflow/tracewalk/stepidx"
	"github.com/ethflow/tracewalk/traceevm"
)

// NewRootCallContext builds the outermost call context for a transaction:
// sender/recipient/calldata/value all tagged PRESTATE, since they
// originate outside any instruction's execution. Mirrors
// instructions_parser.py's _create_root_call_context.
func NewRootCallContext(info metadata.TransactionParsingInfo) *callcontext.CallContext {
	calldata := bytesx.FromHexString(info.Calldata, stepidx.Prestate)
	value := bytesx.FromHexString(info.Value, stepidx.Prestate).ToSize(32, stepidx.Prestate)
	return callcontext.New(nil, calldata, value, 1, info.Sender, info.Recipient, info.Recipient, -1, false)
}

// ParsedTransaction is the complete result of walking one transaction's
// trace: the flat instruction arena, the call tree built from it, and the
// information-flow dependency graph.
type ParsedTransaction struct {
	Info         metadata.TransactionParsingInfo
	Root         *callcontext.CallContext
	Instructions []*instructions.Instruction
	CallTree     *callmanager.TreeNode
	Graph        *flowgraph.Graph
}

// ParseTransaction walks trace (in order) against a freshly built
// ParsingEnvironment rooted at info's sender/recipient, producing the
// complete parse. ctx is checked for cancellation once between each pair
// of trace events; no partial step is ever committed (spec.md section 5).
func ParseTransaction(ctx context.Context, trace []events.TraceEvent, info metadata.TransactionParsingInfo) (*ParsedTransaction, error) {
	root := NewRootCallContext(info)
	env := environment.New(root)
	evm := traceevm.New(env, info.VerifyStorages)

	for i := 0; i < len(trace) && trace[i].Depth != nil; i++ {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "parsetx: cancelled")
		default:
		}

		current := trace[i]
		oracle := oracleFor(trace, i)
		if _, err := evm.Step(current.Opcode, current.ProgramCounter, oracle); err != nil {
			return nil, errors.Wrapf(err, "parsetx: step %d (pc=%d)", i, current.ProgramCounter)
		}
	}

	instrs := evm.Instructions()
	return &ParsedTransaction{
		Info:         info,
		Root:         root,
		Instructions: instrs,
		CallTree:     callmanager.BuildCallTree(root, instrs),
		Graph:        flowgraph.Build(instrs),
	}, nil
}

// oracleFor builds the InstructionOutputOracle for the step at i from the
// next trace event, or a depth-less oracle if there is none.
func oracleFor(trace []events.TraceEvent, i int) environment.InstructionOutputOracle {
	if i+1 >= len(trace) {
		return environment.InstructionOutputOracle{}
	}
	next := trace[i+1]
	return environment.InstructionOutputOracle{Stack: next.Stack, Memory: next.Memory, Depth: next.Depth}
}
