// Package traceevm drives a trace-line-by-trace-line walk of a single
// transaction: for each consecutive pair of EIP-3155 events it resolves
// the opcode's information-flow, commits the resulting storage writes,
// and asks callmanager to classify and act on any depth change. It never
// executes EVM bytecode; every numeric result comes from the oracle (the
// next trace event) or from values already present in the tracked state.
package traceevm

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/callmanager"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/instructions"
	"github.com/ethflow/tracewalk/storage"
)

// ErrInvalidStackPush is raised when a flow-spec attempts to push or set a
// stack value that is not exactly 32 bytes — an information-flow DSL bug,
// never an expected trace condition.
var ErrInvalidStackPush = errors.New("traceevm: invalid stack push/set width")

// ErrOracleMismatch is raised in strict mode when the post-state stack or
// memory built by the driver disagrees with the oracle's declared
// post-state.
var ErrOracleMismatch = errors.New("traceevm: post-state disagrees with trace oracle")

// EVM drives a single transaction's trace. It is not safe for concurrent
// use; construct one per transaction (see spec.md section 5).
type EVM struct {
	Env            *environment.ParsingEnvironment
	VerifyStorages bool

	arena []*instructions.Instruction
}

// New constructs an EVM rooted at env's current call context.
func New(env *environment.ParsingEnvironment, verifyStorages bool) *EVM {
	return &EVM{Env: env, VerifyStorages: verifyStorages}
}

// Instructions returns every instruction parsed so far, in step order.
func (e *EVM) Instructions() []*instructions.Instruction {
	return e.arena
}

// Step parses one trace event. opcode/pc describe the event that is
// executing now; oracle describes the *next* event's post-state (a zero
// InstructionOutputOracle, with a nil Depth, at the end of the trace).
func (e *EVM) Step(opcode, pc int, oracle environment.InstructionOutputOracle) (*instructions.Instruction, error) {
	step := len(e.arena)
	e.Env.CurrentStepIndex = step

	def, ok := instructions.Lookup(opcode)
	if !ok {
		def, _ = instructions.Lookup(0xFE) // treat unknown opcodes as INVALID
	}

	flow := def.Flow.Compute(e.Env, oracle)
	instr := &instructions.Instruction{
		Opcode:         opcode,
		Name:           def.Name,
		ProgramCounter: pc,
		StepIndex:      step,
		CallContext:    e.Env.CurrentCallContext,
		Flow:           flow,
	}
	e.arena = append(e.arena, instr)

	var nextDepth *int
	if oracle.HasNext() {
		d := *oracle.Depth
		nextDepth = &d
	}

	transition, err := callmanager.Classify(opcode, e.Env.CurrentCallContext.Depth, nextDepth)
	if err != nil {
		return instr, err
	}

	if transition == callmanager.EndOfTrace {
		if !instructions.IsHalting(opcode) {
			log.Debug("traceevm: end of trace without a halting opcode, writes uncommitted", "opcode", def.Name, "step", step)
			return instr, nil
		}
	}

	if err := e.applyWrites(flow.Writes, step); err != nil {
		return instr, err
	}

	switch transition {
	case callmanager.SameDepth:
		if def.Kind.IsCallContextEntering() {
			// A call-family opcode whose depth did not increase: a
			// precompile or EOA call that completed without a child
			// context. Apply the fallback return writes straight from
			// the oracle.
			writes := instructions.ImmediateReturnWrites(oracle.StackPeek(0), oracle.Memory.Bytes(), flow.Accesses.Stack, def.Kind, step)
			if err := e.applyWrites(writes, step); err != nil {
				return instr, err
			}
		}
	case callmanager.Enter:
		child := e.enterChild(def.Kind, instr, step)
		e.Env.OnCallEnter(child)
	case callmanager.ExitNormal, callmanager.ExitRevert, callmanager.ExitExceptional:
		if err := e.exit(transition, step); err != nil {
			return instr, err
		}
	case callmanager.EndOfTrace:
		// Halting final instruction: nothing further to transition.
	}

	if oracle.HasNext() {
		if err := e.verify(oracle); err != nil {
			return instr, err
		}
	}

	return instr, nil
}

func (e *EVM) enterChild(kind instructions.Kind, instr *instructions.Instruction, step int) *callcontext.CallContext {
	current := instr.CallContext
	var calldata bytesx.ByteGroup
	if instr.Flow.Writes.Calldata != nil {
		calldata = instr.Flow.Writes.Calldata.Value
	}
	inputs := instructions.DeriveChildContext(kind, current, instr.Flow.Accesses.Stack, calldata, step)
	return callcontext.New(
		current,
		inputs.Input, inputs.Value,
		current.Depth+1,
		inputs.Caller, inputs.CodeAddress, inputs.StorageAddress,
		step,
		inputs.IsContractInitialization,
	)
}

func (e *EVM) exit(transition callmanager.Transition, step int) error {
	child := e.Env.CurrentCallContext
	switch transition {
	case callmanager.ExitNormal:
		child.HaltType = callcontext.HaltNormal
	case callmanager.ExitRevert:
		child.HaltType = callcontext.HaltNormal
		child.Reverted = true
	case callmanager.ExitExceptional:
		child.HaltType = callcontext.HaltExceptional
		child.Reverted = true
	}

	parent := child.Parent
	if transition == callmanager.ExitRevert || transition == callmanager.ExitExceptional {
		e.Env.OnRevert(parent)
	} else {
		e.Env.OnCallExit(parent)
	}

	if child.InitiatingInstructionIndex < 0 {
		return nil
	}
	callingInstr := e.arena[child.InitiatingInstructionIndex]
	writes := instructions.ReturnWrites(callingInstr.Kind(), child, callingInstr.Flow.Accesses.Stack, step)
	return e.applyWrites(writes, step)
}

// applyWrites commits w to the environment in the fixed order spec.md
// section 4.8 prescribes: stack pops, stack sets, stack pushes, memory,
// return data, persistent storage, transient storage. Balance transfers
// and selfdestructs are intentionally not re-applied here: flow.BalanceTransfer
// and flow.Selfdestruct already mutate env.Balances() as a side effect
// during Compute (see DESIGN.md), so committing them again here would be
// redundant.
func (e *EVM) applyWrites(w storage.StorageWrites, step int) error {
	for range w.StackPops {
		e.Env.Stack().Pop()
	}
	for _, s := range w.StackSets {
		if err := e.Env.Stack().Set(s.Index, s.Value); err != nil {
			return errors.Wrap(ErrInvalidStackPush, err.Error())
		}
	}
	for _, p := range w.StackPushes {
		if err := e.Env.Stack().Push(p.Value); err != nil {
			return errors.Wrap(ErrInvalidStackPush, err.Error())
		}
	}
	for _, m := range w.Memory {
		e.Env.Memory().Write(m.Offset, m.Value, step)
	}
	if w.ReturnData != nil {
		e.Env.CurrentCallContext.ReturnData = w.ReturnData.Value
	}
	for _, p := range w.Persistent {
		e.Env.PersistentStorage().Set(p.Address, p.Key, p.Value)
	}
	for _, t := range w.Transient {
		e.Env.TransientStorage().Set(t.Address, t.Key, t.Value)
	}
	return nil
}

// verify checks the "stack discipline" and "memory determinism"
// invariants from spec.md section 8 against oracle, the declared
// post-state of the step just committed.
func (e *EVM) verify(oracle environment.InstructionOutputOracle) error {
	stack := e.Env.Stack()
	if stack.Size() != len(oracle.Stack) {
		return e.mismatch("stack size", len(oracle.Stack), stack.Size())
	}
	top := stack.Size()
	if len(oracle.Stack) < top {
		top = len(oracle.Stack)
	}
	for i := 0; i < top; i++ {
		if stack.Peek(i).HexString().String() != oracle.StackPeek(i).AsSize(32).String() {
			return e.mismatch("stack entry", oracle.StackPeek(i).AsSize(32).String(), stack.Peek(i).HexString().String())
		}
	}

	mem := e.Env.Memory()
	oracleMem := oracle.Memory.Bytes()
	n := mem.Size()
	if len(oracleMem) < n {
		n = len(oracleMem)
	}
	got := mem.Get(0, n, e.Env.CurrentStepIndex).HexString().String()
	want := bytesx.FromBytes(oracleMem[:n]).String()
	if n > 0 && got != want {
		return e.mismatch("memory prefix", want, got)
	}
	return nil
}

func (e *EVM) mismatch(what string, want, got interface{}) error {
	err := errors.Wrapf(ErrOracleMismatch, "%s: want %v, got %v", what, want, got)
	if e.VerifyStorages {
		return err
	}
	log.Warn("traceevm: oracle mismatch (non-strict)", "what", what, "want", want, "got", got)
	return nil
}
