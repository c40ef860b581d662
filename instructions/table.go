// Package instructions holds the per-opcode information-flow definitions:
// a flow.Node tree for every opcode, plus the extra child-context
// derivation logic CALL/CREATE-family opcodes need to spawn a child
// CallContext.
package instructions

import (
	. "github.com/ethflow/tracewalk/flow"
)

// Kind classifies the handful of opcodes that enter a new call context,
// beyond the plain stack/memory/storage effect every opcode has.
type Kind int

const (
	// Plain opcodes never spawn a child call context.
	Plain Kind = iota
	KindCall
	KindStaticCall
	KindDelegateCall
	KindCallCode
	KindCreate
	KindCreate2
)

// IsCallContextEntering reports whether k spawns a child CallContext.
func (k Kind) IsCallContextEntering() bool { return k != Plain }

// IsContractCreating reports whether k is CREATE/CREATE2.
func (k Kind) IsContractCreating() bool { return k == KindCreate || k == KindCreate2 }

// Definition is the static, opcode-keyed part of an instruction: its
// name, its information-flow node, and (for the six call/create
// opcodes) which Kind of child-context derivation applies.
type Definition struct {
	Opcode int
	Name   string
	Flow   Node
	Kind   Kind
}

func def(opcode int, name string, flow Node) Definition {
	return Definition{Opcode: opcode, Name: name, Flow: flow, Kind: Plain}
}

func callDef(opcode int, name string, flow Node, kind Kind) Definition {
	return Definition{Opcode: opcode, Name: name, Flow: flow, Kind: kind}
}

// arith is the shape shared by nearly every pure arithmetic/bitwise
// opcode: push whatever the trace says the result was, after recording
// reads of its operands (their values never matter to provenance
// tracking beyond "this opcode's output depends on them").
func arith(nargs int) Node {
	args := make([]Node, 0, nargs+1)
	args = append(args, StackPush(OracleStackPeek(ConstInt(0))))
	for i := 0; i < nargs; i++ {
		args = append(args, AsNode(StackArg(ConstInt(i))))
	}
	return Combine(args...)
}

// pushOracle is for opcodes whose result is opaque state the trace tells
// us about directly (ORIGIN, TIMESTAMP, GAS, ...).
func pushOracle() Node {
	return StackPush(OracleStackPeek(ConstInt(0)))
}

var Table = buildTable()

func buildTable() map[int]Definition {
	t := make(map[int]Definition, 160)
	add := func(d Definition) { t[d.Opcode] = d }

	add(def(0x00, "STOP", Noop))
	add(def(0x01, "ADD", arith(2)))
	add(def(0x02, "MUL", arith(2)))
	add(def(0x03, "SUB", arith(2)))
	add(def(0x04, "DIV", arith(2)))
	add(def(0x05, "SDIV", arith(2)))
	add(def(0x06, "MOD", arith(2)))
	add(def(0x07, "SMOD", arith(2)))
	add(def(0x08, "ADDMOD", arith(3)))
	add(def(0x09, "MULMOD", arith(3)))
	add(def(0x0A, "EXP", arith(2)))
	add(def(0x0B, "SIGNEXTEND", arith(2)))
	add(def(0x10, "LT", arith(2)))
	add(def(0x11, "GT", arith(2)))
	add(def(0x12, "SLT", arith(2)))
	add(def(0x13, "SGT", arith(2)))
	add(def(0x14, "EQ", arith(2)))
	add(def(0x15, "ISZERO", arith(1)))
	add(def(0x16, "AND", arith(2)))
	add(def(0x17, "OR", arith(2)))
	add(def(0x18, "XOR", arith(2)))
	add(def(0x19, "NOT", arith(1)))
	add(def(0x1A, "BYTE", arith(2)))
	add(def(0x1B, "SHL", arith(2)))
	add(def(0x1C, "SHR", arith(2)))
	add(def(0x1D, "SAR", arith(2)))

	add(def(0x20, "KECCAK256", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1)))))))

	add(def(0x30, "ADDRESS", StackPush(CurrentStorageAddress())))
	add(def(0x31, "BALANCE", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(BalanceOf(ToSize(StackArg(ConstInt(0)), 20))))))
	add(def(0x32, "ORIGIN", pushOracle()))
	add(def(0x33, "CALLER", pushOracle()))
	add(def(0x34, "CALLVALUE", StackPush(Callvalue())))
	add(def(0x35, "CALLDATALOAD", StackPush(CalldataRange(StackArg(ConstInt(0)), 32))))
	add(def(0x36, "CALLDATASIZE", StackPush(CalldataSize())))
	add(def(0x37, "CALLDATACOPY", MemWrite(StackArg(ConstInt(0)), CalldataRangeDynamic(StackArg(ConstInt(1)), StackArg(ConstInt(2))))))
	add(def(0x38, "CODESIZE", pushOracle()))
	add(def(0x39, "CODECOPY", Combine(
		MemWrite(StackArg(ConstInt(0)), OracleMemRangePeek(StackPeek(ConstInt(0)), StackArg(ConstInt(2)))),
		AsNode(StackArg(ConstInt(1))),
	)))
	add(def(0x3A, "GASPRICE", pushOracle()))
	add(def(0x3B, "EXTCODESIZE", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(StackArg(ConstInt(0))))))
	add(def(0x3C, "EXTCODECOPY", Combine(
		AsNode(StackArg(ConstInt(0))),
		MemWrite(StackArg(ConstInt(1)), OracleMemRangePeek(StackPeek(ConstInt(1)), StackArg(ConstInt(3)))),
		AsNode(StackArg(ConstInt(2))),
	)))
	add(def(0x3D, "RETURNDATASIZE", StackPush(ReturnDataSize())))
	add(def(0x3E, "RETURNDATACOPY", MemWrite(StackArg(ConstInt(0)), ReturnDataRange(StackArg(ConstInt(1)), StackArg(ConstInt(2))))))
	add(def(0x3F, "EXTCODEHASH", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(StackArg(ConstInt(0))))))
	add(def(0x40, "BLOCKHASH", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(StackArg(ConstInt(0))))))
	add(def(0x41, "COINBASE", pushOracle()))
	add(def(0x42, "TIMESTAMP", pushOracle()))
	add(def(0x43, "NUMBER", pushOracle()))
	add(def(0x44, "PREVRANDAO", pushOracle()))
	add(def(0x45, "GASLIMIT", pushOracle()))
	add(def(0x46, "CHAINID", pushOracle()))
	add(def(0x47, "SELFBALANCE", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(BalanceOf(CurrentStorageAddress())))))
	add(def(0x48, "BASEFEE", pushOracle()))
	add(def(0x49, "BLOBHASH", Combine(StackPush(OracleStackPeek(ConstInt(0))), AsNode(StackArg(ConstInt(0))))))
	add(def(0x4A, "BLOBBASEFEE", pushOracle()))

	add(def(0x50, "POP", AsNode(StackArg(ConstInt(0)))))
	add(def(0x51, "MLOAD", StackPush(MemRange(StackArg(ConstInt(0)), ConstInt(32)))))
	add(def(0x52, "MSTORE", MemWrite(StackArg(ConstInt(0)), StackArg(ConstInt(1)))))
	add(def(0x53, "MSTORE8", MemWrite(StackArg(ConstInt(0)), ToSize(StackArg(ConstInt(1)), 1))))
	add(def(0x54, "SLOAD", StackPush(PersistentStorageGet(StackArg(ConstInt(0))))))
	add(def(0x55, "SSTORE", PersistentStorageSet(StackArg(ConstInt(0)), StackArg(ConstInt(1)))))
	add(def(0x56, "JUMP", AsNode(StackArg(ConstInt(0)))))
	add(def(0x57, "JUMPI", Combine(AsNode(StackArg(ConstInt(0))), AsNode(StackArg(ConstInt(1))))))
	add(def(0x58, "PC", pushOracle()))
	add(def(0x59, "MSIZE", StackPush(MemSize())))
	add(def(0x5A, "GAS", pushOracle()))
	add(def(0x5B, "JUMPDEST", Noop))
	add(def(0x5C, "TLOAD", StackPush(TransientStorageGet(StackArg(ConstInt(0))))))
	add(def(0x5D, "TSTORE", TransientStorageSet(StackArg(ConstInt(0)), StackArg(ConstInt(1)))))
	add(def(0x5E, "MCOPY", MemWrite(StackArg(ConstInt(0)), MemRange(StackArg(ConstInt(1)), StackArg(ConstInt(2))))))

	add(def(0x5F, "PUSH0", pushOracle()))
	for i := 1; i <= 32; i++ {
		add(def(0x5F+i, pushName("PUSH", i), pushOracle()))
	}

	for i := 1; i <= 16; i++ {
		add(def(0x7F+i, pushName("DUP", i), Combine(StackPush(StackPeek(ConstInt(i-1))))))
	}
	for i := 1; i <= 16; i++ {
		add(def(0x8F+i, pushName("SWAP", i), Combine(StackSet(ConstInt(0), StackPeek(ConstInt(i))), StackSet(ConstInt(i), StackPeek(ConstInt(0))))))
	}

	add(def(0xA0, "LOG0", Combine(AsNode(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1)))))))
	add(def(0xA1, "LOG1", Combine(AsNode(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1)))), AsNode(StackArg(ConstInt(2))))))
	add(def(0xA2, "LOG2", Combine(AsNode(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1)))), AsNode(StackArg(ConstInt(2))), AsNode(StackArg(ConstInt(3))))))
	add(def(0xA3, "LOG3", Combine(AsNode(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1)))), AsNode(StackArg(ConstInt(2))), AsNode(StackArg(ConstInt(3))), AsNode(StackArg(ConstInt(4))))))
	add(def(0xA4, "LOG4", Combine(AsNode(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1)))), AsNode(StackArg(ConstInt(2))), AsNode(StackArg(ConstInt(3))), AsNode(StackArg(ConstInt(4))), AsNode(StackArg(ConstInt(5))))))

	add(callDef(0xF0, "CREATE", Combine(
		AsNode(BalanceTransfer(CurrentStorageAddress(), ConstHex("0xabcd1234abcd1234abcd1234abcd1234abcd1234"), StackArg(ConstInt(0)))),
		AsNode(MemRange(StackArg(ConstInt(1)), StackArg(ConstInt(2)))),
	), KindCreate))
	add(callDef(0xF1, "CALL", Combine(
		AsNode(StackArg(ConstInt(0))),
		AsNode(BalanceTransfer(CurrentStorageAddress(), StackArg(ConstInt(1)), StackArg(ConstInt(2)))),
		CalldataWrite(MemRange(StackArg(ConstInt(3)), StackArg(ConstInt(4)))),
		AsNode(MemRange(StackArg(ConstInt(5)), StackArg(ConstInt(6)))),
	), KindCall))
	add(callDef(0xF2, "CALLCODE", Combine(
		AsNode(StackArg(ConstInt(0))),
		AsNode(BalanceTransfer(CurrentStorageAddress(), StackArg(ConstInt(1)), StackArg(ConstInt(2)))),
		CalldataWrite(MemRange(StackArg(ConstInt(3)), StackArg(ConstInt(4)))),
		AsNode(MemRange(StackArg(ConstInt(5)), StackArg(ConstInt(6)))),
	), KindCallCode))
	add(def(0xF3, "RETURN", ReturnDataWrite(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1))))))
	add(callDef(0xF4, "DELEGATECALL", Combine(
		AsNode(StackArg(ConstInt(0))),
		AsNode(StackArg(ConstInt(1))),
		CalldataWrite(MemRange(StackArg(ConstInt(2)), StackArg(ConstInt(3)))),
		AsNode(MemRange(StackArg(ConstInt(4)), StackArg(ConstInt(5)))),
		AsNode(Callvalue()),
	), KindDelegateCall))
	add(callDef(0xF5, "CREATE2", Combine(
		AsNode(BalanceTransfer(CurrentStorageAddress(), ConstHex("0xabcd1234abcd1234abcd1234abcd1234abcd1234"), StackArg(ConstInt(0)))),
		AsNode(MemRange(StackArg(ConstInt(1)), StackArg(ConstInt(2)))),
		AsNode(StackArg(ConstInt(3))),
	), KindCreate2))
	add(callDef(0xFA, "STATICCALL", Combine(
		AsNode(StackArg(ConstInt(0))),
		AsNode(StackArg(ConstInt(1))),
		CalldataWrite(MemRange(StackArg(ConstInt(2)), StackArg(ConstInt(3)))),
		AsNode(MemRange(StackArg(ConstInt(4)), StackArg(ConstInt(5)))),
	), KindStaticCall))
	add(def(0xFD, "REVERT", ReturnDataWrite(MemRange(StackArg(ConstInt(0)), StackArg(ConstInt(1))))))
	add(def(0xFE, "INVALID", Noop))
	add(def(0xFF, "SELFDESTRUCT", Selfdestruct(CurrentStorageAddress(), StackArg(ConstInt(0)))))

	return t
}

func pushName(prefix string, n int) string {
	digits := [3]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return prefix + string(digits[i:])
}

// Lookup returns the Definition for opcode, if one is defined.
func Lookup(opcode int) (Definition, bool) {
	d, ok := Table[opcode]
	return d, ok
}
