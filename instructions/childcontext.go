package instructions

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/storage"
)

// ChildContextInputs is the subset of CallContext fields a CALL/CREATE-family
// instruction derives for the context it spawns, ahead of the driver
// constructing the full CallContext (which additionally needs the new
// depth and initiating instruction index).
type ChildContextInputs struct {
	CodeAddress              bytesx.HexString
	StorageAddress           bytesx.HexString
	Value                    bytesx.ByteGroup
	Input                    bytesx.ByteGroup
	Caller                   bytesx.HexString
	IsContractInitialization bool
}

// stackAccessMap indexes a flow's recorded stack accesses by the position
// they were read from, so child-context derivation can look values up by
// the stack index the opcode's ABI defines them at (e.g. CALL's address
// argument is always index 1), independent of evaluation order.
func stackAccessMap(accesses []storage.StackAccess) map[int]bytesx.ByteGroup {
	m := make(map[int]bytesx.ByteGroup, len(accesses))
	for _, a := range accesses {
		m[a.Index] = a.Value
	}
	return m
}

// placeholderAddress deterministically derives a CREATE/CREATE2 target
// address from the creating context's code address and the creating
// instruction's step index, disambiguating repeated CREATEs from the same
// contract within one transaction (see SPEC_FULL.md's Open Question
// resolution; the Python original collides these into one address).
func placeholderAddress(codeAddress bytesx.HexString, stepIndex int) bytesx.HexString {
	var stepBytes [8]byte
	binary.BigEndian.PutUint64(stepBytes[:], uint64(stepIndex))
	buf := append(append([]byte{}, codeAddress.Bytes()...), stepBytes[:]...)
	hash := crypto.Keccak256(buf)
	return bytesx.FromBytes(hash[12:])
}

// DeriveChildContext computes the fields of the call context a CALL/CREATE
// family instruction spawns, per spec.md section 4.6's mapping.
// flowAccesses is the instruction's own Flow.Accesses.Stack, indexed here
// via stackAccessMap; input is the instruction's Writes.Calldata value, if
// any (nil for CREATE/CREATE2, which take no input).
func DeriveChildContext(kind Kind, current *callcontext.CallContext, flowAccesses []storage.StackAccess, input bytesx.ByteGroup, stepIndex int) ChildContextInputs {
	stackAt := stackAccessMap(flowAccesses)

	switch kind {
	case KindCall:
		addr := stackAt[1].AsAddress()
		return ChildContextInputs{CodeAddress: addr, StorageAddress: addr, Value: stackAt[2], Input: input, Caller: current.StorageAddress}
	case KindStaticCall:
		addr := stackAt[1].AsAddress()
		return ChildContextInputs{CodeAddress: addr, StorageAddress: addr, Value: bytesx.Zeros(32, stepIndex), Input: input, Caller: current.StorageAddress}
	case KindDelegateCall:
		addr := stackAt[1].AsAddress()
		return ChildContextInputs{CodeAddress: addr, StorageAddress: current.StorageAddress, Value: current.Value, Input: input, Caller: current.MsgSender}
	case KindCallCode:
		addr := stackAt[1].AsAddress()
		return ChildContextInputs{CodeAddress: addr, StorageAddress: current.StorageAddress, Value: stackAt[2], Input: input, Caller: current.StorageAddress}
	case KindCreate, KindCreate2:
		placeholder := placeholderAddress(current.CodeAddress, stepIndex)
		return ChildContextInputs{
			CodeAddress: placeholder, StorageAddress: placeholder,
			Value: stackAt[0], Input: nil, Caller: current.StorageAddress,
			IsContractInitialization: true,
		}
	default:
		return ChildContextInputs{}
	}
}

// returnArgIndices reports the stack indices (as recorded by the
// instruction's own flow, see stackAccessMap) of the retOffset/retSize
// arguments for CALL-family opcodes. CREATE/CREATE2 have no such
// arguments: they report a created address, not a memory copy.
func returnArgIndices(kind Kind) (retOffset, retSize int, ok bool) {
	switch kind {
	case KindCall, KindCallCode:
		return 5, 6, true
	case KindStaticCall, KindDelegateCall:
		return 4, 5, true
	default:
		return 0, 0, false
	}
}

// ReturnWrites builds the writes the driver injects once a CALL/CREATE
// family instruction's child context has fully exited: a success
// indicator pushed onto the (parent's) stack, plus — for CALL-family
// opcodes only — the child's return data copied into the caller's memory
// at the requested offset/size, truncated or zero-padded to fit exactly.
func ReturnWrites(kind Kind, child *callcontext.CallContext, flowAccesses []storage.StackAccess, stepIndex int) storage.StorageWrites {
	success := successValue(kind, child, stepIndex)
	writes := storage.StorageWrites{StackPushes: []storage.StackPush{{Value: success.ToSize(32, stepIndex)}}}

	retOffset, retSize, ok := returnArgIndices(kind)
	if !ok {
		return writes
	}
	stackAt := stackAccessMap(flowAccesses)
	offset := asInt(stackAt[retOffset])
	size := asInt(stackAt[retSize])
	if size == 0 {
		return writes
	}
	writes.Memory = []storage.MemoryWrite{{Offset: offset, Value: fitReturnData(child.ReturnData, size, stepIndex)}}
	return writes
}

// ImmediateReturnWrites is the fallback used when a CALL-family opcode did
// not actually increase depth (a call to a precompile or EOA): there is no
// child context to consult, so success and the copied memory are read
// straight from the oracle's post-execution stack/memory.
func ImmediateReturnWrites(oracleStackTop0 bytesx.HexString, oracleMemory []byte, flowAccesses []storage.StackAccess, kind Kind, stepIndex int) storage.StorageWrites {
	success := bytesx.FromHexString(oracleStackTop0, stepIndex)
	writes := storage.StorageWrites{StackPushes: []storage.StackPush{{Value: success.ToSize(32, stepIndex)}}}

	retOffset, retSize, ok := returnArgIndices(kind)
	if !ok {
		return writes
	}
	stackAt := stackAccessMap(flowAccesses)
	offset := asInt(stackAt[retOffset])
	size := asInt(stackAt[retSize])
	if size == 0 {
		return writes
	}
	end := offset + size
	if end > len(oracleMemory) {
		end = len(oracleMemory)
	}
	lo := offset
	if lo > len(oracleMemory) {
		lo = len(oracleMemory)
	}
	value := bytesx.FromHexString(bytesx.FromBytes(oracleMemory[lo:end]), stepIndex)
	writes.Memory = []storage.MemoryWrite{{Offset: offset, Value: fitSlice(value, size, stepIndex)}}
	return writes
}

func successValue(kind Kind, child *callcontext.CallContext, stepIndex int) bytesx.ByteGroup {
	if child.Reverted {
		return bytesx.Zeros(1, stepIndex)
	}
	if kind == KindCreate || kind == KindCreate2 {
		return bytesx.FromHexString(child.StorageAddress, stepIndex)
	}
	return bytesx.FromHexString(bytesx.FromInt(1), stepIndex)
}

func fitReturnData(data bytesx.ByteGroup, size, stepIndex int) bytesx.ByteGroup {
	n := size
	if n > data.Len() {
		n = data.Len()
	}
	value := data.Slice(0, n)
	return fitSlice(value, size, stepIndex)
}

func fitSlice(value bytesx.ByteGroup, size, stepIndex int) bytesx.ByteGroup {
	if value.Len() < size {
		return value.Concat(bytesx.Zeros(size-value.Len(), stepIndex))
	}
	return value
}

func asInt(g bytesx.ByteGroup) int {
	return int(g.HexString().AsInt().Int64())
}
