package flow

import (
	"testing"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/stepidx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(suffix string) bytesx.HexString {
	return bytesx.MustParse(suffix).AsSize(20)
}

func tagged32(hex string, step int) bytesx.ByteGroup {
	return bytesx.FromHexString(bytesx.MustParse(hex).AsSize(32), step)
}

func tagged(hex string, step int) bytesx.ByteGroup {
	return bytesx.FromHexString(bytesx.MustParse(hex), step)
}

func testOracle() environment.InstructionOutputOracle {
	return environment.InstructionOutputOracle{}
}

func newTestEnv(stepIndex int) *environment.ParsingEnvironment {
	root := callcontext.New(nil, nil, nil, 0, testAddr("0x1"), testAddr("0x1"), testAddr("0x1"), -1, false)
	env := environment.New(root)
	env.CurrentStepIndex = stepIndex
	return env
}

func TestNoop(t *testing.T) {
	env := newTestEnv(0)
	f := Noop.Compute(env, testOracle())
	assert.Empty(t, f.Accesses.Stack)
	assert.Empty(t, f.Writes.StackPops)
}

func TestCombine(t *testing.T) {
	env := newTestEnv(stepidx.TestDefault)
	require.NoError(t, env.Stack().Push(tagged32("0x1", 1)))
	require.NoError(t, env.Stack().Push(tagged32("0x2", 1)))

	f := Combine(AsNode(StackArg(ConstInt(0))), AsNode(StackArg(ConstInt(0)))).Compute(env, testOracle())
	assert.Len(t, f.Accesses.Stack, 2)
	assert.Equal(t, 0, f.Accesses.Stack[0].Index)
	assert.Equal(t, 0, f.Accesses.Stack[1].Index)
}

func TestStackArgPopsAndRecordsAccess(t *testing.T) {
	env := newTestEnv(stepidx.TestDefault)
	require.NoError(t, env.Stack().Push(tagged32("0x10", 1234)))

	result := StackArg(ConstInt(0)).ComputeResult(env, testOracle())

	require.Len(t, result.Accesses.Stack, 1)
	assert.Equal(t, 0, result.Accesses.Stack[0].Index)
	assert.Equal(t, map[int]struct{}{1234: {}}, result.Accesses.Stack[0].Value.DependsOnInstructionIndexes())
	assert.Len(t, result.Writes.StackPops, 1)
	assert.Equal(t, result.Accesses.Stack[0].Value, result.Result)
}

func TestStackPeekDoesNotPop(t *testing.T) {
	env := newTestEnv(stepidx.TestDefault)
	require.NoError(t, env.Stack().Push(tagged32("0x10", 1234)))

	result := StackPeek(ConstInt(0)).ComputeResult(env, testOracle())
	assert.Empty(t, result.Writes.StackPops)
}

func TestMemRangeConst(t *testing.T) {
	env := newTestEnv(stepidx.TestDefault)
	env.Memory().Write(0, tagged("0x00112233445566778899", 1234), 1234)

	result := MemRange(ConstInt(2), ConstInt(4)).ComputeResult(env, testOracle())

	assert.Equal(t, "0x22334455", result.Result.HexString().String())
	require.Len(t, result.Accesses.Memory, 1)
	assert.Equal(t, 2, result.Accesses.Memory[0].Offset)
}

func TestMemWrite(t *testing.T) {
	env := newTestEnv(1234)
	f := MemWrite(ConstInt(2), ConstHex("0x22334455")).Compute(env, testOracle())

	assert.Empty(t, f.Accesses.Memory)
	require.Len(t, f.Writes.Memory, 1)
	assert.Equal(t, 2, f.Writes.Memory[0].Offset)
	assert.Equal(t, "0x22334455", f.Writes.Memory[0].Value.HexString().String())
}

func TestToSizeIncreasesWithPadding(t *testing.T) {
	env := newTestEnv(2)
	result := ToSize(Const(bytesx.MustParse("0x1122")), 4).ComputeResult(env, testOracle())
	assert.Equal(t, 4, result.Result.Len())
	assert.Equal(t, "0x00001122", result.Result.HexString().String())
}

func TestToSizeDecreasesKeepingLowOrderBytes(t *testing.T) {
	env := newTestEnv(2)
	result := ToSize(Const(bytesx.MustParse("0x112233445566")), 4).ComputeResult(env, testOracle())
	assert.Equal(t, "0x33445566", result.Result.HexString().String())
}

func TestCurrentStorageAddress(t *testing.T) {
	env := newTestEnv(1234)
	result := CurrentStorageAddress().ComputeResult(env, testOracle())
	assert.Equal(t, env.CurrentCallContext.StorageAddress.String(), result.Result.Right(20).HexString().String())
	assert.Equal(t, 32, result.Result.Len())
}

func TestBalanceOfUnknownAddressIsPrestate(t *testing.T) {
	env := newTestEnv(0)
	result := BalanceOf(Const(testAddr("0xabcd"))).ComputeResult(env, testOracle())

	require.Len(t, result.Accesses.Balance, 1)
	assert.Equal(t, stepidx.Prestate, result.Accesses.Balance[0].LastModifiedStepIndex)
}

func TestBalanceTransferRecordsDestinationModification(t *testing.T) {
	env := newTestEnv(1234)
	from := testAddr("0xabcd")
	to := testAddr("0xcdef")

	result := BalanceTransfer(Const(from), Const(to), ConstInt(0x1000)).ComputeResult(env, testOracle())

	require.Len(t, result.Writes.Balance, 1)
	assert.Equal(t, 1234, env.Balances().LastModifiedAtStepIndex(to))
	assert.Equal(t, int64(0x1000), result.Writes.Balance[0].Value.HexString().AsInt().Int64())
}

func TestCalldataRangePadsWithZerosPastEnd(t *testing.T) {
	env := newTestEnv(3)
	env.CurrentCallContext.Calldata = tagged("0x0011223344556677", 1)

	result := CalldataRange(ConstInt(4), 32).ComputeResult(env, testOracle())

	require.Len(t, result.Accesses.Calldata, 1)
	assert.Equal(t, 4, result.Accesses.Calldata[0].Offset)
	assert.Equal(t, "0x44556677"+repeatHex00(28), result.Result.HexString().String())
}

func TestCalldataSize(t *testing.T) {
	env := newTestEnv(2)
	env.CurrentCallContext.Calldata = tagged("0x0011223344556677", 1)

	result := CalldataSize().ComputeResult(env, testOracle())
	assert.Equal(t, int64(8), result.Result.HexString().AsInt().Int64())
}

func TestCallvalue(t *testing.T) {
	env := newTestEnv(0)
	env.CurrentCallContext.Value = tagged32("0x1234", 1)

	result := Callvalue().ComputeResult(env, testOracle())
	assert.Equal(t, int64(0x1234), result.Result.HexString().AsInt().Int64())
}

func TestPersistentStorageUnknownFallsBackToPrestate(t *testing.T) {
	env := newTestEnv(1)
	oracle := environment.InstructionOutputOracle{Stack: []bytesx.HexString{bytesx.MustParse("0xdeadbeef")}}
	result := PersistentStorageGet(Const(bytesx.MustParse("0x1234"))).ComputeResult(env, oracle)

	require.Len(t, result.Accesses.Persistent, 1)
	assert.Equal(t, map[int]struct{}{stepidx.Prestate: {}}, result.Accesses.Persistent[0].Value.DependsOnInstructionIndexes())
}

// TestPersistentStorageUnknownFallsBackToOracleStackTop covers spec.md's
// SLOAD-miss rule: an unwritten slot must report the chain's real value,
// read from the oracle's post-execution stack top, not a fabricated zero.
func TestPersistentStorageUnknownFallsBackToOracleStackTop(t *testing.T) {
	env := newTestEnv(1)
	oracle := environment.InstructionOutputOracle{Stack: []bytesx.HexString{bytesx.MustParse("0xdeadbeef")}}
	result := PersistentStorageGet(Const(bytesx.MustParse("0x1234"))).ComputeResult(env, oracle)

	assert.Equal(t, "0x"+repeatHex00(28)+"deadbeef", result.Result.HexString().String())
}

func TestPersistentStorageSetThenGet(t *testing.T) {
	env := newTestEnv(1)
	key := bytesx.MustParse("0x1234")
	value := ToSize(Const(bytesx.MustParse("0x00112233")), 32)

	f := PersistentStorageSet(Const(key), value).Compute(env, testOracle())
	require.Len(t, f.Writes.Persistent, 1)
	w := f.Writes.Persistent[0]
	env.PersistentStorage().Set(w.Address, w.Key, w.Value)

	result := PersistentStorageGet(Const(key)).ComputeResult(env, testOracle())
	assert.Equal(t, "0x"+repeatHex00(28)+"00112233", result.Result.HexString().String())
}

func TestTransientStorageUnknownFallsBackToCurrentStep(t *testing.T) {
	env := newTestEnv(3)
	result := TransientStorageGet(Const(bytesx.MustParse("0x1234"))).ComputeResult(env, testOracle())

	assert.Equal(t, map[int]struct{}{3: {}}, result.Result.DependsOnInstructionIndexes())
}

func TestReturnDataRangeNoopOnZeroSize(t *testing.T) {
	env := newTestEnv(0)
	env.OnCallEnter(callcontext.New(env.CurrentCallContext, nil, nil, 1, testAddr("0x1"), testAddr("0x1"), testAddr("0x1"), 0, false))
	child := env.CurrentCallContext
	child.ReturnData = tagged("0x1234", 1)
	env.OnCallExit(child.Parent)

	result := ReturnDataRange(ConstInt(2), ConstInt(0)).ComputeResult(env, testOracle())
	assert.Equal(t, 0, result.Result.Len())
	assert.Nil(t, result.Accesses.ReturnData)
}

func TestReturnDataRange(t *testing.T) {
	env := newTestEnv(0)
	env.OnCallEnter(callcontext.New(env.CurrentCallContext, nil, nil, 1, testAddr("0x1"), testAddr("0x1"), testAddr("0x1"), 0, false))
	child := env.CurrentCallContext
	child.ReturnData = tagged("0x11223344556677889900", 1234)
	env.OnCallExit(child.Parent)

	result := ReturnDataRange(ConstInt(2), ConstInt(4)).ComputeResult(env, testOracle())
	assert.Equal(t, "0x33445566", result.Result.HexString().String())
	require.NotNil(t, result.Accesses.ReturnData)
	assert.Equal(t, 2, result.Accesses.ReturnData.Offset)
	assert.Equal(t, 4, result.Accesses.ReturnData.Size)
}

func repeatHex00(n int) string {
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, "00"...)
	}
	return string(out)
}
