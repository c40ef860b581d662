package instructions

import (
	"testing"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/environment"
)

// stackDepthForTableTest is comfortably past the deepest index any
// Definition.Flow addresses directly (SWAP16 peeks index 16; CALL reads
// indexes 0-6), so every opcode in the table can evaluate without a stack
// underflow.
const stackDepthForTableTest = 20

func wordN(n int) bytesx.ByteGroup {
	return bytesx.FromHexString(bytesx.FromInt(n), 0).ToSize(32, 0)
}

// populatedEnv builds an environment with a full stack, some memory and
// calldata, so every opcode's Flow can be computed without touching
// unpopulated state.
func populatedEnv() *environment.ParsingEnvironment {
	calldata := bytesx.FromHexString(bytesx.MustParse("0x1122334455667788"), -1)
	value := wordN(7)
	root := callcontext.New(nil, calldata, value, 1, bytesx.MustParse("0x01").AsSize(20), bytesx.MustParse("0x02").AsSize(20), bytesx.MustParse("0x02").AsSize(20), -1, false)
	env := environment.New(root)
	env.CurrentStepIndex = 1

	for i := 1; i <= stackDepthForTableTest; i++ {
		if err := env.Stack().Push(wordN(i)); err != nil {
			panic(err)
		}
	}
	env.Memory().Write(0, wordN(1), 0)
	return env
}

func populatedOracle() environment.InstructionOutputOracle {
	return environment.InstructionOutputOracle{
		Stack:  []bytesx.HexString{bytesx.MustParse("0x2a")},
		Memory: bytesx.MustParse("0x0102030405"),
	}
}

// TestOpcodeTableBijection checks spec.md invariant 7: Lookup(opcode)
// returns a Definition whose own Opcode field matches the key it was
// looked up under, for every opcode byte this catalogue defines.
func TestOpcodeTableBijection(t *testing.T) {
	for opcode, def := range Table {
		if def.Opcode != opcode {
			t.Errorf("opcode 0x%02x: Definition.Opcode = 0x%02x, want 0x%02x", opcode, def.Opcode, opcode)
		}
		if def.Flow == nil {
			t.Errorf("opcode 0x%02x (%s): nil Flow", opcode, def.Name)
		}
		if def.Name == "" {
			t.Errorf("opcode 0x%02x: empty Name", opcode)
		}
	}
}

// TestAllInstructionsPushFullWidthStackValues guards against a
// Definition.Flow that pushes a value shorter than the 32-byte words
// storage.Stack requires (see storage/stack.go's Push): ADDRESS,
// CALLDATASIZE, RETURNDATASIZE and MSIZE previously pushed the shortest
// byte representation of their result instead of a zero-padded word,
// which made EVM.Step fail fatally on nearly any real trace.
func TestAllInstructionsPushFullWidthStackValues(t *testing.T) {
	oracle := populatedOracle()
	for opcode, def := range Table {
		env := populatedEnv()
		flow := def.Flow.Compute(env, oracle)
		for i, push := range flow.Writes.StackPushes {
			if push.Value.Len() != 32 {
				t.Errorf("opcode 0x%02x (%s): stack push #%d is %d bytes, want 32", opcode, def.Name, i, push.Value.Len())
			}
		}
	}
}

func TestCallFamilyKinds(t *testing.T) {
	cases := map[int]Kind{
		0xF0: KindCreate,
		0xF1: KindCall,
		0xF2: KindCallCode,
		0xF4: KindDelegateCall,
		0xF5: KindCreate2,
		0xFA: KindStaticCall,
	}
	for opcode, want := range cases {
		d, ok := Lookup(opcode)
		if !ok {
			t.Fatalf("opcode 0x%02x: not found", opcode)
		}
		if d.Kind != want {
			t.Errorf("opcode 0x%02x (%s): Kind = %v, want %v", opcode, d.Name, d.Kind, want)
		}
		if !d.Kind.IsCallContextEntering() {
			t.Errorf("opcode 0x%02x (%s): expected IsCallContextEntering", opcode, d.Name)
		}
	}
}

func TestPlainOpcodesDoNotEnterCallContext(t *testing.T) {
	for _, opcode := range []int{0x00, 0x01, 0x54, 0x55, 0xF3, 0xFD, 0xFF} {
		d, ok := Lookup(opcode)
		if !ok {
			t.Fatalf("opcode 0x%02x: not found", opcode)
		}
		if d.Kind.IsCallContextEntering() {
			t.Errorf("opcode 0x%02x (%s): should not be call-context-entering", opcode, d.Name)
		}
	}
}
