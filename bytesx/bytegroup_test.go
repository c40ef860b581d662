package bytesx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexStringAsSize(t *testing.T) {
	h := MustParse("0x01")
	padded := h.AsSize(4)
	assert.Equal(t, "0x00000001", padded.String())

	truncated := MustParse("0xdeadbeef01").AsSize(2)
	assert.Equal(t, "0xef01", truncated.String())
}

func TestHexStringOddLength(t *testing.T) {
	h, err := Parse("0x5")
	require.NoError(t, err)
	assert.Equal(t, "0x05", h.String())
}

func TestByteGroupSplitByDependencies(t *testing.T) {
	g := FromHexString(MustParse("0xaa"), 1).
		Concat(FromHexString(MustParse("0xbb"), 1)).
		Concat(FromHexString(MustParse("0xcc"), 2))

	parts := g.SplitByDependencies()
	require.Len(t, parts, 2)
	assert.Equal(t, "0xaabb", parts[0].HexString().String())
	assert.Equal(t, "0xcc", parts[1].HexString().String())

	deps := g.DependsOnInstructionIndexes()
	assert.Len(t, deps, 2)
	_, ok1 := deps[1]
	_, ok2 := deps[2]
	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestByteGroupToSize(t *testing.T) {
	g := FromHexString(MustParse("0x01"), 5)
	padded := g.ToSize(4, 9)
	assert.Equal(t, "0x00000001", padded.HexString().String())
	assert.Equal(t, 9, padded[0].Step)
	assert.Equal(t, 5, padded[3].Step)

	truncated := FromHexString(MustParse("0xdeadbeef"), 1).ToSize(2, 9)
	assert.Equal(t, "0xbeef", truncated.HexString().String())
}

func TestZeros(t *testing.T) {
	z := Zeros(3, stepTestStep)
	assert.Equal(t, 3, z.Len())
	for _, tb := range z {
		assert.Equal(t, byte(0), tb.Value)
	}
}

const stepTestStep = 7
