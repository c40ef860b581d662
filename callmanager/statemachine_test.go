package callmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depthPtr(d int) *int { return &d }

func TestClassifySameDepth(t *testing.T) {
	transition, err := Classify(0x01, 2, depthPtr(2)) // ADD, no depth change
	require.NoError(t, err)
	assert.Equal(t, SameDepth, transition)
}

func TestClassifyEnterOnCallOpcode(t *testing.T) {
	transition, err := Classify(0xF1, 1, depthPtr(2)) // CALL
	require.NoError(t, err)
	assert.Equal(t, Enter, transition)
}

func TestClassifyEnterRejectsNonCallOpcode(t *testing.T) {
	_, err := Classify(0x01, 1, depthPtr(2)) // ADD can't increase depth
	require.ErrorIs(t, err, ErrExpectedDepthChange)
}

func TestClassifyExitNormal(t *testing.T) {
	transition, err := Classify(0xF3, 2, depthPtr(1)) // RETURN
	require.NoError(t, err)
	assert.Equal(t, ExitNormal, transition)
}

func TestClassifyExitRevert(t *testing.T) {
	transition, err := Classify(0xFD, 2, depthPtr(1)) // REVERT
	require.NoError(t, err)
	assert.Equal(t, ExitRevert, transition)
}

func TestClassifyExitExceptional(t *testing.T) {
	transition, err := Classify(0xFE, 2, depthPtr(1)) // invalid opcode, no halt
	require.NoError(t, err)
	assert.Equal(t, ExitExceptional, transition)
}

func TestClassifyExitBelowRootIsUnexpected(t *testing.T) {
	_, err := Classify(0xF3, 1, depthPtr(0))
	require.ErrorIs(t, err, ErrUnexpectedDepthChange)
}

func TestClassifyUnexpectedDepthJump(t *testing.T) {
	_, err := Classify(0x01, 1, depthPtr(3))
	require.ErrorIs(t, err, ErrUnexpectedDepthChange)
}

func TestClassifyEndOfTrace(t *testing.T) {
	transition, err := Classify(0x00, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, EndOfTrace, transition)
}

func TestMakesExceptionalHalt(t *testing.T) {
	assert.True(t, MakesExceptionalHalt(0xFE, 2, 1))
	assert.False(t, MakesExceptionalHalt(0x00, 2, 1), "STOP is a deliberate halt")
	assert.False(t, MakesExceptionalHalt(0xFD, 2, 1), "REVERT is a deliberate halt")
	assert.False(t, MakesExceptionalHalt(0x01, 2, 2), "no depth drop at all")
}
