package callmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/instructions"
)

func ctx(parent *callcontext.CallContext, depth int) *callcontext.CallContext {
	return callcontext.New(parent, nil, nil, depth, bytesx.MustParse("0x01"), bytesx.MustParse("0x02"), bytesx.MustParse("0x02"), -1, false)
}

func instr(cc *callcontext.CallContext, step int) *instructions.Instruction {
	return &instructions.Instruction{StepIndex: step, CallContext: cc}
}

// TestBuildCallTreeShapesNestedCalls covers spec.md scenario F: a root
// context with one child and one grandchild, interleaved with sibling
// instructions at the root, must produce a tree whose pre-order shape
// matches the call nesting rather than instruction arrival order.
func TestBuildCallTreeShapesNestedCalls(t *testing.T) {
	root := ctx(nil, 1)
	child := ctx(root, 2)
	grandchild := ctx(child, 3)

	instrs := []*instructions.Instruction{
		instr(root, 0),
		instr(child, 1),
		instr(grandchild, 2),
		instr(child, 3),
		instr(root, 4),
	}

	tree := BuildCallTree(root, instrs)

	require.Equal(t, root, tree.CallContext)
	assert.Len(t, tree.Instructions, 2)
	require.Len(t, tree.Children, 1)

	childNode := tree.Children[0]
	assert.Equal(t, child, childNode.CallContext)
	assert.Len(t, childNode.Instructions, 2)
	require.Len(t, childNode.Children, 1)

	grandchildNode := childNode.Children[0]
	assert.Equal(t, grandchild, grandchildNode.CallContext)
	assert.Len(t, grandchildNode.Instructions, 1)
	assert.Empty(t, grandchildNode.Children)
}

func TestTreeNodeWalkVisitsEveryNode(t *testing.T) {
	root := ctx(nil, 1)
	child := ctx(root, 2)
	instrs := []*instructions.Instruction{instr(root, 0), instr(child, 1)}

	tree := BuildCallTree(root, instrs)

	var visited []*callcontext.CallContext
	tree.Walk(func(n *TreeNode) { visited = append(visited, n.CallContext) })

	assert.Equal(t, []*callcontext.CallContext{root, child}, visited)
}

func TestTreeNodeDepth(t *testing.T) {
	root := ctx(nil, 1)
	instrs := []*instructions.Instruction{instr(root, 0)}
	tree := BuildCallTree(root, instrs)
	assert.Equal(t, 1, tree.Depth())
}
