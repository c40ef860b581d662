package callmanager

import (
	"github.com/ethflow/tracewalk/callcontext"
	"github.com/ethflow/tracewalk/instructions"
)

// TreeNode is one call context's place in the call tree: the context
// itself, the instructions that ran directly in it (in execution order),
// and its direct children, also in execution order (first entered first).
type TreeNode struct {
	CallContext  *callcontext.CallContext
	Instructions []*instructions.Instruction
	Children     []*TreeNode
}

// BuildCallTree walks instrs in execution order and groups them by call
// context, linking each newly encountered context under its parent's node
// the first time one of its instructions is seen. Since CallContext.Parent
// is set at construction time (arena ownership, see spec.md section 9),
// this needs only one pass: a pre-order traversal of the resulting tree
// reproduces execution order exactly.
func BuildCallTree(root *callcontext.CallContext, instrs []*instructions.Instruction) *TreeNode {
	nodes := map[*callcontext.CallContext]*TreeNode{root: {CallContext: root}}

	for _, instr := range instrs {
		cc := instr.CallContext
		node, ok := nodes[cc]
		if !ok {
			node = &TreeNode{CallContext: cc}
			nodes[cc] = node
			parent := nodes[cc.Parent]
			parent.Children = append(parent.Children, node)
		}
		node.Instructions = append(node.Instructions, instr)
	}

	return nodes[root]
}

// Depth returns the call context's depth, as a convenience for callers
// verifying the "node depth equals call_context.depth" invariant.
func (n *TreeNode) Depth() int {
	return n.CallContext.Depth
}

// Walk visits n and every descendant in pre-order (the same order
// BuildCallTree's single pass encountered them in).
func (n *TreeNode) Walk(visit func(*TreeNode)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}
