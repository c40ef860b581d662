package flow

import "github.com/ethflow/tracewalk/environment"

// noopNode is the empty Node: no accesses, no writes. Used by opcodes
// whose entire effect is already captured by the surrounding driver (e.g.
// JUMPDEST).
type noopNode struct{}

func (noopNode) Compute(*environment.ParsingEnvironment, environment.InstructionOutputOracle) Flow {
	return Flow{}
}

// Noop is the shared no-op node.
var Noop Node = noopNode{}

// combineNode evaluates every argument in order and merges their
// accesses/writes, discarding any results. It is how most instructions
// assemble several independent reads/writes (e.g. "pop two stack args,
// push one result") into a single Node.
type combineNode struct {
	args []Node
}

func (c combineNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	flows := make([]Flow, len(c.args))
	for i, a := range c.args {
		flows[i] = a.Compute(env, oracle)
	}
	return mergeFlows(flows...)
}

// Combine sequences args, left to right, into a single Node.
func Combine(args ...Node) Node {
	return combineNode{args: args}
}

// resultAsNode adapts a ResultNode so it can be passed to Combine.
type resultAsNode struct {
	r ResultNode
}

func (n resultAsNode) Compute(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) Flow {
	return asFlow(n.r, env, oracle)
}

// AsNode adapts r so it can be used wherever a plain Node is expected,
// e.g. as an argument to Combine.
func AsNode(r ResultNode) Node {
	return resultAsNode{r: r}
}
