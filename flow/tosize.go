package flow

import "github.com/ethflow/tracewalk/environment"

// toSizeNode resizes a value to exactly size bytes: left-padding with
// step-tagged zero bytes if it is shorter, right-truncating (keeping the
// low-order bytes) if it is longer.
type toSizeNode struct {
	value ResultNode
	size  int
}

func (n toSizeNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	value := n.value.ComputeResult(env, oracle)
	return FlowWithResult{
		Flow:   value.Flow,
		Result: value.Result.ToSize(n.size, env.CurrentStepIndex),
	}
}

// ToSize resizes value to exactly size bytes.
func ToSize(value ResultNode, size int) ResultNode {
	return toSizeNode{value: value, size: size}
}
