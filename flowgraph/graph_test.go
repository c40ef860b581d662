package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/flow"
	"github.com/ethflow/tracewalk/instructions"
	"github.com/ethflow/tracewalk/storage"
)

func tagged(hex string, step int) bytesx.ByteGroup {
	return bytesx.FromHexString(bytesx.MustParse(hex), step)
}

func withStackRead(step int, value bytesx.ByteGroup) *instructions.Instruction {
	return &instructions.Instruction{
		StepIndex: step,
		Flow: flow.Flow{
			Accesses: storage.StorageAccesses{Stack: []storage.StackAccess{{Index: 0, Value: value}}},
		},
	}
}

func TestBuildEmitsOneEdgePerProducer(t *testing.T) {
	instrs := []*instructions.Instruction{
		withStackRead(0, tagged("0x01", -1)),
		withStackRead(5, tagged("0x02", 0)),
	}

	g := Build(instrs)

	assert.Equal(t, []Edge{{From: 0, To: -1}, {From: 5, To: 0}}, g.Edges())
	assert.Equal(t, []int{0}, g.DependenciesOf(5))
}

func TestBuildDedupesRepeatedEdges(t *testing.T) {
	instrs := []*instructions.Instruction{
		withStackRead(0, tagged("0x01", -1)),
		{
			StepIndex: 3,
			Flow: flow.Flow{
				Accesses: storage.StorageAccesses{Stack: []storage.StackAccess{
					{Index: 0, Value: tagged("0x02", 0)},
					{Index: 1, Value: tagged("0x03", 0)},
				}},
			},
		},
	}

	g := Build(instrs)

	assert.Len(t, g.Edges(), 2, "step 0's prestate edge plus one edge for step 3's two reads of step 0")
}

func TestBuildEmitsBalanceEdgeByLastModifiedStep(t *testing.T) {
	instrs := []*instructions.Instruction{
		{
			StepIndex: 4,
			Flow: flow.Flow{
				Accesses: storage.StorageAccesses{Balance: []storage.BalanceAccess{
					{Address: tagged("0xbeef", -1), LastModifiedStepIndex: 2},
				}},
			},
		},
	}

	g := Build(instrs)

	assert.Equal(t, []Edge{{From: 4, To: 2}}, g.Edges())
}

func TestIsAcyclicRejectsForwardEdge(t *testing.T) {
	g := &Graph{edges: []Edge{{From: 1, To: 3}}}
	assert.False(t, g.IsAcyclic())
}

func TestIsAcyclicAcceptsStrictlyDecreasingEdges(t *testing.T) {
	g := Build([]*instructions.Instruction{
		withStackRead(0, tagged("0x01", -1)),
		withStackRead(5, tagged("0x02", 0)),
	})
	assert.True(t, g.IsAcyclic())
}

func TestDependenciesOfSortsDescending(t *testing.T) {
	instrs := []*instructions.Instruction{
		{
			StepIndex: 10,
			Flow: flow.Flow{
				Accesses: storage.StorageAccesses{Stack: []storage.StackAccess{
					{Index: 0, Value: tagged("0x01", 2)},
					{Index: 1, Value: tagged("0x02", 7)},
				}},
			},
		},
	}

	g := Build(instrs)

	assert.Equal(t, []int{7, 2}, g.DependenciesOf(10))
}
