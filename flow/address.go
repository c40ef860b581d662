package flow

import (
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/environment"
	"github.com/ethflow/tracewalk/storage"
)

// currentStorageAddressNode reports the current call context's storage
// address (ADDRESS opcode).
type currentStorageAddressNode struct{}

func (currentStorageAddressNode) ComputeResult(env *environment.ParsingEnvironment, _ environment.InstructionOutputOracle) FlowWithResult {
	addr := bytesx.FromHexString(env.CurrentCallContext.StorageAddress, env.CurrentStepIndex).ToSize(32, env.CurrentStepIndex)
	return FlowWithResult{Result: addr}
}

// CurrentStorageAddress reports the current call context's storage
// address.
func CurrentStorageAddress() ResultNode {
	return currentStorageAddressNode{}
}

// balanceOfNode records a read of addr's balance as of its last
// modification this transaction (or stepidx.Prestate), without producing
// a meaningful result: the actual numeric balance always comes from the
// trace's stack/memory oracle, never from this node.
type balanceOfNode struct {
	addr ResultNode
}

func (n balanceOfNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	addrFlow := n.addr.ComputeResult(env, oracle)
	addr := addrFlow.Result.Right(20)
	lastModified := env.Balances().LastModifiedAtStepIndex(addr.HexString())

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(addrFlow.Accesses,
				storage.StorageAccesses{Balance: []storage.BalanceAccess{{Address: addr, LastModifiedStepIndex: lastModified}}}),
			Writes: addrFlow.Writes,
		},
	}
}

// BalanceOf records a read of addr's balance.
func BalanceOf(addr ResultNode) ResultNode {
	return balanceOfNode{addr: addr}
}

// balanceTransferNode moves value from one address to another, recording
// a read of the sender's prior balance provenance and a write
// recording the new owner.
type balanceTransferNode struct {
	from, to, value ResultNode
}

func (n balanceTransferNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	fromFlow := n.from.ComputeResult(env, oracle)
	toFlow := n.to.ComputeResult(env, oracle)
	valueFlow := n.value.ComputeResult(env, oracle)

	from := fromFlow.Result.Right(20)
	to := toFlow.Result.Right(20)
	lastModified := env.Balances().LastModifiedAtStepIndex(from.HexString())
	env.Balances().ModifiedAtStepIndex(to.HexString(), env.CurrentStepIndex)

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(fromFlow.Accesses, toFlow.Accesses, valueFlow.Accesses,
				storage.StorageAccesses{Balance: []storage.BalanceAccess{{Address: from, LastModifiedStepIndex: lastModified}}}),
			Writes: storage.MergeWrites(fromFlow.Writes, toFlow.Writes, valueFlow.Writes,
				storage.StorageWrites{Balance: []storage.BalanceTransferWrite{{From: from, To: to, Value: valueFlow.Result}}}),
		},
	}
}

// BalanceTransfer moves value from from to to.
func BalanceTransfer(from, to, value ResultNode) ResultNode {
	return balanceTransferNode{from: from, to: to, value: value}
}

// selfdestructNode moves an account's entire balance to another address
// and marks it destroyed.
type selfdestructNode struct {
	from, to ResultNode
}

func (n selfdestructNode) ComputeResult(env *environment.ParsingEnvironment, oracle environment.InstructionOutputOracle) FlowWithResult {
	fromFlow := n.from.ComputeResult(env, oracle)
	toFlow := n.to.ComputeResult(env, oracle)

	from := fromFlow.Result.Right(20)
	to := toFlow.Result.Right(20)
	lastModified := env.Balances().LastModifiedAtStepIndex(from.HexString())
	env.Balances().ModifiedAtStepIndex(to.HexString(), env.CurrentStepIndex)

	return FlowWithResult{
		Flow: Flow{
			Accesses: storage.MergeAccesses(fromFlow.Accesses, toFlow.Accesses,
				storage.StorageAccesses{Balance: []storage.BalanceAccess{{Address: from, LastModifiedStepIndex: lastModified}}}),
			Writes: storage.MergeWrites(fromFlow.Writes, toFlow.Writes,
				storage.StorageWrites{Selfdestruct: []storage.SelfdestructWrite{{From: from, To: to}}}),
		},
	}
}

// Selfdestruct moves from's entire balance to to.
func Selfdestruct(from, to ResultNode) ResultNode {
	return selfdestructNode{from: from, to: to}
}
