package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethflow/tracewalk/bytesx"
	"github.com/ethflow/tracewalk/stepidx"
)

// Balances tracks, per address, only the step index at which the balance
// was most recently modified during this transaction. The numeric balance
// itself is never tracked here; it is consulted from the oracle when
// needed.
type Balances struct {
	lastModified map[common.Address]int
}

// NewBalances returns an empty balances table. It satisfies the factory
// shape expected by RevertableStorage.
func NewBalances() *Balances {
	return &Balances{lastModified: make(map[common.Address]int)}
}

// LastModifiedAtStepIndex returns the step index at which addr's balance
// was last modified during this transaction, or stepidx.Prestate if addr
// was never touched.
func (b *Balances) LastModifiedAtStepIndex(addr bytesx.HexString) int {
	if step, ok := b.lastModified[canonicalAddr(addr)]; ok {
		return step
	}
	return stepidx.Prestate
}

// ModifiedAtStepIndex records that addr's balance changed at step.
func (b *Balances) ModifiedAtStepIndex(addr bytesx.HexString, step int) {
	b.lastModified[canonicalAddr(addr)] = step
}

// Clone returns a deep copy for use as a revert/commit snapshot.
func (b *Balances) Clone() *Balances {
	out := NewBalances()
	for addr, step := range b.lastModified {
		out.lastModified[addr] = step
	}
	return out
}
