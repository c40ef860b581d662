package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethflow/tracewalk/bytesx"
)

// AddressKeyStorage is a mapping from a 20-byte address to a mapping from
// a 32-byte key to a 32-byte tagged value. It backs both persistent and
// transient storage.
type AddressKeyStorage struct {
	data map[common.Address]map[[32]byte]bytesx.ByteGroup
}

// NewAddressKeyStorage returns an empty storage. It satisfies the factory
// shape expected by RevertableStorage.
func NewAddressKeyStorage() *AddressKeyStorage {
	return &AddressKeyStorage{data: make(map[common.Address]map[[32]byte]bytesx.ByteGroup)}
}

func canonicalAddr(addr bytesx.HexString) common.Address {
	return addr.AsSize(20).AsAddress()
}

func canonicalKey(key bytesx.ByteGroup) [32]byte {
	var out [32]byte
	copy(out[:], key.HexString().AsSize(32).Bytes())
	return out
}

// KnowsKey reports whether addr/key has ever been set.
func (s *AddressKeyStorage) KnowsKey(addr bytesx.HexString, key bytesx.ByteGroup) bool {
	slots, ok := s.data[canonicalAddr(addr)]
	if !ok {
		return false
	}
	_, ok = slots[canonicalKey(key)]
	return ok
}

// Get returns the value at addr/key and whether it was known. Callers
// (SLOAD) are responsible for falling back to oracle data with PRESTATE
// provenance when the second return is false.
func (s *AddressKeyStorage) Get(addr bytesx.HexString, key bytesx.ByteGroup) (bytesx.ByteGroup, bool) {
	slots, ok := s.data[canonicalAddr(addr)]
	if !ok {
		return nil, false
	}
	v, ok := slots[canonicalKey(key)]
	return v, ok
}

// Set canonicalizes addr and stores value at key.
func (s *AddressKeyStorage) Set(addr bytesx.HexString, key bytesx.ByteGroup, value bytesx.ByteGroup) {
	a := canonicalAddr(addr)
	slots, ok := s.data[a]
	if !ok {
		slots = make(map[[32]byte]bytesx.ByteGroup)
		s.data[a] = slots
	}
	slots[canonicalKey(key)] = value
}

// Clone returns a deep copy for use as a revert/commit snapshot.
func (s *AddressKeyStorage) Clone() *AddressKeyStorage {
	out := NewAddressKeyStorage()
	for addr, slots := range s.data {
		cp := make(map[[32]byte]bytesx.ByteGroup, len(slots))
		for k, v := range slots {
			cp[k] = v
		}
		out.data[addr] = cp
	}
	return out
}
