package storage

import (
	"testing"

	"github.com/ethflow/tracewalk/bytesx"
	"github.com/stretchr/testify/assert"
)

func TestAddressKeyStorageKnowsKey(t *testing.T) {
	s := NewAddressKeyStorage()
	addr := bytesx.MustParse("0xaa00000000000000000000000000000000000a")
	key := tagged("0x01", -1)

	assert.False(t, s.KnowsKey(addr, key))

	s.Set(addr, key, tagged("0x42", 1))
	assert.True(t, s.KnowsKey(addr, key))
}

func TestAddressKeyStorageGetNonExistentAddress(t *testing.T) {
	s := NewAddressKeyStorage()
	addr := bytesx.MustParse("0xaa00000000000000000000000000000000000a")
	v, ok := s.Get(addr, tagged("0x01", -1))

	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestAddressKeyStorageGetNonExistentKey(t *testing.T) {
	s := NewAddressKeyStorage()
	addr := bytesx.MustParse("0xaa00000000000000000000000000000000000a")
	s.Set(addr, tagged("0x01", -1), tagged("0x42", 1))

	v, ok := s.Get(addr, tagged("0x02", -1))
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestAddressKeyStorageSetThenGet(t *testing.T) {
	s := NewAddressKeyStorage()
	addr := bytesx.MustParse("0xaa00000000000000000000000000000000000a")
	key := tagged("0x01", -1)
	value := tagged("0x42", 2)

	s.Set(addr, key, value)

	got, ok := s.Get(addr, key)
	assert.True(t, ok)
	assert.Equal(t, "0x42", got.HexString().String())
}

func TestAddressKeyStorageKeysCanonicalizeToFullWidth(t *testing.T) {
	s := NewAddressKeyStorage()
	addr := bytesx.MustParse("0xaa00000000000000000000000000000000000a")
	s.Set(addr, tagged("0x01", -1), tagged("0xff", 1))

	// A short and a 32-byte zero-padded key refer to the same slot.
	full := tagged("0x0000000000000000000000000000000000000000000000000000000000000001", -1)
	v, ok := s.Get(addr, full)
	assert.True(t, ok)
	assert.Equal(t, "0xff", v.HexString().String())
}

func TestAddressKeyStorageClone(t *testing.T) {
	s := NewAddressKeyStorage()
	addr := bytesx.MustParse("0xaa00000000000000000000000000000000000a")
	key := tagged("0x01", -1)
	s.Set(addr, key, tagged("0x42", 1))

	clone := s.Clone()
	clone.Set(addr, key, tagged("0x43", 2))

	orig, _ := s.Get(addr, key)
	cloned, _ := clone.Get(addr, key)
	assert.Equal(t, "0x42", orig.HexString().String())
	assert.Equal(t, "0x43", cloned.HexString().String())
}
