// Package bytesx provides the hex/byte primitives the trace-EVM is built
// on: a HexString value type and the byte-provenance-tagged ByteGroup used
// for every stack, memory, storage and calldata value the simulator
// manipulates.
package bytesx

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexString is an ordered sequence of bytes, always representable as an
// even number of hex digits. It has no byte-provenance of its own; that is
// layered on top by ByteGroup.
type HexString struct {
	data []byte
}

// Parse decodes s, which may or may not carry a "0x"/"0X" prefix. An odd
// number of hex digits is left-padded with a single "0" nibble, since
// EIP-3155 traces routinely emit minimal-width hex (e.g. "0x5") rather than
// byte-aligned values.
func Parse(s string) (HexString, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed)%2 != 0 {
		trimmed = "0" + trimmed
	}
	if trimmed == "" {
		return HexString{}, nil
	}
	b, err := hexutil.Decode("0x" + trimmed)
	if err != nil {
		return HexString{}, fmt.Errorf("bytesx: invalid hex string %q: %w", s, err)
	}
	return HexString{data: b}, nil
}

// MustParse is like Parse but panics on error; intended for constants and
// tests.
func MustParse(s string) HexString {
	h, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return h
}

// FromBytes wraps raw bytes as a HexString without any re-encoding.
func FromBytes(b []byte) HexString {
	out := make([]byte, len(b))
	copy(out, b)
	return HexString{data: out}
}

// FromInt renders a non-negative integer as the shortest even-length hex
// string that represents it (at least one byte).
func FromInt(v int) HexString {
	return FromBigInt(big.NewInt(int64(v)))
}

// FromBigInt renders a non-negative big integer as the shortest
// even-length hex string that represents it (at least one byte).
func FromBigInt(v *big.Int) HexString {
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}
	return HexString{data: b}
}

// Zeros returns an all-zero HexString of n bytes.
func Zeros(n int) HexString {
	return HexString{data: make([]byte, n)}
}

// Bytes returns the underlying bytes. Callers must not mutate the result.
func (h HexString) Bytes() []byte {
	return h.data
}

// Len returns the byte length.
func (h HexString) Len() int {
	return len(h.data)
}

// String renders the HexString with a "0x" prefix.
func (h HexString) String() string {
	return "0x" + hexutil.Encode(h.data)[2:]
}

// AsSize resizes the HexString to exactly n bytes: left-padded with zero
// bytes if shorter, truncated from the left (keeping the least-significant,
// rightmost bytes) if longer. This matches big-endian integer semantics: padding never changes
// the represented value, truncation keeps the low-order bytes.
func (h HexString) AsSize(n int) HexString {
	switch {
	case len(h.data) == n:
		return h
	case len(h.data) < n:
		out := make([]byte, n)
		copy(out[n-len(h.data):], h.data)
		return HexString{data: out}
	default:
		return HexString{data: append([]byte(nil), h.data[len(h.data)-n:]...)}
	}
}

// AsInt interprets the bytes as a non-negative big-endian integer.
func (h HexString) AsInt() *big.Int {
	return new(big.Int).SetBytes(h.data)
}

// AsAddress interprets the right-most 20 bytes as an address.
func (h HexString) AsAddress() common.Address {
	sized := h.AsSize(20)
	var addr common.Address
	copy(addr[:], sized.data)
	return addr
}
