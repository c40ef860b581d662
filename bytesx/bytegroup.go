package bytesx

// TaggedByte is a single byte plus the step index of the instruction that
// produced it (or one of the stepidx sentinels).
type TaggedByte struct {
	Value byte
	Step  int
}

// ByteGroup is an ordered, immutable-after-construction sequence of tagged
// bytes. It backs every stack entry, memory range, storage value, calldata
// slice and return-data slice the simulator touches.
type ByteGroup []TaggedByte

// FromHexString tags every byte of h with step.
func FromHexString(h HexString, step int) ByteGroup {
	b := h.Bytes()
	g := make(ByteGroup, len(b))
	for i, v := range b {
		g[i] = TaggedByte{Value: v, Step: step}
	}
	return g
}

// Zeros returns n zero bytes tagged with step.
func Zeros(n int, step int) ByteGroup {
	g := make(ByteGroup, n)
	for i := range g {
		g[i] = TaggedByte{Value: 0, Step: step}
	}
	return g
}

// Len returns the number of bytes in the group.
func (g ByteGroup) Len() int {
	return len(g)
}

// Concat returns a new group with other appended after g. Both operands'
// per-byte provenance is preserved.
func (g ByteGroup) Concat(other ByteGroup) ByteGroup {
	out := make(ByteGroup, 0, len(g)+len(other))
	out = append(out, g...)
	out = append(out, other...)
	return out
}

// Slice returns the half-open range [lo, hi), preserving provenance.
func (g ByteGroup) Slice(lo, hi int) ByteGroup {
	out := make(ByteGroup, hi-lo)
	copy(out, g[lo:hi])
	return out
}

// Left returns the first n bytes.
func (g ByteGroup) Left(n int) ByteGroup {
	return g.Slice(0, n)
}

// Right returns the last n bytes.
func (g ByteGroup) Right(n int) ByteGroup {
	return g.Slice(len(g)-n, len(g))
}

// HexString renders the group's values (ignoring provenance) as a
// HexString.
func (g ByteGroup) HexString() HexString {
	b := make([]byte, len(g))
	for i, tb := range g {
		b[i] = tb.Value
	}
	return FromBytes(b)
}

// DependsOnInstructionIndexes returns the set of distinct step indices
// across all bytes in the group.
func (g ByteGroup) DependsOnInstructionIndexes() map[int]struct{} {
	out := make(map[int]struct{})
	for _, tb := range g {
		out[tb.Step] = struct{}{}
	}
	return out
}

// SplitByDependencies partitions g into maximal contiguous runs of bytes
// sharing the same step index, in stable left-to-right order.
func (g ByteGroup) SplitByDependencies() []ByteGroup {
	if len(g) == 0 {
		return nil
	}
	var out []ByteGroup
	start := 0
	for i := 1; i <= len(g); i++ {
		if i == len(g) || g[i].Step != g[start].Step {
			out = append(out, g.Slice(start, i))
			start = i
		}
	}
	return out
}

// ToSize left-pads (with step-tagged zero bytes) or right-truncates
// (keeping the low-order, right-most bytes) g to exactly n bytes.
func (g ByteGroup) ToSize(n int, step int) ByteGroup {
	switch {
	case len(g) == n:
		return g
	case len(g) < n:
		return Zeros(n-len(g), step).Concat(g)
	default:
		return g.Right(n)
	}
}

// AsAddress interprets the right-most 20 bytes as an address, returned as
// a canonical 20-byte HexString.
func (g ByteGroup) AsAddress() HexString {
	addr := g.HexString().AsAddress()
	return FromBytes(addr.Bytes())
}
