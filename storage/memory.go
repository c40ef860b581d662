package storage

import "github.com/ethflow/tracewalk/bytesx"

// Memory is a byte-addressable linear buffer of tagged bytes, expanded in
// 32-byte words like the real EVM. Reads never fail and never expand the
// buffer: any range extending past the current size is synthesized on the
// fly as zero-bytes tagged with the reading step, without being
// committed. Writes that extend the buffer round the new size up to the
// next word and tag every newly created byte (the written range's own
// gap, plus any word-alignment tail) with the writing step.
type Memory struct {
	data bytesx.ByteGroup
}

// NewMemory returns an empty memory. It satisfies the factory shape
// expected by ContextSpecificStorage.
func NewMemory() *Memory {
	return &Memory{}
}

// Size returns the current buffer length in bytes.
func (m *Memory) Size() int {
	return m.data.Len()
}

func wordAlign(n int) int {
	return ((n + 31) / 32) * 32
}

// Get reads exactly size bytes starting at offset. Bytes past the current
// buffer length are synthesized as zero bytes tagged with step; the
// buffer itself is left untouched.
func (m *Memory) Get(offset, size int, step int) bytesx.ByteGroup {
	if size == 0 {
		return nil
	}
	end := offset + size
	switch {
	case end <= m.data.Len():
		return m.data.Slice(offset, end)
	case offset >= m.data.Len():
		return bytesx.Zeros(size, step)
	default:
		available := m.data.Slice(offset, m.data.Len())
		return available.Concat(bytesx.Zeros(end-m.data.Len(), step))
	}
}

// Write places value at offset, word-aligned-expanding the buffer
// (tagging any gap and word-alignment tail bytes with step) if
// offset+len(value) exceeds the current size.
func (m *Memory) Write(offset int, value bytesx.ByteGroup, step int) {
	if value.Len() == 0 {
		return
	}
	m.expand(offset+value.Len(), step)
	for i, tb := range value {
		m.data[offset+i] = tb
	}
}

// CheckExpansion grows the buffer to at least a word-aligned offset+size
// bytes, tagging any newly created bytes with step, without writing any
// value.
func (m *Memory) CheckExpansion(offset, size int, step int) {
	m.expand(offset+size, step)
}

func (m *Memory) expand(minSize int, step int) {
	if minSize <= m.data.Len() {
		return
	}
	newSize := wordAlign(minSize)
	m.data = m.data.Concat(bytesx.Zeros(newSize-m.data.Len(), step))
}

// Clone returns a deep-enough copy of m for use as a per-call-context
// snapshot.
func (m *Memory) Clone() *Memory {
	return &Memory{data: m.data.Slice(0, m.data.Len())}
}
