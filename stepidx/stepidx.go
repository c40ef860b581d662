// Package stepidx defines the sentinel step indices shared across the
// trace-EVM packages. Every byte produced during parsing is tagged with
// either a real, monotonically increasing step index or one of these
// sentinels.
package stepidx

// Prestate tags bytes that originate from the transaction's prestate
// (calldata, value, or a storage slot whose value was never written during
// this transaction) rather than from any executed instruction.
const Prestate = -1

// TestDefault tags synthetic bytes used only in unit tests, where no
// meaningful provenance exists.
const TestDefault = -2

// IsSentinel reports whether step is one of the reserved sentinel values
// rather than a real step index.
func IsSentinel(step int) bool {
	return step < 0
}
