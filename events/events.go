// Package events ingests EIP-3155-style execution traces: one JSON record
// per line, each describing the post-state after one executed
// instruction. This package is a thin, intentionally unoptimized
// collaborator — parsetx/traceevm never depend on anything but the
// TraceEvent shape and the Parser's Next iterator contract below.
package events

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/ethflow/tracewalk/bytesx"
)

// ErrMalformedTraceEvent is returned when a trace line cannot be decoded.
var ErrMalformedTraceEvent = errors.New("events: malformed trace event")

// rawEvent mirrors the on-disk JSON shape: stack is reported top-last.
type rawEvent struct {
	PC     int      `json:"pc"`
	Op     int      `json:"op"`
	Stack  []string `json:"stack"`
	Memory *string  `json:"memory"`
	Depth  *int     `json:"depth"`
}

// TraceEvent is one decoded trace line, normalized so Stack[0] is the
// stack top (the raw JSON reports it last).
type TraceEvent struct {
	ProgramCounter int
	Opcode         int
	Stack          []bytesx.HexString
	Memory         bytesx.HexString
	// Depth is nil for the trace's trailing synthetic end-of-execution
	// marker, if the producer emits one; absent entirely at true EOF.
	Depth *int
}

// Parser reads consecutive TraceEvents from a line-delimited JSON stream.
type Parser struct {
	scanner *bufio.Scanner
}

// NewParser wraps r as a Parser. Each call to Next consumes one line.
func NewParser(r io.Reader) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Parser{scanner: scanner}
}

// Next returns the next event, or false once the stream is exhausted.
func (p *Parser) Next() (TraceEvent, bool, error) {
	for p.scanner.Scan() {
		line := p.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw rawEvent
		if err := json.Unmarshal(line, &raw); err != nil {
			return TraceEvent{}, false, errors.Wrapf(ErrMalformedTraceEvent, "%v", err)
		}
		return decode(raw), true, nil
	}
	return TraceEvent{}, false, errors.Wrap(p.scanner.Err(), "events: scan trace")
}

// ReadAll drains every event from r in order.
func ReadAll(r io.Reader) ([]TraceEvent, error) {
	p := NewParser(r)
	var out []TraceEvent
	for {
		ev, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, ev)
	}
}

func decode(raw rawEvent) TraceEvent {
	stack := make([]bytesx.HexString, len(raw.Stack))
	for i, s := range raw.Stack {
		stack[len(raw.Stack)-1-i] = bytesx.MustParse(s)
	}
	var memory bytesx.HexString
	if raw.Memory != nil {
		memory = bytesx.MustParse(*raw.Memory)
	}
	return TraceEvent{
		ProgramCounter: raw.PC,
		Opcode:         raw.Op,
		Stack:          stack,
		Memory:         memory,
		Depth:          raw.Depth,
	}
}
