// Command tracewalk parses a single transaction's EIP-3155-style trace
// against its metadata, reconstructs per-instruction byte provenance, and
// prints the resulting call tree.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ethereum/go-ethereum/log"

	"github.com/ethflow/tracewalk/callmanager"
	"github.com/ethflow/tracewalk/events"
	"github.com/ethflow/tracewalk/metadata"
	"github.com/ethflow/tracewalk/parsetx"
	"github.com/ethflow/tracewalk/sigs"
)

type cli struct {
	Trace    string `help:"Path to the EIP-3155-style line-delimited JSON trace." required:"" type:"existingfile"`
	Metadata string `help:"Path to the transaction metadata JSON document." required:"" type:"existingfile"`
	Strict   bool   `help:"Fail on any oracle/post-state mismatch instead of logging it."`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Description("Reconstruct per-instruction information flow from an EVM execution trace."))

	if err := run(c); err != nil {
		log.Error("tracewalk: fatal", "err", err)
		os.Exit(1)
	}
}

func run(c cli) error {
	metaFile, err := os.Open(c.Metadata)
	if err != nil {
		return err
	}
	defer metaFile.Close()

	info, err := metadata.Load(metaFile, c.Strict)
	if err != nil {
		return err
	}

	traceFile, err := os.Open(c.Trace)
	if err != nil {
		return err
	}
	defer traceFile.Close()

	trace, err := events.ReadAll(traceFile)
	if err != nil {
		return err
	}

	parsed, err := parsetx.ParseTransaction(context.Background(), trace, info)
	if err != nil {
		return err
	}

	fmt.Printf("Parsing transaction from %s to %s\n", info.Sender.String(), info.Recipient.String())
	fmt.Printf("Parsed %d instructions\n", len(parsed.Instructions))
	renderCallTree(parsed.CallTree, 0, sigs.Noop{})
	return nil
}

// renderCallTree prints the call tree, annotating each node with its
// resolved function signature when lookup has one for the node's calldata
// selector (the first 4 bytes of its calldata).
func renderCallTree(node *callmanager.TreeNode, depth int, lookup sigs.Lookup) {
	indent := strings.Repeat("  ", depth)
	label := node.CallContext.StorageAddress.String()
	if calldata := node.CallContext.Calldata; calldata.Len() >= 4 {
		if sig, ok := lookup.LookupByHex(calldata.Left(4).HexString().String()); ok {
			label = fmt.Sprintf("%s %s", label, sig)
		}
	}
	fmt.Printf("%s- %s (depth %d, %d instructions)\n", indent, label, node.Depth(), len(node.Instructions))
	for _, child := range node.Children {
		renderCallTree(child, depth+1, lookup)
	}
}
