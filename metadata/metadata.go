// Package metadata loads the transaction-metadata JSON document: the set
// of candidate transactions plus an ordering naming which one is the
// victim transaction to analyze (the last entry of transactions_order).
package metadata

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/ethflow/tracewalk/bytesx"
)

// ErrMalformedMetadata is returned when the metadata document cannot be
// decoded, or names a transaction hash with no matching entry.
var ErrMalformedMetadata = errors.New("metadata: malformed metadata document")

type rawTransaction struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Input string `json:"input"`
	Value string `json:"value"`
}

type rawDocument struct {
	TransactionsOrder []string                  `json:"transactions_order"`
	Transactions      map[string]rawTransaction `json:"transactions"`
}

// TransactionParsingInfo is everything parsetx.ParseTransaction needs to
// build the root call context and drive the EVM: the victim transaction's
// sender/recipient/calldata/value, plus whether to run in strict
// (verify_storages) mode. VerifyStorages is a per-transaction flag (see
// SPEC_FULL.md section 9), not a process-wide one, even though this
// loader currently only ever sets it from a single CLI flag.
type TransactionParsingInfo struct {
	Hash           string
	Sender         bytesx.HexString
	Recipient      bytesx.HexString
	Calldata       bytesx.HexString
	Value          bytesx.HexString
	VerifyStorages bool
}

// Load parses r and selects the last entry of transactions_order as the
// victim transaction.
func Load(r io.Reader, verifyStorages bool) (TransactionParsingInfo, error) {
	var doc rawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return TransactionParsingInfo{}, errors.Wrapf(ErrMalformedMetadata, "%v", err)
	}
	if len(doc.TransactionsOrder) == 0 {
		return TransactionParsingInfo{}, errors.Wrap(ErrMalformedMetadata, "transactions_order is empty")
	}
	hash := doc.TransactionsOrder[len(doc.TransactionsOrder)-1]
	tx, ok := doc.Transactions[hash]
	if !ok {
		return TransactionParsingInfo{}, errors.Wrapf(ErrMalformedMetadata, "transaction %q not found", hash)
	}

	sender, err := bytesx.Parse(tx.From)
	if err != nil {
		return TransactionParsingInfo{}, errors.Wrap(ErrMalformedMetadata, err.Error())
	}
	recipient, err := bytesx.Parse(tx.To)
	if err != nil {
		return TransactionParsingInfo{}, errors.Wrap(ErrMalformedMetadata, err.Error())
	}
	calldata, err := bytesx.Parse(tx.Input)
	if err != nil {
		return TransactionParsingInfo{}, errors.Wrap(ErrMalformedMetadata, err.Error())
	}
	value := bytesx.Zeros(32)
	if tx.Value != "" {
		value, err = bytesx.Parse(tx.Value)
		if err != nil {
			return TransactionParsingInfo{}, errors.Wrap(ErrMalformedMetadata, err.Error())
		}
	}

	return TransactionParsingInfo{
		Hash: hash, Sender: sender, Recipient: recipient,
		Calldata: calldata, Value: value, VerifyStorages: verifyStorages,
	}, nil
}
