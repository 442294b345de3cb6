// Package rpc declares the raw chain records handed over by the JSON-RPC
// fetcher. The import pipeline consumes them as-is; their field names follow
// the chain-native wire format.
package rpc

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type RawBlock struct {
	Hash         string           `json:"hash"`
	Number       hexutil.Uint64   `json:"number"`
	ParentHash   string           `json:"parentHash"`
	Timestamp    hexutil.Uint64   `json:"timestamp"`
	GasLimit     hexutil.Uint64   `json:"gasLimit"`
	GasUsed      hexutil.Uint64   `json:"gasUsed"`
	Transactions []RawTransaction `json:"transactions"`
}

type RawTransaction struct {
	Hash             string         `json:"hash"`
	TransactionIndex hexutil.Uint64 `json:"transactionIndex"`
	From             string         `json:"from"`
	To               string         `json:"to"`
	Value            *hexutil.Big   `json:"value"`
	Gas              hexutil.Uint64 `json:"gas"`
	GasPrice         *hexutil.Big   `json:"gasPrice"`
}

type RawReceipt struct {
	TransactionHash string         `json:"transactionHash"`
	Status          hexutil.Uint64 `json:"status"`
	GasUsed         hexutil.Uint64 `json:"gasUsed"`
	Logs            []RawLog       `json:"logs"`
}

type RawLog struct {
	LogIndex hexutil.Uint64 `json:"logIndex"`
	Data     string         `json:"data"`
}

// RawTrace is one entry of a transaction's execution trace. Traces are keyed
// by the hash of their top-level transaction.
type RawTrace struct {
	TransactionHash string         `json:"transactionHash"`
	CallType        string         `json:"callType"`
	From            string         `json:"from"`
	To              string         `json:"to"`
	Value           *hexutil.Big   `json:"value"`
	Gas             hexutil.Uint64 `json:"gas"`
	GasUsed         hexutil.Uint64 `json:"gasUsed"`
	Input           string         `json:"input"`
	Output          string         `json:"output"`
	TraceAddress    string         `json:"traceAddress"`
}

// NormalizeHash lowercases a chain-native hash string so it can be used as a
// lookup key across the heterogeneous records of one batch.
func NormalizeHash(s string) string {
	return strings.ToLower(s)
}
