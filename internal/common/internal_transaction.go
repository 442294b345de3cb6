package common

import (
	"math/big"
	"time"
)

// InternalTransaction is a trace-derived value transfer or call occurring
// inside the execution of a top-level transaction.
type InternalTransaction struct {
	ID              int64     `json:"-"`
	TransactionID   int64     `json:"-"`
	Index           int64     `json:"index"`
	CallType        string    `json:"call_type"`
	FromAddressHash Hash      `json:"from_address_hash"`
	ToAddressHash   Hash      `json:"to_address_hash"`
	Value           *big.Int  `json:"value"`
	Gas             uint64    `json:"gas"`
	GasUsed         uint64    `json:"gas_used"`
	Input           string    `json:"input"`
	Output          string    `json:"output"`
	TraceAddress    string    `json:"trace_address"`
	InsertedAt      time.Time `json:"inserted_at"`
	UpdatedAt       time.Time `json:"-"`
}

func (it *InternalTransaction) Validate() error {
	if it.FromAddressHash.Length() != AddressHashLength {
		return &ValidationError{Field: "from_address_hash", Reason: "from address must be a 20-byte address hash"}
	}
	if !it.ToAddressHash.IsZero() && it.ToAddressHash.Length() != AddressHashLength {
		return &ValidationError{Field: "to_address_hash", Reason: "to address must be a 20-byte address hash"}
	}
	if it.Value == nil || it.Value.Sign() < 0 {
		return &ValidationError{Field: "value", Reason: "value must be a non-negative integer"}
	}
	return nil
}

// WeiValue implements Valuer.
func (it *InternalTransaction) WeiValue() *big.Int {
	return it.Value
}
