package common

import (
	"math/big"
	"time"
)

// TransactionStatus is the derived execution state of a transaction. It is
// not stored; it is computed from the presence and contents of the receipt.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusSuccess  TransactionStatus = "success"
	TransactionStatusFailed   TransactionStatus = "failed"
	TransactionStatusOutOfGas TransactionStatus = "out_of_gas"
)

// Transaction is a top-level chain transaction. A pending transaction has no
// block linkage (BlockID and Index nil); a collated one has both.
type Transaction struct {
	ID              int64     `json:"-"`
	Hash            Hash      `json:"hash"`
	BlockID         *int64    `json:"-"`
	Index           *int64    `json:"index"`
	FromAddressHash Hash      `json:"from_address_hash"`
	ToAddressHash   Hash      `json:"to_address_hash"`
	Value           *big.Int  `json:"value"`
	Gas             uint64    `json:"gas"`
	GasPrice        *big.Int  `json:"gas_price"`
	InsertedAt      time.Time `json:"inserted_at"`
	UpdatedAt       time.Time `json:"-"`

	// Associations, populated on demand by the query facade.
	Block                *Block                `json:"block,omitempty"`
	Receipt              *Receipt              `json:"receipt,omitempty"`
	InternalTransactions []InternalTransaction `json:"internal_transactions,omitempty"`
	Logs                 []Log                 `json:"logs,omitempty"`
}

func (t *Transaction) Validate() error {
	if t.Hash.Length() != FullHashLength {
		return &ValidationError{Field: "hash", Reason: "transaction hash must be a full 32-byte hash"}
	}
	if t.FromAddressHash.Length() != AddressHashLength {
		return &ValidationError{Field: "from_address_hash", Reason: "from address must be a 20-byte address hash"}
	}
	if !t.ToAddressHash.IsZero() && t.ToAddressHash.Length() != AddressHashLength {
		return &ValidationError{Field: "to_address_hash", Reason: "to address must be a 20-byte address hash"}
	}
	if t.Value == nil || t.Value.Sign() < 0 {
		return &ValidationError{Field: "value", Reason: "value must be a non-negative integer"}
	}
	if t.BlockID != nil && t.Index == nil {
		return &ValidationError{Field: "index", Reason: "collated transactions must carry their position in the block"}
	}
	return nil
}

// WeiValue implements Valuer.
func (t *Transaction) WeiValue() *big.Int {
	return t.Value
}

// Status derives the execution state from the attached receipt: no receipt
// means the transaction is still pending; receipt status 1 is success;
// status 0 is out_of_gas when all gas was consumed, failed otherwise.
func (t *Transaction) Status() TransactionStatus {
	if t.Receipt == nil {
		return TransactionStatusPending
	}
	if t.Receipt.Status == 1 {
		return TransactionStatusSuccess
	}
	if t.Receipt.GasUsed >= t.Gas {
		return TransactionStatusOutOfGas
	}
	return TransactionStatusFailed
}

type TransactionModel struct {
	Hash            string    `json:"hash"`
	BlockNumber     *int64    `json:"block_number"`
	Index           *int64    `json:"index"`
	FromAddressHash string    `json:"from_address_hash"`
	ToAddressHash   *string   `json:"to_address_hash"`
	Value           string    `json:"value"`
	Gas             uint64    `json:"gas"`
	GasPrice        string    `json:"gas_price"`
	Status          string    `json:"status"`
	GasUsed         *uint64   `json:"gas_used,omitempty"`
	InsertedAt      time.Time `json:"inserted_at"`
}

func (t *Transaction) Serialize() TransactionModel {
	m := TransactionModel{
		Hash:            t.Hash.Hex(),
		Index:           t.Index,
		FromAddressHash: t.FromAddressHash.Hex(),
		Value:           t.Value.String(),
		Gas:             t.Gas,
		GasPrice:        t.GasPrice.String(),
		Status:          string(t.Status()),
		InsertedAt:      t.InsertedAt,
	}
	if !t.ToAddressHash.IsZero() {
		to := t.ToAddressHash.Hex()
		m.ToAddressHash = &to
	}
	if t.Block != nil {
		m.BlockNumber = &t.Block.Number
	}
	if t.Receipt != nil {
		m.GasUsed = &t.Receipt.GasUsed
	}
	return m
}
