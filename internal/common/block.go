package common

import (
	"time"
)

// NullBlockNumber is the conceptual predecessor of genesis, used as the
// initial fold state when scanning for missing block numbers.
const NullBlockNumber int64 = -1

// Block is a canonical chain block mirrored into the store. Re-import of the
// same number replaces the prior row (upsert-by-number), so a block id is
// stable only within one read.
type Block struct {
	ID         int64     `json:"-"`
	Hash       Hash      `json:"hash"`
	Number     int64     `json:"number"`
	ParentHash Hash      `json:"parent_hash"`
	Timestamp  time.Time `json:"timestamp"`
	GasLimit   uint64    `json:"gas_limit"`
	GasUsed    uint64    `json:"gas_used"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (b *Block) Validate() error {
	if b.Hash.Length() != FullHashLength {
		return &ValidationError{Field: "hash", Reason: "block hash must be a full 32-byte hash"}
	}
	if b.Number < 0 {
		return &ValidationError{Field: "number", Reason: "block number must not be negative"}
	}
	if b.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Reason: "block timestamp is required"}
	}
	return nil
}

// BlockModel is the serialized form consumed by the presentation layer, with
// hashes pre-rendered as 0x strings.
type BlockModel struct {
	Hash       string    `json:"hash"`
	Number     int64     `json:"number"`
	ParentHash string    `json:"parent_hash"`
	Timestamp  time.Time `json:"timestamp"`
	GasLimit   uint64    `json:"gas_limit"`
	GasUsed    uint64    `json:"gas_used"`
}

func (b *Block) Serialize() BlockModel {
	return BlockModel{
		Hash:       b.Hash.Hex(),
		Number:     b.Number,
		ParentHash: b.ParentHash.Hex(),
		Timestamp:  b.Timestamp,
		GasLimit:   b.GasLimit,
		GasUsed:    b.GasUsed,
	}
}
