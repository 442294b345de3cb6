package common

import "time"

// Receipt is the one-to-one execution result of a collated transaction.
// Receipts are written once their parent transaction has an assigned id and
// are never updated afterwards.
type Receipt struct {
	ID            int64     `json:"-"`
	TransactionID int64     `json:"-"`
	Status        uint64    `json:"status"`
	GasUsed       uint64    `json:"gas_used"`
	InsertedAt    time.Time `json:"inserted_at"`
	UpdatedAt     time.Time `json:"-"`
}

func (r *Receipt) Validate() error {
	if r.Status != 0 && r.Status != 1 {
		return &ValidationError{Field: "status", Reason: "receipt status must be 0 or 1"}
	}
	return nil
}
