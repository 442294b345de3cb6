package common

import "time"

// Log is an event emitted during transaction execution, attached to the
// transaction's receipt. Index orders logs within the parent receipt.
type Log struct {
	ID         int64     `json:"-"`
	ReceiptID  int64     `json:"-"`
	Index      int64     `json:"index"`
	Data       string    `json:"data"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (l *Log) Validate() error {
	if l.Index < 0 {
		return &ValidationError{Field: "index", Reason: "log index must not be negative"}
	}
	return nil
}
