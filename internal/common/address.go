package common

import (
	"math/big"
	"time"
)

// Address is an account known to the explorer. Addresses are created on
// first reference and never deleted; the balance is updated by external
// balance syncs.
type Address struct {
	ID         int64     `json:"-"`
	Hash       Hash      `json:"hash"`
	Balance    *big.Int  `json:"balance"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (a *Address) Validate() error {
	if a.Hash.Length() != AddressHashLength {
		return &ValidationError{Field: "hash", Reason: "address hash must be a 20-byte address hash"}
	}
	if a.Balance != nil && a.Balance.Sign() < 0 {
		return &ValidationError{Field: "balance", Reason: "balance must not be negative"}
	}
	return nil
}

type AddressModel struct {
	Hash    string `json:"hash"`
	Balance string `json:"balance"`
}

func (a *Address) Serialize() AddressModel {
	balance := "0"
	if a.Balance != nil {
		balance = a.Balance.String()
	}
	return AddressModel{
		Hash:    a.Hash.Hex(),
		Balance: balance,
	}
}
