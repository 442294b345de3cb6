package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransaction(t *testing.T) Transaction {
	t.Helper()
	hash, err := ParseFullHash("0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b")
	require.NoError(t, err)
	from, err := ParseAddressHash("0x8bf38d4764929064f2d4d3a56520a76ab3df415b")
	require.NoError(t, err)
	to, err := ParseAddressHash("0x515c09c5bba1ed566b02a5b0599ec5d5d0aee73d")
	require.NoError(t, err)
	return Transaction{
		Hash:            hash,
		FromAddressHash: from,
		ToAddressHash:   to,
		Value:           big.NewInt(1000),
		Gas:             21000,
		GasPrice:        big.NewInt(1000000000),
	}
}

func TestTransactionStatus(t *testing.T) {
	tx := validTransaction(t)
	tx.Gas = 50000

	assert.Equal(t, TransactionStatusPending, tx.Status())

	tx.Receipt = &Receipt{Status: 1, GasUsed: 21000}
	assert.Equal(t, TransactionStatusSuccess, tx.Status())

	tx.Receipt = &Receipt{Status: 0, GasUsed: 21000}
	assert.Equal(t, TransactionStatusFailed, tx.Status())

	tx.Receipt = &Receipt{Status: 0, GasUsed: 50000}
	assert.Equal(t, TransactionStatusOutOfGas, tx.Status())
}

func TestTransactionValidate(t *testing.T) {
	tx := validTransaction(t)
	assert.NoError(t, tx.Validate())

	// contract creation has no to address
	tx.ToAddressHash = Hash{}
	assert.NoError(t, tx.Validate())

	missingHash := validTransaction(t)
	missingHash.Hash = Hash{}
	assert.Error(t, missingHash.Validate())

	badValue := validTransaction(t)
	badValue.Value = big.NewInt(-1)
	assert.Error(t, badValue.Validate())

	nilValue := validTransaction(t)
	nilValue.Value = nil
	assert.Error(t, nilValue.Validate())

	// a block linkage without a position is inconsistent
	collated := validTransaction(t)
	blockID := int64(7)
	collated.BlockID = &blockID
	assert.Error(t, collated.Validate())

	index := int64(0)
	collated.Index = &index
	assert.NoError(t, collated.Validate())
}

func TestTransactionSerialize(t *testing.T) {
	tx := validTransaction(t)
	blockID := int64(3)
	index := int64(2)
	tx.BlockID = &blockID
	tx.Index = &index
	tx.Block = &Block{Number: 42}
	tx.Receipt = &Receipt{Status: 1, GasUsed: 21000}

	m := tx.Serialize()
	assert.Equal(t, tx.Hash.Hex(), m.Hash)
	require.NotNil(t, m.BlockNumber)
	assert.Equal(t, int64(42), *m.BlockNumber)
	require.NotNil(t, m.ToAddressHash)
	assert.Equal(t, tx.ToAddressHash.Hex(), *m.ToAddressHash)
	assert.Equal(t, "1000", m.Value)
	assert.Equal(t, "success", m.Status)
	require.NotNil(t, m.GasUsed)
	assert.Equal(t, uint64(21000), *m.GasUsed)

	pending := validTransaction(t)
	pending.ToAddressHash = Hash{}
	pm := pending.Serialize()
	assert.Nil(t, pm.BlockNumber)
	assert.Nil(t, pm.ToAddressHash)
	assert.Equal(t, "pending", pm.Status)
	assert.Nil(t, pm.GasUsed)
}
