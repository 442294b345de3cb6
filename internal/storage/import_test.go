package storage

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/freechain/poa-explorer/configs"
	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/rpc"
)

const (
	testBlockHash  = "0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b"
	testParentHash = "0x3d6122660cc824376f11ee842f83addc3525e2dd6756b9bcf0affa6aa88cf741"
	testTxHash     = "0x53bd884872de3e488692881baeec262e7b95234d3965248c39fe992fffd433e5"
	testTxHash2    = "0xf9e69be4f1ae524854e14dc820c519d8f2f86e302c132fdeff5500d9a6b753c1"
	testFromAddr   = "0x8bf38d4764929064f2d4d3a56520a76ab3df415b"
	testToAddr     = "0x515c09c5bba1ed566b02a5b0599ec5d5d0aee73d"
)

func rawBlock(number uint64, txs ...rpc.RawTransaction) rpc.RawBlock {
	return rpc.RawBlock{
		Hash:         testBlockHash,
		Number:       hexutil.Uint64(number),
		ParentHash:   testParentHash,
		Timestamp:    hexutil.Uint64(1500000000),
		GasLimit:     hexutil.Uint64(8000000),
		GasUsed:      hexutil.Uint64(21000),
		Transactions: txs,
	}
}

func rawTransaction(hash string, index uint64) rpc.RawTransaction {
	return rpc.RawTransaction{
		Hash:             hash,
		TransactionIndex: hexutil.Uint64(index),
		From:             testFromAddr,
		To:               testToAddr,
		Value:            (*hexutil.Big)(big.NewInt(1000)),
		Gas:              hexutil.Uint64(21000),
		GasPrice:         (*hexutil.Big)(big.NewInt(1000000000)),
	}
}

func TestExtractBatch(t *testing.T) {
	now := time.Now().UTC()
	batch := ImportBatch{
		Blocks: []rpc.RawBlock{rawBlock(5, rawTransaction(testTxHash, 0), rawTransaction(testTxHash2, 1))},
	}

	staged, err := extractBatch(batch, now)
	require.NoError(t, err)
	require.Len(t, staged.blocks, 1)
	require.Len(t, staged.txs, 2)

	block := staged.blocks[0]
	assert.Equal(t, int64(5), block.Number)
	assert.Equal(t, testBlockHash, block.Hash.Hex())
	assert.Equal(t, time.Unix(1500000000, 0).UTC(), block.Timestamp)
	assert.Equal(t, now, block.InsertedAt)

	tx := staged.txs[0]
	assert.Equal(t, testTxHash, tx.Hash.Hex())
	require.NotNil(t, tx.Index)
	assert.Equal(t, int64(0), *tx.Index)
	assert.Equal(t, "1000", tx.Value.String())
	assert.Equal(t, int64(5), staged.txBlockNumber[testTxHash])
	assert.Equal(t, int64(5), staged.txBlockNumber[testTxHash2])
}

func TestExtractBatchDeduplicatesBlocks(t *testing.T) {
	first := rawBlock(5)
	second := rawBlock(5)
	second.GasUsed = hexutil.Uint64(42000)

	staged, err := extractBatch(ImportBatch{Blocks: []rpc.RawBlock{first, second}}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, staged.blocks, 1)
	// the later submission's fields win
	assert.Equal(t, uint64(42000), staged.blocks[0].GasUsed)
}

func TestExtractBatchDeduplicatesTransactions(t *testing.T) {
	tx := rawTransaction(testTxHash, 0)
	again := rawTransaction(testTxHash, 3)

	staged, err := extractBatch(ImportBatch{Blocks: []rpc.RawBlock{rawBlock(5, tx, again)}}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, staged.txs, 1)
	require.NotNil(t, staged.txs[0].Index)
	assert.Equal(t, int64(3), *staged.txs[0].Index)
}

func TestExtractBatchNormalizesLookupKeys(t *testing.T) {
	upperHash := "0x53BD884872DE3E488692881BAEEC262E7B95234D3965248C39FE992FFFD433E5"
	batch := ImportBatch{
		Blocks: []rpc.RawBlock{rawBlock(5, rawTransaction(testTxHash, 0))},
		Traces: map[string][]rpc.RawTrace{
			upperHash: {{
				TransactionHash: upperHash,
				CallType:        "call",
				From:            testFromAddr,
				To:              testToAddr,
				Value:           (*hexutil.Big)(big.NewInt(1)),
				TraceAddress:    "[]",
			}},
		},
		Receipts: map[string]*rpc.RawReceipt{
			upperHash: {TransactionHash: upperHash, Status: 1, GasUsed: 21000},
		},
	}

	staged, err := extractBatch(batch, time.Now().UTC())
	require.NoError(t, err)
	assert.Contains(t, staged.traces, testTxHash)
	assert.Contains(t, staged.receipts, testTxHash)
}

func TestExtractBatchRejectsInvalidRecords(t *testing.T) {
	badBlock := rawBlock(5)
	badBlock.Hash = "0xnothex"
	_, err := extractBatch(ImportBatch{Blocks: []rpc.RawBlock{badBlock}}, time.Now().UTC())
	require.Error(t, err)
	var verr *common.ValidationError
	assert.ErrorAs(t, err, &verr)

	badTx := rawTransaction(testTxHash, 0)
	badTx.From = "0xshort"
	_, err = extractBatch(ImportBatch{Blocks: []rpc.RawBlock{rawBlock(5, badTx)}}, time.Now().UTC())
	assert.Error(t, err)
}

func TestExtractTransactionContractCreation(t *testing.T) {
	raw := rawTransaction(testTxHash, 0)
	raw.To = ""

	tx, err := extractTransaction(raw, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, tx.ToAddressHash.IsZero())
}

func TestExtractTransactionNilValue(t *testing.T) {
	raw := rawTransaction(testTxHash, 0)
	raw.Value = nil
	raw.GasPrice = nil

	tx, err := extractTransaction(raw, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "0", tx.Value.String())
	assert.Equal(t, "0", tx.GasPrice.String())
}

func TestImportBatchEmpty(t *testing.T) {
	// an empty batch never touches the database, so no connection is needed
	p := &PostgresConnector{}
	summary, err := p.ImportBatch(context.Background(), ImportBatch{})
	require.NoError(t, err)
	assert.Equal(t, &ImportSummary{}, summary)
}

func TestRowPlaceholders(t *testing.T) {
	assert.Equal(t, "($1, $2, $3)", rowPlaceholders(0, 3))
	assert.Equal(t, "($4, $5, $6)", rowPlaceholders(3, 3))
}

func TestImportBatchPostgres(t *testing.T) {
	// Skip if no Postgres is available
	t.Skip("Skipping Postgres tests - requires running Postgres instance")

	cfg := &config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Username: "test",
		Password: "test",
		Database: "test_explorer",
		SSLMode:  "disable",
	}

	conn, err := NewPostgresConnector(cfg)
	require.NoError(t, err)
	defer conn.Close()

	batch := ImportBatch{
		Blocks: []rpc.RawBlock{rawBlock(5, rawTransaction(testTxHash, 0))},
		Receipts: map[string]*rpc.RawReceipt{
			testTxHash: {TransactionHash: testTxHash, Status: 1, GasUsed: 21000, Logs: []rpc.RawLog{{LogIndex: 0, Data: "0x"}}},
		},
	}

	summary, err := conn.ImportBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Blocks)
	assert.Equal(t, 1, summary.Transactions)
	assert.Equal(t, 1, summary.Receipts)
	assert.Equal(t, 1, summary.Logs)

	// replaying the same batch must not duplicate receipts or logs
	replay, err := conn.ImportBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, replay.Blocks)
	assert.Equal(t, 1, replay.Transactions)
	assert.Equal(t, 0, replay.Receipts)
	assert.Equal(t, 0, replay.Logs)
}
