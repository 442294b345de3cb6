package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"

	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/rpc"
)

// Import stage identifiers, reported on failure.
const (
	StageExtract              = "extract"
	StageBlocks               = "blocks"
	StageTransactions         = "transactions"
	StageInternalTransactions = "internal_transactions"
	StageReceipts             = "receipts"
	StageLogs                 = "logs"
)

// ImportBatch is one unit of ingestion work: a set of raw blocks with their
// nested transactions, plus the traces and receipts for those transactions
// keyed by transaction hash. Transactions must always be submitted together
// with their containing block; traces and receipts are best-effort lookups.
type ImportBatch struct {
	Blocks   []rpc.RawBlock
	Traces   map[string][]rpc.RawTrace
	Receipts map[string]*rpc.RawReceipt
}

// ImportSummary reports how many rows each stage wrote. Replayed rows
// absorbed by conflict policy are not counted.
type ImportSummary struct {
	Blocks               int
	Transactions         int
	InternalTransactions int
	Receipts             int
	Logs                 int
}

// ImportError tags a failed import with the stage that aborted the batch.
type ImportError struct {
	Stage string
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import stage %s failed: %v", e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ImportBatch runs the six-stage ingestion pipeline inside one database
// transaction. Later stages depend on generated identifiers returned by
// earlier stages, so the stages run strictly in order: blocks, then
// transactions, then internal transactions, then receipts, then logs. Any
// failure outside the tolerated conflict policies rolls the whole batch
// back; no partial batch is ever visible.
func (p *PostgresConnector) ImportBatch(ctx context.Context, batch ImportBatch) (*ImportSummary, error) {
	staged, err := extractBatch(batch, time.Now().UTC())
	if err != nil {
		return nil, &ImportError{Stage: StageExtract, Err: err}
	}
	if len(staged.blocks) == 0 {
		return &ImportSummary{}, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &ImportError{Stage: StageBlocks, Err: &StoreError{Op: "begin", Err: err}}
	}
	defer tx.Rollback()

	summary, err := p.runImportStages(ctx, tx, staged)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &ImportError{Stage: StageLogs, Err: &StoreError{Op: "commit", Err: err}}
	}

	log.Debug().
		Int("blocks", summary.Blocks).
		Int("transactions", summary.Transactions).
		Int("internal_transactions", summary.InternalTransactions).
		Int("receipts", summary.Receipts).
		Int("logs", summary.Logs).
		Msg("imported batch")
	return summary, nil
}

func (p *PostgresConnector) runImportStages(ctx context.Context, tx *sql.Tx, staged *stagedBatch) (*ImportSummary, error) {
	summary := &ImportSummary{}

	blockIDs, err := insertBlocks(ctx, tx, staged.blocks)
	if err != nil {
		return nil, &ImportError{Stage: StageBlocks, Err: err}
	}
	summary.Blocks = len(blockIDs)

	txIDs, err := insertTransactions(ctx, tx, staged, blockIDs)
	if err != nil {
		if integrity, ok := err.(*IntegrityError); ok {
			return nil, integrity
		}
		return nil, &ImportError{Stage: StageTransactions, Err: err}
	}
	summary.Transactions = len(txIDs)

	summary.InternalTransactions, err = insertInternalTransactions(ctx, tx, staged, txIDs)
	if err != nil {
		return nil, &ImportError{Stage: StageInternalTransactions, Err: err}
	}

	stagedLogs, receiptCount, err := insertReceipts(ctx, tx, staged, txIDs)
	if err != nil {
		return nil, &ImportError{Stage: StageReceipts, Err: err}
	}
	summary.Receipts = receiptCount

	summary.Logs, err = insertLogs(ctx, tx, staged.now, stagedLogs)
	if err != nil {
		return nil, &ImportError{Stage: StageLogs, Err: err}
	}

	return summary, nil
}

// stagedBatch is the output of the extract stage: validated entities in
// deterministic input order, plus lookup tables carried forward so that
// later stages never re-query the store to rediscover identifiers.
type stagedBatch struct {
	now           time.Time
	blocks        []common.Block
	txs           []common.Transaction
	txBlockNumber map[string]int64
	traces        map[string][]rpc.RawTrace
	receipts      map[string]*rpc.RawReceipt
}

func extractBatch(batch ImportBatch, now time.Time) (*stagedBatch, error) {
	staged := &stagedBatch{
		now:           now,
		txBlockNumber: make(map[string]int64),
		traces:        make(map[string][]rpc.RawTrace, len(batch.Traces)),
		receipts:      make(map[string]*rpc.RawReceipt, len(batch.Receipts)),
	}
	for hash, traces := range batch.Traces {
		staged.traces[rpc.NormalizeHash(hash)] = traces
	}
	for hash, receipt := range batch.Receipts {
		staged.receipts[rpc.NormalizeHash(hash)] = receipt
	}

	blockPos := make(map[int64]int)
	txPos := make(map[string]int)
	for _, rawBlock := range batch.Blocks {
		block, err := extractBlock(rawBlock, now)
		if err != nil {
			return nil, err
		}
		// Re-submission of a number within one batch replaces the earlier
		// entry: last writer wins, matching the upsert-by-number policy.
		if pos, seen := blockPos[block.Number]; seen {
			staged.blocks[pos] = block
		} else {
			blockPos[block.Number] = len(staged.blocks)
			staged.blocks = append(staged.blocks, block)
		}

		for _, rawTx := range rawBlock.Transactions {
			transaction, err := extractTransaction(rawTx, now)
			if err != nil {
				return nil, err
			}
			key := rpc.NormalizeHash(rawTx.Hash)
			staged.txBlockNumber[key] = block.Number
			if pos, seen := txPos[key]; seen {
				staged.txs[pos] = transaction
			} else {
				txPos[key] = len(staged.txs)
				staged.txs = append(staged.txs, transaction)
			}
		}
	}
	return staged, nil
}

func extractBlock(raw rpc.RawBlock, now time.Time) (common.Block, error) {
	hash, err := common.ParseFullHash(raw.Hash)
	if err != nil {
		return common.Block{}, err
	}
	parentHash, err := common.ParseFullHash(raw.ParentHash)
	if err != nil {
		return common.Block{}, err
	}
	block := common.Block{
		Hash:       hash,
		Number:     int64(raw.Number),
		ParentHash: parentHash,
		Timestamp:  time.Unix(int64(raw.Timestamp), 0).UTC(),
		GasLimit:   uint64(raw.GasLimit),
		GasUsed:    uint64(raw.GasUsed),
		InsertedAt: now,
		UpdatedAt:  now,
	}
	return block, block.Validate()
}

func extractTransaction(raw rpc.RawTransaction, now time.Time) (common.Transaction, error) {
	hash, err := common.ParseFullHash(raw.Hash)
	if err != nil {
		return common.Transaction{}, err
	}
	from, err := common.ParseAddressHash(raw.From)
	if err != nil {
		return common.Transaction{}, err
	}
	var to common.Hash
	if raw.To != "" {
		if to, err = common.ParseAddressHash(raw.To); err != nil {
			return common.Transaction{}, err
		}
	}
	index := int64(raw.TransactionIndex)
	transaction := common.Transaction{
		Hash:            hash,
		Index:           &index,
		FromAddressHash: from,
		ToAddressHash:   to,
		Value:           bigOrZero(raw.Value),
		Gas:             uint64(raw.Gas),
		GasPrice:        bigOrZero(raw.GasPrice),
		InsertedAt:      now,
		UpdatedAt:       now,
	}
	return transaction, transaction.Validate()
}

func extractInternalTransaction(raw rpc.RawTrace, index int64, now time.Time) (common.InternalTransaction, error) {
	from, err := common.ParseAddressHash(raw.From)
	if err != nil {
		return common.InternalTransaction{}, err
	}
	var to common.Hash
	if raw.To != "" {
		if to, err = common.ParseAddressHash(raw.To); err != nil {
			return common.InternalTransaction{}, err
		}
	}
	internal := common.InternalTransaction{
		Index:           index,
		CallType:        raw.CallType,
		FromAddressHash: from,
		ToAddressHash:   to,
		Value:           bigOrZero(raw.Value),
		Gas:             uint64(raw.Gas),
		GasUsed:         uint64(raw.GasUsed),
		Input:           raw.Input,
		Output:          raw.Output,
		TraceAddress:    raw.TraceAddress,
		InsertedAt:      now,
		UpdatedAt:       now,
	}
	return internal, internal.Validate()
}

func bigOrZero(v *hexutil.Big) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

// insertBlocks bulk-upserts blocks. A unique-number conflict replaces the
// existing row entirely: last batch wins. The returned map resolves block
// numbers to their generated identifiers for the transaction stage.
func insertBlocks(ctx context.Context, tx *sql.Tx, blocks []common.Block) (map[int64]int64, error) {
	valueStrings := make([]string, 0, len(blocks))
	valueArgs := make([]interface{}, 0, len(blocks)*8)
	for i, block := range blocks {
		valueStrings = append(valueStrings, rowPlaceholders(i*8, 8))
		valueArgs = append(valueArgs,
			block.Hash, block.Number, block.ParentHash, block.Timestamp,
			block.GasLimit, block.GasUsed, block.InsertedAt, block.UpdatedAt)
	}

	query := fmt.Sprintf(`INSERT INTO blocks (hash, number, parent_hash, timestamp, gas_limit, gas_used, inserted_at, updated_at)
		VALUES %s
		ON CONFLICT (number) DO UPDATE SET
			hash = EXCLUDED.hash,
			parent_hash = EXCLUDED.parent_hash,
			timestamp = EXCLUDED.timestamp,
			gas_limit = EXCLUDED.gas_limit,
			gas_used = EXCLUDED.gas_used,
			updated_at = EXCLUDED.updated_at
		RETURNING id, number`, strings.Join(valueStrings, ","))

	rows, err := tx.QueryContext(ctx, query, valueArgs...)
	if err != nil {
		return nil, &StoreError{Op: "insert blocks", Err: err}
	}
	defer rows.Close()

	ids := make(map[int64]int64, len(blocks))
	for rows.Next() {
		var id, number int64
		if err := rows.Scan(&id, &number); err != nil {
			return nil, &StoreError{Op: "insert blocks", Err: err}
		}
		ids[number] = id
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "insert blocks", Err: err}
	}
	return ids, nil
}

// insertTransactions resolves each transaction's containing block through the
// number-to-id map built by the block stage and bulk-inserts. A hash conflict
// attaches the new block linkage to the existing row, which makes replays and
// pending-to-collated promotion idempotent. The returned map resolves
// transaction hashes to generated identifiers.
func insertTransactions(ctx context.Context, tx *sql.Tx, staged *stagedBatch, blockIDs map[int64]int64) (map[string]int64, error) {
	if len(staged.txs) == 0 {
		return map[string]int64{}, nil
	}

	valueStrings := make([]string, 0, len(staged.txs))
	valueArgs := make([]interface{}, 0, len(staged.txs)*10)
	for i, transaction := range staged.txs {
		number := staged.txBlockNumber[rpc.NormalizeHash(transaction.Hash.Hex())]
		blockID, ok := blockIDs[number]
		if !ok {
			return nil, &IntegrityError{
				Stage:  StageTransactions,
				Reason: fmt.Sprintf("transaction %s references block %d which is not part of the batch", transaction.Hash.Hex(), number),
			}
		}
		valueStrings = append(valueStrings, rowPlaceholders(i*10, 10))
		valueArgs = append(valueArgs,
			transaction.Hash, blockID, transaction.Index,
			transaction.FromAddressHash, transaction.ToAddressHash,
			transaction.Value.String(), transaction.Gas, transaction.GasPrice.String(),
			transaction.InsertedAt, transaction.UpdatedAt)
	}

	query := fmt.Sprintf(`INSERT INTO transactions (hash, block_id, index, from_address_hash, to_address_hash, value, gas, gas_price, inserted_at, updated_at)
		VALUES %s
		ON CONFLICT (hash) DO UPDATE SET
			block_id = EXCLUDED.block_id,
			index = EXCLUDED.index,
			updated_at = EXCLUDED.updated_at
		RETURNING id, hash`, strings.Join(valueStrings, ","))

	rows, err := tx.QueryContext(ctx, query, valueArgs...)
	if err != nil {
		return nil, &StoreError{Op: "insert transactions", Err: err}
	}
	defer rows.Close()

	ids := make(map[string]int64, len(staged.txs))
	for rows.Next() {
		var id int64
		var hash common.Hash
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, &StoreError{Op: "insert transactions", Err: err}
		}
		ids[rpc.NormalizeHash(hash.Hex())] = id
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "insert transactions", Err: err}
	}
	return ids, nil
}

// insertInternalTransactions stamps each trace with its parent transaction's
// generated id and bulk-inserts them. Traces whose parent hash is not among
// the just-inserted transactions contribute nothing; pre-existing duplicates
// are ignored, not overwritten.
func insertInternalTransactions(ctx context.Context, tx *sql.Tx, staged *stagedBatch, txIDs map[string]int64) (int, error) {
	var internals []common.InternalTransaction
	for _, transaction := range staged.txs {
		key := rpc.NormalizeHash(transaction.Hash.Hex())
		transactionID, ok := txIDs[key]
		if !ok {
			continue
		}
		for i, trace := range staged.traces[key] {
			internal, err := extractInternalTransaction(trace, int64(i), staged.now)
			if err != nil {
				return 0, err
			}
			internal.TransactionID = transactionID
			internals = append(internals, internal)
		}
	}
	if len(internals) == 0 {
		return 0, nil
	}

	valueStrings := make([]string, 0, len(internals))
	valueArgs := make([]interface{}, 0, len(internals)*13)
	for i, internal := range internals {
		valueStrings = append(valueStrings, rowPlaceholders(i*13, 13))
		valueArgs = append(valueArgs,
			internal.TransactionID, internal.Index, internal.CallType,
			internal.FromAddressHash, internal.ToAddressHash,
			internal.Value.String(), internal.Gas, internal.GasUsed,
			internal.Input, internal.Output, internal.TraceAddress,
			internal.InsertedAt, internal.UpdatedAt)
	}

	query := fmt.Sprintf(`INSERT INTO internal_transactions (transaction_id, index, call_type, from_address_hash, to_address_hash, value, gas, gas_used, input, output, trace_address, inserted_at, updated_at)
		VALUES %s
		ON CONFLICT (transaction_id, index) DO NOTHING`, strings.Join(valueStrings, ","))

	result, err := tx.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, &IntegrityError{Stage: StageInternalTransactions, Reason: "trace references a transaction outside the batch"}
		}
		return 0, &StoreError{Op: "insert internal transactions", Err: err}
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, &StoreError{Op: "insert internal transactions", Err: err}
	}
	return int(inserted), nil
}

// insertReceipts inserts the receipt of every freshly inserted transaction
// that has one; pending transactions without a receipt are skipped. Logs
// embedded in a receipt are staged against the receipt's generated id for the
// final stage. Replayed receipts conflict on transaction_id and are ignored,
// so their logs are not re-staged.
func insertReceipts(ctx context.Context, tx *sql.Tx, staged *stagedBatch, txIDs map[string]int64) ([]common.Log, int, error) {
	var receipts []common.Receipt
	logsByTransactionID := make(map[int64][]rpc.RawLog)
	for _, transaction := range staged.txs {
		key := rpc.NormalizeHash(transaction.Hash.Hex())
		transactionID, ok := txIDs[key]
		if !ok {
			continue
		}
		raw := staged.receipts[key]
		if raw == nil {
			continue
		}
		receipt := common.Receipt{
			TransactionID: transactionID,
			Status:        uint64(raw.Status),
			GasUsed:       uint64(raw.GasUsed),
			InsertedAt:    staged.now,
			UpdatedAt:     staged.now,
		}
		if err := receipt.Validate(); err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, receipt)
		logsByTransactionID[transactionID] = raw.Logs
	}
	if len(receipts) == 0 {
		return nil, 0, nil
	}

	valueStrings := make([]string, 0, len(receipts))
	valueArgs := make([]interface{}, 0, len(receipts)*5)
	for i, receipt := range receipts {
		valueStrings = append(valueStrings, rowPlaceholders(i*5, 5))
		valueArgs = append(valueArgs,
			receipt.TransactionID, receipt.Status, receipt.GasUsed,
			receipt.InsertedAt, receipt.UpdatedAt)
	}

	query := fmt.Sprintf(`INSERT INTO receipts (transaction_id, status, gas_used, inserted_at, updated_at)
		VALUES %s
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id, transaction_id`, strings.Join(valueStrings, ","))

	rows, err := tx.QueryContext(ctx, query, valueArgs...)
	if err != nil {
		return nil, 0, &StoreError{Op: "insert receipts", Err: err}
	}
	defer rows.Close()

	var stagedLogs []common.Log
	inserted := 0
	for rows.Next() {
		var receiptID, transactionID int64
		if err := rows.Scan(&receiptID, &transactionID); err != nil {
			return nil, 0, &StoreError{Op: "insert receipts", Err: err}
		}
		inserted++
		for _, rawLog := range logsByTransactionID[transactionID] {
			stagedLogs = append(stagedLogs, common.Log{
				ReceiptID: receiptID,
				Index:     int64(rawLog.LogIndex),
				Data:      rawLog.Data,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &StoreError{Op: "insert receipts", Err: err}
	}
	return stagedLogs, inserted, nil
}

func insertLogs(ctx context.Context, tx *sql.Tx, now time.Time, logs []common.Log) (int, error) {
	if len(logs) == 0 {
		return 0, nil
	}

	valueStrings := make([]string, 0, len(logs))
	valueArgs := make([]interface{}, 0, len(logs)*5)
	for i, entry := range logs {
		if err := entry.Validate(); err != nil {
			return 0, err
		}
		valueStrings = append(valueStrings, rowPlaceholders(i*5, 5))
		valueArgs = append(valueArgs, entry.ReceiptID, entry.Index, entry.Data, now, now)
	}

	query := fmt.Sprintf(`INSERT INTO logs (receipt_id, index, data, inserted_at, updated_at)
		VALUES %s
		ON CONFLICT (receipt_id, index) DO NOTHING`, strings.Join(valueStrings, ","))

	result, err := tx.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return 0, &StoreError{Op: "insert logs", Err: err}
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, &StoreError{Op: "insert logs", Err: err}
	}
	return int(inserted), nil
}

// rowPlaceholders renders ($n+1, ..., $n+width) for multi-row inserts.
func rowPlaceholders(offset, width int) string {
	parts := make([]string, width)
	for i := 0; i < width; i++ {
		parts[i] = fmt.Sprintf("$%d", offset+i+1)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
