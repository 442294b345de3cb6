package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/freechain/poa-explorer/internal/common"
)

// Necessity controls how an association is loaded: Optional relations are
// attached best-effort and their absence never excludes the primary row;
// Required relations filter the result set down to rows that have them.
type Necessity int

const (
	Optional Necessity = iota
	Required
)

// Preload names a relation of the queried entity together with its
// necessity. Relation names are validated against the entity's known
// relations; an unknown name is a configuration error at call time, never
// silently ignored.
type Preload struct {
	Relation  string
	Necessity Necessity
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type relationSpec struct {
	// existsClause filters primary rows lacking the relation; interpreted
	// against the primary table's alias.
	existsClause string
	attach       func(ctx context.Context, q queryer, txs []*common.Transaction) error
}

var transactionRelations = map[string]relationSpec{
	"block": {
		existsClause: "t.block_id IS NOT NULL",
		attach:       attachBlocks,
	},
	"receipt": {
		existsClause: "EXISTS (SELECT 1 FROM receipts r WHERE r.transaction_id = t.id)",
		attach:       attachReceipts,
	},
	"internal_transactions": {
		existsClause: "EXISTS (SELECT 1 FROM internal_transactions it WHERE it.transaction_id = t.id)",
		attach:       attachInternalTransactions,
	},
	"logs": {
		existsClause: "EXISTS (SELECT 1 FROM logs l JOIN receipts r ON l.receipt_id = r.id WHERE r.transaction_id = t.id)",
		attach:       attachLogs,
	},
}

// transactionPreloadFilters validates the preload spec and returns the
// filter clauses contributed by required relations.
func transactionPreloadFilters(preloads []Preload) ([]string, error) {
	var filters []string
	for _, preload := range preloads {
		spec, ok := transactionRelations[preload.Relation]
		if !ok {
			return nil, &common.ValidationError{
				Field:  "preload",
				Reason: fmt.Sprintf("unknown transaction relation %q", preload.Relation),
			}
		}
		if preload.Necessity == Required {
			filters = append(filters, spec.existsClause)
		}
	}
	return filters, nil
}

// applyTransactionPreloads attaches the requested relations to the scanned
// rows. Optional relations that have no related row simply leave the
// association field empty.
func applyTransactionPreloads(ctx context.Context, q queryer, txs []*common.Transaction, preloads []Preload) error {
	if len(txs) == 0 {
		return nil
	}
	for _, preload := range preloads {
		spec, ok := transactionRelations[preload.Relation]
		if !ok {
			return &common.ValidationError{
				Field:  "preload",
				Reason: fmt.Sprintf("unknown transaction relation %q", preload.Relation),
			}
		}
		if err := spec.attach(ctx, q, txs); err != nil {
			return err
		}
	}
	return nil
}

func attachBlocks(ctx context.Context, q queryer, txs []*common.Transaction) error {
	var ids []int64
	seen := make(map[int64]bool)
	for _, transaction := range txs {
		if transaction.BlockID != nil && !seen[*transaction.BlockID] {
			seen[*transaction.BlockID] = true
			ids = append(ids, *transaction.BlockID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, hash, number, parent_hash, timestamp, gas_limit, gas_used, inserted_at, updated_at
		 FROM blocks WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return &StoreError{Op: "preload block", Err: err}
	}
	defer rows.Close()

	blocks := make(map[int64]*common.Block)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return err
		}
		blocks[block.ID] = block
	}
	if err := rows.Err(); err != nil {
		return &StoreError{Op: "preload block", Err: err}
	}

	for _, transaction := range txs {
		if transaction.BlockID != nil {
			transaction.Block = blocks[*transaction.BlockID]
		}
	}
	return nil
}

func attachReceipts(ctx context.Context, q queryer, txs []*common.Transaction) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, transaction_id, status, gas_used, inserted_at, updated_at
		 FROM receipts WHERE transaction_id = ANY($1)`, pq.Array(transactionIDs(txs)))
	if err != nil {
		return &StoreError{Op: "preload receipt", Err: err}
	}
	defer rows.Close()

	receipts := make(map[int64]*common.Receipt)
	for rows.Next() {
		receipt := &common.Receipt{}
		if err := rows.Scan(&receipt.ID, &receipt.TransactionID, &receipt.Status,
			&receipt.GasUsed, &receipt.InsertedAt, &receipt.UpdatedAt); err != nil {
			return &StoreError{Op: "preload receipt", Err: err}
		}
		receipts[receipt.TransactionID] = receipt
	}
	if err := rows.Err(); err != nil {
		return &StoreError{Op: "preload receipt", Err: err}
	}

	for _, transaction := range txs {
		transaction.Receipt = receipts[transaction.ID]
	}
	return nil
}

func attachInternalTransactions(ctx context.Context, q queryer, txs []*common.Transaction) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, transaction_id, index, call_type, from_address_hash, to_address_hash, value, gas, gas_used, input, output, trace_address, inserted_at, updated_at
		 FROM internal_transactions WHERE transaction_id = ANY($1)
		 ORDER BY transaction_id, index`, pq.Array(transactionIDs(txs)))
	if err != nil {
		return &StoreError{Op: "preload internal transactions", Err: err}
	}
	defer rows.Close()

	internals := make(map[int64][]common.InternalTransaction)
	for rows.Next() {
		var internal common.InternalTransaction
		var value string
		if err := rows.Scan(&internal.ID, &internal.TransactionID, &internal.Index,
			&internal.CallType, &internal.FromAddressHash, &internal.ToAddressHash,
			&value, &internal.Gas, &internal.GasUsed, &internal.Input, &internal.Output,
			&internal.TraceAddress, &internal.InsertedAt, &internal.UpdatedAt); err != nil {
			return &StoreError{Op: "preload internal transactions", Err: err}
		}
		if internal.Value, err = parseNumeric(value); err != nil {
			return err
		}
		internals[internal.TransactionID] = append(internals[internal.TransactionID], internal)
	}
	if err := rows.Err(); err != nil {
		return &StoreError{Op: "preload internal transactions", Err: err}
	}

	for _, transaction := range txs {
		transaction.InternalTransactions = internals[transaction.ID]
	}
	return nil
}

func attachLogs(ctx context.Context, q queryer, txs []*common.Transaction) error {
	rows, err := q.QueryContext(ctx,
		`SELECT l.id, l.receipt_id, l.index, l.data, l.inserted_at, l.updated_at, r.transaction_id
		 FROM logs l JOIN receipts r ON l.receipt_id = r.id
		 WHERE r.transaction_id = ANY($1)
		 ORDER BY r.transaction_id, l.index`, pq.Array(transactionIDs(txs)))
	if err != nil {
		return &StoreError{Op: "preload logs", Err: err}
	}
	defer rows.Close()

	logs := make(map[int64][]common.Log)
	for rows.Next() {
		var entry common.Log
		var transactionID int64
		if err := rows.Scan(&entry.ID, &entry.ReceiptID, &entry.Index, &entry.Data,
			&entry.InsertedAt, &entry.UpdatedAt, &transactionID); err != nil {
			return &StoreError{Op: "preload logs", Err: err}
		}
		logs[transactionID] = append(logs[transactionID], entry)
	}
	if err := rows.Err(); err != nil {
		return &StoreError{Op: "preload logs", Err: err}
	}

	for _, transaction := range txs {
		transaction.Logs = logs[transaction.ID]
	}
	return nil
}

func transactionIDs(txs []*common.Transaction) []int64 {
	ids := make([]int64, len(txs))
	for i, transaction := range txs {
		ids[i] = transaction.ID
	}
	return ids
}
