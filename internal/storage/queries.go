package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/freechain/poa-explorer/internal/common"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// PageParams selects one page of a listing. Zero values fall back to the
// first page with the default size.
type PageParams struct {
	Page     int
	PageSize int
}

func (p PageParams) normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p PageParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

type PageMetadata struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalEntries int64 `json:"total_entries"`
	TotalPages   int64 `json:"total_pages"`
}

func pageMetadata(page PageParams, total int64) PageMetadata {
	pages := total / int64(page.PageSize)
	if total%int64(page.PageSize) != 0 {
		pages++
	}
	return PageMetadata{
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalEntries: total,
		TotalPages:   pages,
	}
}

type BlockPage struct {
	Entries []*common.Block `json:"entries"`
	Meta    PageMetadata    `json:"page_metadata"`
}

type TransactionPage struct {
	Entries []*common.Transaction `json:"entries"`
	Meta    PageMetadata          `json:"page_metadata"`
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const blockColumns = `id, hash, number, parent_hash, timestamp, gas_limit, gas_used, inserted_at, updated_at`

func scanBlock(row rowScanner) (*common.Block, error) {
	block := &common.Block{}
	err := row.Scan(&block.ID, &block.Hash, &block.Number, &block.ParentHash,
		&block.Timestamp, &block.GasLimit, &block.GasUsed, &block.InsertedAt, &block.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "scan block", Err: err}
	}
	return block, nil
}

const transactionColumns = `t.id, t.hash, t.block_id, t.index, t.from_address_hash, t.to_address_hash, t.value, t.gas, t.gas_price, t.inserted_at, t.updated_at`

func scanTransaction(row rowScanner) (*common.Transaction, error) {
	transaction := &common.Transaction{}
	var blockID, index sql.NullInt64
	var value, gasPrice string
	err := row.Scan(&transaction.ID, &transaction.Hash, &blockID, &index,
		&transaction.FromAddressHash, &transaction.ToAddressHash,
		&value, &transaction.Gas, &gasPrice,
		&transaction.InsertedAt, &transaction.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "scan transaction", Err: err}
	}
	if blockID.Valid {
		transaction.BlockID = &blockID.Int64
	}
	if index.Valid {
		transaction.Index = &index.Int64
	}
	if transaction.Value, err = parseNumeric(value); err != nil {
		return nil, err
	}
	if transaction.GasPrice, err = parseNumeric(gasPrice); err != nil {
		return nil, err
	}
	return transaction, nil
}

func parseNumeric(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, &StoreError{Op: "decode numeric", Err: fmt.Errorf("cannot parse %q", s)}
	}
	return v, nil
}

// LatestBlock returns the block with the highest number.
func (p *PostgresConnector) LatestBlock(ctx context.Context) (*common.Block, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM blocks ORDER BY number DESC LIMIT 1`)
	return scanBlock(row)
}

func (p *PostgresConnector) BlockByNumber(ctx context.Context, number int64) (*common.Block, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE number = $1`, number)
	return scanBlock(row)
}

func (p *PostgresConnector) BlockByHash(ctx context.Context, hash common.Hash) (*common.Block, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE hash = $1`, hash)
	return scanBlock(row)
}

// ListBlocks pages through blocks by descending number.
func (p *PostgresConnector) ListBlocks(ctx context.Context, page PageParams) (*BlockPage, error) {
	page = page.normalize()

	var total int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`).Scan(&total); err != nil {
		return nil, &StoreError{Op: "count blocks", Err: err}
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks ORDER BY number DESC LIMIT $1 OFFSET $2`,
		page.PageSize, page.offset())
	if err != nil {
		return nil, &StoreError{Op: "list blocks", Err: err}
	}
	defer rows.Close()

	blocks := make([]*common.Block, 0, page.PageSize)
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list blocks", Err: err}
	}
	return &BlockPage{Entries: blocks, Meta: pageMetadata(page, total)}, nil
}

// TransactionByHash looks a transaction up by its full hash and attaches the
// requested associations.
func (p *PostgresConnector) TransactionByHash(ctx context.Context, hash common.Hash, preloads ...Preload) (*common.Transaction, error) {
	filters, err := transactionPreloadFilters(preloads)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.hash = $1`
	if len(filters) > 0 {
		query += ` AND ` + strings.Join(filters, ` AND `)
	}

	transaction, err := scanTransaction(p.db.QueryRowContext(ctx, query, hash))
	if err != nil {
		return nil, err
	}
	if err := applyTransactionPreloads(ctx, p.db, []*common.Transaction{transaction}, preloads); err != nil {
		return nil, err
	}
	return transaction, nil
}

// ListTransactions pages through collated transactions, most recently
// inserted first with hash as tiebreak.
func (p *PostgresConnector) ListTransactions(ctx context.Context, page PageParams, preloads ...Preload) (*TransactionPage, error) {
	return p.listTransactions(ctx, `t.block_id IS NOT NULL`, nil, page, preloads)
}

// PendingTransactions pages through transactions not yet included in any
// block.
func (p *PostgresConnector) PendingTransactions(ctx context.Context, page PageParams, preloads ...Preload) (*TransactionPage, error) {
	return p.listTransactions(ctx, `t.block_id IS NULL`, nil, page, preloads)
}

// TransactionsByBlockNumber pages through the transactions collated into the
// block at the given height.
func (p *PostgresConnector) TransactionsByBlockNumber(ctx context.Context, number int64, page PageParams, preloads ...Preload) (*TransactionPage, error) {
	where := `t.block_id = (SELECT id FROM blocks WHERE number = $1)`
	return p.listTransactions(ctx, where, []interface{}{number}, page, preloads)
}

// TransactionsFromAddress pages through transactions sent by the address.
func (p *PostgresConnector) TransactionsFromAddress(ctx context.Context, address common.Hash, page PageParams, preloads ...Preload) (*TransactionPage, error) {
	return p.listTransactions(ctx, `t.from_address_hash = $1`, []interface{}{address}, page, preloads)
}

// TransactionsToAddress pages through transactions received by the address.
func (p *PostgresConnector) TransactionsToAddress(ctx context.Context, address common.Hash, page PageParams, preloads ...Preload) (*TransactionPage, error) {
	return p.listTransactions(ctx, `t.to_address_hash = $1`, []interface{}{address}, page, preloads)
}

func (p *PostgresConnector) listTransactions(ctx context.Context, where string, args []interface{}, page PageParams, preloads []Preload) (*TransactionPage, error) {
	page = page.normalize()

	filters, err := transactionPreloadFilters(preloads)
	if err != nil {
		return nil, err
	}
	conditions := append([]string{where}, filters...)
	condition := strings.Join(conditions, ` AND `)

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions t WHERE ` + condition
	if err := p.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, &StoreError{Op: "count transactions", Err: err}
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions t WHERE %s
		ORDER BY t.inserted_at DESC, t.hash ASC
		LIMIT $%d OFFSET $%d`, transactionColumns, condition, len(args)+1, len(args)+2)
	listArgs := append(append([]interface{}{}, args...), page.PageSize, page.offset())

	rows, err := p.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, &StoreError{Op: "list transactions", Err: err}
	}
	defer rows.Close()

	txs := make([]*common.Transaction, 0, page.PageSize)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list transactions", Err: err}
	}

	if err := applyTransactionPreloads(ctx, p.db, txs, preloads); err != nil {
		return nil, err
	}
	return &TransactionPage{Entries: txs, Meta: pageMetadata(page, total)}, nil
}

const addressColumns = `id, hash, balance, inserted_at, updated_at`

func scanAddress(row rowScanner) (*common.Address, error) {
	address := &common.Address{}
	var balance string
	err := row.Scan(&address.ID, &address.Hash, &balance, &address.InsertedAt, &address.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "scan address", Err: err}
	}
	if address.Balance, err = parseNumeric(balance); err != nil {
		return nil, err
	}
	return address, nil
}

func (p *PostgresConnector) AddressByHash(ctx context.Context, hash common.Hash) (*common.Address, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE hash = $1`, hash)
	return scanAddress(row)
}

// EnsureAddress creates the address row if it does not exist yet and returns
// it. A losing race against a concurrent creator is resolved by a single
// re-fetch; under sustained contention this can still report ErrNotFound
// even though the row exists by then, which callers accept as best-effort.
func (p *PostgresConnector) EnsureAddress(ctx context.Context, hash common.Hash) (*common.Address, error) {
	if hash.Length() != common.AddressHashLength {
		return nil, &common.ValidationError{Field: "hash", Reason: "address hash must be a 20-byte address hash"}
	}

	now := time.Now().UTC()
	row := p.db.QueryRowContext(ctx,
		`INSERT INTO addresses (hash, balance, inserted_at, updated_at)
		 VALUES ($1, 0, $2, $2)
		 RETURNING `+addressColumns, hash, now)
	address, err := scanAddress(row)
	if err == nil {
		return address, nil
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	return p.AddressByHash(ctx, hash)
}

// UpdateAddressBalance applies an externally synced balance.
func (p *PostgresConnector) UpdateAddressBalance(ctx context.Context, hash common.Hash, balance *big.Int) error {
	if balance == nil || balance.Sign() < 0 {
		return &common.ValidationError{Field: "balance", Reason: "balance must be a non-negative integer"}
	}

	result, err := p.db.ExecContext(ctx,
		`UPDATE addresses SET balance = $2, updated_at = $3 WHERE hash = $1`,
		hash, balance.String(), time.Now().UTC())
	if err != nil {
		return &StoreError{Op: "update address balance", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &StoreError{Op: "update address balance", Err: err}
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
