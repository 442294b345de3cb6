package storage

import (
	"context"
	"database/sql"

	"github.com/freechain/poa-explorer/internal/common"
)

// gapScanBatchSize bounds memory during the scan: block numbers are streamed
// in fixed-size batches instead of materializing the full set.
const gapScanBatchSize = 1000

// BlockRange is an inclusive range of missing block numbers.
type BlockRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// gapScan folds a stream of ascending block numbers into the count and
// extents of the missing ranges, starting from the null predecessor of
// genesis. Ranges accumulate in ascending order because the stream is
// ascending. The fold never looks past the maximum number observed.
type gapScan struct {
	prev    int64
	missing int64
	ranges  []BlockRange
}

func newGapScan() *gapScan {
	return &gapScan{prev: common.NullBlockNumber}
}

func (g *gapScan) observe(n int64) {
	if n != g.prev+1 {
		g.missing += n - g.prev - 1
		g.ranges = append(g.ranges, BlockRange{Start: g.prev + 1, End: n - 1})
	}
	g.prev = n
}

// MissingBlockNumbers streams all persisted block numbers in ascending order
// and reports the count and extents of the gaps between them. The whole scan
// runs inside one repeatable-read read-only transaction so concurrent imports
// cannot tear the snapshot. Returned ranges are ordered ascending.
func (p *PostgresConnector) MissingBlockNumbers(ctx context.Context) (int64, []BlockRange, error) {
	return p.missingBlockNumbers(ctx, -1)
}

// MissingBlockNumbersBelow bounds the scan to numbers in [0, max].
func (p *PostgresConnector) MissingBlockNumbersBelow(ctx context.Context, max int64) (int64, []BlockRange, error) {
	return p.missingBlockNumbers(ctx, max)
}

func (p *PostgresConnector) missingBlockNumbers(ctx context.Context, max int64) (int64, []BlockRange, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return 0, nil, &StoreError{Op: "gap scan", Err: err}
	}
	defer tx.Rollback()

	scan := newGapScan()
	for {
		batch, err := nextNumberBatch(ctx, tx, scan.prev, max)
		if err != nil {
			return 0, nil, err
		}
		for _, n := range batch {
			scan.observe(n)
		}
		if len(batch) < gapScanBatchSize {
			break
		}
	}
	return scan.missing, scan.ranges, nil
}

func nextNumberBatch(ctx context.Context, tx *sql.Tx, after, max int64) ([]int64, error) {
	query := `SELECT number FROM blocks WHERE number > $1 ORDER BY number ASC LIMIT $2`
	args := []interface{}{after, gapScanBatchSize}
	if max >= 0 {
		query = `SELECT number FROM blocks WHERE number > $1 AND number <= $3 ORDER BY number ASC LIMIT $2`
		args = append(args, max)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "gap scan", Err: err}
	}
	defer rows.Close()

	batch := make([]int64, 0, gapScanBatchSize)
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, &StoreError{Op: "gap scan", Err: err}
		}
		batch = append(batch, n)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "gap scan", Err: err}
	}
	return batch, nil
}
