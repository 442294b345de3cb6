package storage

import (
	"context"
	"database/sql"
	"time"
)

const (
	// blockTimeSampleSize is how many recent blocks feed the average
	// inter-block time.
	blockTimeSampleSize = 100
	velocityWindow      = time.Hour
	transactionWindow   = 24 * time.Hour
)

// ChainStats is a best-effort snapshot of chain health. Each metric is an
// independent bounded aggregate; the snapshot is not transactionally
// consistent across metrics.
type ChainStats struct {
	LatestBlockNumber   int64         `json:"latest_block_number"`
	LatestBlockTime     time.Time     `json:"latest_block_time"`
	AverageBlockTime    time.Duration `json:"average_block_time"`
	TransactionCount24h int64         `json:"transaction_count_24h"`
	SkippedBlocks       int64         `json:"skipped_blocks"`
	AverageLag          time.Duration `json:"average_lag"`
	BlockVelocity       float64       `json:"block_velocity"`
	TransactionVelocity float64       `json:"transaction_velocity"`
}

// ChainStats computes the rolling statistics by scanning recent rows. A store
// with no blocks yields the zero snapshot without error.
func (p *PostgresConnector) ChainStats(ctx context.Context) (*ChainStats, error) {
	stats := &ChainStats{}

	latest, err := p.LatestBlock(ctx)
	if err == ErrNotFound {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	stats.LatestBlockNumber = latest.Number
	stats.LatestBlockTime = latest.Timestamp

	if stats.AverageBlockTime, err = p.averageBlockTime(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if stats.TransactionCount24h, err = p.countRowsSince(ctx, "transactions", now.Add(-transactionWindow)); err != nil {
		return nil, err
	}

	if stats.SkippedBlocks, _, err = p.MissingBlockNumbersBelow(ctx, latest.Number); err != nil {
		return nil, err
	}

	if stats.AverageLag, err = p.averageIngestionLag(ctx, now.Add(-velocityWindow)); err != nil {
		return nil, err
	}

	blocksLastHour, err := p.countRowsSince(ctx, "blocks", now.Add(-velocityWindow))
	if err != nil {
		return nil, err
	}
	stats.BlockVelocity = perMinute(blocksLastHour, velocityWindow)

	txsLastHour, err := p.countRowsSince(ctx, "transactions", now.Add(-velocityWindow))
	if err != nil {
		return nil, err
	}
	stats.TransactionVelocity = perMinute(txsLastHour, velocityWindow)

	return stats, nil
}

// averageBlockTime averages the gaps between the timestamps of the most
// recent blocks, zero when fewer than two samples exist.
func (p *PostgresConnector) averageBlockTime(ctx context.Context) (time.Duration, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT timestamp FROM blocks ORDER BY number DESC LIMIT $1`, blockTimeSampleSize)
	if err != nil {
		return 0, &StoreError{Op: "average block time", Err: err}
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return 0, &StoreError{Op: "average block time", Err: err}
		}
		timestamps = append(timestamps, ts)
	}
	if err := rows.Err(); err != nil {
		return 0, &StoreError{Op: "average block time", Err: err}
	}
	return averageInterval(timestamps), nil
}

// averageInterval computes the mean gap of number-descending timestamps.
func averageInterval(descending []time.Time) time.Duration {
	if len(descending) < 2 {
		return 0
	}
	total := descending[0].Sub(descending[len(descending)-1])
	return total / time.Duration(len(descending)-1)
}

func (p *PostgresConnector) countRowsSince(ctx context.Context, table string, since time.Time) (int64, error) {
	// table is one of the fixed relation names, never caller input.
	var count int64
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE inserted_at > $1`, since).Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "count " + table, Err: err}
	}
	return count, nil
}

// averageIngestionLag averages insert time minus chain timestamp over blocks
// received since the given instant.
func (p *PostgresConnector) averageIngestionLag(ctx context.Context, since time.Time) (time.Duration, error) {
	var seconds sql.NullFloat64
	err := p.db.QueryRowContext(ctx,
		`SELECT AVG(EXTRACT(EPOCH FROM (inserted_at - timestamp))) FROM blocks WHERE inserted_at > $1`,
		since).Scan(&seconds)
	if err != nil {
		return 0, &StoreError{Op: "average ingestion lag", Err: err}
	}
	if !seconds.Valid {
		return 0, nil
	}
	return time.Duration(seconds.Float64 * float64(time.Second)), nil
}

func perMinute(count int64, window time.Duration) float64 {
	return float64(count) / window.Minutes()
}
