package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freechain/poa-explorer/internal/metrics"
	"github.com/freechain/poa-explorer/internal/storage"
)

// StatsModel renders a chain stats snapshot with durations in seconds.
type StatsModel struct {
	LatestBlockNumber   int64   `json:"latest_block_number"`
	LatestBlockTime     int64   `json:"latest_block_time"`
	AverageBlockTime    float64 `json:"average_block_time_seconds"`
	TransactionCount24h int64   `json:"transaction_count_24h"`
	SkippedBlocks       int64   `json:"skipped_blocks"`
	AverageLag          float64 `json:"average_lag_seconds"`
	BlockVelocity       float64 `json:"block_velocity_per_minute"`
	TransactionVelocity float64 `json:"transaction_velocity_per_minute"`
}

// GetStats serves the chain stats snapshot, recomputing it only when the
// cached snapshot has expired.
func (s *Server) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := s.stats.GetChainStats(ctx)
	if stats == nil {
		var err error
		stats, err = s.store.ChainStats(ctx)
		if err != nil {
			handleQueryError(c, err)
			return
		}
		metrics.MissingBlocks.Set(float64(stats.SkippedBlocks))
		s.stats.SetChainStats(ctx, stats)
	}

	c.JSON(http.StatusOK, serializeStats(stats))
}

func serializeStats(stats *storage.ChainStats) StatsModel {
	var latestTime int64
	if !stats.LatestBlockTime.IsZero() {
		latestTime = stats.LatestBlockTime.Unix()
	}
	return StatsModel{
		LatestBlockNumber:   stats.LatestBlockNumber,
		LatestBlockTime:     latestTime,
		AverageBlockTime:    stats.AverageBlockTime.Seconds(),
		TransactionCount24h: stats.TransactionCount24h,
		SkippedBlocks:       stats.SkippedBlocks,
		AverageLag:          stats.AverageLag.Seconds(),
		BlockVelocity:       stats.BlockVelocity,
		TransactionVelocity: stats.TransactionVelocity,
	}
}
