package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	config "github.com/freechain/poa-explorer/configs"
	"github.com/freechain/poa-explorer/internal/storage"
)

const chainStatsKey = "explorer:chain_stats"

// StatsCache keeps the latest computed chain stats snapshot in Redis so the
// aggregate queries are not re-run on every request. A nil StatsCache is a
// valid no-op cache.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache connects to Redis per configuration, or returns nil when the
// cache is disabled.
func NewStatsCache(cfg *config.RedisConfig, ttl time.Duration) (*StatsCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Info().Str("addr", cfg.Addr).Msg("Redis stats cache initialized")
	return &StatsCache{client: client, ttl: ttl}, nil
}

// GetChainStats returns the cached snapshot, or nil on a miss. Cache
// failures degrade to a miss.
func (c *StatsCache) GetChainStats(ctx context.Context) *storage.ChainStats {
	if c == nil {
		return nil
	}
	payload, err := c.client.Get(ctx, chainStatsKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read chain stats from cache")
		return nil
	}
	stats := &storage.ChainStats{}
	if err := json.Unmarshal(payload, stats); err != nil {
		log.Warn().Err(err).Msg("Failed to decode cached chain stats")
		return nil
	}
	return stats
}

// SetChainStats stores a freshly computed snapshot with the configured TTL.
func (c *StatsCache) SetChainStats(ctx context.Context, stats *storage.ChainStats) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode chain stats for cache")
		return
	}
	if err := c.client.Set(ctx, chainStatsKey, payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to write chain stats to cache")
	}
}

// Close closes the Redis client.
func (c *StatsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
