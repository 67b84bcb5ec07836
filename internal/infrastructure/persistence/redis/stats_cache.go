// Package redis implements optional Redis caching for the attestation
// registry. The only cached read model is the per-group statistics view,
// which is expensive to aggregate and tolerates a short staleness window.
// The registry works without Redis: when caching is disabled every read
// goes straight to the store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/attestation-hub/attestation-registry/internal/domain/attestation"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration

	// StatsTTL is how long the group statistics view stays cached.
	StatsTTL time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		StatsTTL:     30 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// GROUP STATISTICS CACHE
// ══════════════════════════════════════════════════════════════════════════════

const statsKey = "attestation:group_stats"

// ErrCacheMiss is returned when the statistics view is not cached.
var ErrCacheMiss = errors.New("stats_cache: cache miss")

// StatsCache is a read-through cache for the group statistics view.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache connects to Redis and verifies the connection.
func NewStatsCache(ctx context.Context, cfg Config) (*StatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("stats_cache: failed to ping redis: %w", err)
	}

	ttl := cfg.StatsTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &StatsCache{client: client, ttl: ttl}, nil
}

// Get returns the cached statistics view, or ErrCacheMiss.
func (c *StatsCache) Get(ctx context.Context) ([]attestation.GroupStat, error) {
	data, err := c.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("stats_cache: get failed: %w", err)
	}

	var stats []attestation.GroupStat
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("stats_cache: corrupt cached view: %w", err)
	}

	return stats, nil
}

// Set stores the statistics view with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, stats []attestation.GroupStat) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats_cache: marshal failed: %w", err)
	}

	if err := c.client.Set(ctx, statsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats_cache: set failed: %w", err)
	}

	return nil
}

// Invalidate drops the cached view. Called after a grade mutation so the
// next statistics read reflects the change.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("stats_cache: invalidate failed: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *StatsCache) Close() error {
	return c.client.Close()
}
