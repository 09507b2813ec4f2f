package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ballotbox/internal/domain/poll"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key pattern:
// - results:{poll_id} - short TTL, invalidated on every vote and poll write

// ResultsCacheConfig contains configuration for the results cache.
type ResultsCacheConfig struct {
	ResultsTTL time.Duration
}

// DefaultResultsCacheConfig returns sensible defaults.
func DefaultResultsCacheConfig() ResultsCacheConfig {
	return ResultsCacheConfig{
		ResultsTTL: 30 * time.Second,
	}
}

// ResultsCache holds per-poll tallies in Redis. Reads are cache-aside: a
// miss returns (nil, nil) and the caller recomputes from the store.
type ResultsCache struct {
	client *goredis.Client
	config ResultsCacheConfig
}

func NewResultsCache(client *goredis.Client, config ResultsCacheConfig) *ResultsCache {
	return &ResultsCache{client: client, config: config}
}

func resultsKey(pollID uuid.UUID) string {
	return fmt.Sprintf("results:%s", pollID.String())
}

// Get retrieves cached results for a poll. A cache miss is not an error.
func (c *ResultsCache) Get(ctx context.Context, pollID uuid.UUID) (*poll.Results, error) {
	data, err := c.client.Get(ctx, resultsKey(pollID)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var results poll.Results
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Set stores results for a poll with the configured TTL.
func (c *ResultsCache) Set(ctx context.Context, results *poll.Results) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultsKey(results.PollID), data, c.config.ResultsTTL).Err()
}

// Invalidate drops the cached results for a poll so the next read reflects
// the new tally.
func (c *ResultsCache) Invalidate(ctx context.Context, pollID uuid.UUID) error {
	return c.client.Del(ctx, resultsKey(pollID)).Err()
}
