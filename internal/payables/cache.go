package payables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "payables:aging:"

// ReportCache stores rendered reports in Redis so repeated requests for
// the same frozen parameters skip recomputation.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache constructs a cache with the given TTL.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Get returns the cached report for key, if present.
func (c *ReportCache) Get(ctx context.Context, key string) (*AgingReport, bool, error) {
	payload, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("payables: cache get: %w", err)
	}
	var report AgingReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("payables: cache decode: %w", err)
	}
	return &report, true, nil
}

// Put stores the report under key for the cache TTL.
func (c *ReportCache) Put(ctx context.Context, key string, report *AgingReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("payables: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("payables: cache set: %w", err)
	}
	return nil
}

// Invalidate drops one cached report.
func (c *ReportCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("payables: cache del: %w", err)
	}
	return nil
}
