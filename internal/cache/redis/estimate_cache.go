package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// EstimateCache implements domain.EstimateCache using Redis hashes. Each
// estimate lives at key "est:{user}:{product}:{platform}" with fields
// "price", "basis", and "samples". Entries expire via TTL and are
// invalidated explicitly when new sale evidence for the same key arrives.
type EstimateCache struct {
	rdb *redis.Client
}

// NewEstimateCache creates an EstimateCache backed by the given Client.
func NewEstimateCache(c *Client) *EstimateCache {
	return &EstimateCache{rdb: c.Underlying()}
}

func estimateKey(userID, productID string, platform domain.Platform) string {
	return "est:" + userID + ":" + productID + ":" + string(platform)
}

// Get retrieves a cached estimate, returning domain.ErrNotFound on a miss.
func (ec *EstimateCache) Get(ctx context.Context, userID, productID string, platform domain.Platform) (domain.Estimate, error) {
	key := estimateKey(userID, productID, platform)
	vals, err := ec.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("redis: get estimate %s: %w", key, err)
	}
	if len(vals) == 0 {
		return domain.Estimate{}, domain.ErrNotFound
	}

	price, err := strconv.ParseFloat(vals["price"], 64)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("redis: parse estimate price %s: %w", key, err)
	}
	samples, err := strconv.Atoi(vals["samples"])
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("redis: parse estimate samples %s: %w", key, err)
	}

	return domain.Estimate{
		Price:   price,
		Basis:   domain.EstimateBasis(vals["basis"]),
		Samples: samples,
	}, nil
}

// Set stores an estimate with the given TTL.
func (ec *EstimateCache) Set(ctx context.Context, userID, productID string, platform domain.Platform, e domain.Estimate, ttl time.Duration) error {
	key := estimateKey(userID, productID, platform)
	fields := map[string]interface{}{
		"price":   strconv.FormatFloat(e.Price, 'f', -1, 64),
		"basis":   string(e.Basis),
		"samples": strconv.Itoa(e.Samples),
	}

	pipe := ec.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set estimate %s: %w", key, err)
	}
	return nil
}

// Invalidate drops the cached estimate for one (user, product, platform).
func (ec *EstimateCache) Invalidate(ctx context.Context, userID, productID string, platform domain.Platform) error {
	key := estimateKey(userID, productID, platform)
	if err := ec.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: invalidate estimate %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.EstimateCache = (*EstimateCache)(nil)
