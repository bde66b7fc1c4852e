package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache stores built forecasts per SKU and horizon. Implementations
// swallow their own failures; a broken cache only costs a recomputation.
type Cache interface {
	Get(ctx context.Context, sku string, horizonDays int) (*Response, bool)
	Set(ctx context.Context, sku string, horizonDays int, resp *Response)
	Invalidate(ctx context.Context, sku string)
}

// NopCache caches nothing
type NopCache struct{}

func (NopCache) Get(context.Context, string, int) (*Response, bool) { return nil, false }
func (NopCache) Set(context.Context, string, int, *Response) {}
func (NopCache) Invalidate(context.Context, string) {}

// RedisCache keeps one hash per SKU, one field per horizon, so that a stock
// movement can drop every horizon of a product with a single DEL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewRedisCache creates a forecast cache on rdb
func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *RedisCache {
	return &RedisCache{client: rdb, ttl: ttl, logger: logger}
}

// CacheKey is the Redis key holding the forecasts of sku
func CacheKey(sku string) string {
	return "forecast:" + sku
}

func (c *RedisCache) Get(ctx context.Context, sku string, horizonDays int) (*Response, bool) {
	raw, err := c.client.HGet(ctx, CacheKey(sku), strconv.Itoa(horizonDays)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("sku", sku).Warn("Forecast cache read failed")
		}
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.WithError(err).WithField("sku", sku).Warn("Discarding unreadable cached forecast")
		return nil, false
	}
	return &resp, true
}

func (c *RedisCache) Set(ctx context.Context, sku string, horizonDays int, resp *Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.WithError(err).WithField("sku", sku).Warn("Failed to encode forecast for cache")
		return
	}

	key := CacheKey(sku)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(horizonDays), raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WithError(err).WithField("sku", sku).Warn("Forecast cache write failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, sku string) {
	if err := c.client.Del(ctx, CacheKey(sku)).Err(); err != nil {
		c.logger.WithError(err).WithField("sku", sku).Warn("Forecast cache invalidation failed")
	}
}
