package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/marketdata"
	"go.uber.org/zap"
)

const (
	defaultCacheTTL    = time.Minute
	defaultCachePrefix = "argo:bars:"
)

// RedisClient is the subset of *redis.Client used by the cache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache is a read-through cache for historical bars. Current prices
// always go to the wrapped source. Cache failures are logged and never fail
// a request.
type RedisCache struct {
	source marketdata.PriceSource
	client RedisClient
	ttl    time.Duration
	prefix string
	logger *logger.Logger
}

// NewRedisCache connects to cfg.Addr and wraps source.
func NewRedisCache(source marketdata.PriceSource, cfg marketdata.CacheConfig, log *logger.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return NewRedisCacheWithClient(source, client, cfg.TTL, cfg.Prefix, log)
}

// NewRedisCacheWithClient wraps source using an existing client.
func NewRedisCacheWithClient(source marketdata.PriceSource, client RedisClient, ttl time.Duration, prefix string, log *logger.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	if prefix == "" {
		prefix = defaultCachePrefix
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RedisCache{
		source: source,
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: log,
	}
}

// Close closes the Redis client and the wrapped source when they hold resources.
func (c *RedisCache) Close() error {
	var firstErr error

	for _, v := range []any{c.client, c.source} {
		if closer, ok := v.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// GetHistoricalPrices serves bars from Redis when present, otherwise fetches
// them from the wrapped source and stores them.
func (c *RedisCache) GetHistoricalPrices(ctx context.Context, identifier string, timeframe marketdata.Timeframe, params marketdata.HistoryParams) ([]types.Bar, error) {
	key := c.key(identifier, timeframe, params)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []types.Bar
		if jsonErr := json.Unmarshal(data, &bars); jsonErr == nil {
			return bars, nil
		}

		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Cache read failed",
			zap.String("key", key),
			zap.Error(errors.Wrap(errors.ErrCodeCacheFailed, "redis get", err)),
		)
	}

	bars, err := c.source.GetHistoricalPrices(ctx, identifier, timeframe, params)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(bars)
	if err != nil {
		return bars, nil
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(errors.Wrap(errors.ErrCodeCacheFailed, "redis set", err)),
		)
	}

	return bars, nil
}

// GetCurrentPrice is never cached.
func (c *RedisCache) GetCurrentPrice(ctx context.Context, identifier string, params marketdata.QuoteParams) (float64, error) {
	return c.source.GetCurrentPrice(ctx, identifier, params)
}

func (c *RedisCache) key(identifier string, timeframe marketdata.Timeframe, params marketdata.HistoryParams) string {
	window := "latest"
	if params.StartTime.IsSome() || params.EndTime.IsSome() {
		window = fmt.Sprintf("%d-%d", unixOrZero(params.StartTime.TakeOr(time.Time{})), unixOrZero(params.EndTime.TakeOr(time.Time{})))
	}

	return fmt.Sprintf("%s%s:%s:%d:%s:%s", c.prefix, identifier, timeframe, params.Limit, params.Kind(), window)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.Unix()
}
