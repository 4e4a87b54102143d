package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"restore/internal/config"
	"restore/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// SnapshotKey is the Redis key holding the JSON encoded catalogue.
	SnapshotKey = "restore:catalog:products"
	// GenerationKey counts catalogue invalidations.
	GenerationKey = "restore:catalog:generation"
)

// setIfGeneration stores the snapshot only while the generation still
// matches the one observed on the miss.
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient creates a client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisCache wraps client as a ProductCache with the given entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ProductCache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "product_cache").Logger(),
	}
}

func (c *redisCache) Get(ctx context.Context) ([]model.Product, int64, bool) {
	vals, err := c.client.MGet(ctx, SnapshotKey, GenerationKey).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read catalog snapshot")
		return nil, 0, false
	}

	generation, err := parseGeneration(vals[1])
	if err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable catalog generation")
		return nil, 0, false
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, false
	}

	var products []model.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		c.logger.Warn().Err(err).Msg("discarding undecodable catalog snapshot")
		return nil, generation, false
	}
	return products, generation, true
}

func (c *redisCache) Set(ctx context.Context, products []model.Product, generation int64) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode catalog snapshot")
		return
	}

	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{SnapshotKey, GenerationKey},
		generation, data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to store catalog snapshot")
		return
	}
	if stored == 0 {
		c.logger.Debug().Int64("generation", generation).Msg("catalog changed while loading, snapshot not stored")
	}
}

func (c *redisCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, SnapshotKey)
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate catalog snapshot")
	}
}

func parseGeneration(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
