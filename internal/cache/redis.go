package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{redisdb: redisdb, ttl: ttl}
}

// Get is best-effort: a redis failure is logged and treated as a miss so the
// request falls through to the store.
func (c *Redis) Get(ctx context.Context, trackingNumber string) ([]byte, bool) {
	val, err := c.redisdb.Get(ctx, trackingKey(trackingNumber)).Bytes()

	if err != nil {
		if err != redis.Nil {
			slog.Default().WarnContext(ctx, "track_cache_get_failed", "err", err)
		}
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, trackingNumber string, payload []byte) {
	err := c.redisdb.Set(ctx, trackingKey(trackingNumber), payload, c.ttl).Err()

	if err != nil {
		slog.Default().WarnContext(ctx, "track_cache_set_failed", "err", err)
	}
}

func (c *Redis) Invalidate(ctx context.Context, trackingNumber string) {
	err := c.redisdb.Del(ctx, trackingKey(trackingNumber)).Err()

	if err != nil {
		slog.Default().WarnContext(ctx, "track_cache_invalidate_failed", "err", err)
	}
}

// Ping checks redis connectivity for the readiness probe.
func (c *Redis) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.redisdb.Close()
}
