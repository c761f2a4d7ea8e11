package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key so the cache can share a Redis
// database with other applications.
const DefaultPrefix = "blog:"

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// RedisCache stores strings with a fixed TTL.
type RedisCache struct {
	Cli    *redis.Client
	TTL    time.Duration
	Prefix string
}

func New(addr string, db int, ttlSeconds int) *RedisCache {
	return &RedisCache{
		Cli:    redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		TTL:    time.Duration(ttlSeconds) * time.Second,
		Prefix: DefaultPrefix,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.Cli.Get(ctx, r.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// SetNX stores val with the cache TTL only if key is absent.
func (r *RedisCache) SetNX(ctx context.Context, key string, val string) (bool, error) {
	return r.Cli.SetNX(ctx, r.Prefix+key, val, r.TTL).Result()
}

// SetFor stores val unconditionally with its own TTL.
func (r *RedisCache) SetFor(ctx context.Context, key string, val string, ttl time.Duration) error {
	return r.Cli.Set(ctx, r.Prefix+key, val, ttl).Err()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Cli.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Cli.Close()
}
