package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	DefaultExpiration = 24 * time.Hour * 7 // 7 days
	PageKeyPrefix     = "lafa:page"
	TitlesKeyPrefix   = "lafa:titles"
)

type Redis struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedis connects lazily; a missing server only surfaces as errors on
// Get/Set, which callers treat as cache misses.
func NewRedis(addr, password string, expiration time.Duration) *Redis {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		expiration: expiration,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	return r.client.Get(ctx, key).Bytes()
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.expiration).Err()
}

func (r *Redis) SetWithExpiration(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *Redis) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
