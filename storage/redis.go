package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultOrigin = "default"

// Redis is a [Storage] backed by Redis. Values never expire on their own; the
// session store decides when to remove them.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
	origin string
}

// NewRedis creates a [Redis] storage. prefix sets the key namespace and origin
// scopes the keys to one client origin.
func NewRedis(client redis.UniversalClient, prefix, origin string) *Redis {
	return &Redis{
		redis:  client,
		prefix: prefix,
		origin: origin,
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + ":" + normalizeOrigin(r.origin) + ":" + k
}

func normalizeOrigin(origin string) string {
	if origin == "" {
		return defaultOrigin
	}
	return origin
}

// Get reads one key.
//
//	Performance: 1 Redis GET.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.redis.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.redis.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SetMany writes all entries in one MULTI/EXEC transaction.
func (r *Redis) SetMany(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, r.key(e.Key), e.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Remove deletes keys with a single DEL.
func (r *Redis) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	if err := r.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (r *Redis) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
