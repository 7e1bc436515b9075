package localstore

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard/internal/errors"
)

const defaultRedisPrefix = "jobboard:"

// RedisCommander is the subset of *redis.Client the store uses.
type RedisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisKV keeps values under prefixed keys with no expiry.
type RedisKV struct {
	client RedisCommander
	prefix string
}

func NewRedisKV(client RedisCommander, prefix string) *RedisKV {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisKV{client: client, prefix: prefix}
}

// DialRedis parses url, connects, and verifies the server answers PING.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "redis get %s", key)
	}
	return data, nil
}

func (r *RedisKV) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
