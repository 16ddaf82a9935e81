package store

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// RedisBlob keeps the serialized sequence under a single redis key.
type RedisBlob struct {
	rdb redis.Cmdable
	key string
}

func NewRedisBlob(rdb redis.Cmdable, key string) *RedisBlob {
	if key == "" {
		key = DefaultKey
	}
	return &RedisBlob{
		rdb: rdb,
		key: key,
	}
}

func (b *RedisBlob) Load(ctx context.Context) ([]byte, error) {
	data, err := b.rdb.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *RedisBlob) Save(ctx context.Context, data []byte) error {
	return b.rdb.Set(ctx, b.key, data, 0).Err()
}

// Close is a no-op, the redis client is owned by the caller.
func (b *RedisBlob) Close() error {
	return nil
}
