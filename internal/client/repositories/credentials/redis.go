package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps credentials in Redis under prefix+key, without expiry.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// OpenRedis connects to addr and checks the connection with PING.
func OpenRedis(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisStore(rdb, prefix), nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential[%s]: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set credential[%s]: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential[%s]: %w", key, err)
	}
	return nil
}

// Update flushes the staged writes in a single MULTI/EXEC.
func (s *RedisStore) Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	var staged stagedWriter
	if err := fn(ctx, &staged); err != nil {
		return err
	}
	if len(staged.ops) == 0 {
		return nil
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range staged.ops {
			if op.delete {
				pipe.Del(ctx, s.key(op.key))
				continue
			}
			pipe.Set(ctx, s.key(op.key), op.value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
