package db

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisKV stores the collections as plain Redis string keys
type RedisKV struct {
	Client *redis.Client
}

// NewRedisKV creates a new RedisKV instance
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{Client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "redis GET %s", key)
	}
	return val, true, nil
}

func (r *RedisKV) SetNX(ctx context.Context, key, value string) (bool, error) {
	created, err := r.Client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, errors.Wrapf(err, "redis SETNX %s", key)
	}
	return created, nil
}

// SetAll writes all keys inside a MULTI/EXEC block so readers never observe a
// half-applied cascade.
func (r *RedisKV) SetAll(ctx context.Context, values map[string]string) error {
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, k, v, 0)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis MULTI/EXEC")
	}
	return nil
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return errors.Wrap(r.Client.Ping(ctx).Err(), "redis PING")
}

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Ping Redis to check connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "could not connect to Redis at %s", addr)
	}
	return rdb, nil
}
