package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisCache stores entries in Redis under a namespace so several deployments can
// share one server.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

// NewRedisCache creates a RedisCache. namespace may be empty.
func NewRedisCache(client *redis.Client, ttl time.Duration, namespace string) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, namespace: namespace}
}

// NewRedisCacheFromURL parses a redis:// url and pings the server.
func NewRedisCacheFromURL(ctx context.Context, url string, ttl time.Duration, namespace string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisCache(client, ttl, namespace), nil
}

func (r *RedisCache) makeKey(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

// generationKey sits outside every family prefix so DeletePrefix never removes it.
func (r *RedisCache) generationKey(family string) string {
	return r.makeKey("generation:" + family)
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, r.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.makeKey(key), data, r.ttl).Err()
}

func (r *RedisCache) Generation(ctx context.Context, family string) (uint64, error) {
	gen, err := r.client.Get(ctx, r.generationKey(family)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration watches the generation key, so an INCR from DeletePrefix
// between the check and the SET aborts the transaction.
func (r *RedisCache) SetIfGeneration(ctx context.Context, key string, value interface{}, gen uint64) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	genKey := r.generationKey(Family(key))
	stored := false
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.makeKey(key), data, r.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// DeletePrefix walks matching keys with SCAN so large keyspaces never block the server.
// The generation is bumped first so loads already in flight cannot store afterwards.
func (r *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	if err := r.client.Incr(ctx, r.generationKey(Family(prefix))).Err(); err != nil {
		return err
	}
	iter := r.client.Scan(ctx, 0, r.makeKey(prefix)+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
