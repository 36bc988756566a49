package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlob keeps blobs as plain Redis string values. Keys are shared by
// every process pointed at the same instance, so writes race with
// last-write-wins semantics at whole-collection granularity.
type RedisBlob struct {
	client    *redis.Client
	namespace string
}

// NewRedisBlob builds a Redis-backed blob adapter. All keys are placed
// under the given namespace to keep instances shareable.
func NewRedisBlob(addr, password, namespace string) *RedisBlob {
	if namespace == "" {
		namespace = "jobportal"
	}
	return &RedisBlob{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		namespace: namespace,
	}
}

func (r *RedisBlob) key(key string) string {
	return r.namespace + ":" + key
}

func (r *RedisBlob) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisBlob) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisBlob) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func (r *RedisBlob) Keys(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var keys []string
	iter := r.client.Scan(ctx, 0, r.key(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(r.namespace)+1:])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
