package keyval

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a redis client. Entries never expire; the report
// index is the only durable client-side state and is never pruned.
type Redis struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, ctx: context.Background()}
}

func (r *Redis) Get(key string) (string, error) {
	val, err := r.client.Get(r.ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (r *Redis) Set(key, value string) error {
	return r.client.Set(r.ctx, key, value, 0).Err()
}

func (r *Redis) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}
