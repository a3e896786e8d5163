package noncestore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "oauth_state_nonce:"

// RedisRepo records consumed nonces in Redis with a TTL, so single-use
// enforcement holds across multiple relay instances.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepo(client *redis.Client, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

// Consume uses SETNX so that only the first caller for a given nonce wins.
func (r *RedisRepo) Consume(ctx context.Context, nonce string) error {
	if nonce == "" {
		return errors.New("nonce cannot be empty")
	}

	ok, err := r.client.SetNX(ctx, redisKeyPrefix+nonce, 1, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("state already consumed")
	}
	return nil
}
