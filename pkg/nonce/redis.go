package nonce

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "payout:nonce:"

// RedisSequencer issues nonces via Redis INCR, which serializes issuance
// across processes. Used when more than one API instance allocates nonces
// for the same source account.
type RedisSequencer struct {
	client *redis.Client
}

// NewRedisSequencer connects to Redis and verifies the connection.
func NewRedisSequencer(url string) (*RedisSequencer, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisSequencer{client: client}, nil
}

// Make sure we conform to the interface
var _ Sequencer = (*RedisSequencer)(nil)

// Next returns the next nonce for the account.
func (s *RedisSequencer) Next(ctx context.Context, sourceAccount string) (int64, error) {
	n, err := s.client.Incr(ctx, redisKeyPrefix+sourceAccount).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment nonce for %s: %w", sourceAccount, err)
	}
	return n, nil
}

// Close releases the Redis connection.
func (s *RedisSequencer) Close() error {
	return s.client.Close()
}
