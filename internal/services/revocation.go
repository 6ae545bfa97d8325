package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "blacklist:"

// Revoker tracks token identifiers that must no longer be accepted.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevoker keeps revoked token ids in Redis until the token would have expired anyway.
type RedisRevoker struct {
	client *redis.Client
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// ConnectRedis parses a redis:// URL and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
