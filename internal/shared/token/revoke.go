package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore is a denylist of token IDs (jti). Entries live only as
// long as the token they deny would have lived.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revocationKeyPrefix = "smartstock:revoked:"

// RedisRevocationStore keeps revoked token IDs in Redis with a TTL equal
// to the remaining token life, so the set stays bounded without cleanup.
type RedisRevocationStore struct {
	client *redis.Client
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (r *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocation store set: %w", err)
	}
	return nil
}

func (r *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("revocation store lookup: %w", err)
	}
	return n > 0, nil
}
