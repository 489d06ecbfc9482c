package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/api/internal/core/ports"
)

const keyPrefix = "refresh_token:"

// SessionRegistry stores the single valid refresh token per user in
// Redis. Entries carry the refresh-token TTL and self-expire, so a
// session that is never explicitly logged out disappears when its
// refresh token would have expired anyway.
type SessionRegistry struct {
	client *redis.Client
}

func NewSessionRegistry(client *redis.Client) ports.SessionRegistry {
	return &SessionRegistry{client: client}
}

func (r *SessionRegistry) Put(ctx context.Context, userID uuid.UUID, refreshToken string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key(userID), refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("session registry put: %w", err)
	}
	return nil
}

func (r *SessionRegistry) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	value, err := r.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session registry get: %w", err)
	}
	return value, nil
}

func (r *SessionRegistry) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("session registry delete: %w", err)
	}
	return nil
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}
