package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const resetKeyPrefix = "reset:"

// PasswordResetStore keeps one-time password-reset tokens in redis. The TTL
// bounds the token's life; consumption removes it so it cannot be replayed.
type PasswordResetStore struct {
	redis *redis.Client
}

func NewPasswordResetStore(client *redis.Client) *PasswordResetStore {
	return &PasswordResetStore{redis: client}
}

func (s *PasswordResetStore) key(token string) string {
	return resetKeyPrefix + token
}

func (s *PasswordResetStore) Save(ctx context.Context, token, email string, ttl time.Duration) error {
	return s.redis.Set(ctx, s.key(token), email, ttl).Err()
}

// Find returns the email the token was issued for, or "" when the token is
// unknown or expired. The token stays live.
func (s *PasswordResetStore) Find(ctx context.Context, token string) (string, error) {
	email, err := s.redis.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

// Consume atomically reads and deletes the token. Exactly one concurrent
// caller observes the email; the rest get "".
func (s *PasswordResetStore) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.redis.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
