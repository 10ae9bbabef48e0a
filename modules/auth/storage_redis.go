package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisTokenKeyPrefix   = "auth:verification:token:"
	redisAccountKeyPrefix = "auth:verification:account:"
)

// RedisVerificationStorage implements VerificationStorage on Redis. Records
// are stored under their raw token value with a native TTL, plus an index
// key per owner and purpose so the latest outstanding token can be found
// without scanning. Expired records evict themselves; DeleteExpiredTokens
// is a no-op.
type RedisVerificationStorage struct {
	client redis.UniversalClient
}

// NewRedisVerificationStorage creates a verification store backed by the
// given Redis client.
func NewRedisVerificationStorage(client redis.UniversalClient) *RedisVerificationStorage {
	return &RedisVerificationStorage{client: client}
}

func redisTokenKey(value string) string {
	return redisTokenKeyPrefix + value
}

func redisAccountKey(accountID uuid.UUID, purpose Purpose) string {
	return redisAccountKeyPrefix + accountID.String() + ":" + string(purpose)
}

func (s *RedisVerificationStorage) CreateToken(ctx context.Context, token *VerificationToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal verification token: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisTokenKey(token.Token), payload, ttl)
	pipe.Set(ctx, redisAccountKey(token.AccountID, token.Purpose), token.Token, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return nil
}

func (s *RedisVerificationStorage) GetTokenByValue(ctx context.Context, value string) (*VerificationToken, error) {
	payload, err := s.client.Get(ctx, redisTokenKey(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load verification token: %w", err)
	}

	var token VerificationToken
	if err := json.Unmarshal(payload, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification token: %w", err)
	}
	if token.IsExpired() {
		return nil, ErrTokenNotFound
	}
	return &token, nil
}

func (s *RedisVerificationStorage) GetTokenByAccount(ctx context.Context, accountID uuid.UUID, purpose Purpose) (*VerificationToken, error) {
	value, err := s.client.Get(ctx, redisAccountKey(accountID, purpose)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to load verification token index: %w", err)
	}
	return s.GetTokenByValue(ctx, value)
}

func (s *RedisVerificationStorage) DeleteToken(ctx context.Context, value string) error {
	token, err := s.GetTokenByValue(ctx, value)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisTokenKey(value))
	// Drop the index entry only if it still points at this token; a newer
	// token for the same owner keeps its index.
	indexKey := redisAccountKey(token.AccountID, token.Purpose)
	if current, err := s.client.Get(ctx, indexKey).Result(); err == nil && current == value {
		pipe.Del(ctx, indexKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}
	return nil
}

func (s *RedisVerificationStorage) ReplaceToken(ctx context.Context, token *VerificationToken) error {
	// Superseding the old record before writing the new one keeps at most
	// one live token per owner and purpose.
	indexKey := redisAccountKey(token.AccountID, token.Purpose)
	if old, err := s.client.Get(ctx, indexKey).Result(); err == nil {
		if err := s.client.Del(ctx, redisTokenKey(old)).Err(); err != nil {
			return fmt.Errorf("failed to delete superseded token: %w", err)
		}
	} else if !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to load verification token index: %w", err)
	}

	return s.CreateToken(ctx, token)
}

// DeleteExpiredTokens is a no-op; Redis evicts expired keys natively.
func (s *RedisVerificationStorage) DeleteExpiredTokens(ctx context.Context) error {
	return nil
}
