// Package idempotency guards checkout against double submission.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix    = "bistro:idempotency:"
	pendingValue = "pending"

	// pendingTTL bounds how long an unfinished checkout blocks retries of
	// the same key, e.g. when Complete fails after the order committed.
	pendingTTL = time.Minute
)

// Store records which idempotency keys have been used and what they produced.
type Store interface {
	// Reserve claims key for a new request. When the key is already claimed it
	// returns reserved=false and, if the earlier request finished, its result id.
	Reserve(ctx context.Context, key string) (resultID string, reserved bool, err error)

	// Complete stores the result id for a reserved key.
	Complete(ctx context.Context, key, resultID string) error

	// Release frees a reserved key after the request failed.
	Release(ctx context.Context, key string) error
}

// RedisStore is a Store backed by Redis SETNX. Completed keys live for ttl;
// pending ones expire after at most pendingTTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed idempotency store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency").Logger(),
	}
}

func (s *RedisStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pendingValue, min(s.ttl, pendingTTL)).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to reserve idempotency key")
		return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as in flight rather than racing again.
		return "", false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to read idempotency key")
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	if val == pendingValue {
		s.logger.Debug().Str("key", key).Msg("idempotency key in flight")
		return "", false, nil
	}

	return val, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, resultID string) error {
	if err := s.client.Set(ctx, keyPrefix+key, resultID, s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to complete idempotency key")
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to release idempotency key")
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// NopStore accepts every key. It is used when Redis is disabled.
type NopStore struct{}

func (NopStore) Reserve(context.Context, string) (string, bool, error) { return "", true, nil }
func (NopStore) Complete(context.Context, string, string) error        { return nil }
func (NopStore) Release(context.Context, string) error                 { return nil }
