// Package cache provides the Redis-backed seen-reference store used by
// exchange synchronization to skip already ingested invoices cheaply.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/infrastructure/config"
)

// Ensure RedisSeenStore implements SeenStore
var _ appaccounting.SeenStore = (*RedisSeenStore)(nil)

// seenTTL bounds how long a reference is remembered. The database
// uniqueness check remains the source of truth after expiry.
const seenTTL = 90 * 24 * time.Hour

// RedisSeenStore remembers ingested exchange references in Redis.
// Suitable for distributed deployments where multiple instances share
// the sync work.
type RedisSeenStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSeenStore creates a new Redis-backed seen store
func NewRedisSeenStore(cfg *config.RedisConfig) (*RedisSeenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSeenStore{
		client:    client,
		keyPrefix: "exchange:seen:",
	}, nil
}

// NewRedisSeenStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisSeenStoreWithClient(client *redis.Client, keyPrefix string) *RedisSeenStore {
	if keyPrefix == "" {
		keyPrefix = "exchange:seen:"
	}
	return &RedisSeenStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// IsSeen checks whether an exchange reference was already ingested
func (s *RedisSeenStore) IsSeen(ctx context.Context, externalRef string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+externalRef).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen reference: %w", err)
	}
	return exists > 0, nil
}

// MarkSeen remembers an exchange reference
func (s *RedisSeenStore) MarkSeen(ctx context.Context, externalRef string) error {
	if err := s.client.Set(ctx, s.keyPrefix+externalRef, "1", seenTTL).Err(); err != nil {
		return fmt.Errorf("failed to mark reference as seen: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSeenStore) Close() error {
	return s.client.Close()
}
