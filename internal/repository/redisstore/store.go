// Package redisstore is the persisted key/value tier: diary cache envelopes
// and per-user notification read lists.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/config"
)

const readIDsKey = "notifications:read:"

// Store reads and writes prefixed keys in Redis.
type Store struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}

	store := NewWithClient(client, cfg.KeyPrefix, logger)
	store.logger.Info("connected to redis", zap.String("address", cfg.Address), zap.Int("db", cfg.DB))
	return store, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, prefix: prefix, logger: logger}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Get returns the raw value of key. A missing key is (nil, false, nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key. A zero ttl keeps the key until overwritten.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// ReadIDs returns the notification ids userID has read, oldest first.
func (s *Store) ReadIDs(ctx context.Context, userID string) ([]string, error) {
	raw, ok, err := s.Get(ctx, readIDsKey+userID)
	if err != nil || !ok {
		return []string{}, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		// A corrupt list is treated as empty and overwritten on the next save.
		s.logger.Warn("discarding unreadable read list", zap.String("user_id", userID), zap.Error(err))
		return []string{}, nil
	}
	return ids, nil
}

// SaveReadIDs replaces the read list of userID.
func (s *Store) SaveReadIDs(ctx context.Context, userID string, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode read list: %w", err)
	}
	return s.Set(ctx, readIDsKey+userID, raw, 0)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
