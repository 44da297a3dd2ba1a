// Package cache implements the diary's two-tier cache: a process-local memory
// map in front of a persisted key/value store. Both tiers hold the same
// {data, timestamp} envelope and are validated against the same TTL.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/clock"
)

// DefaultTTL is the lifetime of a record in either tier.
const DefaultTTL = 10 * time.Minute

// Persister is the key/value persistence interface backing tier 2.
type Persister interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// envelope is the serialized tier-2 record. Timestamp is unix milliseconds.
type envelope[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

type record[T any] struct {
	data     T
	storedAt time.Time
}

// Cache is a two-tier TTL cache for values of type T. Construct one per process.
type Cache[T any] struct {
	mu     sync.Mutex
	memory map[string]record[T]

	store  Persister
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger
}

// New builds a cache. A nil store disables tier 2; a non-positive ttl uses DefaultTTL.
func New[T any](store Persister, ttl time.Duration, clk clock.Clock, logger *zap.Logger) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[T]{
		memory: make(map[string]record[T]),
		store:  store,
		ttl:    ttl,
		clock:  clk,
		logger: logger,
	}
}

// TTL returns the configured record lifetime.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Get reads key from tier 1, then tier 2. A tier-2 hit is copied into tier 1
// before returning. storedAt is the original write time of the record.
func (c *Cache[T]) Get(ctx context.Context, key string) (value T, storedAt time.Time, ok bool) {
	now := c.clock.Now()

	c.mu.Lock()
	rec, found := c.memory[key]
	if found && !c.fresh(rec.storedAt, now) {
		delete(c.memory, key)
		found = false
	}
	c.mu.Unlock()
	if found {
		return rec.data, rec.storedAt, true
	}

	if c.store == nil {
		return value, storedAt, false
	}

	raw, exists, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Debug("persisted cache read failed", zap.String("key", key), zap.Error(err))
		return value, storedAt, false
	}
	if !exists {
		return value, storedAt, false
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Debug("discarding corrupt persisted cache record", zap.String("key", key), zap.Error(err))
		return value, storedAt, false
	}

	written := time.UnixMilli(env.Timestamp)
	if !c.fresh(written, now) {
		return value, storedAt, false
	}

	c.mu.Lock()
	c.memory[key] = record[T]{data: env.Data, storedAt: written}
	c.mu.Unlock()

	return env.Data, written, true
}

// Set writes value to tier 1 and then tier 2. Tier-2 failures are logged and
// swallowed; the tier-1 write has already happened.
func (c *Cache[T]) Set(ctx context.Context, key string, value T) {
	now := c.clock.Now()

	c.mu.Lock()
	c.memory[key] = record[T]{data: value, storedAt: now}
	c.mu.Unlock()

	if c.store == nil {
		return
	}

	raw, err := json.Marshal(envelope[T]{Data: value, Timestamp: now.UnixMilli()})
	if err != nil {
		c.logger.Warn("persisted cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("persisted cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache[T]) fresh(storedAt, now time.Time) bool {
	return now.Sub(storedAt) < c.ttl
}
