package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/gasdiary/internal/clock"
)

type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	setErr  error
	getErr  error
	lastTTL time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.lastTTL = ttl
	return nil
}

var epoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestGetWithinTTLBoundary(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(epoch)
	c := New[string](nil, DefaultTTL, clk, nil)

	c.Set(ctx, "k", "v")

	clk.Set(epoch.Add(DefaultTTL - time.Millisecond))
	got, storedAt, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, epoch, storedAt)

	clk.Set(epoch.Add(DefaultTTL + time.Millisecond))
	_, _, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestExpiredMemoryRecordIsPruned(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(epoch)
	c := New[int](nil, time.Minute, clk, nil)

	c.Set(ctx, "k", 1)
	clk.Advance(2 * time.Minute)
	_, _, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, c.memory)
}

func TestPersistedHitBackfillsMemory(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(epoch)
	store := newMemoryStore()

	writer := New[[]int](store, DefaultTTL, clk, nil)
	writer.Set(ctx, "ledger", []int{1, 2, 3})
	assert.Equal(t, DefaultTTL, store.lastTTL)

	// A fresh process: empty memory tier, same persisted store.
	reader := New[[]int](store, DefaultTTL, clk, nil)
	clk.Advance(time.Minute)

	got, storedAt, ok := reader.Get(ctx, "ledger")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, epoch, storedAt)
	assert.Equal(t, 1, store.gets)

	_, _, ok = reader.Get(ctx, "ledger")
	require.True(t, ok)
	assert.Equal(t, 1, store.gets, "second read must be served by the memory tier")
}

func TestPersistedRecordHonoursItsOwnTimestamp(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(epoch)
	store := newMemoryStore()

	New[string](store, DefaultTTL, clk, nil).Set(ctx, "k", "v")

	reader := New[string](store, DefaultTTL, clk, nil)
	clk.Set(epoch.Add(DefaultTTL + time.Millisecond))
	_, _, ok := reader.Get(ctx, "k")
	assert.False(t, ok)
}

func TestPersistedWriteFailureKeepsMemoryTier(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.setErr = errors.New("quota exceeded")
	c := New[string](store, DefaultTTL, clock.NewFake(epoch), nil)

	c.Set(ctx, "k", "v")

	got, _, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCorruptOrFailingPersistedTierIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.data["broken"] = []byte("{not json")
	c := New[string](store, DefaultTTL, clock.NewFake(epoch), nil)

	_, _, ok := c.Get(ctx, "broken")
	assert.False(t, ok)

	store.getErr = errors.New("connection refused")
	_, _, ok = c.Get(ctx, "anything")
	assert.False(t, ok)
}
