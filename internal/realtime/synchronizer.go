// Package realtime keeps the diary streams live. Change notifications from
// every source table of a stream feed one debounce timer per stream, so a
// burst of writes across several tables costs a single re-fetch.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/clock"
)

// DefaultDebounce is the quiet period a stream waits for before re-fetching.
const DefaultDebounce = time.Second

// Stream names a logical diary stream.
type Stream string

const (
	StreamSales    Stream = "sales"
	StreamExpenses Stream = "expenses"
)

// State is the per-stream synchronizer state.
type State int

const (
	StateIdle State = iota
	StatePendingDebounce
	StateFetching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingDebounce:
		return "pending_debounce"
	case StateFetching:
		return "fetching"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ChangeFeed emits "something changed" for a table. Delivery order and
// exactly-once delivery are not assumed.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string, onChange func()) (Subscription, error)
}

// Subscription is an active change subscription.
type Subscription interface {
	Close() error
}

// Refresher re-fetches every adapter of a stream.
type Refresher interface {
	RefreshStream(ctx context.Context, stream Stream) error
}

// DefaultTables maps each stream to the source tables that feed it.
func DefaultTables() map[Stream][]string {
	return map[Stream][]string{
		StreamSales:    {"pos_transactions", "pos_transaction_items", "customer_payments"},
		StreamExpenses: {"pob_transactions", "pob_transaction_items", "staff_payments", "vehicle_costs", "daily_expenses"},
	}
}

type streamState struct {
	state State
	timer clock.Timer
	gen   uint64
	dirty bool
}

// Synchronizer runs the Idle → PendingDebounce → Fetching → Idle machine for each stream.
type Synchronizer struct {
	feed      ChangeFeed
	refresher Refresher
	clock     clock.Clock
	debounce  time.Duration
	tables    map[Stream][]string
	logger    *zap.Logger

	mu       sync.Mutex
	streams  map[Stream]*streamState
	subs     []Subscription
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	fetchCtx context.Context
	inflight sync.WaitGroup
}

// New builds a synchronizer. tables defaults to DefaultTables and debounce to DefaultDebounce.
func New(feed ChangeFeed, refresher Refresher, clk clock.Clock, debounce time.Duration, tables map[Stream][]string, logger *zap.Logger) *Synchronizer {
	if clk == nil {
		clk = clock.Real()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if tables == nil {
		tables = DefaultTables()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	streams := make(map[Stream]*streamState, len(tables))
	for stream := range tables {
		streams[stream] = &streamState{}
	}

	return &Synchronizer{
		feed:      feed,
		refresher: refresher,
		clock:     clk,
		debounce:  debounce,
		tables:    tables,
		logger:    logger,
		streams:   streams,
		fetchCtx:  context.Background(),
	}
}

// Start subscribes to every table. A table that cannot be subscribed is
// logged and reported in the returned error; the others stay active.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.fetchCtx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	if s.feed == nil {
		return nil
	}

	var errs []error
	for stream, tables := range s.tables {
		for _, table := range tables {
			sub, err := s.feed.Subscribe(subCtx, table, func() { s.Notify(stream) })
			if err != nil {
				s.logger.Warn("change subscription failed",
					zap.String("stream", string(stream)),
					zap.String("table", table),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("subscribe %s: %w", table, err))
				continue
			}

			s.mu.Lock()
			if s.stopped {
				s.mu.Unlock()
				_ = sub.Close()
				return errors.Join(errs...)
			}
			s.subs = append(s.subs, sub)
			s.mu.Unlock()
		}
	}

	s.logger.Info("realtime synchronizer started", zap.Duration("debounce", s.debounce))
	return errors.Join(errs...)
}

// Notify records a change on stream. It is the change handler wired to every
// subscription and is safe to call from any goroutine.
func (s *Synchronizer) Notify(stream Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	st, ok := s.streams[stream]
	if !ok {
		return
	}

	switch st.state {
	case StateIdle:
		st.state = StatePendingDebounce
		s.scheduleLocked(stream, st)
	case StatePendingDebounce:
		if st.timer != nil {
			st.timer.Stop()
		}
		s.scheduleLocked(stream, st)
	case StateFetching:
		st.dirty = true
	}
}

// State returns the current state of stream.
func (s *Synchronizer) State(stream Stream) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[stream]; ok {
		return st.state
	}
	return StateIdle
}

// Stop cancels pending debounce timers and subscriptions, then waits for any
// fetch already running to finish. Fetches are never interrupted.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for _, st := range s.streams {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		if st.state == StatePendingDebounce {
			st.state = StateIdle
		}
		st.dirty = false
	}
	subs := s.subs
	s.subs = nil
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			s.logger.Debug("closing change subscription", zap.Error(err))
		}
	}

	s.inflight.Wait()
	s.logger.Info("realtime synchronizer stopped")
}

func (s *Synchronizer) scheduleLocked(stream Stream, st *streamState) {
	st.gen++
	gen := st.gen
	st.timer = s.clock.AfterFunc(s.debounce, func() { s.fire(stream, gen) })
}

func (s *Synchronizer) fire(stream Stream, gen uint64) {
	s.mu.Lock()
	st := s.streams[stream]
	if s.stopped || st.state != StatePendingDebounce || st.gen != gen {
		s.mu.Unlock()
		return
	}
	st.state = StateFetching
	st.timer = nil
	s.inflight.Add(1)
	ctx := s.fetchCtx
	s.mu.Unlock()

	defer s.inflight.Done()

	if err := s.refresher.RefreshStream(ctx, stream); err != nil {
		s.logger.Warn("stream refresh failed", zap.String("stream", string(stream)), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st.dirty && !s.stopped {
		st.dirty = false
		st.state = StatePendingDebounce
		s.scheduleLocked(stream, st)
		return
	}
	st.dirty = false
	if st.state == StateFetching {
		st.state = StateIdle
	}
}
