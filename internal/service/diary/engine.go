// Package diary builds the business diary: six source adapters normalize
// sales and expense rows into canonical entries, which are merged into two
// time-ordered streams, cached, and kept live by the realtime synchronizer.
package diary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/gasdiary/internal/cache"
	"github.com/mamadbah2/gasdiary/internal/clock"
	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/realtime"
	"github.com/mamadbah2/gasdiary/pkg/retry"
)

// CacheKey is the logical key of the combined ledger.
const CacheKey = "diary:combined"

// ErrUnknownStream is returned when a refresh names a stream the engine does not own.
var ErrUnknownStream = errors.New("unknown diary stream")

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	Location          *time.Location
	FetchLimit        int64
	Retry             retry.Policy
	SoftRefreshMinAge time.Duration
	Debounce          time.Duration
}

// Snapshot is a consistent view of both streams. The slices are shared and
// must not be modified.
type Snapshot struct {
	Sales           []models.SaleEntry
	Expenses        []models.ExpenseEntry
	SalesVersion    uint64
	ExpensesVersion uint64
	Loading         bool
	Stale           bool
	FromCache       bool
	LastUpdated     time.Time
	LastError       string
}

// Engine owns the merged diary streams.
type Engine struct {
	adapters adapters
	src      Source
	cache    *cache.Cache[models.Ledger]
	feed     realtime.ChangeFeed
	clock    clock.Clock
	opts     Options
	logger   *zap.Logger

	salesMu      sync.Mutex
	expensesMu   sync.Mutex
	lastSales    map[models.Source][]models.SaleEntry
	lastExpenses map[models.Source][]models.ExpenseEntry

	mu              sync.RWMutex
	sales           []models.SaleEntry
	expenses        []models.ExpenseEntry
	salesVersion    uint64
	expensesVersion uint64
	salesErr        error
	expensesErr     error
	loading         bool
	fromCache       bool
	lastUpdated     time.Time

	lifecycle    sync.Mutex
	active       bool
	synchronizer *realtime.Synchronizer
	bg           sync.WaitGroup
}

// NewEngine wires an engine over src. feed may be nil, in which case the
// engine only refreshes on demand.
func NewEngine(src Source, store *cache.Cache[models.Ledger], feed realtime.ChangeFeed, clk clock.Clock, opts Options, logger *zap.Logger) *Engine {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = cache.New[models.Ledger](nil, cache.DefaultTTL, clk, logger.Named("cache"))
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Retry.Attempts < 1 {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.SoftRefreshMinAge < 0 {
		opts.SoftRefreshMinAge = 0
	}

	return &Engine{
		adapters:     adapters{src: src, loc: opts.Location},
		src:          src,
		cache:        store,
		feed:         feed,
		clock:        clk,
		opts:         opts,
		logger:       logger,
		lastSales:    make(map[models.Source][]models.SaleEntry),
		lastExpenses: make(map[models.Source][]models.ExpenseEntry),
	}
}

// Activate performs the cold start. A cache hit is served immediately and,
// when older than SoftRefreshMinAge, refreshed in the background; a miss
// blocks on a full refresh. The realtime synchronizer is started afterwards.
func (e *Engine) Activate(ctx context.Context) error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if e.active {
		return nil
	}
	e.active = true

	if ledger, storedAt, ok := e.cache.Get(ctx, CacheKey); ok {
		e.seed(ledger, storedAt)
		age := e.clock.Now().Sub(storedAt)
		e.logger.Debug("diary served from cache", zap.Duration("age", age))
		if age >= e.opts.SoftRefreshMinAge {
			e.softRefresh(ctx)
		}
	} else {
		e.setLoading(true)
		if err := e.Refetch(ctx); err != nil {
			e.logger.Warn("diary cold start completed with failures", zap.Error(err))
		}
		e.setLoading(false)
	}

	if e.feed != nil {
		e.synchronizer = realtime.New(e.feed, e, e.clock, e.opts.Debounce, nil, e.logger.Named("realtime"))
		if err := e.synchronizer.Start(ctx); err != nil {
			e.logger.Warn("realtime synchronizer started partially", zap.Error(err))
		}
	}
	return nil
}

// Deactivate stops the synchronizer and waits for background refreshes.
func (e *Engine) Deactivate() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if !e.active {
		return
	}
	e.active = false
	if e.synchronizer != nil {
		e.synchronizer.Stop()
		e.synchronizer = nil
	}
	e.bg.Wait()
}

// Refetch refreshes both streams concurrently and writes the combined cache.
// Source failures do not abort the refresh; they are returned joined once the
// merge has been published. The cache is left untouched when no adapter
// succeeded, so stale rows never get a fresh timestamp.
func (e *Engine) Refetch(ctx context.Context) error {
	roles := e.loadRoles(ctx)

	var (
		salesErr, expensesErr error
		salesOK, expensesOK   bool
	)
	var g errgroup.Group
	g.Go(func() error {
		salesOK, salesErr = e.refreshSales(ctx, roles)
		return nil
	})
	g.Go(func() error {
		expensesOK, expensesErr = e.refreshExpenses(ctx, roles)
		return nil
	})
	_ = g.Wait()

	if salesOK || expensesOK {
		e.persist(ctx)
	}
	return errors.Join(salesErr, expensesErr)
}

// RefreshStream re-runs every adapter of one stream. It implements
// realtime.Refresher.
func (e *Engine) RefreshStream(ctx context.Context, stream realtime.Stream) error {
	var (
		ok  bool
		err error
	)
	switch stream {
	case realtime.StreamSales:
		ok, err = e.refreshSales(ctx, e.loadRoles(ctx))
	case realtime.StreamExpenses:
		ok, err = e.refreshExpenses(ctx, e.loadRoles(ctx))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStream, stream)
	}
	if ok {
		e.persist(ctx)
	}
	return err
}

// Snapshot returns the current state of both streams.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		Sales:           e.sales,
		Expenses:        e.expenses,
		SalesVersion:    e.salesVersion,
		ExpensesVersion: e.expensesVersion,
		Loading:         e.loading,
		Stale:           e.salesErr != nil || e.expensesErr != nil,
		FromCache:       e.fromCache,
		LastUpdated:     e.lastUpdated,
		LastError:       errorText(errors.Join(e.salesErr, e.expensesErr)),
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (e *Engine) softRefresh(ctx context.Context) {
	bgCtx := context.WithoutCancel(ctx)
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		if err := e.Refetch(bgCtx); err != nil {
			e.logger.Debug("soft refresh completed with failures", zap.Error(err))
		}
	}()
}

// refreshSales reports whether at least one adapter succeeded.
func (e *Engine) refreshSales(ctx context.Context, roles RoleMap) (bool, error) {
	e.salesMu.Lock()
	defer e.salesMu.Unlock()

	list := e.adapters.sales()
	q := e.query()
	outputs := make([][]models.SaleEntry, len(list))
	errs := make([]error, len(list))

	var g errgroup.Group
	for i, a := range list {
		g.Go(func() error {
			errs[i] = retry.Do(ctx, e.opts.Retry, func(ctx context.Context) error {
				out, err := a.fetch(ctx, q, roles)
				if err != nil {
					return err
				}
				outputs[i] = out
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	succeeded := false
	for i, a := range list {
		if errs[i] != nil {
			e.logger.Warn("sales adapter failed, keeping last good result",
				zap.String("source", string(a.source)), zap.Error(errs[i]))
			failed = append(failed, fmt.Errorf("%s: %w", a.source, errs[i]))
			outputs[i] = e.lastSales[a.source]
			continue
		}
		e.lastSales[a.source] = outputs[i]
		succeeded = true
	}

	merged := MergeSales(outputs...)
	err := errors.Join(failed...)

	e.mu.Lock()
	e.sales = merged
	e.salesVersion++
	e.salesErr = err
	e.fromCache = false
	e.lastUpdated = e.clock.Now()
	e.mu.Unlock()
	return succeeded, err
}

// refreshExpenses reports whether at least one adapter succeeded.
func (e *Engine) refreshExpenses(ctx context.Context, roles RoleMap) (bool, error) {
	e.expensesMu.Lock()
	defer e.expensesMu.Unlock()

	list := e.adapters.expenses()
	q := e.query()
	outputs := make([][]models.ExpenseEntry, len(list))
	errs := make([]error, len(list))

	var g errgroup.Group
	for i, a := range list {
		g.Go(func() error {
			errs[i] = retry.Do(ctx, e.opts.Retry, func(ctx context.Context) error {
				out, err := a.fetch(ctx, q, roles)
				if err != nil {
					return err
				}
				outputs[i] = out
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	succeeded := false
	for i, a := range list {
		if errs[i] != nil {
			e.logger.Warn("expense adapter failed, keeping last good result",
				zap.String("source", string(a.source)), zap.Error(errs[i]))
			failed = append(failed, fmt.Errorf("%s: %w", a.source, errs[i]))
			outputs[i] = e.lastExpenses[a.source]
			continue
		}
		e.lastExpenses[a.source] = outputs[i]
		succeeded = true
	}

	merged := MergeExpenses(outputs...)
	err := errors.Join(failed...)

	e.mu.Lock()
	e.expenses = merged
	e.expensesVersion++
	e.expensesErr = err
	e.fromCache = false
	e.lastUpdated = e.clock.Now()
	e.mu.Unlock()
	return succeeded, err
}

// seed installs a cached ledger and replaces the per-source last good results
// with it, so a failing adapter on the next refresh keeps showing cached rows.
func (e *Engine) seed(ledger models.Ledger, storedAt time.Time) {
	e.salesMu.Lock()
	e.lastSales = make(map[models.Source][]models.SaleEntry)
	for _, entry := range ledger.Sales {
		e.lastSales[entry.Source] = append(e.lastSales[entry.Source], entry)
	}
	e.salesMu.Unlock()

	e.expensesMu.Lock()
	e.lastExpenses = make(map[models.Source][]models.ExpenseEntry)
	for _, entry := range ledger.Expenses {
		e.lastExpenses[entry.Source] = append(e.lastExpenses[entry.Source], entry)
	}
	e.expensesMu.Unlock()

	e.mu.Lock()
	e.sales = ledger.Sales
	e.expenses = ledger.Expenses
	e.salesVersion++
	e.expensesVersion++
	e.fromCache = true
	e.lastUpdated = storedAt
	e.mu.Unlock()
}

func (e *Engine) persist(ctx context.Context) {
	e.mu.RLock()
	ledger := models.Ledger{Sales: e.sales, Expenses: e.expenses}
	e.mu.RUnlock()
	e.cache.Set(ctx, CacheKey, ledger)
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

// loadRoles fetches the role map once per cycle. On failure every entry of
// the cycle resolves to the unknown role.
func (e *Engine) loadRoles(ctx context.Context) RoleMap {
	var rows []models.UserRole
	err := retry.Do(ctx, e.opts.Retry, func(ctx context.Context) error {
		var err error
		rows, err = e.src.ListUserRoles(ctx)
		return err
	})
	if err != nil {
		e.logger.Warn("role map unavailable", zap.Error(err))
		return RoleMap{}
	}
	return NewRoleMap(rows)
}

func (e *Engine) query() models.Query {
	return models.Query{
		Since: FetchWindowStart(e.clock.Now(), e.opts.Location),
		Limit: e.opts.FetchLimit,
	}
}

// FetchWindowStart is the earliest instant any analytics window can reach:
// the start of the current year or of the previous month, whichever is first.
func FetchWindowStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	lastMonth := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)
	if lastMonth.Before(yearStart) {
		return lastMonth
	}
	return yearStart
}
