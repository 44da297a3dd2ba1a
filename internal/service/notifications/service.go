// Package notifications derives the alert feed: stock, order, due, exchange
// and sales-milestone conditions are re-evaluated on every refresh cycle and
// served per viewer with role filtering and persisted read-state.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/gasdiary/internal/clock"
	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/pkg/retry"
)

// MaxReadIDs bounds each viewer's persisted read list.
const MaxReadIDs = 500

var (
	ErrNotFound      = errors.New("notification not found")
	ErrNoAction      = errors.New("notification has no action")
	ErrInvalidViewer = errors.New("viewer has no user id")
)

// Source is the live state the rules read. It is independent of the diary streams.
type Source interface {
	ListLPGBrands(ctx context.Context) ([]models.LPGBrand, error)
	ListStoves(ctx context.Context) ([]models.Stove, error)
	ListRegulators(ctx context.Context) ([]models.Regulator, error)
	ListPendingOrders(ctx context.Context) ([]models.CommunityOrder, error)
	ListCustomersWithDues(ctx context.Context) ([]models.Customer, error)
	ListPendingExchanges(ctx context.Context) ([]models.CylinderExchange, error)
	SumSalesBetween(ctx context.Context, start, end time.Time) (models.SalesTotal, error)
}

// ReadStore persists each viewer's read notification ids, oldest first.
type ReadStore interface {
	ReadIDs(ctx context.Context, userID string) ([]string, error)
	SaveReadIDs(ctx context.Context, userID string, ids []string) error
}

// Alerter delivers critical notifications outside the app.
type Alerter interface {
	SendAlert(ctx context.Context, n models.Notification) error
}

// Viewer is the acting user and the role resolved for them.
type Viewer struct {
	UserID string
	Role   models.StaffRole
}

// Service owns the current notification generation.
type Service struct {
	src     Source
	reads   ReadStore
	alerter Alerter
	retry   retry.Policy
	clock   clock.Clock
	loc     *time.Location
	logger  *zap.Logger

	mu         sync.RWMutex
	current    []models.Notification
	lastGood   map[string][]models.Notification
	generation uint64
	cleared    map[string]uint64
	dispatched map[string]struct{}

	readLocksMu sync.Mutex
	readLocks   map[string]*sync.Mutex

	listenersMu sync.RWMutex
	listeners   []func(models.NavigationIntent)
}

// NewService wires the notification engine. alerter may be nil; a nil reads
// keeps read state in memory. A policy without attempts uses retry.DefaultPolicy.
func NewService(src Source, reads ReadStore, alerter Alerter, policy retry.Policy, clk clock.Clock, loc *time.Location, logger *zap.Logger) *Service {
	if reads == nil {
		reads = NewMemoryReadStore()
	}
	if policy.Attempts < 1 {
		policy = retry.DefaultPolicy()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		src:        src,
		reads:      reads,
		alerter:    alerter,
		retry:      policy,
		clock:      clk,
		loc:        loc,
		logger:     logger,
		lastGood:   make(map[string][]models.Notification),
		cleared:    make(map[string]uint64),
		dispatched: make(map[string]struct{}),
		readLocks:  make(map[string]*sync.Mutex),
	}
}

// Refresh regenerates the feed. Each source query is retried under the
// service's policy; a kind whose query still fails keeps the notifications of
// its last successful cycle. Failures are logged and returned joined.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.clock.Now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	var (
		g      errgroup.Group
		mu     sync.Mutex
		fresh  = make(map[string][]models.Notification)
		failed = make(map[string]error)
	)
	run := func(kind string, fn func(ctx context.Context) ([]models.Notification, error)) {
		g.Go(func() error {
			var list []models.Notification
			err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
				var err error
				list, err = fn(ctx)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[kind] = err
				return nil
			}
			fresh[kind] = list
			return nil
		})
	}

	run("lpg_stock", func(ctx context.Context) ([]models.Notification, error) {
		brands, err := s.src.ListLPGBrands(ctx)
		return LPGStockRules(brands, now), err
	})
	run("stove_stock", func(ctx context.Context) ([]models.Notification, error) {
		stoves, err := s.src.ListStoves(ctx)
		return StoveStockRules(stoves, now), err
	})
	run("regulator_stock", func(ctx context.Context) ([]models.Notification, error) {
		regulators, err := s.src.ListRegulators(ctx)
		return RegulatorStockRules(regulators, now), err
	})
	run("orders", func(ctx context.Context) ([]models.Notification, error) {
		orders, err := s.src.ListPendingOrders(ctx)
		return OrderRules(orders, now), err
	})
	run("customer_dues", func(ctx context.Context) ([]models.Notification, error) {
		customers, err := s.src.ListCustomersWithDues(ctx)
		return DueRules(customers, now), err
	})
	run("exchanges", func(ctx context.Context) ([]models.Notification, error) {
		exchanges, err := s.src.ListPendingExchanges(ctx)
		return ExchangeRules(exchanges, now), err
	})
	run("sales_milestone", func(ctx context.Context) ([]models.Notification, error) {
		total, err := s.src.SumSalesBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		return SalesMilestoneRule(total, dayStart.Format("2006-01-02"), now), err
	})
	_ = g.Wait()

	s.mu.Lock()
	var errs []error
	for kind, err := range failed {
		s.logger.Warn("notification source failed, keeping last good result",
			zap.String("kind", kind), zap.Int("kept", len(s.lastGood[kind])), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", kind, err))
	}
	for kind, list := range fresh {
		s.lastGood[kind] = list
	}
	var results []models.Notification
	for _, list := range s.lastGood {
		results = append(results, list...)
	}
	Sort(results)
	s.current = results
	s.generation++
	s.mu.Unlock()

	s.logger.Debug("notifications refreshed", zap.Int("count", len(results)), zap.Int("failed_sources", len(errs)))
	s.dispatchCritical(ctx, results)
	return errors.Join(errs...)
}

// List returns the notifications visible to viewer with read-state applied,
// plus the unread count.
func (s *Service) List(ctx context.Context, viewer Viewer) ([]models.Notification, int, error) {
	if viewer.UserID == "" {
		return nil, 0, ErrInvalidViewer
	}

	visible := s.visible(viewer)
	read := s.readSet(ctx, viewer.UserID)

	unread := 0
	for i := range visible {
		_, visible[i].Read = read[visible[i].ID]
		if !visible[i].Read {
			unread++
		}
	}
	return visible, unread, nil
}

// MarkAsRead records id as read for the viewer.
func (s *Service) MarkAsRead(ctx context.Context, viewer Viewer, id string) error {
	if viewer.UserID == "" {
		return ErrInvalidViewer
	}
	return s.appendRead(ctx, viewer.UserID, id)
}

// MarkAllAsRead records every notification currently visible to the viewer as read.
func (s *Service) MarkAllAsRead(ctx context.Context, viewer Viewer) error {
	if viewer.UserID == "" {
		return ErrInvalidViewer
	}
	visible := s.visible(viewer)
	ids := make([]string, 0, len(visible))
	for _, n := range visible {
		ids = append(ids, n.ID)
	}
	return s.appendRead(ctx, viewer.UserID, ids...)
}

// Clear hides the current generation from the viewer. The next refresh
// cycle makes the regenerated feed visible again.
func (s *Service) Clear(_ context.Context, viewer Viewer) error {
	if viewer.UserID == "" {
		return ErrInvalidViewer
	}
	s.mu.Lock()
	s.cleared[viewer.UserID] = s.generation
	s.mu.Unlock()
	return nil
}

// Open marks id read and emits its navigation intent to every listener.
func (s *Service) Open(ctx context.Context, viewer Viewer, id string) (models.NavigationIntent, error) {
	if viewer.UserID == "" {
		return models.NavigationIntent{}, ErrInvalidViewer
	}

	var found *models.Notification
	for _, n := range s.visible(viewer) {
		if n.ID == id {
			found = &n
			break
		}
	}
	if found == nil {
		return models.NavigationIntent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.appendRead(ctx, viewer.UserID, id); err != nil {
		s.logger.Warn("mark opened notification read", zap.String("id", id), zap.Error(err))
	}
	if found.Action == nil {
		return models.NavigationIntent{}, ErrNoAction
	}

	intent := models.NavigationIntent{NotificationID: id, UserID: viewer.UserID, Action: *found.Action}
	s.listenersMu.RLock()
	listeners := append([]func(models.NavigationIntent){}, s.listeners...)
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(intent)
	}
	return intent, nil
}

// OnNavigate registers a listener for navigation intents.
func (s *Service) OnNavigate(fn func(models.NavigationIntent)) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

func (s *Service) visible(viewer Viewer) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if gen, ok := s.cleared[viewer.UserID]; ok && gen == s.generation {
		return []models.Notification{}
	}
	out := make([]models.Notification, 0, len(s.current))
	for _, n := range s.current {
		if n.VisibleTo(viewer.Role) {
			out = append(out, n)
		}
	}
	return out
}

func (s *Service) readSet(ctx context.Context, userID string) map[string]struct{} {
	set := make(map[string]struct{})
	ids, err := s.reads.ReadIDs(ctx, userID)
	if err != nil {
		s.logger.Warn("load read notifications", zap.String("user_id", userID), zap.Error(err))
		return set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// appendRead serializes the read-modify-write of one user's list.
func (s *Service) appendRead(ctx context.Context, userID string, ids ...string) error {
	lock := s.readLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.reads.ReadIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("load read ids: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	changed := false
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		existing = append(existing, id)
		changed = true
	}
	if !changed {
		return nil
	}
	if len(existing) > MaxReadIDs {
		existing = existing[len(existing)-MaxReadIDs:]
	}
	if err := s.reads.SaveReadIDs(ctx, userID, existing); err != nil {
		return fmt.Errorf("save read ids: %w", err)
	}
	return nil
}

func (s *Service) readLock(userID string) *sync.Mutex {
	s.readLocksMu.Lock()
	defer s.readLocksMu.Unlock()
	lock, ok := s.readLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.readLocks[userID] = lock
	}
	return lock
}

func (s *Service) dispatchCritical(ctx context.Context, list []models.Notification) {
	if s.alerter == nil {
		return
	}
	for _, n := range list {
		if n.Priority != models.PriorityCritical {
			continue
		}
		s.mu.RLock()
		_, done := s.dispatched[n.ID]
		s.mu.RUnlock()
		if done {
			continue
		}
		if err := s.alerter.SendAlert(ctx, n); err != nil {
			s.logger.Warn("critical alert delivery failed", zap.String("id", n.ID), zap.Error(err))
			continue
		}
		s.mu.Lock()
		s.dispatched[n.ID] = struct{}{}
		s.mu.Unlock()
	}
}
