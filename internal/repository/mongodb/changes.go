package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/realtime"
	"github.com/mamadbah2/gasdiary/pkg/retry"
)

// changeStream is the part of *mongo.ChangeStream the watch loop uses.
type changeStream interface {
	Next(ctx context.Context) bool
	Err() error
	ResumeToken() bson.Raw
	Close(ctx context.Context) error
}

// openFunc opens a change stream, resuming after token when it is set.
type openFunc func(ctx context.Context, token bson.Raw) (changeStream, error)

// ChangeFeed turns MongoDB change streams into table change notifications.
// Change streams require a replica set.
type ChangeFeed struct {
	db      *mongo.Database
	backoff retry.Policy
	logger  *zap.Logger
}

// ChangeFeed returns a feed over the repository's database.
func (r *MongoDBRepository) ChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		db:      r.db,
		backoff: retry.Policy{BaseDelay: time.Second, MaxDelay: 30 * time.Second},
		logger:  r.logger.Named("changes"),
	}
}

// Subscribe watches table and calls onChange for every event until ctx is
// cancelled or the subscription is closed. A stream that ends with an error
// is reopened with backoff, resuming after the last seen event.
func (f *ChangeFeed) Subscribe(ctx context.Context, table string, onChange func()) (realtime.Subscription, error) {
	coll := f.db.Collection(table)
	open := func(ctx context.Context, token bson.Raw) (changeStream, error) {
		opts := options.ChangeStream()
		if token != nil {
			opts.SetResumeAfter(token)
		}
		stream, err := coll.Watch(ctx, mongo.Pipeline{}, opts)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
	sub, err := subscribe(ctx, table, open, onChange, f.backoff, f.logger)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func subscribe(ctx context.Context, table string, open openFunc, onChange func(), backoff retry.Policy, logger *zap.Logger) (*watchSubscription, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stream, err := open(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", table, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub := &watchSubscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		watch(watchCtx, table, stream, open, onChange, backoff, logger)
	}()
	return sub, nil
}

func watch(ctx context.Context, table string, stream changeStream, open openFunc, onChange func(), backoff retry.Policy, logger *zap.Logger) {
	var token bson.Raw
	for {
		for stream.Next(ctx) {
			token = stream.ResumeToken()
			onChange()
		}
		err := stream.Err()
		_ = stream.Close(context.Background())
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn("change stream ended, reopening", zap.String("table", table), zap.Error(err))

		for attempt := 1; ; attempt++ {
			if !sleep(ctx, backoff.Backoff(attempt)) {
				return
			}
			stream, err = open(ctx, token)
			if err == nil {
				break
			}
			logger.Warn("change stream reopen failed",
				zap.String("table", table), zap.Int("attempt", attempt), zap.Error(err))
		}
		if token == nil {
			// no event to resume after; anything written meanwhile is unknown
			onChange()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type watchSubscription struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the watch goroutine and waits for it to exit.
func (s *watchSubscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}
