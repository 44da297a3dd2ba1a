package mongodb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/gasdiary/pkg/retry"
)

type fakeStream struct {
	events []bson.Raw
	err    error
	block  bool

	pos int
	cur bson.Raw
}

func (s *fakeStream) Next(ctx context.Context) bool {
	if s.pos < len(s.events) {
		s.cur = s.events[s.pos]
		s.pos++
		return true
	}
	if s.block {
		<-ctx.Done()
		s.err = ctx.Err()
	}
	return false
}

func (s *fakeStream) Err() error                  { return s.err }
func (s *fakeStream) ResumeToken() bson.Raw       { return s.cur }
func (s *fakeStream) Close(context.Context) error { return nil }

type openResult struct {
	stream *fakeStream
	err    error
}

type fakeOpener struct {
	mu      sync.Mutex
	results []openResult
	tokens  []bson.Raw
}

func (o *fakeOpener) open(_ context.Context, token bson.Raw) (changeStream, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens = append(o.tokens, token)
	next := o.results[0]
	if len(o.results) > 1 {
		o.results = o.results[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return next.stream, nil
}

func (o *fakeOpener) opened() []bson.Raw {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]bson.Raw(nil), o.tokens...)
}

var fastBackoff = retry.Policy{BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestWatchReopensAfterStreamErrorAndResumes(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zap.WarnLevel)
	opener := &fakeOpener{results: []openResult{
		{stream: &fakeStream{events: []bson.Raw{bson.Raw("t1"), bson.Raw("t2")}, err: errors.New("not primary")}},
		{err: errors.New("no reachable servers")},
		{stream: &fakeStream{events: []bson.Raw{bson.Raw("t3")}, block: true}},
	}}
	var changes atomic.Int32

	sub, err := subscribe(context.Background(), "pos_transactions", opener.open, func() { changes.Add(1) }, fastBackoff, zap.New(core))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return changes.Load() == 3 }, time.Second, time.Millisecond)
	require.NoError(t, sub.Close())

	assert.Equal(t, []bson.Raw{nil, bson.Raw("t2"), bson.Raw("t2")}, opener.opened())
	assert.Equal(t, 1, logs.FilterMessage("change stream ended, reopening").Len())
	assert.Equal(t, 1, logs.FilterMessage("change stream reopen failed").Len())
}

func TestWatchSignalsChangeWhenResumeIsImpossible(t *testing.T) {
	defer goleak.VerifyNone(t)

	opener := &fakeOpener{results: []openResult{
		{stream: &fakeStream{err: errors.New("cursor killed")}},
		{stream: &fakeStream{block: true}},
	}}
	var changes atomic.Int32

	sub, err := subscribe(context.Background(), "daily_expenses", opener.open, func() { changes.Add(1) }, fastBackoff, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return changes.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, sub.Close())
	assert.Len(t, opener.opened(), 2)
}

func TestSubscribeReportsInitialWatchFailure(t *testing.T) {
	opener := &fakeOpener{results: []openResult{{err: errors.New("not a replica set")}}}
	_, err := subscribe(context.Background(), "vehicle_costs", opener.open, func() {}, fastBackoff, nil)
	assert.ErrorContains(t, err, "watch vehicle_costs")
}
