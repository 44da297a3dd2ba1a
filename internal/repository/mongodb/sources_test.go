package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/realtime"
	"github.com/mamadbah2/gasdiary/internal/service/diary"
	"github.com/mamadbah2/gasdiary/internal/service/notifications"
	"github.com/mamadbah2/gasdiary/internal/service/reporting"
)

var (
	_ realtime.ChangeFeed   = (*ChangeFeed)(nil)
	_ diary.Source          = (*MongoDBRepository)(nil)
	_ notifications.Source  = (*MongoDBRepository)(nil)
	_ reporting.ReportStore = (*MongoDBRepository)(nil)
)

func TestWindowFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, windowFilter(models.Query{}))

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, bson.M{"created_at": bson.M{"$gte": since}}, windowFilter(models.Query{Since: since}))
}

func TestWindowOptions(t *testing.T) {
	opts := windowOptions(models.Query{Limit: 50})
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, opts.Sort)
	if assert.NotNil(t, opts.Limit) {
		assert.Equal(t, int64(50), *opts.Limit)
	}

	unbounded := windowOptions(models.Query{})
	assert.Nil(t, unbounded.Limit)
}

func TestInFilter(t *testing.T) {
	assert.Equal(t,
		bson.M{"transaction_id": bson.M{"$in": []string{"t1", "t2"}}},
		inFilter("transaction_id", []string{"t1", "t2"}))
}
