package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/server/handlers"
	"github.com/mamadbah2/gasdiary/internal/service/diary"
	"github.com/mamadbah2/gasdiary/internal/service/notifications"
	"github.com/mamadbah2/gasdiary/pkg/retry"
)

type emptyDiary struct{}

func (emptyDiary) Snapshot() diary.Snapshot      { return diary.Snapshot{Loading: true} }
func (emptyDiary) Refetch(context.Context) error { return nil }

type noRoles struct{}

func (noRoles) FindUserRole(context.Context, string) (*models.UserRole, error) { return nil, nil }

func testEngine(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	notifier := notifications.NewService(nil, nil, nil, retry.Policy{}, nil, time.UTC, nil)
	return New(Handlers{
		Diary:         handlers.NewDiaryHandler(emptyDiary{}, nil, time.UTC, nil),
		Notifications: handlers.NewNotificationHandler(notifier, noRoles{}, nil),
	}, logger)
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	testEngine(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestIDIsGeneratedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := httptest.NewRecorder()
	testEngine(zap.New(core)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diary/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/diary/status", entries[0].ContextMap()["path"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	w := httptest.NewRecorder()
	testEngine(nil).ServeHTTP(w, req)

	assert.Equal(t, "upstream-42", w.Header().Get(RequestIDHeader))
}

func TestMessageRouteOnlyWhenEnabled(t *testing.T) {
	w := httptest.NewRecorder()
	testEngine(nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/send-message", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
