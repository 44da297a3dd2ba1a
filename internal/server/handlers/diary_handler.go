package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/clock"
	"github.com/mamadbah2/gasdiary/internal/service/analytics"
	"github.com/mamadbah2/gasdiary/internal/service/diary"
)

const dateLayout = "2006-01-02"

// DiaryService is the diary engine surface exposed over HTTP.
type DiaryService interface {
	Snapshot() diary.Snapshot
	Refetch(ctx context.Context) error
}

// DiaryHandler serves the merged sale and expense streams and their analytics.
type DiaryHandler struct {
	svc    DiaryService
	memo   *analytics.Memo
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewDiaryHandler constructs the HTTP handler adapter.
func NewDiaryHandler(svc DiaryService, clk clock.Clock, loc *time.Location, logger *zap.Logger) *DiaryHandler {
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiaryHandler{svc: svc, memo: &analytics.Memo{}, clock: clk, loc: loc, logger: logger}
}

type diaryStatus struct {
	Loading      bool       `json:"loading"`
	Stale        bool       `json:"stale"`
	FromCache    bool       `json:"from_cache"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	SalesCount   int        `json:"sales_count"`
	ExpenseCount int        `json:"expense_count"`
}

func statusOf(snap diary.Snapshot) diaryStatus {
	st := diaryStatus{
		Loading:      snap.Loading,
		Stale:        snap.Stale,
		FromCache:    snap.FromCache,
		LastError:    snap.LastError,
		SalesCount:   len(snap.Sales),
		ExpenseCount: len(snap.Expenses),
	}
	if !snap.LastUpdated.IsZero() {
		at := snap.LastUpdated
		st.LastUpdated = &at
	}
	return st
}

// Sales lists the merged sale stream, newest first.
func (h *DiaryHandler) Sales(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap := h.svc.Snapshot()
	entries := diary.FilterSales(snap.Sales, f)
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries), "status": statusOf(snap)})
}

// Expenses lists the merged expense stream, newest first.
func (h *DiaryHandler) Expenses(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap := h.svc.Snapshot()
	entries := diary.FilterExpenses(snap.Expenses, f)
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries), "status": statusOf(snap)})
}

// Analytics returns the analytics object for the current business time.
func (h *DiaryHandler) Analytics(c *gin.Context) {
	snap := h.svc.Snapshot()
	now := h.clock.Now().In(h.loc)
	c.JSON(http.StatusOK, h.memo.Get(snap.SalesVersion, snap.ExpensesVersion, snap.Sales, snap.Expenses, now))
}

// Status reports loading and freshness of the streams.
func (h *DiaryHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, statusOf(h.svc.Snapshot()))
}

// Refetch reloads every stream before answering.
func (h *DiaryHandler) Refetch(c *gin.Context) {
	if err := h.svc.Refetch(c.Request.Context()); err != nil {
		h.logger.Warn("manual refetch incomplete", zap.Error(err))
		c.JSON(http.StatusBadGateway, statusOf(h.svc.Snapshot()))
		return
	}
	c.JSON(http.StatusOK, statusOf(h.svc.Snapshot()))
}

func (h *DiaryHandler) bindFilter(c *gin.Context) (diary.Filter, bool) {
	f := diary.Filter{From: c.Query("from"), To: c.Query("to"), Type: c.Query("type")}
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return f, false
		}
	}
	return f, true
}
