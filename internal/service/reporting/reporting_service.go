package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
	"github.com/mamadbah2/gasdiary/internal/service/analytics"
	"github.com/mamadbah2/gasdiary/internal/service/diary"
)

const dateLayout = "2006-01-02"

// ErrDiaryNotReady is returned while the diary has never completed a load.
var ErrDiaryNotReady = errors.New("diary has not loaded yet")

// DiaryReader exposes the current merged streams.
type DiaryReader interface {
	Snapshot() diary.Snapshot
}

// ReportStore persists daily reports.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Archiver mirrors daily reports to a secondary archive.
type Archiver interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) (bool, error)
}

// Service turns diary snapshots into daily and weekly summaries.
type Service struct {
	diary   DiaryReader
	store   ReportStore
	archive Archiver
	loc     *time.Location
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. archive may be nil.
func NewService(diary DiaryReader, store ReportStore, archive Archiver, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{diary: diary, store: store, archive: archive, loc: loc, logger: logger}
}

// GenerateDailySummary builds the report of now's business day, saves it and
// archives it. Archive failures are logged only.
func (s *Service) GenerateDailySummary(ctx context.Context, now time.Time) (models.DailyReport, error) {
	snap := s.diary.Snapshot()
	if snap.LastUpdated.IsZero() {
		return models.DailyReport{}, ErrDiaryNotReady
	}

	now = now.In(s.loc)
	w := analytics.WindowsAt(now)
	day := analytics.Summarize(snap.Sales, snap.Expenses, w.TodayStart, w.TodayEnd)

	report := models.DailyReport{
		Date:         w.TodayStart.Format(dateLayout),
		Income:       day.Totals.Income.InexactFloat64(),
		Expenses:     day.Totals.Expenses.InexactFloat64(),
		Profit:       day.Totals.Profit.InexactFloat64(),
		SalesCount:   day.Totals.SalesCount,
		ExpenseCount: day.Totals.ExpenseCount,
		DueCollected: day.DueCollected.InexactFloat64(),
		CreatedAt:    now,
	}
	if len(day.TopProducts) > 0 {
		report.TopProduct = day.TopProducts[0].ProductName
	}

	if err := s.store.SaveDailyReport(ctx, report); err != nil {
		return report, fmt.Errorf("save daily report: %w", err)
	}

	if s.archive != nil {
		written, err := s.archive.AppendDailyReport(ctx, report)
		switch {
		case err != nil:
			s.logger.Warn("daily report archive failed", zap.String("date", report.Date), zap.Error(err))
		case !written:
			s.logger.Debug("daily report already archived", zap.String("date", report.Date))
		}
	}

	if snap.Stale {
		s.logger.Warn("daily report built from a stale diary", zap.String("date", report.Date), zap.String("last_error", snap.LastError))
	}
	s.logger.Info("daily report generated",
		zap.String("date", report.Date),
		zap.Float64("income", report.Income),
		zap.Float64("expenses", report.Expenses))
	return report, nil
}

// GenerateWeeklyReport renders the summary of the week containing now.
func (s *Service) GenerateWeeklyReport(_ context.Context, now time.Time) (string, error) {
	snap := s.diary.Snapshot()
	if snap.LastUpdated.IsZero() {
		return "", ErrDiaryNotReady
	}

	w := analytics.WindowsAt(now.In(s.loc))
	week := analytics.Summarize(snap.Sales, snap.Expenses, w.WeekStart, w.WeekEnd)
	period := fmt.Sprintf("%s - %s", w.WeekStart.Format(dateLayout), w.WeekEnd.AddDate(0, 0, -1).Format(dateLayout))

	t := week.Totals
	if t.SalesCount == 0 && t.ExpenseCount == 0 {
		return fmt.Sprintf("Weekly diary (%s): no records yet.", period), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly diary (%s)\n", period)
	fmt.Fprintf(&b, "Income: %s from %d sales\n", t.Income.StringFixed(2), t.SalesCount)
	fmt.Fprintf(&b, "Expenses: %s across %d entries\n", t.Expenses.StringFixed(2), t.ExpenseCount)
	fmt.Fprintf(&b, "Profit: %s (margin %.2f%%)\n", t.Profit.StringFixed(2), analytics.Margin(t.Profit, t.Income))
	if !week.DueCollected.IsZero() {
		fmt.Fprintf(&b, "Due collected: %s\n", week.DueCollected.StringFixed(2))
	}

	if len(week.TopProducts) > 0 {
		b.WriteString("Top products:\n")
		for i, p := range week.TopProducts {
			fmt.Fprintf(&b, "%d. %s - %s (x%d)\n", i+1, p.ProductName, p.Amount.StringFixed(2), p.Quantity)
		}
	}
	if len(week.TopCategories) > 0 {
		b.WriteString("Top expenses:\n")
		for i, c := range week.TopCategories {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, c.Category, c.Amount.StringFixed(2))
		}
	}
	if snap.Stale {
		b.WriteString("Some sources failed to refresh; figures may be incomplete.\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
