package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// Archive appends daily diary summaries to the Diary tab, one row per date.
type Archive struct {
	repo Repository
}

// NewArchive wraps a sheet repository.
func NewArchive(repo Repository) *Archive {
	return &Archive{repo: repo}
}

// AppendDailyReport writes report unless a row for its date already exists.
// It reports whether a row was written.
func (a *Archive) AppendDailyReport(ctx context.Context, report models.DailyReport) (bool, error) {
	rows, err := a.repo.ReadRange(ctx, "Diary!A:A")
	if err != nil {
		return false, fmt.Errorf("read archived dates: %w", err)
	}
	for _, row := range rows {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == report.Date {
			return false, nil
		}
	}

	if err := a.repo.WriteRow(ctx, DiaryRange, ReportRow(report)); err != nil {
		return false, err
	}
	return true, nil
}

// ReportRow lays report out in DiaryRange column order.
func ReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		report.Date,
		report.Income,
		report.Expenses,
		report.Profit,
		report.SalesCount,
		report.ExpenseCount,
		report.DueCollected,
		report.TopProduct,
	}
}
