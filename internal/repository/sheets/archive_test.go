package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

type memorySheet struct {
	rows    map[string][][]interface{}
	readErr error
}

func (m *memorySheet) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	m.rows[sheetRange] = append(m.rows[sheetRange], values)
	return nil
}

func (m *memorySheet) ReadRange(_ context.Context, _ string) ([][]interface{}, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var dates [][]interface{}
	for _, row := range m.rows[DiaryRange] {
		dates = append(dates, row[:1])
	}
	return dates, nil
}

func TestAppendDailyReportOncePerDate(t *testing.T) {
	sheet := &memorySheet{rows: map[string][][]interface{}{}}
	archive := NewArchive(sheet)
	report := models.DailyReport{Date: "2026-05-20", Income: 1500, Expenses: 400, Profit: 1100, SalesCount: 3, TopProduct: "12kg Refill"}

	written, err := archive.AppendDailyReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = archive.AppendDailyReport(context.Background(), report)
	require.NoError(t, err)
	assert.False(t, written)

	require.Len(t, sheet.rows[DiaryRange], 1)
	assert.Equal(t, []interface{}{"2026-05-20", 1500.0, 400.0, 1100.0, 3, 0, 0.0, "12kg Refill"}, sheet.rows[DiaryRange][0])
}

func TestAppendDailyReportReadFailure(t *testing.T) {
	sheet := &memorySheet{rows: map[string][][]interface{}{}, readErr: errors.New("quota")}
	_, err := NewArchive(sheet).AppendDailyReport(context.Background(), models.DailyReport{Date: "2026-05-20"})
	assert.Error(t, err)
	assert.Empty(t, sheet.rows)
}
