package diary

import (
	"sort"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// MergeSales concatenates adapter outputs in the given order and sorts the
// result newest first. Entries with equal timestamps keep their emission order.
func MergeSales(outputs ...[]models.SaleEntry) []models.SaleEntry {
	n := 0
	for _, out := range outputs {
		n += len(out)
	}
	merged := make([]models.SaleEntry, 0, n)
	for _, out := range outputs {
		merged = append(merged, out...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}

// MergeExpenses is MergeSales for the expense stream.
func MergeExpenses(outputs ...[]models.ExpenseEntry) []models.ExpenseEntry {
	n := 0
	for _, out := range outputs {
		n += len(out)
	}
	merged := make([]models.ExpenseEntry, 0, n)
	for _, out := range outputs {
		merged = append(merged, out...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
