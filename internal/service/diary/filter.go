package diary

import "github.com/mamadbah2/gasdiary/internal/domain/models"

// Filter narrows a stream by business date (inclusive, YYYY-MM-DD) and entry
// type. Empty fields match everything.
type Filter struct {
	From string
	To   string
	Type string
}

func (f Filter) matches(date, kind string) bool {
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date > f.To {
		return false
	}
	return f.Type == "" || f.Type == kind
}

// FilterSales returns the entries of sales that match f, preserving order.
func FilterSales(sales []models.SaleEntry, f Filter) []models.SaleEntry {
	out := make([]models.SaleEntry, 0, len(sales))
	for _, s := range sales {
		if f.matches(s.Date, string(s.Type)) {
			out = append(out, s)
		}
	}
	return out
}

// FilterExpenses returns the entries of expenses that match f, preserving order.
func FilterExpenses(expenses []models.ExpenseEntry, f Filter) []models.ExpenseEntry {
	out := make([]models.ExpenseEntry, 0, len(expenses))
	for _, e := range expenses {
		if f.matches(e.Date, string(e.Type)) {
			out = append(out, e)
		}
	}
	return out
}
