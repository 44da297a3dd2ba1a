package analytics

import (
	"sync"
	"time"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

type memoKey struct {
	salesVersion    uint64
	expensesVersion uint64
	day             string
}

// Memo caches the last Compute result. A result is reused while neither
// stream version changed and now falls on the same calendar day.
type Memo struct {
	mu    sync.Mutex
	key   memoKey
	value models.Analytics
	ok    bool
}

// Get returns the analytics for the given stream versions, recomputing only
// when the key changed.
func (m *Memo) Get(salesVersion, expensesVersion uint64, sales []models.SaleEntry, expenses []models.ExpenseEntry, now time.Time) models.Analytics {
	key := memoKey{
		salesVersion:    salesVersion,
		expensesVersion: expensesVersion,
		day:             now.Format("2006-01-02 MST"),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ok && m.key == key {
		return m.value
	}
	m.value = Compute(sales, expenses, now)
	m.key = key
	m.ok = true
	return m.value
}
