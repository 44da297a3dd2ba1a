// Package analytics derives time-windowed aggregates from the merged diary
// streams. Everything here is a pure function of the streams and a reference
// time; callers memoize through Memo.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// TopN caps the product and category breakdowns.
const TopN = 5

var hundred = decimal.NewFromInt(100)

// Breakdown is the detailed aggregate of one window.
type Breakdown struct {
	Totals         models.WindowTotals
	TopProducts    []models.ProductStat
	TopCategories  []models.CategoryStat
	PaymentMethods []models.PaymentMethodStat
	DueCollected   decimal.Decimal
}

// Windows are the half-open ranges analytics reports on.
type Windows struct {
	TodayStart, TodayEnd         time.Time
	WeekStart, WeekEnd           time.Time
	MonthStart, MonthEnd         time.Time
	YearStart, YearEnd           time.Time
	LastMonthStart, LastMonthEnd time.Time
}

// WindowsAt computes the windows containing now, in now's location. Weeks
// start on Sunday.
func WindowsAt(now time.Time) Windows {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	week := today.AddDate(0, 0, -int(today.Weekday()))
	month := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	year := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)

	return Windows{
		TodayStart:     today,
		TodayEnd:       today.AddDate(0, 0, 1),
		WeekStart:      week,
		WeekEnd:        week.AddDate(0, 0, 7),
		MonthStart:     month,
		MonthEnd:       month.AddDate(0, 1, 0),
		YearStart:      year,
		YearEnd:        year.AddDate(1, 0, 0),
		LastMonthStart: month.AddDate(0, -1, 0),
		LastMonthEnd:   month,
	}
}

// Compute derives the analytics object for now in a single pass over each stream.
func Compute(sales []models.SaleEntry, expenses []models.ExpenseEntry, now time.Time) models.Analytics {
	w := WindowsAt(now)
	today := newAccumulator(w.TodayStart, w.TodayEnd, false)
	week := newAccumulator(w.WeekStart, w.WeekEnd, false)
	month := newAccumulator(w.MonthStart, w.MonthEnd, true)
	year := newAccumulator(w.YearStart, w.YearEnd, false)
	lastMonth := newAccumulator(w.LastMonthStart, w.LastMonthEnd, false)
	all := []*accumulator{today, week, month, year, lastMonth}

	for i := range sales {
		for _, acc := range all {
			acc.addSale(&sales[i])
		}
	}
	for i := range expenses {
		for _, acc := range all {
			acc.addExpense(&expenses[i])
		}
	}

	current := month.breakdown()
	previous := lastMonth.totals()

	return models.Analytics{
		Today:                today.totals(),
		Week:                 week.totals(),
		Month:                current.Totals,
		Year:                 year.totals(),
		LastMonth:            previous,
		IncomeGrowth:         Growth(current.Totals.Income, previous.Income),
		ExpenseGrowth:        Growth(current.Totals.Expenses, previous.Expenses),
		ProfitGrowth:         Growth(current.Totals.Profit, previous.Profit),
		ProfitMargin:         Margin(current.Totals.Profit, current.Totals.Income),
		TopProducts:          current.TopProducts,
		TopExpenseCategories: current.TopCategories,
		PaymentMethods:       current.PaymentMethods,
		DueCollected:         current.DueCollected,
		GeneratedAt:          now,
	}
}

// Summarize returns the detailed breakdown of [start, end).
func Summarize(sales []models.SaleEntry, expenses []models.ExpenseEntry, start, end time.Time) Breakdown {
	acc := newAccumulator(start, end, true)
	for i := range sales {
		acc.addSale(&sales[i])
	}
	for i := range expenses {
		acc.addExpense(&expenses[i])
	}
	return acc.breakdown()
}

// Growth is (current - previous) / previous * 100, or exactly 0 when previous is 0.
func Growth(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}

// Margin is profit / income * 100, or 0 when income is 0.
func Margin(profit, income decimal.Decimal) float64 {
	if income.IsZero() {
		return 0
	}
	return profit.Div(income).Mul(hundred).Round(2).InexactFloat64()
}

type accumulator struct {
	start, end time.Time
	detailed   bool

	income, expenses decimal.Decimal
	salesCount       int
	expenseCount     int

	products   map[string]*models.ProductStat
	categories map[models.Category]*models.CategoryStat
	methods    map[string]*models.PaymentMethodStat
	due        decimal.Decimal
}

func newAccumulator(start, end time.Time, detailed bool) *accumulator {
	acc := &accumulator{start: start, end: end, detailed: detailed}
	if detailed {
		acc.products = make(map[string]*models.ProductStat)
		acc.categories = make(map[models.Category]*models.CategoryStat)
		acc.methods = make(map[string]*models.PaymentMethodStat)
	}
	return acc
}

func (a *accumulator) contains(t time.Time) bool {
	return !t.Before(a.start) && t.Before(a.end)
}

func (a *accumulator) addSale(s *models.SaleEntry) {
	if !a.contains(s.Timestamp) {
		return
	}
	a.income = a.income.Add(s.TotalAmount)
	a.salesCount++
	if !a.detailed {
		return
	}

	p, ok := a.products[s.ProductName]
	if !ok {
		p = &models.ProductStat{ProductName: s.ProductName}
		a.products[s.ProductName] = p
	}
	p.Amount = p.Amount.Add(s.TotalAmount)
	p.Quantity += s.Quantity

	if s.PaymentStatus == models.PaymentPaid {
		m, ok := a.methods[s.PaymentMethod]
		if !ok {
			m = &models.PaymentMethodStat{PaymentMethod: s.PaymentMethod}
			a.methods[s.PaymentMethod] = m
		}
		m.Amount = m.Amount.Add(s.TotalAmount)
	}
	if s.Type == models.SaleTypeDueCollection {
		a.due = a.due.Add(s.TotalAmount)
	}
}

func (a *accumulator) addExpense(e *models.ExpenseEntry) {
	if !a.contains(e.Timestamp) {
		return
	}
	a.expenses = a.expenses.Add(e.Amount)
	a.expenseCount++
	if !a.detailed {
		return
	}

	c, ok := a.categories[e.Category]
	if !ok {
		c = &models.CategoryStat{Category: e.Category, Icon: e.CategoryIcon, Color: e.CategoryColor}
		a.categories[e.Category] = c
	}
	c.Amount = c.Amount.Add(e.Amount)
}

func (a *accumulator) totals() models.WindowTotals {
	return models.WindowTotals{
		Income:       a.income,
		Expenses:     a.expenses,
		Profit:       a.income.Sub(a.expenses),
		SalesCount:   a.salesCount,
		ExpenseCount: a.expenseCount,
	}
}

func (a *accumulator) breakdown() Breakdown {
	products := make([]models.ProductStat, 0, len(a.products))
	for _, p := range a.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		if c := products[i].Amount.Cmp(products[j].Amount); c != 0 {
			return c > 0
		}
		return products[i].ProductName < products[j].ProductName
	})

	categories := make([]models.CategoryStat, 0, len(a.categories))
	for _, c := range a.categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if c := categories[i].Amount.Cmp(categories[j].Amount); c != 0 {
			return c > 0
		}
		return categories[i].Category < categories[j].Category
	})

	methods := make([]models.PaymentMethodStat, 0, len(a.methods))
	for _, m := range a.methods {
		methods = append(methods, *m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if c := methods[i].Amount.Cmp(methods[j].Amount); c != 0 {
			return c > 0
		}
		return methods[i].PaymentMethod < methods[j].PaymentMethod
	})

	return Breakdown{
		Totals:         a.totals(),
		TopProducts:    head(products, TopN),
		TopCategories:  head(categories, TopN),
		PaymentMethods: methods,
		DueCollected:   a.due,
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
