package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WindowTotals aggregates one time window.
type WindowTotals struct {
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Profit       decimal.Decimal `json:"profit"`
	SalesCount   int             `json:"sales_count"`
	ExpenseCount int             `json:"expense_count"`
}

// ProductStat is a product's share of the month's sales.
type ProductStat struct {
	ProductName string          `json:"product_name"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int             `json:"quantity"`
}

// CategoryStat is a category's share of the month's expenses.
type CategoryStat struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"`
}

// PaymentMethodStat is the paid income collected through one method this month.
type PaymentMethodStat struct {
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

// Analytics is derived from the merged diary streams and a reference time.
type Analytics struct {
	Today     WindowTotals `json:"today"`
	Week      WindowTotals `json:"week"`
	Month     WindowTotals `json:"month"`
	Year      WindowTotals `json:"year"`
	LastMonth WindowTotals `json:"last_month"`

	IncomeGrowth  float64 `json:"income_growth"`
	ExpenseGrowth float64 `json:"expense_growth"`
	ProfitGrowth  float64 `json:"profit_growth"`
	ProfitMargin  float64 `json:"profit_margin"`

	TopProducts          []ProductStat       `json:"top_products"`
	TopExpenseCategories []CategoryStat      `json:"top_expense_categories"`
	PaymentMethods       []PaymentMethodStat `json:"payment_methods"`
	DueCollected         decimal.Decimal     `json:"due_collected"`

	GeneratedAt time.Time `json:"generated_at"`
}
