package models

import "time"

// DailyReport is the end-of-day diary snapshot archived to MongoDB and Sheets.
type DailyReport struct {
	Date         string    `bson:"date" json:"date"`
	Income       float64   `bson:"income" json:"income"`
	Expenses     float64   `bson:"expenses" json:"expenses"`
	Profit       float64   `bson:"profit" json:"profit"`
	SalesCount   int       `bson:"sales_count" json:"sales_count"`
	ExpenseCount int       `bson:"expense_count" json:"expense_count"`
	DueCollected float64   `bson:"due_collected" json:"due_collected"`
	TopProduct   string    `bson:"top_product" json:"top_product"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
