package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StaffRole is the role-level identity attached to every diary entry.
type StaffRole string

const (
	RoleOwner   StaffRole = "owner"
	RoleManager StaffRole = "manager"
	RoleDriver  StaffRole = "driver"
	RoleStaff   StaffRole = "staff"
	RoleUnknown StaffRole = "unknown"
)

// SaleType discriminates the origin of incoming value.
type SaleType string

const (
	SaleTypePOS           SaleType = "pos_sale"
	SaleTypeDueCollection SaleType = "due_collection"
)

// ExpenseType discriminates the origin of outgoing value.
type ExpenseType string

const (
	ExpenseTypePurchase ExpenseType = "pob_purchase"
	ExpenseTypeSalary   ExpenseType = "salary"
	ExpenseTypeVehicle  ExpenseType = "vehicle_cost"
	ExpenseTypeManual   ExpenseType = "manual"
)

// PaymentStatus of a sale entry.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentDue     PaymentStatus = "due"
	PaymentPartial PaymentStatus = "partial"
)

// TransactionType classifies point-of-sale entries. Wholesale is inferred from
// the line item count of the originating transaction.
type TransactionType string

const (
	TransactionRetail    TransactionType = "retail"
	TransactionWholesale TransactionType = "wholesale"
)

// Source tags identify which adapter produced an entry.
type Source string

const (
	SourcePOS             Source = "pos_transactions"
	SourceCustomerPayment Source = "customer_payments"
	SourcePurchase        Source = "pob_transactions"
	SourceStaffPayment    Source = "staff_payments"
	SourceVehicleCost     Source = "vehicle_costs"
	SourceManualExpense   Source = "daily_expenses"
)

// ReturnCylinder is the empty cylinder a customer handed back with a refill.
type ReturnCylinder struct {
	Brand    string `json:"brand"`
	Quantity int    `json:"quantity"`
}

// SaleEntry is a normalized unit of incoming value.
type SaleEntry struct {
	ID                string          `json:"id"`
	SourceID          string          `json:"source_id"`
	Source            Source          `json:"source"`
	Type              SaleType        `json:"type"`
	TransactionNumber string          `json:"transaction_number"`
	Date              string          `json:"date"`
	Timestamp         time.Time       `json:"timestamp"`
	StaffID           string          `json:"staff_id,omitempty"`
	StaffRole         StaffRole       `json:"staff_role"`
	StaffName         string          `json:"staff_name"`
	ProductName       string          `json:"product_name"`
	ProductDetails    string          `json:"product_details"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	CustomerID        string          `json:"customer_id,omitempty"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	TransactionType   TransactionType `json:"transaction_type"`
	ReturnCylinder    *ReturnCylinder `json:"return_cylinder,omitempty"`
	IsOnlineOrder     bool            `json:"is_online_order"`
	CommunityOrderID  string          `json:"community_order_id,omitempty"`
}

// ExpenseEntry is a normalized unit of outgoing value.
type ExpenseEntry struct {
	ID             string          `json:"id"`
	SourceID       string          `json:"source_id"`
	Source         Source          `json:"source"`
	Type           ExpenseType     `json:"type"`
	Date           string          `json:"date"`
	Timestamp      time.Time       `json:"timestamp"`
	StaffID        string          `json:"staff_id,omitempty"`
	StaffRole      StaffRole       `json:"staff_role"`
	StaffName      string          `json:"staff_name"`
	Category       Category        `json:"category"`
	CategoryIcon   string          `json:"category_icon"`
	CategoryColor  string          `json:"category_color"`
	Description    string          `json:"description"`
	WhySpent       string          `json:"why_spent"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	SupplierName   string          `json:"supplier_name,omitempty"`
	VehicleName    string          `json:"vehicle_name,omitempty"`
	StaffPayeeName string          `json:"staff_payee_name,omitempty"`
}

// Ledger is the merged pair of diary streams, as cached and served.
type Ledger struct {
	Sales    []SaleEntry    `json:"sales"`
	Expenses []ExpenseEntry `json:"expenses"`
}
