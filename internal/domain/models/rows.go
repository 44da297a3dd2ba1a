package models

import "time"

// Source-of-truth rows. They are owned by the CRUD modules; the diary only
// reads them. Money is stored as BSON doubles.

// POSTransaction is a point-of-sale header row.
type POSTransaction struct {
	ID                string    `bson:"_id"`
	TransactionNumber string    `bson:"transaction_number"`
	CustomerID        *string   `bson:"customer_id,omitempty"`
	Total             float64   `bson:"total"`
	PaymentMethod     string    `bson:"payment_method"`
	PaymentStatus     string    `bson:"payment_status"`
	IsOnlineOrder     bool      `bson:"is_online_order"`
	CommunityOrderID  *string   `bson:"community_order_id,omitempty"`
	CreatedBy         *string   `bson:"created_by,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
}

// POSItem is one line item of a point-of-sale transaction.
type POSItem struct {
	ID            string    `bson:"_id"`
	TransactionID string    `bson:"transaction_id"`
	ProductType   string    `bson:"product_type"`
	ProductName   string    `bson:"product_name"`
	Quantity      int       `bson:"quantity"`
	UnitPrice     float64   `bson:"unit_price"`
	TotalPrice    float64   `bson:"total_price"`
	CreatedAt     time.Time `bson:"created_at"`
}

// CustomerPayment is a due-collection payment.
type CustomerPayment struct {
	ID                 string    `bson:"_id"`
	CustomerID         *string   `bson:"customer_id,omitempty"`
	Amount             float64   `bson:"amount"`
	PaymentMethod      string    `bson:"payment_method"`
	CylindersCollected int       `bson:"cylinders_collected"`
	Notes              string    `bson:"notes"`
	CreatedBy          *string   `bson:"created_by,omitempty"`
	PaymentDate        time.Time `bson:"payment_date"`
	CreatedAt          time.Time `bson:"created_at"`
}

// Customer carries contact data and outstanding balances.
type Customer struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Phone        string    `bson:"phone"`
	TotalDue     float64   `bson:"total_due"`
	CylindersDue int       `bson:"cylinders_due"`
	CreditLimit  float64   `bson:"credit_limit"`
	CreatedAt    time.Time `bson:"created_at"`
}

// POBTransaction is a purchase-order-bought stock buy.
type POBTransaction struct {
	ID                string    `bson:"_id"`
	TransactionNumber string    `bson:"transaction_number"`
	SupplierName      string    `bson:"supplier_name"`
	TotalAmount       float64   `bson:"total_amount"`
	PaymentMethod     string    `bson:"payment_method"`
	CreatedBy         *string   `bson:"created_by,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
}

// POBItem is one line of a purchase.
type POBItem struct {
	ID            string  `bson:"_id"`
	TransactionID string  `bson:"transaction_id"`
	ProductType   string  `bson:"product_type"`
	ProductName   string  `bson:"product_name"`
	Quantity      int     `bson:"quantity"`
	UnitPrice     float64 `bson:"unit_price"`
}

// StaffPayment is a salary payout.
type StaffPayment struct {
	ID            string    `bson:"_id"`
	StaffID       string    `bson:"staff_id"`
	StaffName     string    `bson:"staff_name"`
	Amount        float64   `bson:"amount"`
	PaymentMethod string    `bson:"payment_method"`
	Notes         string    `bson:"notes"`
	PaymentDate   time.Time `bson:"payment_date"`
	CreatedBy     *string   `bson:"created_by,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

// VehicleCost is a fuel or maintenance cost for a delivery vehicle.
type VehicleCost struct {
	ID          string    `bson:"_id"`
	VehicleID   string    `bson:"vehicle_id"`
	VehicleName string    `bson:"vehicle_name"`
	CostType    string    `bson:"cost_type"`
	Amount      float64   `bson:"amount"`
	Description string    `bson:"description"`
	CostDate    time.Time `bson:"cost_date"`
	CreatedBy   *string   `bson:"created_by,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

// ManualExpense is a free-form expense recorded by staff.
type ManualExpense struct {
	ID          string    `bson:"_id"`
	Category    string    `bson:"category"`
	Amount      float64   `bson:"amount"`
	Description string    `bson:"description"`
	ExpenseDate time.Time `bson:"expense_date"`
	CreatedBy   *string   `bson:"created_by,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

// UserRole assigns a role to an authenticated user.
type UserRole struct {
	UserID string `bson:"user_id"`
	Role   string `bson:"role"`
}

// Query bounds a source read: rows created at or after Since, newest first,
// at most Limit rows (0 means unbounded).
type Query struct {
	Since time.Time
	Limit int64
}
