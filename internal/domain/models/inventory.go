package models

import "time"

// LPGBrand holds cylinder stock for one brand and size.
type LPGBrand struct {
	ID              string `bson:"_id"`
	Name            string `bson:"name"`
	Size            string `bson:"size"`
	RefillCylinder  int    `bson:"refill_cylinder"`
	PackageCylinder int    `bson:"package_cylinder"`
	EmptyCylinder   int    `bson:"empty_cylinder"`
}

// FullCylinders is the sellable stock: refills plus new packages.
func (b LPGBrand) FullCylinders() int {
	return b.RefillCylinder + b.PackageCylinder
}

// Stove is a stove stock line.
type Stove struct {
	ID       string `bson:"_id"`
	Brand    string `bson:"brand"`
	Model    string `bson:"model"`
	Quantity int    `bson:"quantity"`
}

// Regulator is a regulator stock line.
type Regulator struct {
	ID       string `bson:"_id"`
	Brand    string `bson:"brand"`
	Type     string `bson:"type"`
	Quantity int    `bson:"quantity"`
}

// CommunityOrder is a marketplace order awaiting fulfilment.
type CommunityOrder struct {
	ID           string    `bson:"_id"`
	OrderNumber  string    `bson:"order_number"`
	CustomerName string    `bson:"customer_name"`
	TotalAmount  float64   `bson:"total_amount"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
}

// CylinderExchange is a brand swap request.
type CylinderExchange struct {
	ID           string    `bson:"_id"`
	CustomerName string    `bson:"customer_name"`
	FromBrand    string    `bson:"from_brand"`
	ToBrand      string    `bson:"to_brand"`
	Quantity     int       `bson:"quantity"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
}

// SalesTotal is the aggregate of point-of-sale totals over a range.
type SalesTotal struct {
	Total float64 `bson:"total"`
	Count int     `bson:"count"`
}
