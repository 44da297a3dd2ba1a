package models

import "strings"

// Category names an expense bucket. The set is closed; anything outside it is
// reported as CategoryOther.
type Category string

const (
	CategoryStockPurchase      Category = "Stock Purchase"
	CategorySalary             Category = "Salary"
	CategoryVehicleFuel        Category = "Vehicle Fuel"
	CategoryVehicleMaintenance Category = "Vehicle Maintenance"
	CategoryUtilities          Category = "Utilities"
	CategoryRent               Category = "Rent"
	CategoryTransport          Category = "Transport"
	CategoryFood               Category = "Food"
	CategoryOfficeSupplies     Category = "Office Supplies"
	CategoryMarketing          Category = "Marketing"
	CategoryMaintenance        Category = "Maintenance"
	CategoryOther              Category = "Other"
)

// CategoryStyle is the display metadata of a category.
type CategoryStyle struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Style returns the fixed icon and color for c.
func (c Category) Style() CategoryStyle {
	switch c {
	case CategoryStockPurchase:
		return CategoryStyle{Icon: "package", Color: "#3B82F6"}
	case CategorySalary:
		return CategoryStyle{Icon: "users", Color: "#10B981"}
	case CategoryVehicleFuel:
		return CategoryStyle{Icon: "fuel", Color: "#F59E0B"}
	case CategoryVehicleMaintenance:
		return CategoryStyle{Icon: "wrench", Color: "#EF4444"}
	case CategoryUtilities:
		return CategoryStyle{Icon: "zap", Color: "#EAB308"}
	case CategoryRent:
		return CategoryStyle{Icon: "home", Color: "#8B5CF6"}
	case CategoryTransport:
		return CategoryStyle{Icon: "truck", Color: "#06B6D4"}
	case CategoryFood:
		return CategoryStyle{Icon: "utensils", Color: "#F97316"}
	case CategoryOfficeSupplies:
		return CategoryStyle{Icon: "paperclip", Color: "#64748B"}
	case CategoryMarketing:
		return CategoryStyle{Icon: "megaphone", Color: "#EC4899"}
	case CategoryMaintenance:
		return CategoryStyle{Icon: "hammer", Color: "#DC2626"}
	default:
		return CategoryStyle{Icon: "receipt", Color: "#6B7280"}
	}
}

// Known reports whether c is part of the category table.
func (c Category) Known() bool {
	switch c {
	case CategoryStockPurchase, CategorySalary, CategoryVehicleFuel, CategoryVehicleMaintenance,
		CategoryUtilities, CategoryRent, CategoryTransport, CategoryFood,
		CategoryOfficeSupplies, CategoryMarketing, CategoryMaintenance, CategoryOther:
		return true
	default:
		return false
	}
}

// ParseCategory maps a free-text category onto the table, falling back to Other.
// Matching ignores case and surrounding whitespace.
func ParseCategory(raw string) Category {
	normalized := normalizeCategory(raw)
	for _, c := range []Category{
		CategoryStockPurchase, CategorySalary, CategoryVehicleFuel, CategoryVehicleMaintenance,
		CategoryUtilities, CategoryRent, CategoryTransport, CategoryFood,
		CategoryOfficeSupplies, CategoryMarketing, CategoryMaintenance,
	} {
		if normalizeCategory(string(c)) == normalized {
			return c
		}
	}
	return CategoryOther
}

func normalizeCategory(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
