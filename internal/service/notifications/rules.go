package notifications

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

const (
	lpgCriticalBelow       = 10
	lpgLowBelow            = 30
	accessoryLowBelow      = 5
	orderWaitingAfter      = 2 * time.Hour
	highDueAbove           = 10000
	cylinderDueAtLeast     = 3
	totalDueSummaryAbove   = 50000
	greatSalesDayAbove     = 50000
	orderStatusPending     = "pending"
	exchangeStatusPending  = "pending"
	moduleInventory        = "inventory"
	moduleCommunityOrders  = "community_orders"
	moduleCustomers        = "customers"
	moduleCylinderExchange = "cylinder_exchange"
)

var (
	stockRoles    = []models.StaffRole{models.RoleOwner, models.RoleManager}
	orderRoles    = []models.StaffRole{models.RoleOwner, models.RoleManager, models.RoleDriver}
	dueRoles      = []models.StaffRole{models.RoleOwner, models.RoleManager}
	ownerOnly     = []models.StaffRole{models.RoleOwner}
	milestoneRole = []models.StaffRole{models.RoleOwner, models.RoleManager}
)

// LPGStockRules emits at most one stock tier per brand, plus the empty
// cylinder imbalance warning when empties exceed 1.5x the full stock.
func LPGStockRules(brands []models.LPGBrand, now time.Time) []models.Notification {
	var out []models.Notification
	for _, b := range brands {
		label := brandLabel(b)
		full := b.FullCylinders()
		action := &models.Action{Module: moduleInventory, Params: map[string]string{"tab": "lpg", "brandId": b.ID}}

		switch {
		case full <= 0:
			out = append(out, models.Notification{
				ID:        OutOfStockLPGID(b.ID),
				Type:      models.NotificationStock,
				Priority:  models.PriorityCritical,
				Title:     "Out of stock",
				Message:   fmt.Sprintf("%s has no full cylinders left.", label),
				CreatedAt: now,
				Action:    action,
				Roles:     stockRoles,
			})
		case full < lpgCriticalBelow:
			out = append(out, models.Notification{
				ID:        CriticalStockLPGID(b.ID),
				Type:      models.NotificationStock,
				Priority:  models.PriorityHigh,
				Title:     "Critical stock",
				Message:   fmt.Sprintf("%s is down to %d full cylinders.", label, full),
				CreatedAt: now,
				Action:    action,
				Roles:     stockRoles,
			})
		case full < lpgLowBelow:
			out = append(out, models.Notification{
				ID:        LowStockLPGID(b.ID),
				Type:      models.NotificationStock,
				Priority:  models.PriorityMedium,
				Title:     "Low stock",
				Message:   fmt.Sprintf("%s has %d full cylinders.", label, full),
				CreatedAt: now,
				Action:    action,
				Roles:     stockRoles,
			})
		}

		// empty > 1.5 * full, in integers
		if 2*b.EmptyCylinder > 3*full {
			out = append(out, models.Notification{
				ID:        EmptyImbalanceID(b.ID),
				Type:      models.NotificationStock,
				Priority:  models.PriorityMedium,
				Title:     "Empty cylinder imbalance",
				Message:   fmt.Sprintf("%s holds %d empty against %d full cylinders. Plan a refill run.", label, b.EmptyCylinder, full),
				CreatedAt: now,
				Action:    action,
				Roles:     stockRoles,
			})
		}
	}
	return out
}

// StoveStockRules applies the accessory thresholds to stoves.
func StoveStockRules(stoves []models.Stove, now time.Time) []models.Notification {
	var out []models.Notification
	for _, s := range stoves {
		label := strings.TrimSpace(s.Brand + " " + s.Model)
		action := &models.Action{Module: moduleInventory, Params: map[string]string{"tab": "stoves", "stoveId": s.ID}}
		if n, ok := accessoryRule(OutOfStockStoveID(s.ID), LowStockStoveID(s.ID), "Stove "+label, s.Quantity, action, now); ok {
			out = append(out, n)
		}
	}
	return out
}

// RegulatorStockRules applies the accessory thresholds to regulators.
func RegulatorStockRules(regulators []models.Regulator, now time.Time) []models.Notification {
	var out []models.Notification
	for _, r := range regulators {
		label := strings.TrimSpace(r.Brand + " " + r.Type)
		action := &models.Action{Module: moduleInventory, Params: map[string]string{"tab": "regulators", "regulatorId": r.ID}}
		if n, ok := accessoryRule(OutOfStockRegulatorID(r.ID), LowStockRegulatorID(r.ID), "Regulator "+label, r.Quantity, action, now); ok {
			out = append(out, n)
		}
	}
	return out
}

func accessoryRule(outID, lowID, label string, qty int, action *models.Action, now time.Time) (models.Notification, bool) {
	switch {
	case qty <= 0:
		return models.Notification{
			ID:        outID,
			Type:      models.NotificationStock,
			Priority:  models.PriorityHigh,
			Title:     "Out of stock",
			Message:   fmt.Sprintf("%s is out of stock.", label),
			CreatedAt: now,
			Action:    action,
			Roles:     stockRoles,
		}, true
	case qty < accessoryLowBelow:
		return models.Notification{
			ID:        lowID,
			Type:      models.NotificationStock,
			Priority:  models.PriorityMedium,
			Title:     "Low stock",
			Message:   fmt.Sprintf("%s has only %d left.", label, qty),
			CreatedAt: now,
			Action:    action,
			Roles:     stockRoles,
		}, true
	default:
		return models.Notification{}, false
	}
}

// OrderRules emits exactly one notification per pending order: new_order
// while younger than two hours, order_waiting afterwards.
func OrderRules(orders []models.CommunityOrder, now time.Time) []models.Notification {
	var out []models.Notification
	for _, o := range orders {
		if !strings.EqualFold(o.Status, orderStatusPending) {
			continue
		}
		action := &models.Action{Module: moduleCommunityOrders, Params: map[string]string{"orderId": o.ID}}
		amount := money(o.TotalAmount)

		if now.Sub(o.CreatedAt) > orderWaitingAfter {
			out = append(out, models.Notification{
				ID:        OrderWaitingID(o.ID),
				Type:      models.NotificationOrder,
				Priority:  models.PriorityHigh,
				Title:     "Order waiting",
				Message:   fmt.Sprintf("Order %s from %s (BDT %s) has been pending for %s.", o.OrderNumber, o.CustomerName, amount, waited(now.Sub(o.CreatedAt))),
				CreatedAt: o.CreatedAt,
				Action:    action,
				Roles:     orderRoles,
			})
			continue
		}
		out = append(out, models.Notification{
			ID:        NewOrderID(o.ID),
			Type:      models.NotificationOrder,
			Priority:  models.PriorityMedium,
			Title:     "New order",
			Message:   fmt.Sprintf("Order %s from %s (BDT %s) is waiting for confirmation.", o.OrderNumber, o.CustomerName, amount),
			CreatedAt: o.CreatedAt,
			Action:    action,
			Roles:     orderRoles,
		})
	}
	return out
}

// DueRules derives per-customer due alerts and the owner-only summary. A
// customer above an explicit credit limit gets the critical alert instead of
// the flat high-due one.
func DueRules(customers []models.Customer, now time.Time) []models.Notification {
	var out []models.Notification
	total := decimal.Zero
	highDue := decimal.NewFromInt(highDueAbove)

	for _, c := range customers {
		due := decimal.NewFromFloat(c.TotalDue)
		total = total.Add(due)
		action := &models.Action{Module: moduleCustomers, Params: map[string]string{"customerId": c.ID}}

		limit := decimal.NewFromFloat(c.CreditLimit)
		switch {
		case limit.IsPositive() && due.GreaterThan(limit):
			out = append(out, models.Notification{
				ID:        CreditLimitID(c.ID),
				Type:      models.NotificationDue,
				Priority:  models.PriorityCritical,
				Title:     "Credit limit exceeded",
				Message:   fmt.Sprintf("%s owes BDT %s, above the BDT %s credit limit.", c.Name, money(c.TotalDue), money(c.CreditLimit)),
				CreatedAt: now,
				Action:    action,
				Roles:     dueRoles,
			})
		case due.GreaterThan(highDue):
			out = append(out, models.Notification{
				ID:        HighDueID(c.ID),
				Type:      models.NotificationDue,
				Priority:  models.PriorityHigh,
				Title:     "High due amount",
				Message:   fmt.Sprintf("%s owes BDT %s.", c.Name, money(c.TotalDue)),
				CreatedAt: now,
				Action:    action,
				Roles:     dueRoles,
			})
		}

		if c.CylindersDue >= cylinderDueAtLeast {
			out = append(out, models.Notification{
				ID:        CylinderDueID(c.ID),
				Type:      models.NotificationDue,
				Priority:  models.PriorityHigh,
				Title:     "Cylinders not returned",
				Message:   fmt.Sprintf("%s still holds %d empty cylinders.", c.Name, c.CylindersDue),
				CreatedAt: now,
				Action:    action,
				Roles:     dueRoles,
			})
		}
	}

	if total.GreaterThan(decimal.NewFromInt(totalDueSummaryAbove)) {
		out = append(out, models.Notification{
			ID:        TotalDueSummaryID,
			Type:      models.NotificationDue,
			Priority:  models.PriorityHigh,
			Title:     "Outstanding dues",
			Message:   fmt.Sprintf("Customers owe BDT %s in total.", total.StringFixed(0)),
			CreatedAt: now,
			Action:    &models.Action{Module: moduleCustomers, Params: map[string]string{"filter": "due"}},
			Roles:     ownerOnly,
		})
	}
	return out
}

// ExchangeRules emits one alert per pending cylinder exchange.
func ExchangeRules(exchanges []models.CylinderExchange, _ time.Time) []models.Notification {
	var out []models.Notification
	for _, x := range exchanges {
		if !strings.EqualFold(x.Status, exchangeStatusPending) {
			continue
		}
		out = append(out, models.Notification{
			ID:        PendingExchangeID(x.ID),
			Type:      models.NotificationExchange,
			Priority:  models.PriorityMedium,
			Title:     "Pending cylinder exchange",
			Message:   fmt.Sprintf("%s wants to swap %d %s for %s.", x.CustomerName, x.Quantity, x.FromBrand, x.ToBrand),
			CreatedAt: x.CreatedAt,
			Action:    &models.Action{Module: moduleCylinderExchange, Params: map[string]string{"exchangeId": x.ID}},
			Roles:     dueRoles,
		})
	}
	return out
}

// SalesMilestoneRule fires once per business day when the day's point-of-sale
// total exceeds the milestone. It carries no action.
func SalesMilestoneRule(total models.SalesTotal, day string, now time.Time) []models.Notification {
	if !decimal.NewFromFloat(total.Total).GreaterThan(decimal.NewFromInt(greatSalesDayAbove)) {
		return nil
	}
	return []models.Notification{{
		ID:        GreatSalesDayID(day),
		Type:      models.NotificationMilestone,
		Priority:  models.PriorityLow,
		Title:     "Great sales day",
		Message:   fmt.Sprintf("Sales reached BDT %s across %d transactions today.", money(total.Total), total.Count),
		CreatedAt: now,
		Roles:     milestoneRole,
	}}
}

// Sort orders by priority, then newest first, then id.
func Sort(list []models.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func brandLabel(b models.LPGBrand) string {
	if b.Size == "" {
		return b.Name
	}
	return b.Name + " " + b.Size
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(0)
}

func waited(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
