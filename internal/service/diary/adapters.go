package diary

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

const (
	dateLayout       = "2006-01-02"
	walkInCustomer   = "Walk-in Customer"
	unknownCustomer  = "Unknown Customer"
	unknownSupplier  = "Unknown Supplier"
	defaultPayMethod = "cash"
)

// returnPattern captures a trailing "Return: <brand>" annotation, optionally
// wrapped in parentheses or brackets.
var returnPattern = regexp.MustCompile(`(?i)^(.*?)[\s(\[]*return:\s*([^)\]]+?)\s*[)\]]?\s*$`)

// saleAdapter and expenseAdapter fetch one family of source rows and
// normalize them. They are read-only and idempotent.
type saleAdapter struct {
	source models.Source
	fetch  func(ctx context.Context, q models.Query, roles RoleMap) ([]models.SaleEntry, error)
}

type expenseAdapter struct {
	source models.Source
	fetch  func(ctx context.Context, q models.Query, roles RoleMap) ([]models.ExpenseEntry, error)
}

type adapters struct {
	src Source
	loc *time.Location
}

func (a adapters) sales() []saleAdapter {
	return []saleAdapter{
		{source: models.SourcePOS, fetch: a.fetchPOS},
		{source: models.SourceCustomerPayment, fetch: a.fetchPayments},
	}
}

func (a adapters) expenses() []expenseAdapter {
	return []expenseAdapter{
		{source: models.SourcePurchase, fetch: a.fetchPurchases},
		{source: models.SourceStaffPayment, fetch: a.fetchStaffPayments},
		{source: models.SourceVehicleCost, fetch: a.fetchVehicleCosts},
		{source: models.SourceManualExpense, fetch: a.fetchManualExpenses},
	}
}

func (a adapters) fetchPOS(ctx context.Context, q models.Query, roles RoleMap) ([]models.SaleEntry, error) {
	txns, err := a.src.ListPOSTransactions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list pos transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(txns))
	var customerIDs []string
	for _, txn := range txns {
		ids = append(ids, txn.ID)
		if id := deref(txn.CustomerID); id != "" {
			customerIDs = append(customerIDs, id)
		}
	}

	items, err := a.src.ListPOSItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list pos items: %w", err)
	}
	customers, err := a.customers(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	return buildPOSEntries(txns, items, customers, roles, a.loc), nil
}

func (a adapters) fetchPayments(ctx context.Context, q models.Query, roles RoleMap) ([]models.SaleEntry, error) {
	payments, err := a.src.ListCustomerPayments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list customer payments: %w", err)
	}

	var customerIDs []string
	for _, p := range payments {
		if id := deref(p.CustomerID); id != "" {
			customerIDs = append(customerIDs, id)
		}
	}
	customers, err := a.customers(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	return buildPaymentEntries(payments, customers, roles, a.loc), nil
}

func (a adapters) fetchPurchases(ctx context.Context, q models.Query, roles RoleMap) ([]models.ExpenseEntry, error) {
	txns, err := a.src.ListPOBTransactions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list pob transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
	}
	items, err := a.src.ListPOBItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list pob items: %w", err)
	}

	return buildPurchaseEntries(txns, items, roles, a.loc), nil
}

func (a adapters) fetchStaffPayments(ctx context.Context, q models.Query, roles RoleMap) ([]models.ExpenseEntry, error) {
	rows, err := a.src.ListStaffPayments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list staff payments: %w", err)
	}
	return buildStaffEntries(rows, roles, a.loc), nil
}

func (a adapters) fetchVehicleCosts(ctx context.Context, q models.Query, roles RoleMap) ([]models.ExpenseEntry, error) {
	rows, err := a.src.ListVehicleCosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list vehicle costs: %w", err)
	}
	return buildVehicleEntries(rows, roles, a.loc), nil
}

func (a adapters) fetchManualExpenses(ctx context.Context, q models.Query, roles RoleMap) ([]models.ExpenseEntry, error) {
	rows, err := a.src.ListManualExpenses(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list manual expenses: %w", err)
	}
	return buildManualEntries(rows, roles, a.loc), nil
}

func (a adapters) customers(ctx context.Context, ids []string) (map[string]models.Customer, error) {
	out := make(map[string]models.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := a.src.ListCustomersByID(ctx, uniqueStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

func buildPOSEntries(txns []models.POSTransaction, items []models.POSItem, customers map[string]models.Customer, roles RoleMap, loc *time.Location) []models.SaleEntry {
	byTxn := make(map[string][]models.POSItem, len(txns))
	for _, item := range items {
		byTxn[item.TransactionID] = append(byTxn[item.TransactionID], item)
	}

	var entries []models.SaleEntry
	for _, txn := range txns {
		role := roles.Resolve(txn.CreatedBy)
		base := models.SaleEntry{
			SourceID:          txn.ID,
			Source:            models.SourcePOS,
			Type:              models.SaleTypePOS,
			TransactionNumber: txn.TransactionNumber,
			Timestamp:         txn.CreatedAt,
			Date:              localDate(txn.CreatedAt, loc),
			StaffID:           deref(txn.CreatedBy),
			StaffRole:         role,
			StaffName:         StaffName(role),
			PaymentMethod:     paymentMethod(txn.PaymentMethod),
			PaymentStatus:     paymentStatus(txn.PaymentStatus),
			IsOnlineOrder:     txn.IsOnlineOrder,
			CommunityOrderID:  deref(txn.CommunityOrderID),
		}
		base.CustomerID, base.CustomerName, base.CustomerPhone = resolveCustomer(txn.CustomerID, customers, walkInCustomer)

		lines := byTxn[txn.ID]
		if len(lines) == 0 {
			total := decimal.NewFromFloat(txn.Total)
			if total.IsZero() {
				continue
			}
			entry := base
			entry.ID = "pos_" + txn.ID
			entry.ProductName = "POS Sale"
			entry.ProductDetails = fmt.Sprintf("Sale %s", txn.TransactionNumber)
			entry.Quantity = 1
			entry.UnitPrice = total
			entry.TotalAmount = total
			entry.TransactionType = models.TransactionRetail
			entries = append(entries, entry)
			continue
		}

		txType := models.TransactionRetail
		if len(lines) > 1 {
			txType = models.TransactionWholesale
		}

		for _, item := range lines {
			qty := item.Quantity
			if qty <= 0 {
				qty = 1
			}
			unit := decimal.NewFromFloat(item.UnitPrice)
			if unit.IsZero() && item.TotalPrice != 0 {
				unit = decimal.NewFromFloat(item.TotalPrice).DivRound(decimal.NewFromInt(int64(qty)), 2)
			}

			name, ret := splitReturn(item.ProductName, qty)
			entry := base
			entry.ID = "pos_" + item.ID
			entry.ProductName = name
			entry.ProductDetails = productDetails(item, name, qty, ret)
			entry.Quantity = qty
			entry.UnitPrice = unit
			entry.TotalAmount = unit.Mul(decimal.NewFromInt(int64(qty)))
			entry.TransactionType = txType
			entry.ReturnCylinder = ret
			entries = append(entries, entry)
		}
	}
	return entries
}

func buildPaymentEntries(payments []models.CustomerPayment, customers map[string]models.Customer, roles RoleMap, loc *time.Location) []models.SaleEntry {
	entries := make([]models.SaleEntry, 0, len(payments))
	for _, p := range payments {
		role := roles.Resolve(p.CreatedBy)
		ts := eventTime(p.CreatedAt, p.PaymentDate)
		amount := decimal.NewFromFloat(p.Amount)

		details := "Due payment collected"
		if p.CylindersCollected > 0 {
			details += fmt.Sprintf(", %d cylinders returned", p.CylindersCollected)
		}
		if note := strings.TrimSpace(p.Notes); note != "" {
			details += " (" + note + ")"
		}

		entry := models.SaleEntry{
			ID:                "pay_" + p.ID,
			SourceID:          p.ID,
			Source:            models.SourceCustomerPayment,
			Type:              models.SaleTypeDueCollection,
			TransactionNumber: "PAY-" + prefix(p.ID, 8),
			Timestamp:         ts,
			Date:              localDate(ts, loc),
			StaffID:           deref(p.CreatedBy),
			StaffRole:         role,
			StaffName:         StaffName(role),
			ProductName:       "Due Collection",
			ProductDetails:    details,
			Quantity:          1,
			UnitPrice:         amount,
			TotalAmount:       amount,
			PaymentMethod:     paymentMethod(p.PaymentMethod),
			PaymentStatus:     models.PaymentPaid,
			TransactionType:   models.TransactionRetail,
		}
		entry.CustomerID, entry.CustomerName, entry.CustomerPhone = resolveCustomer(p.CustomerID, customers, unknownCustomer)
		entries = append(entries, entry)
	}
	return entries
}

func buildPurchaseEntries(txns []models.POBTransaction, items []models.POBItem, roles RoleMap, loc *time.Location) []models.ExpenseEntry {
	byTxn := make(map[string][]models.POBItem, len(txns))
	for _, item := range items {
		byTxn[item.TransactionID] = append(byTxn[item.TransactionID], item)
	}

	entries := make([]models.ExpenseEntry, 0, len(txns))
	for _, txn := range txns {
		lines := byTxn[txn.ID]
		amount := decimal.NewFromFloat(txn.TotalAmount)
		parts := make([]string, 0, len(lines))
		for _, item := range lines {
			parts = append(parts, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
			if txn.TotalAmount == 0 {
				amount = amount.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}
		description := strings.Join(parts, ", ")
		if description == "" {
			description = "Stock purchase " + txn.TransactionNumber
		}
		supplier := strings.TrimSpace(txn.SupplierName)
		if supplier == "" {
			supplier = unknownSupplier
		}

		entry := newExpense(models.ExpenseTypePurchase, models.SourcePurchase, "pob_", txn.ID, txn.CreatedAt, txn.CreatedBy, roles, loc, models.CategoryStockPurchase)
		entry.Description = description
		entry.WhySpent = fmt.Sprintf("Stock purchase from %s", supplier)
		entry.Amount = amount
		entry.PaymentMethod = paymentMethod(txn.PaymentMethod)
		entry.SupplierName = supplier
		entries = append(entries, entry)
	}
	return entries
}

func buildStaffEntries(rows []models.StaffPayment, roles RoleMap, loc *time.Location) []models.ExpenseEntry {
	entries := make([]models.ExpenseEntry, 0, len(rows))
	for _, row := range rows {
		payee := strings.TrimSpace(row.StaffName)
		if payee == "" {
			payee = "Staff member"
		}
		description := strings.TrimSpace(row.Notes)
		if description == "" {
			description = "Salary payment"
		}

		entry := newExpense(models.ExpenseTypeSalary, models.SourceStaffPayment, "salary_", row.ID, eventTime(row.CreatedAt, row.PaymentDate), row.CreatedBy, roles, loc, models.CategorySalary)
		entry.Description = description
		entry.WhySpent = fmt.Sprintf("Salary payment to %s", payee)
		entry.Amount = decimal.NewFromFloat(row.Amount)
		entry.PaymentMethod = paymentMethod(row.PaymentMethod)
		entry.StaffPayeeName = payee
		entries = append(entries, entry)
	}
	return entries
}

func buildVehicleEntries(rows []models.VehicleCost, roles RoleMap, loc *time.Location) []models.ExpenseEntry {
	entries := make([]models.ExpenseEntry, 0, len(rows))
	for _, row := range rows {
		vehicle := strings.TrimSpace(row.VehicleName)
		if vehicle == "" {
			vehicle = "Vehicle"
		}
		category := vehicleCategory(row.CostType)

		why := fmt.Sprintf("Fuel for %s", vehicle)
		if category != models.CategoryVehicleFuel {
			why = fmt.Sprintf("Maintenance (%s) for %s", costTypeLabel(row.CostType), vehicle)
		}
		description := strings.TrimSpace(row.Description)
		if description == "" {
			description = string(category)
		}

		entry := newExpense(models.ExpenseTypeVehicle, models.SourceVehicleCost, "vehicle_", row.ID, eventTime(row.CreatedAt, row.CostDate), row.CreatedBy, roles, loc, category)
		entry.Description = description
		entry.WhySpent = why
		entry.Amount = decimal.NewFromFloat(row.Amount)
		entry.VehicleName = vehicle
		entries = append(entries, entry)
	}
	return entries
}

func buildManualEntries(rows []models.ManualExpense, roles RoleMap, loc *time.Location) []models.ExpenseEntry {
	entries := make([]models.ExpenseEntry, 0, len(rows))
	for _, row := range rows {
		category := models.ParseCategory(row.Category)
		label := strings.TrimSpace(row.Category)
		if label == "" {
			label = string(models.CategoryOther)
		}
		description := strings.TrimSpace(row.Description)
		if description == "" {
			description = "Manual expense"
		}

		entry := newExpense(models.ExpenseTypeManual, models.SourceManualExpense, "expense_", row.ID, eventTime(row.CreatedAt, row.ExpenseDate), row.CreatedBy, roles, loc, category)
		entry.Description = description
		entry.WhySpent = fmt.Sprintf("%s: %s", label, description)
		entry.Amount = decimal.NewFromFloat(row.Amount)
		entries = append(entries, entry)
	}
	return entries
}

func newExpense(kind models.ExpenseType, source models.Source, idPrefix, id string, ts time.Time, createdBy *string, roles RoleMap, loc *time.Location, category models.Category) models.ExpenseEntry {
	role := roles.Resolve(createdBy)
	style := category.Style()
	return models.ExpenseEntry{
		ID:            idPrefix + id,
		SourceID:      id,
		Source:        source,
		Type:          kind,
		Timestamp:     ts,
		Date:          localDate(ts, loc),
		StaffID:       deref(createdBy),
		StaffRole:     role,
		StaffName:     StaffName(role),
		Category:      category,
		CategoryIcon:  style.Icon,
		CategoryColor: style.Color,
	}
}

// vehicleCategory maps the cost_type discriminator: fuel is fuel, everything
// else is maintenance.
func vehicleCategory(costType string) models.Category {
	if strings.EqualFold(strings.TrimSpace(costType), "fuel") {
		return models.CategoryVehicleFuel
	}
	return models.CategoryVehicleMaintenance
}

func costTypeLabel(costType string) string {
	if t := strings.TrimSpace(costType); t != "" {
		return strings.ReplaceAll(t, "_", " ")
	}
	return "general"
}

// splitReturn parses a "Return: <brand>" annotation. Only refill items can
// carry a return; any other name is kept verbatim.
func splitReturn(name string, qty int) (string, *models.ReturnCylinder) {
	if !strings.Contains(strings.ToLower(name), "refill") {
		return name, nil
	}
	m := returnPattern.FindStringSubmatch(name)
	if m == nil {
		return name, nil
	}
	brand := strings.TrimSpace(m[2])
	if brand == "" {
		return name, nil
	}
	clean := strings.TrimRight(strings.TrimSpace(m[1]), " -–,:(")
	if clean == "" {
		clean = name
	}
	return clean, &models.ReturnCylinder{Brand: brand, Quantity: qty}
}

func productDetails(item models.POSItem, name string, qty int, ret *models.ReturnCylinder) string {
	details := fmt.Sprintf("%d x %s", qty, name)
	if t := strings.TrimSpace(item.ProductType); t != "" {
		details += " [" + t + "]"
	}
	if ret != nil {
		details += fmt.Sprintf(", returned %d %s empty", ret.Quantity, ret.Brand)
	}
	return details
}

func resolveCustomer(id *string, customers map[string]models.Customer, fallback string) (string, string, string) {
	customerID := deref(id)
	if customerID == "" {
		return "", fallback, ""
	}
	c, ok := customers[customerID]
	if !ok || strings.TrimSpace(c.Name) == "" {
		return customerID, unknownCustomer, ""
	}
	return customerID, c.Name, c.Phone
}

func paymentStatus(raw string) models.PaymentStatus {
	switch models.PaymentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.PaymentDue:
		return models.PaymentDue
	case models.PaymentPartial:
		return models.PaymentPartial
	default:
		return models.PaymentPaid
	}
}

func paymentMethod(raw string) string {
	if m := strings.ToLower(strings.TrimSpace(raw)); m != "" {
		return m
	}
	return defaultPayMethod
}

// eventTime prefers the precise creation time and falls back to the business date.
func eventTime(createdAt, businessDate time.Time) time.Time {
	if !createdAt.IsZero() {
		return createdAt
	}
	return businessDate
}

func localDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
