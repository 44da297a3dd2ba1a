package diary

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

func TestPOSTransactionWithThreeItemsIsWholesale(t *testing.T) {
	src := seededSource()
	roles := NewRoleMap(src.roles)

	entries := buildPOSEntries(src.posTxns[:1], src.posItems[:3], nil, roles, time.UTC)
	require.Len(t, entries, 3)

	sum := decimal.Zero
	for _, e := range entries {
		assert.Equal(t, models.TransactionWholesale, e.TransactionType)
		assert.Equal(t, "t1", e.SourceID)
		assert.Equal(t, walkInCustomer, e.CustomerName)
		assert.True(t, e.TotalAmount.Equal(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))))
		sum = sum.Add(e.TotalAmount)
	}
	assert.True(t, decimal.NewFromInt(350).Equal(sum), "sum was %s", sum)
	assert.Equal(t, "pos_i1", entries[0].ID)
}

func TestWholesaleIffMoreThanOneLineItem(t *testing.T) {
	txns := []models.POSTransaction{
		{ID: "one", CreatedAt: baseTime},
		{ID: "two", CreatedAt: baseTime},
	}
	items := []models.POSItem{
		{ID: "a", TransactionID: "one", ProductName: "Stove", Quantity: 1, UnitPrice: 3000},
		{ID: "b", TransactionID: "two", ProductName: "Stove", Quantity: 1, UnitPrice: 3000},
		{ID: "c", TransactionID: "two", ProductName: "Hose", Quantity: 1, UnitPrice: 150},
	}

	entries := buildPOSEntries(txns, items, nil, RoleMap{}, time.UTC)
	require.Len(t, entries, 3)

	counts := map[string]int{"one": 1, "two": 2}
	for _, e := range entries {
		want := models.TransactionRetail
		if counts[e.SourceID] > 1 {
			want = models.TransactionWholesale
		}
		assert.Equal(t, want, e.TransactionType, e.ID)
	}
}

func TestPOSTransactionWithoutItems(t *testing.T) {
	txns := []models.POSTransaction{
		{ID: "t9", TransactionNumber: "POS-009", Total: 750, CreatedAt: baseTime},
		{ID: "t10", TransactionNumber: "POS-010", Total: 0, CreatedAt: baseTime},
	}

	entries := buildPOSEntries(txns, nil, nil, RoleMap{}, time.UTC)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "pos_t9", e.ID)
	assert.Equal(t, "POS Sale", e.ProductName)
	assert.Equal(t, 1, e.Quantity)
	assert.True(t, decimal.NewFromInt(750).Equal(e.TotalAmount))
	assert.Equal(t, models.TransactionRetail, e.TransactionType)
	assert.Equal(t, models.PaymentPaid, e.PaymentStatus)
}

func TestPOSUnitPriceFallsBackToLineTotal(t *testing.T) {
	txns := []models.POSTransaction{{ID: "t1", CreatedAt: baseTime}}
	items := []models.POSItem{{ID: "i1", TransactionID: "t1", ProductName: "Regulator", Quantity: 3, TotalPrice: 900}}

	entries := buildPOSEntries(txns, items, nil, RoleMap{}, time.UTC)
	require.Len(t, entries, 1)
	assert.True(t, decimal.NewFromInt(300).Equal(entries[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(900).Equal(entries[0].TotalAmount))
}

func TestPOSCustomerResolution(t *testing.T) {
	txns := []models.POSTransaction{
		{ID: "known", CustomerID: strPtr("c1"), CreatedAt: baseTime, Total: 10},
		{ID: "missing", CustomerID: strPtr("ghost"), CreatedAt: baseTime, Total: 10},
		{ID: "walkin", CreatedAt: baseTime, Total: 10},
	}
	customers := map[string]models.Customer{"c1": {ID: "c1", Name: "Rahim Stores", Phone: "017"}}

	entries := buildPOSEntries(txns, nil, customers, RoleMap{}, time.UTC)
	require.Len(t, entries, 3)
	assert.Equal(t, "Rahim Stores", entries[0].CustomerName)
	assert.Equal(t, "017", entries[0].CustomerPhone)
	assert.Equal(t, unknownCustomer, entries[1].CustomerName)
	assert.Equal(t, "ghost", entries[1].CustomerID)
	assert.Equal(t, walkInCustomer, entries[2].CustomerName)
}

func TestDuePaymentEntry(t *testing.T) {
	src := seededSource()
	customers := map[string]models.Customer{"c1": src.customers[0]}

	entries := buildPaymentEntries(src.payments, customers, NewRoleMap(src.roles), time.UTC)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "pay_p1234567890", e.ID)
	assert.Equal(t, "PAY-p1234567", e.TransactionNumber)
	assert.Equal(t, models.PaymentPaid, e.PaymentStatus)
	assert.Equal(t, 1, e.Quantity)
	assert.True(t, decimal.NewFromInt(500).Equal(e.TotalAmount))
	assert.Equal(t, "Due Collection", e.ProductName)
	assert.Contains(t, e.ProductDetails, "2")
	assert.Equal(t, "Due payment collected, 2 cylinders returned", e.ProductDetails)
	assert.Equal(t, models.RoleDriver, e.StaffRole)
	assert.Equal(t, "Driver", e.StaffName)
	assert.Equal(t, models.SaleTypeDueCollection, e.Type)
}

func TestPaymentWithoutCustomerIsUnknown(t *testing.T) {
	entries := buildPaymentEntries([]models.CustomerPayment{{ID: "p", Amount: 10, PaymentDate: baseTime}}, nil, RoleMap{}, time.UTC)
	require.Len(t, entries, 1)
	assert.Equal(t, unknownCustomer, entries[0].CustomerName)
	assert.Equal(t, "Due payment collected", entries[0].ProductDetails)
	assert.Equal(t, baseTime, entries[0].Timestamp)
}

func TestSplitReturn(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		wantName  string
		wantBrand string
	}{
		{"parenthesised", "12kg Refill - Bashundhara (Return: Omera)", "12kg Refill - Bashundhara", "Omera"},
		{"bracketed", "Refill 35kg [return: Jamuna]", "Refill 35kg", "Jamuna"},
		{"dash separated", "REFILL 12kg - Return: Total Gas", "REFILL 12kg", "Total Gas"},
		{"refill without return", "12kg Refill - Omera", "12kg Refill - Omera", ""},
		{"non refill never returns", "12kg Package (Return: Omera)", "12kg Package (Return: Omera)", ""},
		{"empty brand", "12kg Refill (Return: )", "12kg Refill (Return: )", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			name, ret := splitReturn(tc.in, 3)
			assert.Equal(t, tc.wantName, name)
			if tc.wantBrand == "" {
				assert.Nil(t, ret)
				return
			}
			require.NotNil(t, ret)
			assert.Equal(t, tc.wantBrand, ret.Brand)
			assert.Equal(t, 3, ret.Quantity)
		})
	}
}

func TestRoleResolution(t *testing.T) {
	roles := NewRoleMap([]models.UserRole{
		{UserID: "o", Role: "Owner"},
		{UserID: "m", Role: "manager"},
		{UserID: "d", Role: "driver"},
		{UserID: "x", Role: "cashier"},
		{UserID: "blank", Role: " "},
	})

	cases := map[string]struct {
		id   *string
		want models.StaffRole
	}{
		"owner":       {strPtr("o"), models.RoleOwner},
		"manager":     {strPtr("m"), models.RoleManager},
		"driver":      {strPtr("d"), models.RoleDriver},
		"other role":  {strPtr("x"), models.RoleStaff},
		"blank role":  {strPtr("blank"), models.RoleUnknown},
		"absent user": {strPtr("nobody"), models.RoleUnknown},
		"nil user":    {nil, models.RoleUnknown},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, roles.Resolve(tc.id))
		})
	}
	assert.Equal(t, "Staff", StaffName(models.RoleStaff))
	assert.Equal(t, "Unknown", StaffName(""))
}

func TestExpenseAdapters(t *testing.T) {
	src := seededSource()
	roles := NewRoleMap(src.roles)

	purchases := buildPurchaseEntries(src.pobTxns, src.pobItems, roles, time.UTC)
	require.Len(t, purchases, 1)
	assert.Equal(t, "pob_b1", purchases[0].ID)
	assert.Equal(t, models.CategoryStockPurchase, purchases[0].Category)
	assert.Equal(t, "12kg Refill x10", purchases[0].Description)
	assert.Equal(t, "Stock purchase from Omera Depot", purchases[0].WhySpent)
	assert.Equal(t, "Omera Depot", purchases[0].SupplierName)
	assert.Equal(t, "package", purchases[0].CategoryIcon)

	salaries := buildStaffEntries(src.staffPayments, roles, time.UTC)
	require.Len(t, salaries, 1)
	assert.Equal(t, "salary_s1", salaries[0].ID)
	assert.Equal(t, "Salary payment to Karim", salaries[0].WhySpent)
	assert.Equal(t, "Karim", salaries[0].StaffPayeeName)
	assert.Equal(t, models.RoleOwner, salaries[0].StaffRole)

	vehicles := buildVehicleEntries(src.vehicleCosts, roles, time.UTC)
	require.Len(t, vehicles, 2)
	assert.Equal(t, models.CategoryVehicleFuel, vehicles[0].Category)
	assert.Equal(t, "Fuel for Van 1", vehicles[0].WhySpent)
	assert.Equal(t, models.CategoryVehicleMaintenance, vehicles[1].Category)
	assert.Equal(t, "Maintenance (tyre change) for Van 1", vehicles[1].WhySpent)
	assert.Equal(t, models.RoleUnknown, vehicles[1].StaffRole)

	manual := buildManualEntries(src.manualExpenses, roles, time.UTC)
	require.Len(t, manual, 2)
	assert.Equal(t, models.CategoryUtilities, manual[0].Category)
	assert.Equal(t, "utilities: Electricity bill", manual[0].WhySpent)
	assert.Equal(t, models.CategoryOther, manual[1].Category)
	assert.Equal(t, "receipt", manual[1].CategoryIcon)
	assert.Equal(t, "#6B7280", manual[1].CategoryColor)
}

func TestPurchaseAmountFallsBackToItems(t *testing.T) {
	txns := []models.POBTransaction{{ID: "b", CreatedAt: baseTime}}
	items := []models.POBItem{
		{TransactionID: "b", ProductName: "Stove", Quantity: 2, UnitPrice: 2500},
		{TransactionID: "b", ProductName: "Hose", Quantity: 5, UnitPrice: 100},
	}

	entries := buildPurchaseEntries(txns, items, RoleMap{}, time.UTC)
	require.Len(t, entries, 1)
	assert.True(t, decimal.NewFromInt(5500).Equal(entries[0].Amount))
	assert.Equal(t, "Stove x2, Hose x5", entries[0].Description)
	assert.Equal(t, "Stock purchase from Unknown Supplier", entries[0].WhySpent)
}

func TestBusinessDateUsesLocation(t *testing.T) {
	dhaka := time.FixedZone("Asia/Dhaka", 6*60*60)
	ts := time.Date(2026, 5, 20, 20, 0, 0, 0, time.UTC)

	entries := buildManualEntries([]models.ManualExpense{{ID: "m", CreatedAt: ts}}, RoleMap{}, dhaka)
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-05-21", entries[0].Date)
}

func TestFetchPOSSkipsItemQueryWhenNoTransactions(t *testing.T) {
	src := &fakeSource{}
	a := adapters{src: src, loc: time.UTC}

	entries, err := a.fetchPOS(context.Background(), models.Query{}, RoleMap{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 1, src.callCount())
}
