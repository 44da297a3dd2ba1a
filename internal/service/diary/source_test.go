package diary

import (
	"context"
	"sync"
	"time"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// fakeSource serves canned rows and counts every query.
type fakeSource struct {
	mu    sync.Mutex
	calls int
	errs  map[string]error

	roles          []models.UserRole
	customers      []models.Customer
	posTxns        []models.POSTransaction
	posItems       []models.POSItem
	payments       []models.CustomerPayment
	pobTxns        []models.POBTransaction
	pobItems       []models.POBItem
	staffPayments  []models.StaffPayment
	vehicleCosts   []models.VehicleCost
	manualExpenses []models.ManualExpense
}

func (f *fakeSource) hit(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.errs[method]
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = make(map[string]error)
	}
	f.errs[method] = err
}

func (f *fakeSource) ListUserRoles(context.Context) ([]models.UserRole, error) {
	if err := f.hit("roles"); err != nil {
		return nil, err
	}
	return f.roles, nil
}

func (f *fakeSource) ListCustomersByID(_ context.Context, ids []string) ([]models.Customer, error) {
	if err := f.hit("customers"); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Customer
	for _, c := range f.customers {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) ListPOSTransactions(context.Context, models.Query) ([]models.POSTransaction, error) {
	if err := f.hit("pos"); err != nil {
		return nil, err
	}
	return f.posTxns, nil
}

func (f *fakeSource) ListPOSItems(context.Context, []string) ([]models.POSItem, error) {
	if err := f.hit("pos_items"); err != nil {
		return nil, err
	}
	return f.posItems, nil
}

func (f *fakeSource) ListCustomerPayments(context.Context, models.Query) ([]models.CustomerPayment, error) {
	if err := f.hit("payments"); err != nil {
		return nil, err
	}
	return f.payments, nil
}

func (f *fakeSource) ListPOBTransactions(context.Context, models.Query) ([]models.POBTransaction, error) {
	if err := f.hit("pob"); err != nil {
		return nil, err
	}
	return f.pobTxns, nil
}

func (f *fakeSource) ListPOBItems(context.Context, []string) ([]models.POBItem, error) {
	if err := f.hit("pob_items"); err != nil {
		return nil, err
	}
	return f.pobItems, nil
}

func (f *fakeSource) ListStaffPayments(context.Context, models.Query) ([]models.StaffPayment, error) {
	if err := f.hit("staff"); err != nil {
		return nil, err
	}
	return f.staffPayments, nil
}

func (f *fakeSource) ListVehicleCosts(context.Context, models.Query) ([]models.VehicleCost, error) {
	if err := f.hit("vehicle"); err != nil {
		return nil, err
	}
	return f.vehicleCosts, nil
}

func (f *fakeSource) ListManualExpenses(context.Context, models.Query) ([]models.ManualExpense, error) {
	if err := f.hit("manual"); err != nil {
		return nil, err
	}
	return f.manualExpenses, nil
}

func strPtr(s string) *string { return &s }

var baseTime = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

// seededSource returns a source with one row family per adapter.
func seededSource() *fakeSource {
	return &fakeSource{
		roles: []models.UserRole{
			{UserID: "u-owner", Role: "owner"},
			{UserID: "u-driver", Role: "driver"},
			{UserID: "u-cashier", Role: "cashier"},
		},
		customers: []models.Customer{
			{ID: "c1", Name: "Rahim Stores", Phone: "01711000000"},
		},
		posTxns: []models.POSTransaction{
			{ID: "t1", TransactionNumber: "POS-001", Total: 350, PaymentMethod: "cash", PaymentStatus: "paid", CreatedBy: strPtr("u-owner"), CreatedAt: baseTime.Add(-1 * time.Hour)},
			{ID: "t2", TransactionNumber: "POS-002", CustomerID: strPtr("c1"), Total: 1200, PaymentMethod: "bkash", PaymentStatus: "due", CreatedBy: strPtr("u-cashier"), CreatedAt: baseTime.Add(-3 * time.Hour)},
		},
		posItems: []models.POSItem{
			{ID: "i1", TransactionID: "t1", ProductName: "Burner", ProductType: "accessory", Quantity: 1, UnitPrice: 100},
			{ID: "i2", TransactionID: "t1", ProductName: "Regulator", ProductType: "regulator", Quantity: 2, UnitPrice: 100},
			{ID: "i3", TransactionID: "t1", ProductName: "Hose", ProductType: "accessory", Quantity: 1, UnitPrice: 50},
			{ID: "i4", TransactionID: "t2", ProductName: "12kg Refill - Bashundhara (Return: Omera)", ProductType: "lpg", Quantity: 1, UnitPrice: 1200},
		},
		payments: []models.CustomerPayment{
			{ID: "p1234567890", CustomerID: strPtr("c1"), Amount: 500, PaymentMethod: "cash", CylindersCollected: 2, CreatedBy: strPtr("u-driver"), CreatedAt: baseTime.Add(-2 * time.Hour)},
		},
		pobTxns: []models.POBTransaction{
			{ID: "b1", TransactionNumber: "POB-1", SupplierName: "Omera Depot", TotalAmount: 9000, PaymentMethod: "bank", CreatedBy: strPtr("u-owner"), CreatedAt: baseTime.Add(-30 * time.Minute)},
		},
		pobItems: []models.POBItem{
			{ID: "bi1", TransactionID: "b1", ProductName: "12kg Refill", Quantity: 10, UnitPrice: 900},
		},
		staffPayments: []models.StaffPayment{
			{ID: "s1", StaffName: "Karim", Amount: 8000, CreatedBy: strPtr("u-owner"), CreatedAt: baseTime.Add(-4 * time.Hour)},
		},
		vehicleCosts: []models.VehicleCost{
			{ID: "v1", VehicleName: "Van 1", CostType: "fuel", Amount: 700, CreatedAt: baseTime.Add(-5 * time.Hour)},
			{ID: "v2", VehicleName: "Van 1", CostType: "tyre_change", Amount: 2500, CreatedAt: baseTime.Add(-6 * time.Hour)},
		},
		manualExpenses: []models.ManualExpense{
			{ID: "m1", Category: "utilities", Description: "Electricity bill", Amount: 1500, CreatedAt: baseTime.Add(-90 * time.Minute)},
			{ID: "m2", Category: "Snacks", Description: "Tea for staff", Amount: 120, CreatedAt: baseTime.Add(-90 * time.Minute)},
		},
	}
}
