package diary

import (
	"context"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// Source is the read-only row-query interface over the diary's source tables.
type Source interface {
	ListUserRoles(ctx context.Context) ([]models.UserRole, error)
	ListCustomersByID(ctx context.Context, ids []string) ([]models.Customer, error)

	ListPOSTransactions(ctx context.Context, q models.Query) ([]models.POSTransaction, error)
	ListPOSItems(ctx context.Context, transactionIDs []string) ([]models.POSItem, error)
	ListCustomerPayments(ctx context.Context, q models.Query) ([]models.CustomerPayment, error)

	ListPOBTransactions(ctx context.Context, q models.Query) ([]models.POBTransaction, error)
	ListPOBItems(ctx context.Context, transactionIDs []string) ([]models.POBItem, error)
	ListStaffPayments(ctx context.Context, q models.Query) ([]models.StaffPayment, error)
	ListVehicleCosts(ctx context.Context, q models.Query) ([]models.VehicleCost, error)
	ListManualExpenses(ctx context.Context, q models.Query) ([]models.ManualExpense, error)
}
