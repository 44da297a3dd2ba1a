package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

var pendingStatus = primitive.Regex{Pattern: "^pending$", Options: "i"}

// windowFilter selects rows created at or after q.Since.
func windowFilter(q models.Query) bson.M {
	if q.Since.IsZero() {
		return bson.M{}
	}
	return bson.M{"created_at": bson.M{"$gte": q.Since}}
}

// windowOptions sorts newest first and applies the row cap.
func windowOptions(q models.Query) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

func inFilter(field string, ids []string) bson.M {
	return bson.M{field: bson.M{"$in": ids}}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

// ListUserRoles returns every role assignment.
func (r *MongoDBRepository) ListUserRoles(ctx context.Context) ([]models.UserRole, error) {
	return findAll[models.UserRole](ctx, r.db.Collection(CollUserRoles), bson.M{})
}

// FindUserRole returns the role row of userID, or nil when the user has none.
func (r *MongoDBRepository) FindUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	var row models.UserRole
	err := r.db.Collection(CollUserRoles).FindOne(ctx, bson.M{"user_id": userID}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role of %s: %w", userID, err)
	}
	return &row, nil
}

func (r *MongoDBRepository) ListCustomersByID(ctx context.Context, ids []string) ([]models.Customer, error) {
	if len(ids) == 0 {
		return []models.Customer{}, nil
	}
	return findAll[models.Customer](ctx, r.db.Collection(CollCustomers), inFilter("_id", ids))
}

func (r *MongoDBRepository) ListPOSTransactions(ctx context.Context, q models.Query) ([]models.POSTransaction, error) {
	return findAll[models.POSTransaction](ctx, r.db.Collection(CollPOSTransactions), windowFilter(q), windowOptions(q))
}

func (r *MongoDBRepository) ListPOSItems(ctx context.Context, transactionIDs []string) ([]models.POSItem, error) {
	if len(transactionIDs) == 0 {
		return []models.POSItem{}, nil
	}
	return findAll[models.POSItem](ctx, r.db.Collection(CollPOSItems), inFilter("transaction_id", transactionIDs))
}

func (r *MongoDBRepository) ListCustomerPayments(ctx context.Context, q models.Query) ([]models.CustomerPayment, error) {
	return findAll[models.CustomerPayment](ctx, r.db.Collection(CollCustomerPayments), windowFilter(q), windowOptions(q))
}

func (r *MongoDBRepository) ListPOBTransactions(ctx context.Context, q models.Query) ([]models.POBTransaction, error) {
	return findAll[models.POBTransaction](ctx, r.db.Collection(CollPOBTransactions), windowFilter(q), windowOptions(q))
}

func (r *MongoDBRepository) ListPOBItems(ctx context.Context, transactionIDs []string) ([]models.POBItem, error) {
	if len(transactionIDs) == 0 {
		return []models.POBItem{}, nil
	}
	return findAll[models.POBItem](ctx, r.db.Collection(CollPOBItems), inFilter("transaction_id", transactionIDs))
}

func (r *MongoDBRepository) ListStaffPayments(ctx context.Context, q models.Query) ([]models.StaffPayment, error) {
	return findAll[models.StaffPayment](ctx, r.db.Collection(CollStaffPayments), windowFilter(q), windowOptions(q))
}

func (r *MongoDBRepository) ListVehicleCosts(ctx context.Context, q models.Query) ([]models.VehicleCost, error) {
	return findAll[models.VehicleCost](ctx, r.db.Collection(CollVehicleCosts), windowFilter(q), windowOptions(q))
}

func (r *MongoDBRepository) ListManualExpenses(ctx context.Context, q models.Query) ([]models.ManualExpense, error) {
	return findAll[models.ManualExpense](ctx, r.db.Collection(CollDailyExpenses), windowFilter(q), windowOptions(q))
}

// Inventory and operational state read by the notification rules.

func (r *MongoDBRepository) ListLPGBrands(ctx context.Context) ([]models.LPGBrand, error) {
	return findAll[models.LPGBrand](ctx, r.db.Collection(CollLPGBrands), bson.M{})
}

func (r *MongoDBRepository) ListStoves(ctx context.Context) ([]models.Stove, error) {
	return findAll[models.Stove](ctx, r.db.Collection(CollStoves), bson.M{})
}

func (r *MongoDBRepository) ListRegulators(ctx context.Context) ([]models.Regulator, error) {
	return findAll[models.Regulator](ctx, r.db.Collection(CollRegulators), bson.M{})
}

func (r *MongoDBRepository) ListPendingOrders(ctx context.Context) ([]models.CommunityOrder, error) {
	return findAll[models.CommunityOrder](ctx, r.db.Collection(CollCommunityOrders),
		bson.M{"status": pendingStatus},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *MongoDBRepository) ListCustomersWithDues(ctx context.Context) ([]models.Customer, error) {
	return findAll[models.Customer](ctx, r.db.Collection(CollCustomers), bson.M{"$or": bson.A{
		bson.M{"total_due": bson.M{"$gt": 0}},
		bson.M{"cylinders_due": bson.M{"$gt": 0}},
	}})
}

func (r *MongoDBRepository) ListPendingExchanges(ctx context.Context) ([]models.CylinderExchange, error) {
	return findAll[models.CylinderExchange](ctx, r.db.Collection(CollExchanges), bson.M{"status": pendingStatus})
}

// SumSalesBetween totals point-of-sale transactions created in [start, end).
func (r *MongoDBRepository) SumSalesBetween(ctx context.Context, start, end time.Time) (models.SalesTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": start, "$lt": end}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.db.Collection(CollPOSTransactions).Aggregate(ctx, pipeline)
	if err != nil {
		return models.SalesTotal{}, fmt.Errorf("aggregate sales: %w", err)
	}
	var rows []models.SalesTotal
	if err := cursor.All(ctx, &rows); err != nil {
		return models.SalesTotal{}, fmt.Errorf("decode sales total: %w", err)
	}
	if len(rows) == 0 {
		return models.SalesTotal{}, nil
	}
	return rows[0], nil
}
