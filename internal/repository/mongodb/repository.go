package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/gasdiary/internal/domain/models"
)

// Collection names of the source-of-truth tables.
const (
	CollPOSTransactions  = "pos_transactions"
	CollPOSItems         = "pos_transaction_items"
	CollCustomerPayments = "customer_payments"
	CollCustomers        = "customers"
	CollPOBTransactions  = "pob_transactions"
	CollPOBItems         = "pob_transaction_items"
	CollStaffPayments    = "staff_payments"
	CollVehicleCosts     = "vehicle_costs"
	CollDailyExpenses    = "daily_expenses"
	CollUserRoles        = "user_roles"
	CollLPGBrands        = "lpg_brands"
	CollStoves           = "stoves"
	CollRegulators       = "regulators"
	CollCommunityOrders  = "community_orders"
	CollExchanges        = "cylinder_exchanges"
	CollDailyReports     = "daily_reports"
)

// Repository defines the interface for report storage.
type Repository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// MongoDBRepository reads the diary's source rows and stores daily reports.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", dbName))
	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// SaveDailyReport stores report, replacing any earlier report for the same date.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	collection := r.db.Collection(CollDailyReports)
	_, err := collection.ReplaceOne(ctx,
		bson.M{"date": report.Date},
		report,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save daily report %s: %w", report.Date, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
