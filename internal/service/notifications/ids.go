package notifications

// Notification ids are derived from the triggering entity, so regenerating
// the feed coalesces repeats. Kinds that must be mutually exclusive for one
// entity (new order vs order waiting, the three LPG stock tiers) use distinct
// prefixes and the rules emit at most one of them.

// TotalDueSummaryID is the id of the system-wide due summary.
const TotalDueSummaryID = "total_due_summary"

func OutOfStockLPGID(brandID string) string   { return "out_of_stock_lpg_" + brandID }
func CriticalStockLPGID(brandID string) string { return "critical_stock_lpg_" + brandID }
func LowStockLPGID(brandID string) string      { return "low_stock_lpg_" + brandID }

func OutOfStockStoveID(stoveID string) string { return "out_of_stock_stove_" + stoveID }
func LowStockStoveID(stoveID string) string   { return "low_stock_stove_" + stoveID }

func OutOfStockRegulatorID(regulatorID string) string { return "out_of_stock_regulator_" + regulatorID }
func LowStockRegulatorID(regulatorID string) string   { return "low_stock_regulator_" + regulatorID }

func EmptyImbalanceID(brandID string) string { return "empty_imbalance_" + brandID }

func NewOrderID(orderID string) string     { return "new_order_" + orderID }
func OrderWaitingID(orderID string) string { return "order_waiting_" + orderID }

func HighDueID(customerID string) string     { return "high_due_" + customerID }
func CylinderDueID(customerID string) string { return "cylinder_due_" + customerID }
func CreditLimitID(customerID string) string { return "credit_limit_" + customerID }

func PendingExchangeID(exchangeID string) string { return "pending_exchange_" + exchangeID }

// GreatSalesDayID is keyed by business date (YYYY-MM-DD) so it fires once per day.
func GreatSalesDayID(day string) string { return "great_sales_day_" + day }
