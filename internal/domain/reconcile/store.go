package reconcile

import "context"

// Collection names in the external record store.
const (
	CollectionDeals     = "deals"
	CollectionCars      = "cars"
	CollectionCustomers = "customers"
	CollectionInvoices  = "invoices"
	CollectionDeposits  = "deposits"
	CollectionTrades    = "trades"
	CollectionExpenses  = "expenses"
	CollectionServices  = "services"
	CollectionOrders    = "service_orders"
	CollectionLoads     = "shipping_loads"
)

// RecordStore is the external document store the engine reads from.
// Implementations must return shared.ErrNotFound (wrapped or direct) from
// GetByKey when no record exists; any other error is treated as a
// store-level failure for the month being reconciled.
type RecordStore interface {
	GetByKey(ctx context.Context, collection, key string) (Document, error)
	QueryEquals(ctx context.Context, collection, field string, value any) ([]Document, error)
	QueryRange(ctx context.Context, collection, field string, low, high any) ([]Document, error)
	QueryEqualsAndRange(ctx context.Context, collection, field string, value any, rangeField string, low, high any) ([]Document, error)
}
