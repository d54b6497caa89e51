package recordstore

import (
	"time"

	"github.com/dms/backend/internal/domain/reconcile"
)

// Seed loads a small dealership data set into the store so the development
// profile can produce a non-empty report without a database.
func Seed(store *MemoryStore) {
	month := time.Now().UTC().Format(reconcile.MonthKeyLayout)
	saleDate := time.Date(time.Now().Year(), time.Now().Month(), 12, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)

	store.Put(reconcile.CollectionDeals, "A100", reconcile.Document{
		"stock": "A100",
		"date":  saleDate,
		"month": month,
		"buyer": "C1",
	})
	store.Put(reconcile.CollectionCars, "A100", reconcile.Document{
		"stock": "A100",
		"year":  "2019",
		"make":  "Honda",
		"model": "Civic",
		"nto":   8000,
	})
	store.Put(reconcile.CollectionCustomers, "C1", reconcile.Document{
		"id":    "C1",
		"name":  "Pat Harmon",
		"state": "FL",
	})
	store.Put(reconcile.CollectionInvoices, "A100", reconcile.Document{
		"stock":      "A100",
		"cash_price": 12500,
		"doc_fee":    499,
		"sales_tax":  750,
		"surtax":     50,
		"revenue":    13799,
	})
	store.Put(reconcile.CollectionExpenses, "A100-1", reconcile.Document{
		"stock":      "A100",
		"type":       "regular",
		"amount":     9000,
		"memo":       "NTO payoff",
		"is_payable": true,
	})
	store.Put(reconcile.CollectionExpenses, "A100-2", reconcile.Document{
		"stock":     "A100",
		"type":      "shipping",
		"amount":    350,
		"memo":      "transport in",
		"paid_date": saleDate,
	})
	store.Put(reconcile.CollectionDeposits, "A100-D1", reconcile.Document{
		"stock":  "A100",
		"type":   "shipping",
		"amount": 400,
	})
	store.Put(reconcile.CollectionTrades, "A100-T1", reconcile.Document{
		"stock": "A100",
		"trade": 2000,
	})
	store.Put(reconcile.CollectionLoads, "L7", reconcile.Document{
		"id":            "L7",
		"total_miles":   320,
		"cost_per_mile": 1.25,
		"completed_at":  saleDate,
		"legs": []any{
			map[string]any{"stock": "A100", "charge": 250},
			map[string]any{"stock": "B200", "charge": 300},
		},
	})
}
