package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// Txn is the shared shape of deposit and expense records.
type Txn struct {
	Stock     string
	Type      TxnType
	Amount    decimal.Decimal
	Memo      string
	IsPayable bool
	PaidDate  time.Time
}

// Tag implements Tagged.
func (t Txn) Tag() TxnType { return t.Type }

func txnFromDoc(d Document) Txn {
	return Txn{
		Stock:     d.Str("stock"),
		Type:      ParseTxnType(d.Str("type")),
		Amount:    d.Dec("amount"),
		Memo:      d.Str("memo"),
		IsPayable: d.Bool("is_payable"),
		PaidDate:  d.Time("paid_date"),
	}
}

func txnsFromDocs(docs []Document) []Txn {
	txns := make([]Txn, len(docs))
	for i, doc := range docs {
		txns[i] = txnFromDoc(doc)
	}
	return txns
}

// Car carries the vehicle description and its net-trade-out cost basis.
// UpdatedNTO is nil unless the baseline was revised after booking.
type Car struct {
	Stock      string
	Year       string
	Make       string
	Model      string
	NTO        decimal.Decimal
	UpdatedNTO *decimal.Decimal
}

// BookedNTO is the effective cost basis: the revised baseline when one
// exists, the original otherwise.
func (c Car) BookedNTO() decimal.Decimal {
	if c.UpdatedNTO != nil {
		return *c.UpdatedNTO
	}
	return c.NTO
}

func carFromDoc(d Document) Car {
	car := Car{
		Stock: d.Str("stock"),
		Year:  d.Str("year"),
		Make:  d.Str("make"),
		Model: d.Str("model"),
		NTO:   d.Dec("nto"),
	}
	if updated, ok := d.DecOK("updated_nto"); ok {
		car.UpdatedNTO = &updated
	}
	return car
}

// Customer holds the buyer attributes the tax math depends on.
type Customer struct {
	ID    string
	Name  string
	State string
}

func customerFromDoc(d Document) Customer {
	return Customer{
		ID:    d.Str("id"),
		Name:  d.Str("name"),
		State: d.Str("state"),
	}
}

// Invoice is the billed side of a deal.
type Invoice struct {
	CashPrice decimal.Decimal
	DocFee    decimal.Decimal
	SalesTax  decimal.Decimal
	Surtax    decimal.Decimal
	Revenue   decimal.Decimal
}

func invoiceFromDoc(d Document) Invoice {
	return Invoice{
		CashPrice: d.Dec("cash_price"),
		DocFee:    d.Dec("doc_fee"),
		SalesTax:  d.Dec("sales_tax"),
		Surtax:    d.Dec("surtax"),
		Revenue:   d.Dec("revenue"),
	}
}

// Trade is a trade-in attached to a deal.
type Trade struct {
	Stock string
	Value decimal.Decimal
}

func tradeFromDoc(d Document) Trade {
	return Trade{
		Stock: d.Str("stock"),
		Value: d.Dec("trade"),
	}
}

// Deal is a vehicle sale joined with all of its child records.
type Deal struct {
	Stock           string
	Date            time.Time
	Month           string
	ShippingMonth   string
	ShippingInMonth string
	IsFinance       bool

	Car        Car
	Customer   Customer
	Invoice    Invoice
	Deposits   []Txn
	Expenses   []Txn
	Trades     []Trade
	NTOExpense *Txn
}

func dealFromDoc(d Document) Deal {
	return Deal{
		Stock:           d.Str("stock"),
		Date:            d.Time("date"),
		Month:           d.Str("month"),
		ShippingMonth:   d.Str("shipping_month"),
		ShippingInMonth: d.Str("shipping_in_month"),
		IsFinance:       d.Bool("is_finance"),
	}
}

// ServiceLine is one labor or parts line on a service order, or a
// standalone service record in the services collection.
type ServiceLine struct {
	OrderID     string
	Description string
	Amount      decimal.Decimal
	Cost        decimal.Decimal
	Status      string
	StatusTime  time.Time
}

func serviceLineFromDoc(d Document) ServiceLine {
	return ServiceLine{
		OrderID:     d.Str("order_id"),
		Description: d.Str("description"),
		Amount:      d.Dec("amount"),
		Cost:        d.Dec("cost"),
		Status:      d.Str("status"),
		StatusTime:  d.Time("status_time"),
	}
}

// ServiceOrder is a repair order joined with its lines and the deal it
// belongs to. Period classification for service rows follows the linked
// deal's date, not the order's own completion date.
type ServiceOrder struct {
	ID           string
	Stock        string
	Revenue      decimal.Decimal
	Status       string
	CompleteDate time.Time

	Car      Car
	Customer Customer
	Services []ServiceLine
	Expenses []Txn
	Deposits []Txn
	DealDate time.Time
}

func serviceOrderFromDoc(d Document) ServiceOrder {
	order := ServiceOrder{
		ID:           d.Str("id"),
		Stock:        d.Str("stock"),
		Revenue:      d.Dec("revenue"),
		Status:       d.Str("status"),
		CompleteDate: d.Time("complete_date"),
	}
	for _, line := range d.Docs("services") {
		order.Services = append(order.Services, serviceLineFromDoc(line))
	}
	for _, exp := range d.Docs("expenses") {
		order.Expenses = append(order.Expenses, txnFromDoc(exp))
	}
	return order
}

// LoadLeg is one car carried on a shipping load.
type LoadLeg struct {
	Stock  string
	Charge decimal.Decimal
}

// ShippingLoad is a transport run joined with its legs and linked expenses.
type ShippingLoad struct {
	ID          string
	Legs        []LoadLeg
	TotalMiles  decimal.Decimal
	CostPerMile decimal.Decimal
	CompletedAt time.Time
	Expenses    []Txn
}

func shippingLoadFromDoc(d Document) ShippingLoad {
	load := ShippingLoad{
		ID:          d.Str("id"),
		TotalMiles:  d.Dec("total_miles"),
		CostPerMile: d.Dec("cost_per_mile"),
		CompletedAt: d.Time("completed_at"),
	}
	for _, leg := range d.Docs("legs") {
		load.Legs = append(load.Legs, LoadLeg{
			Stock:  leg.Str("stock"),
			Charge: leg.Dec("charge"),
		})
	}
	return load
}
