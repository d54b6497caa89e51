package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowType tags a report row with the joiner that produced it, so the
// display layer can group and subtotal without re-deriving anything.
type RowType string

const (
	RowDeal           RowType = "deal"
	RowShipping       RowType = "shipping"
	RowShippingIn     RowType = "shipping_in"
	RowFinance        RowType = "finance"
	RowPaid           RowType = "paid"
	RowPeriodPurchase RowType = "period_purchase"
	RowLabor          RowType = "labor"
	RowService        RowType = "service"
	RowShippingLoad   RowType = "shipping_load"
)

// Row is one computed profit/loss line in the reconciliation report.
// Revenue, COGS and Profit are populated for every type; the remaining
// fields are type-specific and stay zero elsewhere.
type Row struct {
	Stock       string      `json:"stock"`
	Type        RowType     `json:"type"`
	Month       string      `json:"month"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description,omitempty"`
	Period      PeriodClass `json:"period"`

	Revenue decimal.Decimal `json:"revenue"`
	COGS    decimal.Decimal `json:"cogs"`
	Profit  decimal.Decimal `json:"profit"`

	Sales      decimal.Decimal `json:"sales,omitempty"`
	NetTrade   decimal.Decimal `json:"net_trade,omitempty"`
	Exemption  decimal.Decimal `json:"exemption,omitempty"`
	Basis      decimal.Decimal `json:"basis,omitempty"`
	Excess     decimal.Decimal `json:"excess,omitempty"`
	TaxRate    decimal.Decimal `json:"tax_rate,omitempty"`
	Payables   decimal.Decimal `json:"payables,omitempty"`
	Unpaid     decimal.Decimal `json:"unpaid,omitempty"`
	NTOProfit  decimal.Decimal `json:"nto_profit,omitempty"`
	Receivable decimal.Decimal `json:"receivable,omitempty"`
}
