package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ntoMarker flags expenses that represent net-trade-out purchases. The
// payables rule only looks at expenses whose memo carries this marker.
const ntoMarker = "NTO"

// taxExcessThreshold is the tax-basis amount above which the excess bucket
// starts accruing.
var taxExcessThreshold = decimal.NewFromInt(5000)

// protectedCostCutoff guards a historical data correction: months before
// the cutoff run their cost through a dampening factor. The factor is 1.00
// on both sides today; the branch and the literal date stay as booked.
var protectedCostCutoff = time.Date(2019, time.July, 1, 0, 0, 0, 0, time.UTC)

// PeriodClass is the accounting-period bucket of a row relative to the
// queried month. Exactly one of the Is* accessors is true for any value.
type PeriodClass string

const (
	PeriodCurrent PeriodClass = "current"
	PeriodPrior   PeriodClass = "prior"
	PeriodFuture  PeriodClass = "future"
)

// IsCurrent reports whether the row belongs to the queried month.
func (p PeriodClass) IsCurrent() bool { return p == PeriodCurrent }

// IsPrior reports whether the row belongs to an earlier month.
func (p PeriodClass) IsPrior() bool { return p == PeriodPrior }

// IsFuture reports whether the row belongs to a later month or is undated.
func (p PeriodClass) IsFuture() bool { return p == PeriodFuture }

// ClassifyPeriod buckets a reference date against a month window. An absent
// (zero) reference date is future: the entity is not yet recognized.
func ClassifyPeriod(ref time.Time, w MonthWindow) PeriodClass {
	switch {
	case ref.IsZero():
		return PeriodFuture
	case ref.Before(w.Start):
		return PeriodPrior
	case ref.Before(w.End):
		return PeriodCurrent
	default:
		return PeriodFuture
	}
}

// SumAmounts totals the amounts of a transaction list.
func SumAmounts(txns []Txn) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total
}

// COGS is the cost of goods sold: the sum of the regular partition of an
// entity's expenses. Shipping and finance charges never enter COGS.
func COGS(expenses []Txn) decimal.Decimal {
	regular, _ := Partition(expenses, TxnRegular)
	return SumAmounts(regular)
}

// Unpaid totals the regular expenses still flagged payable.
func Unpaid(expenses []Txn) decimal.Decimal {
	regular, _ := Partition(expenses, TxnRegular)
	total := decimal.Zero
	for _, txn := range regular {
		if txn.IsPayable {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// NetTrade totals the trade-in values attached to a deal.
func NetTrade(trades []Trade) decimal.Decimal {
	total := decimal.Zero
	for _, trade := range trades {
		total = total.Add(trade.Value)
	}
	return total
}

// Sales is the taxable sale amount: cash price plus doc fee.
func Sales(inv Invoice) decimal.Decimal {
	return inv.CashPrice.Add(inv.DocFee)
}

// Exemption is the amount excluded from the tax basis. A deal with no tax
// collected is fully exempt (the whole sale); otherwise only the trade-in
// value is exempt.
func Exemption(inv Invoice, netTrade decimal.Decimal) decimal.Decimal {
	if inv.SalesTax.Add(inv.Surtax).LessThanOrEqual(decimal.Zero) {
		return Sales(inv)
	}
	return netTrade
}

// Basis is the taxable base after exemption, floored at zero.
func Basis(inv Invoice, netTrade decimal.Decimal) decimal.Decimal {
	basis := Sales(inv).Sub(Exemption(inv, netTrade))
	if basis.IsNegative() {
		return decimal.Zero
	}
	return basis
}

// Excess is the portion of the basis above the surtax threshold.
func Excess(inv Invoice, netTrade decimal.Decimal) decimal.Decimal {
	excess := Basis(inv, netTrade).Sub(taxExcessThreshold)
	if excess.IsNegative() {
		return decimal.Zero
	}
	return excess
}

// TaxRate is the effective tax percentage of the taxable sale. The
// denominator is floored at one so a fully traded-out deal cannot divide
// by zero.
func TaxRate(inv Invoice, netTrade decimal.Decimal) decimal.Decimal {
	denom := Sales(inv).Sub(netTrade)
	if denom.LessThan(decimal.NewFromInt(1)) {
		denom = decimal.NewFromInt(1)
	}
	return inv.SalesTax.Add(inv.Surtax).
		Mul(decimal.NewFromInt(100)).
		Div(denom)
}

// IsNTOMemo reports whether an expense memo carries the net-trade-out marker.
func IsNTOMemo(memo string) bool {
	return strings.Contains(strings.ToUpper(memo), ntoMarker)
}

// Payables totals the NTO-marked regular expenses still owed as of month
// end: those flagged payable or paid only after the window closed. When the
// car carries a revised baseline the booked updated_nto stands in for the
// raw expense amount — booked valuation over actual, never the reverse.
func Payables(expenses []Txn, car Car, monthEnd time.Time) decimal.Decimal {
	regular, _ := Partition(expenses, TxnRegular)
	total := decimal.Zero
	for _, txn := range regular {
		if !IsNTOMemo(txn.Memo) {
			continue
		}
		// monthEnd is the window's exclusive end; a payment landing exactly
		// on it belongs to the next month and is still owed in this one.
		paidAfter := !txn.PaidDate.IsZero() && !txn.PaidDate.Before(monthEnd)
		if !paidAfter && !txn.IsPayable {
			continue
		}
		if car.UpdatedNTO != nil {
			total = total.Add(*car.UpdatedNTO)
		} else {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// Profit is revenue minus cost of goods.
func Profit(revenue, cogs decimal.Decimal) decimal.Decimal {
	return revenue.Sub(cogs)
}

// ProtectedProfit is Profit with the historical cost correction applied for
// months before protectedCostCutoff.
func ProtectedProfit(revenue, cogs decimal.Decimal, monthStart time.Time) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	if monthStart.Before(protectedCostCutoff) {
		factor = decimal.RequireFromString("1.00")
	}
	return revenue.Sub(cogs.Mul(factor))
}

// NTOProfit is the gain on trading a vehicle out: the booked cost basis
// less what the NTO purchase actually cost. Zero when the deal carries no
// NTO expense.
func NTOProfit(car Car, ntoExpense *Txn) decimal.Decimal {
	if ntoExpense == nil {
		return decimal.Zero
	}
	return car.BookedNTO().Sub(ntoExpense.Amount)
}
