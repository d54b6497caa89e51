package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecEqual(t *testing.T, want, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "expected %s, got %s %v", want, got, msgAndArgs)
}

func TestClassifyPeriod(t *testing.T) {
	w, err := WindowForKey("2024-03")
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  time.Time
		want PeriodClass
	}{
		{"first day of month", date(2024, time.March, 1), PeriodCurrent},
		{"last day of month", date(2024, time.March, 31), PeriodCurrent},
		{"day before window", date(2024, time.February, 29), PeriodPrior},
		{"far past", date(2020, time.January, 1), PeriodPrior},
		{"first day after window", date(2024, time.April, 1), PeriodFuture},
		{"absent date", time.Time{}, PeriodFuture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPeriod(tt.ref, w)
			assert.Equal(t, tt.want, got)

			// Exactly one bucket claims the value.
			count := 0
			for _, ok := range []bool{got.IsCurrent(), got.IsPrior(), got.IsFuture()} {
				if ok {
					count++
				}
			}
			assert.Equal(t, 1, count)
		})
	}
}

func TestTaxMathZeroTaxDeal(t *testing.T) {
	// A no-tax deal is fully exempt regardless of the trade-in.
	inv := Invoice{
		CashPrice: dec("10000"),
		DocFee:    dec("500"),
		SalesTax:  decimal.Zero,
		Surtax:    decimal.Zero,
	}
	netTrade := dec("2000")

	assertDecEqual(t, dec("10500"), Sales(inv))
	assertDecEqual(t, dec("10500"), Exemption(inv, netTrade))
	assertDecEqual(t, decimal.Zero, Basis(inv, netTrade))
	assertDecEqual(t, decimal.Zero, Excess(inv, netTrade))
}

func TestTaxMathTaxedDeal(t *testing.T) {
	inv := Invoice{
		CashPrice: dec("20000"),
		DocFee:    dec("500"),
		SalesTax:  dec("1000"),
		Surtax:    dec("50"),
	}
	netTrade := dec("3000")

	assertDecEqual(t, dec("3000"), Exemption(inv, netTrade), "only trade-in exempt when tax collected")
	assertDecEqual(t, dec("17500"), Basis(inv, netTrade))
	assertDecEqual(t, dec("12500"), Excess(inv, netTrade))
	assertDecEqual(t, dec("6"), TaxRate(inv, netTrade), "1050 * 100 / 17500")
}

func TestBasisFloorsAtZero(t *testing.T) {
	inv := Invoice{CashPrice: dec("5000"), SalesTax: dec("300")}
	netTrade := dec("8000")
	assertDecEqual(t, decimal.Zero, Basis(inv, netTrade))
	assertDecEqual(t, decimal.Zero, Excess(inv, netTrade))
}

func TestTaxRateFlooredDenominator(t *testing.T) {
	// Trade-in swallows the whole sale: the denominator clamps to one
	// instead of dividing by zero or a negative.
	inv := Invoice{CashPrice: dec("5000"), SalesTax: dec("10")}
	assertDecEqual(t, dec("1000"), TaxRate(inv, dec("5000")))
	assertDecEqual(t, dec("1000"), TaxRate(inv, dec("9000")))
}

func TestIsNTOMemo(t *testing.T) {
	assert.True(t, IsNTOMemo("NTO payoff"))
	assert.True(t, IsNTOMemo("trade nto balance"))
	assert.False(t, IsNTOMemo("freight"))
	assert.False(t, IsNTOMemo(""))
}

func TestPayables(t *testing.T) {
	monthEnd := date(2024, time.April, 1)
	expenses := []Txn{
		{Type: TxnRegular, Memo: "NTO payoff", Amount: dec("7000"), IsPayable: true},
		{Type: TxnRegular, Memo: "NTO lien", Amount: dec("1200"), PaidDate: date(2024, time.April, 15)},
		{Type: TxnRegular, Memo: "NTO settled", Amount: dec("900"), PaidDate: date(2024, time.March, 20)},
		{Type: TxnRegular, Memo: "detailing", Amount: dec("300"), IsPayable: true},
		{Type: TxnShipping, Memo: "NTO haul", Amount: dec("400"), IsPayable: true},
	}

	t.Run("without revised baseline", func(t *testing.T) {
		got := Payables(expenses, Car{NTO: dec("6500")}, monthEnd)
		assertDecEqual(t, dec("8200"), got, "payable 7000 + paid-late 1200")
	})

	t.Run("revised baseline substitutes per matching expense", func(t *testing.T) {
		updated := dec("6800")
		got := Payables(expenses, Car{NTO: dec("6500"), UpdatedNTO: &updated}, monthEnd)
		assertDecEqual(t, dec("13600"), got)
	})

	t.Run("paid at the month boundary still owed", func(t *testing.T) {
		boundary := []Txn{
			{Type: TxnRegular, Memo: "NTO payoff", Amount: dec("7000"), PaidDate: monthEnd},
		}
		got := Payables(boundary, Car{NTO: dec("6500")}, monthEnd)
		assertDecEqual(t, dec("7000"), got, "month end is exclusive")
	})

	t.Run("baseline alone owes nothing", func(t *testing.T) {
		updated := dec("6800")
		got := Payables(nil, Car{UpdatedNTO: &updated}, monthEnd)
		assertDecEqual(t, decimal.Zero, got)
	})
}

func TestProfit(t *testing.T) {
	assertDecEqual(t, dec("150"), Profit(dec("350"), dec("200")))
	assertDecEqual(t, dec("-50"), Profit(dec("150"), dec("200")))
}

func TestProtectedProfit(t *testing.T) {
	revenue, cogs := dec("1000"), dec("400")

	// The dampening factor is 1.00 on both sides of the cutoff, so the
	// branch must be value-neutral.
	before := ProtectedProfit(revenue, cogs, date(2018, time.December, 1))
	after := ProtectedProfit(revenue, cogs, date(2023, time.May, 1))
	assertDecEqual(t, Profit(revenue, cogs), before)
	assertDecEqual(t, Profit(revenue, cogs), after)
}

func TestNTOProfit(t *testing.T) {
	car := Car{NTO: dec("6500")}

	t.Run("no nto expense", func(t *testing.T) {
		assertDecEqual(t, decimal.Zero, NTOProfit(car, nil))
	})

	t.Run("booked over actual", func(t *testing.T) {
		exp := Txn{Memo: "NTO payoff", Amount: dec("6000")}
		assertDecEqual(t, dec("500"), NTOProfit(car, &exp))
	})

	t.Run("revised baseline wins", func(t *testing.T) {
		updated := dec("7000")
		revised := Car{NTO: dec("6500"), UpdatedNTO: &updated}
		exp := Txn{Memo: "NTO payoff", Amount: dec("6000")}
		assertDecEqual(t, dec("1000"), NTOProfit(revised, &exp))
	})
}

func TestSumAmounts(t *testing.T) {
	txns := []Txn{{Amount: dec("10.50")}, {Amount: dec("4.25")}, {Amount: dec("-2")}}
	assertDecEqual(t, dec("12.75"), SumAmounts(txns))
	assertDecEqual(t, decimal.Zero, SumAmounts(nil))
}
