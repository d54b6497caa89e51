package reconcile

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// dealJoiner produces the full profit/loss line for every deal booked in
// the month: tax basis math, payables, NTO profit and trade netting.
type dealJoiner struct {
	e *Engine
}

func (j *dealJoiner) Type() RowType { return RowDeal }

func (j *dealJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.e.store.QueryEquals(ctx, CollectionDeals, "month", w.Key)
	if err != nil {
		return nil, fmt.Errorf("query deals for %s: %w", w.Key, err)
	}
	return joinEach(ctx, docs, func(ctx context.Context, doc Document) (Row, error) {
		deal, err := j.load(ctx, doc)
		if err != nil {
			return Row{}, err
		}
		return j.row(deal, w), nil
	})
}

// load fans out all child fetches for one deal concurrently. The NTO
// expense rides under a derived key: "<stock>-NTO".
func (j *dealJoiner) load(ctx context.Context, doc Document) (Deal, error) {
	deal := dealFromDoc(doc)
	stock := deal.Stock
	buyer := doc.Str("buyer")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		carDoc, err := j.e.childDoc(gctx, CollectionCars, stock)
		if err != nil {
			return err
		}
		deal.Car = carFromDoc(carDoc)
		return nil
	})
	g.Go(func() error {
		custDoc, err := j.e.childDoc(gctx, CollectionCustomers, buyer)
		if err != nil {
			return err
		}
		deal.Customer = customerFromDoc(custDoc)
		return nil
	})
	g.Go(func() error {
		invDoc, err := j.e.childDoc(gctx, CollectionInvoices, stock)
		if err != nil {
			return err
		}
		deal.Invoice = invoiceFromDoc(invDoc)
		return nil
	})
	g.Go(func() error {
		docs, err := j.e.childDocs(gctx, CollectionDeposits, stock)
		if err != nil {
			return err
		}
		deal.Deposits = txnsFromDocs(docs)
		return nil
	})
	g.Go(func() error {
		docs, err := j.e.childDocs(gctx, CollectionExpenses, stock)
		if err != nil {
			return err
		}
		deal.Expenses = txnsFromDocs(docs)
		return nil
	})
	g.Go(func() error {
		docs, err := j.e.childDocs(gctx, CollectionTrades, stock)
		if err != nil {
			return err
		}
		for _, d := range docs {
			deal.Trades = append(deal.Trades, tradeFromDoc(d))
		}
		return nil
	})
	g.Go(func() error {
		ntoDoc, err := j.e.childDoc(gctx, CollectionExpenses, stock+"-NTO")
		if err != nil {
			return err
		}
		if len(ntoDoc) > 0 {
			nto := txnFromDoc(ntoDoc)
			deal.NTOExpense = &nto
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Deal{}, fmt.Errorf("join deal %s: %w", stock, err)
	}
	return deal, nil
}

func (j *dealJoiner) row(deal Deal, w MonthWindow) Row {
	netTrade := NetTrade(deal.Trades)
	revenue := deal.Invoice.Revenue
	cogs := COGS(deal.Expenses)

	return Row{
		Stock:       deal.Stock,
		Type:        RowDeal,
		Month:       w.Key,
		Date:        deal.Date,
		Description: describeCar(deal.Car),
		Period:      ClassifyPeriod(deal.Date, w),
		Revenue:     revenue,
		COGS:        cogs,
		Profit:      ProtectedProfit(revenue, cogs, w.Start),
		Sales:       Sales(deal.Invoice),
		NetTrade:    netTrade,
		Exemption:   Exemption(deal.Invoice, netTrade),
		Basis:       Basis(deal.Invoice, netTrade),
		Excess:      Excess(deal.Invoice, netTrade),
		TaxRate:     TaxRate(deal.Invoice, netTrade),
		Payables:    Payables(deal.Expenses, deal.Car, w.End),
		Unpaid:      Unpaid(deal.Expenses),
		NTOProfit:   NTOProfit(deal.Car, deal.NTOExpense),
	}
}

func describeCar(car Car) string {
	return strings.TrimSpace(strings.Join([]string{car.Year, car.Make, car.Model}, " "))
}
