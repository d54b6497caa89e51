package reconcile

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// serviceJoiner produces one row per service order completed in the month.
// The order's own completion date only selects the order; the accounting
// period of the row follows the linked deal's date.
type serviceJoiner struct {
	e *Engine
}

func (j *serviceJoiner) Type() RowType { return RowService }

func (j *serviceJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.e.store.QueryRange(ctx, CollectionOrders, "complete_date", w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query service orders for %s: %w", w.Key, err)
	}
	return joinEach(ctx, docs, func(ctx context.Context, doc Document) (Row, error) {
		order, err := j.load(ctx, doc)
		if err != nil {
			return Row{}, err
		}
		return j.row(order, w), nil
	})
}

func (j *serviceJoiner) load(ctx context.Context, doc Document) (ServiceOrder, error) {
	order := serviceOrderFromDoc(doc)
	customerKey := doc.Str("customer")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		carDoc, err := j.e.childDoc(gctx, CollectionCars, order.Stock)
		if err != nil {
			return err
		}
		order.Car = carFromDoc(carDoc)
		return nil
	})
	g.Go(func() error {
		custDoc, err := j.e.childDoc(gctx, CollectionCustomers, customerKey)
		if err != nil {
			return err
		}
		order.Customer = customerFromDoc(custDoc)
		return nil
	})
	g.Go(func() error {
		docs, err := j.e.childDocs(gctx, CollectionDeposits, order.ID)
		if err != nil {
			return err
		}
		order.Deposits = txnsFromDocs(docs)
		return nil
	})
	g.Go(func() error {
		dealDoc, err := j.e.childDoc(gctx, CollectionDeals, order.Stock)
		if err != nil {
			return err
		}
		order.DealDate = dealDoc.Time("date")
		return nil
	})
	if err := g.Wait(); err != nil {
		return ServiceOrder{}, fmt.Errorf("join service order %s: %w", order.ID, err)
	}
	return order, nil
}

func (j *serviceJoiner) row(order ServiceOrder, w MonthWindow) Row {
	laborCost := decimal.Zero
	for _, line := range order.Services {
		laborCost = laborCost.Add(line.Cost)
	}
	partsCost := COGS(order.Expenses)
	cogs := laborCost.Add(partsCost)

	return Row{
		Stock:       order.Stock,
		Type:        RowService,
		Month:       w.Key,
		Date:        order.CompleteDate,
		Description: describeCar(order.Car),
		Period:      ClassifyPeriod(order.DealDate, w),
		Revenue:     order.Revenue,
		COGS:        cogs,
		Profit:      Profit(order.Revenue, cogs),
		Receivable:  order.Revenue.Sub(SumAmounts(order.Deposits)),
	}
}
