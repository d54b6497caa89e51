package reconcile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// transferJoiner covers the three simple transfer flows: shipping out,
// shipping in and financing. All three share the same shape — deposits of
// the matching tag are the revenue, expenses of the matching tag are the
// cost — with no tax math.
type transferJoiner struct {
	e   *Engine
	typ RowType
	tag TxnType

	// monthField selects the primary filter for the shipping variants.
	// Empty means the finance variant, which filters by is_finance over the
	// month's date range instead.
	monthField string
}

func (j *transferJoiner) Type() RowType { return j.typ }

func (j *transferJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.primary(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("query %s transfers for %s: %w", j.typ, w.Key, err)
	}
	return joinEach(ctx, docs, func(ctx context.Context, doc Document) (Row, error) {
		return j.row(ctx, doc, w)
	})
}

func (j *transferJoiner) primary(ctx context.Context, w MonthWindow) ([]Document, error) {
	if j.monthField != "" {
		return j.e.store.QueryEquals(ctx, CollectionDeals, j.monthField, w.Key)
	}
	return j.e.store.QueryEqualsAndRange(ctx, CollectionDeals, "is_finance", true, "date", w.Start, w.End)
}

func (j *transferJoiner) row(ctx context.Context, doc Document, w MonthWindow) (Row, error) {
	deal := dealFromDoc(doc)

	var deposits, expenses []Txn
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := j.e.childDocs(gctx, CollectionDeposits, deal.Stock)
		if err != nil {
			return err
		}
		deposits = txnsFromDocs(docs)
		return nil
	})
	g.Go(func() error {
		docs, err := j.e.childDocs(gctx, CollectionExpenses, deal.Stock)
		if err != nil {
			return err
		}
		expenses = txnsFromDocs(docs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Row{}, fmt.Errorf("join %s transfer %s: %w", j.typ, deal.Stock, err)
	}

	matchingDeposits, _ := Partition(deposits, j.tag)
	matchingExpenses, _ := Partition(expenses, j.tag)
	revenue := SumAmounts(matchingDeposits)
	cogs := SumAmounts(matchingExpenses)

	return Row{
		Stock:   deal.Stock,
		Type:    j.typ,
		Month:   w.Key,
		Date:    deal.Date,
		Period:  ClassifyPeriod(deal.Date, w),
		Revenue: revenue,
		COGS:    cogs,
		Profit:  Profit(revenue, cogs),
	}, nil
}
