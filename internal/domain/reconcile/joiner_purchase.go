package reconcile

import (
	"context"
	"fmt"
)

// purchaseJoiner passes through every expense settled during the month,
// ungrouped, so the report can show raw period purchases alongside the
// reconciled deal figures.
type purchaseJoiner struct {
	e *Engine
}

func (j *purchaseJoiner) Type() RowType { return RowPeriodPurchase }

func (j *purchaseJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.e.store.QueryRange(ctx, CollectionExpenses, "paid_date", w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query period purchases for %s: %w", w.Key, err)
	}

	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		txn := txnFromDoc(doc)
		rows = append(rows, Row{
			Stock:       txn.Stock,
			Type:        RowPeriodPurchase,
			Month:       w.Key,
			Date:        txn.PaidDate,
			Description: txn.Memo,
			Period:      ClassifyPeriod(txn.PaidDate, w),
			COGS:        txn.Amount,
			Profit:      txn.Amount.Neg(),
		})
	}
	return rows, nil
}

// laborJoiner passes through completed service work finished during the
// month, independent of whether its order has been closed out yet.
type laborJoiner struct {
	e *Engine
}

func (j *laborJoiner) Type() RowType { return RowLabor }

func (j *laborJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.e.store.QueryEqualsAndRange(ctx, CollectionServices, "status", "completed", "status_time", w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query completed services for %s: %w", w.Key, err)
	}

	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		line := serviceLineFromDoc(doc)
		rows = append(rows, Row{
			Stock:       line.OrderID,
			Type:        RowLabor,
			Month:       w.Key,
			Date:        line.StatusTime,
			Description: line.Description,
			Period:      ClassifyPeriod(line.StatusTime, w),
			Revenue:     line.Amount,
			COGS:        line.Cost,
			Profit:      Profit(line.Amount, line.Cost),
		})
	}
	return rows, nil
}
