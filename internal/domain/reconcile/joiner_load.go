package reconcile

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// loadJoiner produces one row per shipping load completed in the month.
// Revenue is the sum of the per-car leg charges; cost is mileage times the
// contracted rate plus whatever non-deal expenses were booked against the
// load's own stock number. Loads are always recognized in the month they
// complete, so the row is always current period.
type loadJoiner struct {
	e *Engine
}

func (j *loadJoiner) Type() RowType { return RowShippingLoad }

func (j *loadJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.e.store.QueryRange(ctx, CollectionLoads, "completed_at", w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query shipping loads for %s: %w", w.Key, err)
	}
	return joinEach(ctx, docs, func(ctx context.Context, doc Document) (Row, error) {
		load := shippingLoadFromDoc(doc)
		expDocs, err := j.e.childDocs(ctx, CollectionExpenses, load.ID)
		if err != nil {
			return Row{}, fmt.Errorf("join shipping load %s: %w", load.ID, err)
		}
		load.Expenses = txnsFromDocs(expDocs)
		return j.row(load, w), nil
	})
}

func (j *loadJoiner) row(load ShippingLoad, w MonthWindow) Row {
	revenue := decimal.Zero
	for _, leg := range load.Legs {
		revenue = revenue.Add(leg.Charge)
	}
	cost := load.TotalMiles.Mul(load.CostPerMile).Add(SumAmounts(load.Expenses))

	return Row{
		Stock:   load.ID,
		Type:    RowShippingLoad,
		Month:   w.Key,
		Date:    load.CompletedAt,
		Period:  PeriodCurrent,
		Revenue: revenue,
		COGS:    cost,
		Profit:  Profit(revenue, cost),
	}
}
