package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// paidJoiner reports NTO purchases settled during the month that are not
// already carried by a current-month deal row: one row per distinct stock
// with the summed paid amount and the latest payment date.
type paidJoiner struct {
	e *Engine
}

func (j *paidJoiner) Type() RowType { return RowPaid }

func (j *paidJoiner) Join(ctx context.Context, w MonthWindow) ([]Row, error) {
	docs, err := j.e.store.QueryRange(ctx, CollectionExpenses, "paid_date", w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query paid expenses for %s: %w", w.Key, err)
	}

	byStock := map[string][]Txn{}
	for _, doc := range docs {
		txn := txnFromDoc(doc)
		if !IsNTOMemo(txn.Memo) || txn.IsPayable || txn.Stock == "" {
			continue
		}
		byStock[txn.Stock] = append(byStock[txn.Stock], txn)
	}

	stocks := make([]string, 0, len(byStock))
	for stock := range byStock {
		stocks = append(stocks, stock)
	}
	sort.Strings(stocks)

	var (
		mu   sync.Mutex
		rows []Row
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, stock := range stocks {
		g.Go(func() error {
			dealDoc, err := j.e.childDoc(gctx, CollectionDeals, stock)
			if err != nil {
				return err
			}
			// A stock sold in the queried month already shows up as a deal
			// row carrying this cost; emitting it again would double count.
			if dealDoc.Str("month") == w.Key {
				return nil
			}
			row := j.row(stock, byStock[stock], w)
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].Stock < rows[b].Stock })
	return rows, nil
}

func (j *paidJoiner) row(stock string, txns []Txn, w MonthWindow) Row {
	total := decimal.Zero
	var latest time.Time
	for _, txn := range txns {
		total = total.Add(txn.Amount)
		if txn.PaidDate.After(latest) {
			latest = txn.PaidDate
		}
	}
	return Row{
		Stock:  stock,
		Type:   RowPaid,
		Month:  w.Key,
		Date:   latest,
		Period: ClassifyPeriod(latest, w),
		COGS:   total,
		Profit: total.Neg(),
	}
}
