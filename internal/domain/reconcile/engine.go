package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/dms/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Joiner fetches one primary collection for a month window, enriches each
// record with its children, and emits computed report rows. A missing child
// reference degrades to a zero-valued default; only store-level failures
// surface as errors.
type Joiner interface {
	Type() RowType
	Join(ctx context.Context, w MonthWindow) ([]Row, error)
}

// Engine owns the record store handle and builds the joiner set for a run.
type Engine struct {
	store RecordStore
	log   *zap.Logger
}

// NewEngine creates a reconciliation engine over the given record store.
func NewEngine(store RecordStore, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, log: log}
}

// Joiners returns the full joiner set, one per report row type. Callers run
// them concurrently per month; each joiner is independent of the others.
func (e *Engine) Joiners() []Joiner {
	return []Joiner{
		&dealJoiner{e: e},
		&transferJoiner{e: e, typ: RowShipping, tag: TxnShipping, monthField: "shipping_month"},
		&transferJoiner{e: e, typ: RowShippingIn, tag: TxnShippingIn, monthField: "shipping_in_month"},
		&transferJoiner{e: e, typ: RowFinance, tag: TxnFinance},
		&paidJoiner{e: e},
		&purchaseJoiner{e: e},
		&laborJoiner{e: e},
		&serviceJoiner{e: e},
		&loadJoiner{e: e},
	}
}

// childDoc resolves a child reference. A missing record is not an error for
// the row being joined: it comes back as an empty document and the derived
// figures fall out as zeros.
func (e *Engine) childDoc(ctx context.Context, collection, key string) (Document, error) {
	if key == "" {
		return Document{}, nil
	}
	doc, err := e.store.GetByKey(ctx, collection, key)
	if errors.Is(err, shared.ErrNotFound) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

// childDocs fetches the child records referencing a stock number.
func (e *Engine) childDocs(ctx context.Context, collection, stock string) ([]Document, error) {
	if stock == "" {
		return nil, nil
	}
	docs, err := e.store.QueryEquals(ctx, collection, "stock", stock)
	if err != nil {
		return nil, fmt.Errorf("query %s by stock %s: %w", collection, stock, err)
	}
	return docs, nil
}

// joinEach runs fn concurrently over every primary document, preserving the
// primary query's ordering in the output.
func joinEach(ctx context.Context, docs []Document, fn func(ctx context.Context, doc Document) (Row, error)) ([]Row, error) {
	rows := make([]Row, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			row, err := fn(gctx, doc)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
