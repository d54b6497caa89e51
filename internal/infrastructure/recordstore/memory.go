package recordstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dms/backend/internal/domain/reconcile"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory RecordStore. It backs the development
// profile and the engine tests; the production adapter is GormStore.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]reconcile.Document
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]reconcile.Document)}
}

// Put inserts or replaces a document under (collection, key).
func (s *MemoryStore) Put(collection, key string, doc reconcile.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]reconcile.Document)
	}
	s.collections[collection][key] = doc
}

// GetByKey implements reconcile.RecordStore.
func (s *MemoryStore) GetByKey(ctx context.Context, collection, key string) (reconcile.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

// QueryEquals implements reconcile.RecordStore.
func (s *MemoryStore) QueryEquals(ctx context.Context, collection, field string, value any) ([]reconcile.Document, error) {
	return s.scan(ctx, collection, func(doc reconcile.Document) bool {
		return fieldEquals(doc, field, value)
	})
}

// QueryRange implements reconcile.RecordStore.
func (s *MemoryStore) QueryRange(ctx context.Context, collection, field string, low, high any) ([]reconcile.Document, error) {
	return s.scan(ctx, collection, func(doc reconcile.Document) bool {
		return fieldInRange(doc, field, low, high)
	})
}

// QueryEqualsAndRange implements reconcile.RecordStore.
func (s *MemoryStore) QueryEqualsAndRange(ctx context.Context, collection, field string, value any, rangeField string, low, high any) ([]reconcile.Document, error) {
	return s.scan(ctx, collection, func(doc reconcile.Document) bool {
		return fieldEquals(doc, field, value) && fieldInRange(doc, rangeField, low, high)
	})
}

// scan walks a collection in key order so query results are deterministic
// across runs, which the idempotence guarantee of the engine leans on.
func (s *MemoryStore) scan(ctx context.Context, collection string, match func(reconcile.Document) bool) ([]reconcile.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	keys := make([]string, 0, len(docs))
	for key := range docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []reconcile.Document
	for _, key := range keys {
		if match(docs[key]) {
			out = append(out, docs[key])
		}
	}
	return out, nil
}

func fieldEquals(doc reconcile.Document, field string, value any) bool {
	switch v := value.(type) {
	case bool:
		return doc.Bool(field) == v
	case string:
		return doc.Str(field) == v
	case time.Time:
		return doc.Time(field).Equal(v)
	default:
		return doc.Dec(field).Equal(toDecimal(value))
	}
}

// fieldInRange matches the half-open interval [low, high), mirroring the
// month windows the engine queries with.
func fieldInRange(doc reconcile.Document, field string, low, high any) bool {
	switch lo := low.(type) {
	case time.Time:
		hi, _ := high.(time.Time)
		t := doc.Time(field)
		return !t.IsZero() && !t.Before(lo) && t.Before(hi)
	case string:
		val := doc.Str(field)
		hi, _ := high.(string)
		return val != "" && val >= lo && val < hi
	default:
		val := doc.Dec(field)
		return val.GreaterThanOrEqual(toDecimal(low)) && val.LessThan(toDecimal(high))
	}
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	default:
		return decimal.Zero
	}
}
