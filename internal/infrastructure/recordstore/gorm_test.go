package recordstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dms/backend/internal/domain/reconcile"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "documents.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store := NewGormStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func TestGormStorePutAndGet(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	doc := reconcile.Document{"stock": "A100", "month": "2024-03", "amount": 500}
	require.NoError(t, store.Put(ctx, "deals", "A100", doc))

	got, err := store.GetByKey(ctx, "deals", "A100")
	require.NoError(t, err)
	assert.Equal(t, "A100", got.Str("stock"))
	assert.True(t, got.Dec("amount").Equal(decimal.NewFromInt(500)))

	_, err = store.GetByKey(ctx, "deals", "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormStorePutReplaces(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "cars", "A100", reconcile.Document{"model": "F-150"}))
	require.NoError(t, store.Put(ctx, "cars", "A100", reconcile.Document{"model": "Bronco"}))

	got, err := store.GetByKey(ctx, "cars", "A100")
	require.NoError(t, err)
	assert.Equal(t, "Bronco", got.Str("model"))
}

func TestGormStoreQueryEquals(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "deals", "b", reconcile.Document{"stock": "B", "month": "2024-03"}))
	require.NoError(t, store.Put(ctx, "deals", "a", reconcile.Document{"stock": "A", "month": "2024-03"}))
	require.NoError(t, store.Put(ctx, "deals", "c", reconcile.Document{"stock": "C", "month": "2024-04"}))

	docs, err := store.QueryEquals(ctx, "deals", "month", "2024-03")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "A", docs[0].Str("stock"), "results ordered by key")
	assert.Equal(t, "B", docs[1].Str("stock"))
}

func TestGormStoreQueryEqualsBool(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "deals", "f", reconcile.Document{"stock": "F", "is_finance": true}))
	require.NoError(t, store.Put(ctx, "deals", "r", reconcile.Document{"stock": "R", "is_finance": false}))

	docs, err := store.QueryEquals(ctx, "deals", "is_finance", true)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "F", docs[0].Str("stock"))
}

func TestGormStoreQueryRange(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "expenses", "e1", reconcile.Document{"memo": "in", "paid_date": "2024-03-15T00:00:00Z"}))
	require.NoError(t, store.Put(ctx, "expenses", "e2", reconcile.Document{"memo": "on end", "paid_date": "2024-04-01T00:00:00Z"}))
	require.NoError(t, store.Put(ctx, "expenses", "e3", reconcile.Document{"memo": "before", "paid_date": "2024-02-28T00:00:00Z"}))

	low := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	high := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	docs, err := store.QueryRange(ctx, "expenses", "paid_date", low, high)
	require.NoError(t, err)
	require.Len(t, docs, 1, "end of window is exclusive")
	assert.Equal(t, "in", docs[0].Str("memo"))
}

func TestGormStoreQueryEqualsAndRange(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "services", "s1", reconcile.Document{
		"order_id": "RO-1", "status": "completed", "status_time": "2024-03-10T00:00:00Z",
	}))
	require.NoError(t, store.Put(ctx, "services", "s2", reconcile.Document{
		"order_id": "RO-2", "status": "open", "status_time": "2024-03-11T00:00:00Z",
	}))

	low := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	high := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	docs, err := store.QueryEqualsAndRange(ctx, "services", "status", "completed", "status_time", low, high)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "RO-1", docs[0].Str("order_id"))
}

func TestGormStoreCollectionsIsolated(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "deals", "A100", reconcile.Document{"stock": "A100"}))
	require.NoError(t, store.Put(ctx, "cars", "A100", reconcile.Document{"stock": "A100", "model": "F-150"}))

	docs, err := store.QueryEquals(ctx, "deals", "stock", "A100")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Str("model"))
}
