package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/reconcile"
	"github.com/redis/go-redis/v9"
)

// byteCache is the minimal cache surface the read-through store needs.
// Redis backs it in production; tests supply an in-memory implementation.
type byteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// CachedStore fronts GetByKey with a best-effort cache. Key lookups are the
// hot path of every join fan-out (cars, customers, invoices resolve by
// key); field queries change with each month window and pass through.
// Cache errors are ignored — the inner store is always authoritative.
type CachedStore struct {
	inner reconcile.RecordStore
	cache byteCache
	ttl   time.Duration
}

// NewCachedStore wraps a record store with a Redis read-through cache.
func NewCachedStore(inner reconcile.RecordStore, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: &redisByteCache{client: client, keyPrefix: "recordstore:doc:"},
		ttl:   ttl,
	}
}

func newCachedStoreWithCache(inner reconcile.RecordStore, cache byteCache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: cache, ttl: ttl}
}

// GetByKey implements reconcile.RecordStore.
func (s *CachedStore) GetByKey(ctx context.Context, collection, key string) (reconcile.Document, error) {
	cacheKey := collection + ":" + key
	if payload, ok := s.cache.Get(ctx, cacheKey); ok {
		var doc reconcile.Document
		if err := json.Unmarshal(payload, &doc); err == nil {
			return doc, nil
		}
		// Corrupt entry: fall through and repopulate from the inner store.
	}

	doc, err := s.inner.GetByKey(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(doc); err == nil {
		s.cache.Set(ctx, cacheKey, payload, s.ttl)
	}
	return doc, nil
}

// QueryEquals implements reconcile.RecordStore.
func (s *CachedStore) QueryEquals(ctx context.Context, collection, field string, value any) ([]reconcile.Document, error) {
	return s.inner.QueryEquals(ctx, collection, field, value)
}

// QueryRange implements reconcile.RecordStore.
func (s *CachedStore) QueryRange(ctx context.Context, collection, field string, low, high any) ([]reconcile.Document, error) {
	return s.inner.QueryRange(ctx, collection, field, low, high)
}

// QueryEqualsAndRange implements reconcile.RecordStore.
func (s *CachedStore) QueryEqualsAndRange(ctx context.Context, collection, field string, value any, rangeField string, low, high any) ([]reconcile.Document, error) {
	return s.inner.QueryEqualsAndRange(ctx, collection, field, value, rangeField, low, high)
}

type redisByteCache struct {
	client    *redis.Client
	keyPrefix string
}

func (c *redisByteCache) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *redisByteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.client.Set(ctx, c.keyPrefix+key, value, ttl)
}

// PingRedis verifies Redis connectivity before the cache is put in front
// of the store.
func PingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}
