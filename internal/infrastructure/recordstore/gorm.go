package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/reconcile"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentModel is the storage row for one external document. The payload
// stays schemaless JSON; the engine never owns the schema of the upstream
// collections, it only reads them.
type DocumentModel struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Collection string    `gorm:"column:collection;size:64;not null;uniqueIndex:idx_documents_collection_key,priority:1"`
	Key        string    `gorm:"column:key;size:128;not null;uniqueIndex:idx_documents_collection_key,priority:2"`
	Payload    []byte    `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName sets the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// GormStore adapts a GORM-managed documents table to reconcile.RecordStore.
// Timestamps inside payloads are stored as RFC3339 UTC strings, which
// compare correctly as text in both supported dialects.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a record store over the given GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the documents table.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&DocumentModel{})
}

// Put upserts a document under (collection, key).
func (s *GormStore) Put(ctx context.Context, collection, key string, doc reconcile.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, key, err)
	}
	model := DocumentModel{
		ID:         uuid.New(),
		Collection: collection,
		Key:        key,
		Payload:    payload,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&model).Error
}

// GetByKey implements reconcile.RecordStore.
func (s *GormStore) GetByKey(ctx context.Context, collection, key string) (reconcile.Document, error) {
	var model DocumentModel
	err := s.db.WithContext(ctx).
		Where("collection = ? AND key = ?", collection, key).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return decodePayload(model.Payload)
}

// QueryEquals implements reconcile.RecordStore.
func (s *GormStore) QueryEquals(ctx context.Context, collection, field string, value any) ([]reconcile.Document, error) {
	query := s.base(ctx, collection)
	expr, args := s.equalsCond(field, value)
	return s.find(query.Where(expr, args...))
}

// QueryRange implements reconcile.RecordStore.
func (s *GormStore) QueryRange(ctx context.Context, collection, field string, low, high any) ([]reconcile.Document, error) {
	query := s.base(ctx, collection)
	expr, args := s.rangeCond(field, low, high)
	return s.find(query.Where(expr, args...))
}

// QueryEqualsAndRange implements reconcile.RecordStore.
func (s *GormStore) QueryEqualsAndRange(ctx context.Context, collection, field string, value any, rangeField string, low, high any) ([]reconcile.Document, error) {
	query := s.base(ctx, collection)
	eqExpr, eqArgs := s.equalsCond(field, value)
	rgExpr, rgArgs := s.rangeCond(rangeField, low, high)
	return s.find(query.Where(eqExpr, eqArgs...).Where(rgExpr, rgArgs...))
}

func (s *GormStore) base(ctx context.Context, collection string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&DocumentModel{}).
		Where("collection = ?", collection).
		Order("key ASC")
}

func (s *GormStore) find(query *gorm.DB) ([]reconcile.Document, error) {
	var models []DocumentModel
	if err := query.Find(&models).Error; err != nil {
		return nil, storeErr(err)
	}
	docs := make([]reconcile.Document, 0, len(models))
	for _, model := range models {
		doc, err := decodePayload(model.Payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// equalsCond builds a dialect-specific equality condition on a payload
// field. SQLite's json_extract yields 0/1 for JSON booleans while Postgres
// ->> yields "true"/"false" text, so boolean values are encoded per dialect.
func (s *GormStore) equalsCond(field string, value any) (string, []any) {
	if s.sqlite() {
		if b, ok := value.(bool); ok {
			n := 0
			if b {
				n = 1
			}
			return "json_extract(payload, ?) = ?", []any{jsonPath(field), n}
		}
		return "json_extract(payload, ?) = ?", []any{jsonPath(field), textValue(value)}
	}
	return "payload ->> ? = ?", []any{field, textValue(value)}
}

// rangeCond matches the half-open interval [low, high), mirroring the
// month windows the engine queries with.
func (s *GormStore) rangeCond(field string, low, high any) (string, []any) {
	if s.sqlite() {
		return "json_extract(payload, ?) >= ? AND json_extract(payload, ?) < ?",
			[]any{jsonPath(field), textValue(low), jsonPath(field), textValue(high)}
	}
	return "payload ->> ? >= ? AND payload ->> ? < ?",
		[]any{field, textValue(low), field, textValue(high)}
}

func (s *GormStore) sqlite() bool {
	return s.db.Dialector.Name() == "sqlite"
}

func jsonPath(field string) string {
	return "$." + field
}

// textValue renders a query value the way json.Marshal renders it inside
// the payload, so text comparison matches the stored representation.
func textValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

func decodePayload(payload []byte) (reconcile.Document, error) {
	var doc reconcile.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode document payload: %w", err)
	}
	return doc, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %s", shared.ErrStoreUnavailable, err)
}
