package reconcile

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Document is a schemaless record returned by the record store.
// Accessors coerce absent or malformed values to zero values; the
// reconciliation engine never fails on a single bad field.
type Document map[string]any

// Str returns the string value under key, or "" when absent.
func (d Document) Str(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Dec returns the decimal value under key. Absent keys and values that
// cannot be interpreted as numbers coerce to zero.
func (d Document) Dec(key string) decimal.Decimal {
	v, ok := d[key]
	if !ok {
		return decimal.Zero
	}
	return coerceDecimal(v)
}

// DecOK is Dec plus a flag reporting whether the key held a usable number.
func (d Document) DecOK(key string) (decimal.Decimal, bool) {
	v, ok := d[key]
	if !ok {
		return decimal.Zero, false
	}
	switch v.(type) {
	case nil:
		return decimal.Zero, false
	}
	dec := coerceDecimal(v)
	return dec, true
}

// Bool returns the boolean value under key, or false when absent.
// Numeric values follow the usual nonzero-is-true convention.
func (d Document) Bool(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

// Time returns the timestamp under key. The zero time means absent, which
// the period classifier maps to "future".
func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Docs returns the nested document list under key (for embedded child
// collections such as service-order lines or load legs).
func (d Document) Docs(key string) []Document {
	raw, ok := d[key].([]any)
	if !ok {
		if docs, ok := d[key].([]Document); ok {
			return docs
		}
		return nil
	}
	out := make([]Document, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case Document:
			out = append(out, v)
		case map[string]any:
			out = append(out, Document(v))
		}
	}
	return out
}

func coerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d
		}
	}
	return decimal.Zero
}
