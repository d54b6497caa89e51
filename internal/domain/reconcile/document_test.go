package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDocumentDec(t *testing.T) {
	doc := Document{
		"float":     1234.56,
		"int":       42,
		"string":    "99.95",
		"number":    json.Number("7.5"),
		"decimal":   decimal.NewFromInt(10),
		"malformed": "not a number",
		"nil":       nil,
	}

	assert.True(t, doc.Dec("float").Equal(decimal.NewFromFloat(1234.56)))
	assert.True(t, doc.Dec("int").Equal(decimal.NewFromInt(42)))
	assert.True(t, doc.Dec("string").Equal(decimal.RequireFromString("99.95")))
	assert.True(t, doc.Dec("number").Equal(decimal.RequireFromString("7.5")))
	assert.True(t, doc.Dec("decimal").Equal(decimal.NewFromInt(10)))

	// Bad data degrades to zero instead of failing the row.
	assert.True(t, doc.Dec("malformed").IsZero())
	assert.True(t, doc.Dec("nil").IsZero())
	assert.True(t, doc.Dec("absent").IsZero())
}

func TestDocumentDecOK(t *testing.T) {
	doc := Document{"present": 6800, "null": nil}

	v, ok := doc.DecOK("present")
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(6800)))

	_, ok = doc.DecOK("null")
	assert.False(t, ok)
	_, ok = doc.DecOK("absent")
	assert.False(t, ok)
}

func TestDocumentStr(t *testing.T) {
	doc := Document{"name": "A100", "num": json.Number("12"), "bool": true}
	assert.Equal(t, "A100", doc.Str("name"))
	assert.Equal(t, "12", doc.Str("num"))
	assert.Equal(t, "", doc.Str("bool"))
	assert.Equal(t, "", doc.Str("absent"))
}

func TestDocumentBool(t *testing.T) {
	doc := Document{"t": true, "f": false, "one": float64(1), "zero": 0, "s": "true"}
	assert.True(t, doc.Bool("t"))
	assert.False(t, doc.Bool("f"))
	assert.True(t, doc.Bool("one"))
	assert.False(t, doc.Bool("zero"))
	assert.True(t, doc.Bool("s"))
	assert.False(t, doc.Bool("absent"))
}

func TestDocumentTime(t *testing.T) {
	doc := Document{
		"rfc3339": "2024-03-10T15:04:05Z",
		"day":     "2024-03-10",
		"native":  time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		"junk":    "next tuesday",
	}

	assert.Equal(t, 2024, doc.Time("rfc3339").Year())
	assert.Equal(t, time.March, doc.Time("day").Month())
	assert.False(t, doc.Time("native").IsZero())
	assert.True(t, doc.Time("junk").IsZero())
	assert.True(t, doc.Time("absent").IsZero())
}

func TestDocumentDocs(t *testing.T) {
	doc := Document{
		"legs": []any{
			map[string]any{"stock": "A100", "charge": 200},
			map[string]any{"stock": "B200", "charge": 150},
		},
		"typed":  []Document{{"stock": "C300"}},
		"scalar": "not a list",
	}

	legs := doc.Docs("legs")
	assert.Len(t, legs, 2)
	assert.Equal(t, "A100", legs[0].Str("stock"))

	assert.Len(t, doc.Docs("typed"), 1)
	assert.Nil(t, doc.Docs("scalar"))
	assert.Nil(t, doc.Docs("absent"))
}
