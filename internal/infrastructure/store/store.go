// Package store persists build records keyed by SKU.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is the persisted shape of one build: scalar fields plus one value per component slot.
type Record map[string]any

// KeySKU is the record field holding the identifier.
const KeySKU = "sku"

// Store is implemented by the JSON document store and the SQL store.
type Store interface {
	// Upsert shallow-merges rec into the record for sku, or appends it with sku injected.
	Upsert(ctx context.Context, sku int, rec Record) error
	// Find returns the record for sku or an error wrapping domain.ErrNotFound.
	Find(ctx context.Context, sku int) (Record, error)
	// ListAll returns every record in insertion order.
	ListAll(ctx context.Context) ([]Record, error)
	// Delete removes the record for sku.
	Delete(ctx context.Context, sku int) error
	Ping(ctx context.Context) error
}

// SKUString coerces a stored sku (number or string) to its canonical string form.
func SKUString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return fmt.Sprint(v)
}

func matches(rec Record, sku int) bool {
	return SKUString(rec[KeySKU]) == strconv.Itoa(sku)
}

// merge overwrites dst with every key of src.
func merge(dst, src Record) {
	for k, v := range src {
		dst[k] = v
	}
}

func withSKU(sku int, rec Record) Record {
	out := make(Record, len(rec)+1)
	merge(out, rec)
	out[KeySKU] = sku
	return out
}
