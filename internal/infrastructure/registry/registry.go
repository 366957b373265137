// Package registry records every SKU ever handed out and allocates new ones.
package registry

import "context"

// Registry is the persisted set of used SKUs.
type Registry interface {
	Used(ctx context.Context) (map[int]struct{}, error)
	Contains(ctx context.Context, sku int) (bool, error)
	// Add records sku. Adding a SKU that is already present is a no-op.
	Add(ctx context.Context, sku int) error
	// Claim records sku and reports whether this call was the one that added it.
	Claim(ctx context.Context, sku int) (bool, error)
}
