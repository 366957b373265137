package registry

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"flipledger/internal/domain"
)

const (
	DefaultMinSKU = 1000
	DefaultMaxSKU = 9999

	defaultMaxAttempts = 64
	maxClaimRounds     = 16
)

// Allocator hands out SKUs drawn uniformly from [Min, Max], both inclusive,
// skipping every SKU already in the registry.
type Allocator struct {
	Registry Registry
	Min      int
	Max      int
	// MaxAttempts bounds random draws before falling back to the free list.
	MaxAttempts int
	// IntN returns a value in [0, n); defaults to math/rand/v2.
	IntN func(n int) int

	mu sync.Mutex
}

// NewAllocator uses the default range when min and max are zero.
func NewAllocator(reg Registry, min, max int) (*Allocator, error) {
	if min == 0 && max == 0 {
		min, max = DefaultMinSKU, DefaultMaxSKU
	}
	if min <= 0 || max < min {
		return nil, fmt.Errorf("invalid sku range [%d, %d]", min, max)
	}
	return &Allocator{Registry: reg, Min: min, Max: max, MaxAttempts: defaultMaxAttempts}, nil
}

func (a *Allocator) intn(n int) int {
	if a.IntN != nil {
		return a.IntN(n)
	}
	return rand.Intn(n)
}

// Allocate reserves and returns a fresh SKU, or ErrExhausted when the range is full.
// A candidate claimed by another writer in the meantime is dropped and the
// used set is reloaded.
func (a *Allocator) Allocate(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for round := 0; round < maxClaimRounds; round++ {
		sku, err := a.pick(ctx)
		if err != nil {
			return 0, err
		}
		ok, err := a.Registry.Claim(ctx, sku)
		if err != nil {
			return 0, fmt.Errorf("record sku %d: %w", sku, err)
		}
		if ok {
			return sku, nil
		}
	}
	return 0, fmt.Errorf("%w: lost %d claims in a row", domain.ErrExhausted, maxClaimRounds)
}

// pick draws a candidate that is free according to the current registry.
func (a *Allocator) pick(ctx context.Context) (int, error) {
	used, err := a.Registry.Used(ctx)
	if err != nil {
		return 0, fmt.Errorf("load sku registry: %w", err)
	}
	span := a.Max - a.Min + 1

	attempts := a.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		candidate := a.Min + a.intn(span)
		if _, taken := used[candidate]; !taken {
			return candidate, nil
		}
	}

	// Dense registry: pick uniformly among what is left.
	free := make([]int, 0, span)
	for sku := a.Min; sku <= a.Max; sku++ {
		if _, taken := used[sku]; !taken {
			free = append(free, sku)
		}
	}
	if len(free) == 0 {
		return 0, fmt.Errorf("%w: all %d skus in [%d, %d] are used", domain.ErrExhausted, span, a.Min, a.Max)
	}
	return free[a.intn(len(free))], nil
}
