package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"slices"
	"sync"

	"flipledger/internal/domain"
	"flipledger/internal/pkg/fileutil"

	"github.com/tidwall/pretty"
)

type skuDocument struct {
	SKUs []int `json:"SKUS"`
}

// JSONFile keeps the used set in {"SKUS": [...]}, rewritten atomically on every Add.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (r *JSONFile) load() (skuDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return skuDocument{SKUs: []int{}}, nil
		}
		return skuDocument{}, &domain.StoreIOError{Op: "read", Path: r.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return skuDocument{SKUs: []int{}}, nil
	}
	var doc skuDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return skuDocument{}, &domain.StoreIOError{Op: "parse", Path: r.path, Err: err}
	}
	return doc, nil
}

func (r *JSONFile) Used(ctx context.Context) (map[int]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	used := make(map[int]struct{}, len(doc.SKUs))
	for _, sku := range doc.SKUs {
		used[sku] = struct{}{}
	}
	return used, nil
}

func (r *JSONFile) Contains(ctx context.Context, sku int) (bool, error) {
	used, err := r.Used(ctx)
	if err != nil {
		return false, err
	}
	_, ok := used[sku]
	return ok, nil
}

func (r *JSONFile) Add(ctx context.Context, sku int) error {
	_, err := r.Claim(ctx, sku)
	return err
}

func (r *JSONFile) Claim(ctx context.Context, sku int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}
	if slices.Contains(doc.SKUs, sku) {
		return false, nil
	}
	doc.SKUs = append(doc.SKUs, sku)
	data, err := json.Marshal(doc)
	if err != nil {
		return false, &domain.StoreIOError{Op: "encode", Path: r.path, Err: err}
	}
	if err := fileutil.WriteAtomic(r.path, pretty.Pretty(data), 0o644); err != nil {
		return false, &domain.StoreIOError{Op: "write", Path: r.path, Err: err}
	}
	return true, nil
}
