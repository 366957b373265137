package builds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"flipledger/internal/application/images"
	"flipledger/internal/codec"
	"flipledger/internal/domain"
	"flipledger/internal/infrastructure/registry"
	"flipledger/internal/infrastructure/store"
	"flipledger/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DateLayout is used when a date is filled in on the caller's behalf.
const DateLayout = "2006-01-02"

type Service struct {
	Store     store.Store
	Registry  registry.Registry
	Allocator *registry.Allocator
	Images    *images.Service
	Format    codec.Format
	// Now defaults to time.Now.
	Now func() time.Time
}

type ComponentInput struct {
	// Kind may be omitted; it must match the slot when given.
	Kind  string          `json:"kind"`
	Name  string          `json:"name"`
	Brand string          `json:"brand"`
	Price decimal.Decimal `json:"price"`
}

type CreateInput struct {
	Components      map[domain.Slot]ComponentInput `json:"components"`
	ExtraCosts      decimal.Decimal                `json:"extra_costs"`
	TargetSellPrice decimal.Decimal                `json:"target_sell_price"`
	ExtraProfit     decimal.Decimal                `json:"extra_profit"`
	ListDate        string                         `json:"list_date"`
	Specs           domain.Specs                   `json:"specs"`
}

type SkippedRecord struct {
	SKU    string `json:"sku"`
	Reason string `json:"reason"`
}

type ListResult struct {
	Builds  []domain.BuildView `json:"builds"`
	Skipped []SkippedRecord    `json:"skipped"`
	// StoreError is set when the store itself could not be read.
	StoreError string `json:"store_error,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ListAllSKUs returns the sku of every stored record that carries one, in store order.
func (s *Service) ListAllSKUs(ctx context.Context) ([]int, error) {
	recs, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	skus := make([]int, 0, len(recs))
	for _, rec := range recs {
		sku, err := codec.Int(rec[store.KeySKU])
		if err != nil {
			log.Warn().Str("sku", store.SKUString(rec[store.KeySKU])).Msg("Record without a numeric sku")
			continue
		}
		skus = append(skus, sku)
	}
	return skus, nil
}

// Load reconstructs the build stored under sku. The registry is repaired if the sku
// is missing from it, and the record is rewritten when its encoding is stale.
func (s *Service) Load(ctx context.Context, sku int) (*domain.Build, error) {
	rec, err := s.Store.Find(ctx, sku)
	if err != nil {
		return nil, err
	}
	b, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}
	s.ensureRegistered(ctx, b.SKU)

	if fresh := ToRecord(b, s.Format); recordChanged(rec, fresh) {
		if err := s.Store.Upsert(ctx, b.SKU, fresh); err != nil {
			log.Warn().Err(err).Int("sku", b.SKU).Msg("Failed to rewrite stale build record")
		} else {
			log.Debug().Int("sku", b.SKU).Msg("Rewrote build record")
		}
	}
	return b, nil
}

// View loads sku and renders it for display.
func (s *Service) View(ctx context.Context, sku int) (*domain.BuildView, error) {
	b, err := s.Load(ctx, sku)
	if err != nil {
		return nil, err
	}
	v := domain.NewView(b)
	return &v, nil
}

func (s *Service) ensureRegistered(ctx context.Context, sku int) {
	if s.Registry == nil {
		return
	}
	ok, err := s.Registry.Contains(ctx, sku)
	if err != nil {
		log.Warn().Err(err).Int("sku", sku).Msg("Failed to check sku registry")
		return
	}
	if ok {
		return
	}
	if err := s.Registry.Add(ctx, sku); err != nil {
		log.Warn().Err(err).Int("sku", sku).Msg("Failed to add sku to registry")
		return
	}
	log.Warn().Int("sku", sku).Msg("Stored build was missing from the sku registry, added")
}

// Create validates in, allocates a fresh sku and writes the build through to the store.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Build, error) {
	b, err := buildFromInput(in)
	if err != nil {
		return nil, err
	}
	if b.ListDate == "" {
		b.ListDate = s.now().Format(DateLayout)
	}

	sku, err := s.Allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}
	b.SKU = sku
	if err := s.Store.Upsert(ctx, sku, ToRecord(b, s.Format)); err != nil {
		log.Error().Err(err).Int("sku", sku).Msg("Failed to persist new build")
		return nil, fmt.Errorf("persist build %d: %w", sku, err)
	}
	log.Info().Int("sku", sku).Msg("Build created")
	return b, nil
}

func buildFromInput(in CreateInput) (*domain.Build, error) {
	b := &domain.Build{}
	for slot := range in.Components {
		if _, ok := domain.ParseSlot(string(slot)); !ok || string(slot) != strings.ToLower(string(slot)) {
			return nil, fmt.Errorf("%w: unknown slot %q", domain.ErrInvalidInput, slot)
		}
	}
	for _, slot := range domain.Slots {
		ci, ok := in.Components[slot]
		if !ok {
			if slot.Required() {
				return nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, slot)
			}
			continue
		}
		c, err := componentFromInput(slot, ci)
		if err != nil {
			return nil, err
		}
		if err := b.SetComponent(slot, &c); err != nil {
			return nil, err
		}
	}

	for name, v := range map[string]decimal.Decimal{
		"extra_costs":       in.ExtraCosts,
		"target_sell_price": in.TargetSellPrice,
		"extra_profit":      in.ExtraProfit,
	} {
		if !validation.IsValidMoney(v) {
			return nil, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, name)
		}
	}
	if !validation.IsValidDate(in.ListDate) {
		return nil, fmt.Errorf("%w: list_date must be YYYY-MM-DD or DD/MM/YYYY", domain.ErrInvalidInput)
	}
	specs, err := specsFromInput(in.Specs)
	if err != nil {
		return nil, err
	}

	b.ExtraCosts = in.ExtraCosts
	b.TargetSellPrice = in.TargetSellPrice
	b.ExtraProfit = in.ExtraProfit
	b.ListDate = in.ListDate
	b.Specs = specs
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func componentFromInput(slot domain.Slot, ci ComponentInput) (domain.Component, error) {
	kind := slot.Kind()
	if ci.Kind != "" {
		k, err := domain.ParseKind(ci.Kind)
		if err != nil {
			return domain.Component{}, fmt.Errorf("%w: %s: unknown kind %q", domain.ErrInvalidInput, slot, ci.Kind)
		}
		if k != kind {
			return domain.Component{}, fmt.Errorf("%w: %s slot expects %s, got %s", domain.ErrInvalidInput, slot, kind, k)
		}
	}
	name := strings.TrimSpace(ci.Name)
	brand := strings.TrimSpace(ci.Brand)
	if !validation.IsValidComponentText(name) {
		return domain.Component{}, fmt.Errorf("%w: %s name must be non-empty and contain no commas", domain.ErrInvalidInput, slot)
	}
	if !validation.IsValidComponentText(brand) {
		return domain.Component{}, fmt.Errorf("%w: %s brand must be non-empty and contain no commas", domain.ErrInvalidInput, slot)
	}
	return domain.NewComponent(kind, name, brand, ci.Price)
}

func specsFromInput(in domain.Specs) (domain.Specs, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(domain.Specs, len(in))
	for slot, attrs := range in {
		if _, ok := domain.ParseSlot(string(slot)); !ok {
			return nil, fmt.Errorf("%w: specs for unknown slot %q", domain.ErrInvalidInput, slot)
		}
		m := make(map[string]string, len(attrs))
		for k, v := range attrs {
			if !validation.IsValidSpecKey(k) {
				return nil, fmt.Errorf("%w: invalid spec name %q", domain.ErrInvalidInput, k)
			}
			m[k] = strings.TrimSpace(v)
		}
		out[slot] = m
	}
	return out, nil
}

// MarkSold records a sale. An empty date means today.
func (s *Service) MarkSold(ctx context.Context, sku int, price decimal.Decimal, date string) (*domain.Build, error) {
	if !validation.IsValidMoney(price) {
		return nil, fmt.Errorf("%w: sell_price must not be negative", domain.ErrInvalidInput)
	}
	if !validation.IsValidDate(date) {
		return nil, fmt.Errorf("%w: sell_date must be YYYY-MM-DD or DD/MM/YYYY", domain.ErrInvalidInput)
	}
	if date == "" {
		date = s.now().Format(DateLayout)
	}
	return s.mutate(ctx, sku, func(b *domain.Build) error {
		return b.SetToSold(price, date)
	})
}

// UpdateExtraCosts replaces the extra costs of sku.
func (s *Service) UpdateExtraCosts(ctx context.Context, sku int, value decimal.Decimal) (*domain.Build, error) {
	return s.mutate(ctx, sku, func(b *domain.Build) error {
		return b.UpdateExtraCosts(value)
	})
}

// mutate applies fn to a copy and returns it only once the store accepted the write.
func (s *Service) mutate(ctx context.Context, sku int, fn func(*domain.Build) error) (*domain.Build, error) {
	current, err := s.Load(ctx, sku)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return nil, err
	}
	if err := s.Store.Upsert(ctx, sku, ToRecord(&next, s.Format)); err != nil {
		log.Error().Err(err).Int("sku", sku).Msg("Failed to persist build update")
		return nil, fmt.Errorf("persist build %d: %w", sku, err)
	}
	return &next, nil
}

// ListAll renders every decodable build. Records that fail to decode are skipped and
// reported; a store that cannot be read yields an empty result with StoreError set.
func (s *Service) ListAll(ctx context.Context) ListResult {
	res := ListResult{Builds: []domain.BuildView{}, Skipped: []SkippedRecord{}}
	recs, err := s.Store.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read build store")
		res.StoreError = err.Error()
		return res
	}
	for _, rec := range recs {
		b, err := FromRecord(rec)
		if err != nil {
			sku := store.SKUString(rec[store.KeySKU])
			log.Warn().Err(err).Str("sku", sku).Msg("Skipping undecodable build record")
			res.Skipped = append(res.Skipped, SkippedRecord{SKU: sku, Reason: err.Error()})
			continue
		}
		res.Builds = append(res.Builds, domain.NewView(b))
	}
	return res
}

// Sorted orders views by the given field. Unknown fields keep store order.
func Sorted(views []domain.BuildView, field string) []domain.BuildView {
	out := append([]domain.BuildView(nil), views...)
	var less func(a, b domain.BuildView) bool
	switch field {
	case "sku":
		less = func(a, b domain.BuildView) bool { return a.SKU < b.SKU }
	case "list_date":
		less = func(a, b domain.BuildView) bool { return sortableDate(a.ListDate) < sortableDate(b.ListDate) }
	case "target_profit":
		less = func(a, b domain.BuildView) bool {
			return decimal.RequireFromString(a.TargetProfit).LessThan(decimal.RequireFromString(b.TargetProfit))
		}
	case "total_price":
		less = func(a, b domain.BuildView) bool {
			return decimal.RequireFromString(a.TotalPrice).LessThan(decimal.RequireFromString(b.TotalPrice))
		}
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func sortableDate(s string) string {
	for _, layout := range validation.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}

// Delete removes the build and its image. The sku stays reserved.
func (s *Service) Delete(ctx context.Context, sku int) error {
	rec, err := s.Store.Find(ctx, sku)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, sku); err != nil {
		return err
	}
	if name, _ := rec[keyImageFileName].(string); name != "" && s.Images != nil {
		if err := s.Images.Remove(name); err != nil {
			log.Warn().Err(err).Int("sku", sku).Str("file", name).Msg("Failed to remove build image")
		}
	}
	log.Info().Int("sku", sku).Msg("Build deleted")
	return nil
}

// AttachImage stores the uploaded photo and records its file name on the build.
func (s *Service) AttachImage(ctx context.Context, sku int, originalName string, content io.Reader) (*domain.Build, error) {
	if s.Images == nil {
		return nil, errors.New("image storage is not configured")
	}
	if _, err := s.Store.Find(ctx, sku); err != nil {
		return nil, err
	}
	name, err := s.Images.Save(sku, originalName, content)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sku, func(b *domain.Build) error {
		b.ImageFileName = name
		return nil
	})
}
