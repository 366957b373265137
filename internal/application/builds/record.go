package builds

import (
	"bytes"
	"encoding/json"
	"fmt"

	"flipledger/internal/codec"
	"flipledger/internal/domain"
	"flipledger/internal/infrastructure/store"

	"github.com/shopspring/decimal"
)

const (
	keyExtraCosts      = "extra_costs"
	keyTargetSellPrice = "target_sell_price"
	keyExtraProfit     = "extra_profit"
	keySellPrice       = "sell_price"
	keySold            = "sold"
	keyListDate        = "list_date"
	keySellDate        = "sell_date"
	keyImageFileName   = "image_file_name"
	keySpecs           = "specs"
)

// ToRecord encodes b for the store. Empty optional slots are written as null so a
// merge clears them.
func ToRecord(b *domain.Build, f codec.Format) store.Record {
	rec := store.Record{
		store.KeySKU:       b.SKU,
		keyExtraCosts:      codec.Number(b.ExtraCosts),
		keyTargetSellPrice: codec.Number(b.TargetSellPrice),
		keyExtraProfit:     codec.Number(b.ExtraProfit),
		keySellPrice:       codec.Number(b.SellPrice),
		keySold:            b.Sold,
		keyListDate:        b.ListDate,
		keySellDate:        b.SellDate,
		keyImageFileName:   b.ImageFileName,
	}
	for _, slot := range domain.Slots {
		c, ok := b.Component(slot)
		if !ok {
			rec[string(slot)] = nil
			continue
		}
		rec[string(slot)] = codec.Encode(c, f)
	}
	if len(b.Specs) > 0 {
		specs := make(map[string]any, len(b.Specs))
		for slot, attrs := range b.Specs {
			m := make(map[string]any, len(attrs))
			for k, v := range attrs {
				m[k] = v
			}
			specs[string(slot)] = m
		}
		rec[keySpecs] = specs
	}
	return rec
}

// FromRecord reconstructs a build. A required slot that is absent or undecodable
// fails the whole record.
func FromRecord(rec store.Record) (*domain.Build, error) {
	sku, err := codec.Int(rec[store.KeySKU])
	if err != nil {
		return nil, &domain.FormatError{Token: store.SKUString(rec[store.KeySKU]), Reason: "sku is not an integer"}
	}
	b := &domain.Build{SKU: sku}

	for _, slot := range domain.Slots {
		c, err := codec.DecodeValue(rec[string(slot)])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slot, err)
		}
		if c == nil && slot.Required() {
			return nil, &domain.FormatError{Reason: fmt.Sprintf("missing required component %s", slot)}
		}
		if c != nil && c.Kind != slot.Kind() {
			return nil, &domain.FormatError{
				Token:  codec.EncodeToken(*c),
				Reason: fmt.Sprintf("%s slot holds a %s", slot, c.Kind),
			}
		}
		if err := b.SetComponent(slot, c); err != nil {
			return nil, err
		}
	}

	money := []struct {
		key string
		dst *decimal.Decimal
	}{
		{keyExtraCosts, &b.ExtraCosts},
		{keyTargetSellPrice, &b.TargetSellPrice},
		{keyExtraProfit, &b.ExtraProfit},
		{keySellPrice, &b.SellPrice},
	}
	for _, m := range money {
		d, err := codec.Decimal(rec[m.key])
		if err != nil {
			return nil, &domain.FormatError{Token: fmt.Sprint(rec[m.key]), Reason: m.key + " is not numeric"}
		}
		*m.dst = d
	}

	b.Sold, _ = rec[keySold].(bool)
	b.ListDate, _ = rec[keyListDate].(string)
	b.SellDate, _ = rec[keySellDate].(string)
	b.ImageFileName, _ = rec[keyImageFileName].(string)
	b.Specs = decodeSpecs(rec[keySpecs])

	if err := b.Validate(); err != nil {
		return nil, &domain.FormatError{Reason: err.Error()}
	}
	return b, nil
}

func decodeSpecs(v any) domain.Specs {
	raw, ok := v.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	specs := make(domain.Specs, len(raw))
	for slotName, attrs := range raw {
		slot, ok := domain.ParseSlot(slotName)
		if !ok {
			continue
		}
		m, ok := attrs.(map[string]any)
		if !ok {
			continue
		}
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = fmt.Sprint(val)
		}
		specs[slot] = out
	}
	return specs
}

// recordChanged reports whether writing fresh over stored would alter any key.
func recordChanged(stored, fresh store.Record) bool {
	for k, v := range fresh {
		old, ok := stored[k]
		if !ok {
			if v == nil {
				continue
			}
			return true
		}
		a, errA := json.Marshal(old)
		b, errB := json.Marshal(v)
		if errA != nil || errB != nil || !bytes.Equal(a, b) {
			return true
		}
	}
	return false
}
