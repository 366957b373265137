package domain

import (
	"fmt"
	"maps"

	"github.com/shopspring/decimal"
)

// Specs holds kind-specific attributes (cores, wattage, ...) keyed by slot.
// They live beside the components so the shared component shape stays fixed.
type Specs map[Slot]map[string]string

// Build is one assembled PC held for resale. SKU is fixed once assigned.
type Build struct {
	SKU int

	CPU         Component
	GPU         Component
	RAM         Component
	Motherboard Component
	PSU         Component
	Case        Component

	SSD  *Component
	HDD  *Component
	NVMe *Component

	ExtraCosts      decimal.Decimal
	TargetSellPrice decimal.Decimal
	ExtraProfit     decimal.Decimal // e.g. selling replaced parts
	SellPrice       decimal.Decimal

	Sold          bool
	ListDate      string
	SellDate      string
	ImageFileName string

	Specs Specs
}

// Component returns the component in slot, if present.
func (b *Build) Component(slot Slot) (Component, bool) {
	switch slot {
	case SlotCPU:
		return b.CPU, true
	case SlotGPU:
		return b.GPU, true
	case SlotRAM:
		return b.RAM, true
	case SlotMotherboard:
		return b.Motherboard, true
	case SlotPSU:
		return b.PSU, true
	case SlotCase:
		return b.Case, true
	case SlotSSD:
		return deref(b.SSD)
	case SlotHDD:
		return deref(b.HDD)
	case SlotNVMe:
		return deref(b.NVMe)
	}
	return Component{}, false
}

// SetComponent places c in slot. A nil c clears an optional slot.
func (b *Build) SetComponent(slot Slot, c *Component) error {
	if c == nil {
		if slot.Required() {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, slot)
		}
	} else if c.Kind != slot.Kind() {
		return fmt.Errorf("%w: %s slot expects %s, got %s", ErrInvalidInput, slot, slot.Kind(), c.Kind)
	}
	switch slot {
	case SlotCPU:
		b.CPU = *c
	case SlotGPU:
		b.GPU = *c
	case SlotRAM:
		b.RAM = *c
	case SlotMotherboard:
		b.Motherboard = *c
	case SlotPSU:
		b.PSU = *c
	case SlotCase:
		b.Case = *c
	case SlotSSD:
		b.SSD = clone(c)
	case SlotHDD:
		b.HDD = clone(c)
	case SlotNVMe:
		b.NVMe = clone(c)
	default:
		return fmt.Errorf("%w: unknown slot %q", ErrInvalidInput, slot)
	}
	return nil
}

// Components returns the present components in slot order.
func (b *Build) Components() []Component {
	out := make([]Component, 0, len(Slots))
	for _, slot := range Slots {
		if c, ok := b.Component(slot); ok {
			out = append(out, c)
		}
	}
	return out
}

// TotalPrice is the sum of all present component prices plus extra costs.
func (b *Build) TotalPrice() decimal.Decimal {
	total := b.ExtraCosts
	for _, c := range b.Components() {
		total = total.Add(c.Price)
	}
	return total
}

// TargetProfit is the profit expected at the target sell price.
func (b *Build) TargetProfit() decimal.Decimal {
	return b.TargetSellPrice.Sub(b.TotalPrice()).Add(b.ExtraProfit)
}

// TotalProfit is the realised profit. ok is false until the build is sold.
func (b *Build) TotalProfit() (profit decimal.Decimal, ok bool) {
	if !b.Sold {
		return decimal.Zero, false
	}
	return b.SellPrice.Sub(b.TotalPrice()).Add(b.ExtraProfit), true
}

// UpdateExtraCosts replaces the extra costs (shipping, labour, ...).
func (b *Build) UpdateExtraCosts(v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: extra costs must not be negative", ErrInvalidInput)
	}
	b.ExtraCosts = v
	return nil
}

// SetToSold marks the build sold at price on date.
func (b *Build) SetToSold(price decimal.Decimal, date string) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: sell price must not be negative", ErrInvalidInput)
	}
	b.Sold = true
	b.SellPrice = price
	b.SellDate = date
	return nil
}

// Validate checks slot kinds and money fields.
func (b *Build) Validate() error {
	for _, slot := range Slots {
		c, ok := b.Component(slot)
		if !ok {
			continue
		}
		if c.Kind != slot.Kind() {
			if c.Kind == "" && slot.Required() {
				return fmt.Errorf("%w: %s is required", ErrInvalidInput, slot)
			}
			return fmt.Errorf("%w: %s slot expects %s, got %s", ErrInvalidInput, slot, slot.Kind(), c.Kind)
		}
		if c.Price.IsNegative() {
			return fmt.Errorf("%w: %s price must not be negative", ErrInvalidInput, slot)
		}
	}
	money := map[string]decimal.Decimal{
		"extra_costs":       b.ExtraCosts,
		"target_sell_price": b.TargetSellPrice,
		"extra_profit":      b.ExtraProfit,
		"sell_price":        b.SellPrice,
	}
	for name, v := range money {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, name)
		}
	}
	return nil
}

// Clone returns a deep copy so a mutation can be discarded if persisting fails.
func (b Build) Clone() Build {
	out := b
	out.SSD = clone(b.SSD)
	out.HDD = clone(b.HDD)
	out.NVMe = clone(b.NVMe)
	if b.Specs != nil {
		out.Specs = make(Specs, len(b.Specs))
		for slot, attrs := range b.Specs {
			out.Specs[slot] = maps.Clone(attrs)
		}
	}
	return out
}

func deref(c *Component) (Component, bool) {
	if c == nil {
		return Component{}, false
	}
	return *c, true
}

func clone(c *Component) *Component {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
