package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of component types a build can hold.
type Kind string

const (
	KindCPU         Kind = "CPU"
	KindGPU         Kind = "GPU"
	KindRAM         Kind = "RAM"
	KindSSD         Kind = "SSD"
	KindHDD         Kind = "HDD"
	KindNVMe        Kind = "NVMe"
	KindPSU         Kind = "PSU"
	KindCase        Kind = "Case"
	KindMotherboard Kind = "Motherboard"
)

// Kinds lists every known kind.
var Kinds = []Kind{
	KindCPU, KindGPU, KindRAM, KindSSD, KindHDD, KindNVMe, KindPSU, KindCase, KindMotherboard,
}

// ParseKind resolves a kind name case-insensitively. "HardDrive" is accepted for HDD.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSpace(s)
	if strings.EqualFold(name, "HardDrive") {
		return KindHDD, nil
	}
	for _, k := range Kinds {
		if strings.EqualFold(name, string(k)) {
			return k, nil
		}
	}
	return "", &FormatError{Token: s, Reason: "unknown component kind"}
}

// Component is one priced part of a build. Values are never mutated after construction.
type Component struct {
	Kind  Kind            `json:"kind"`
	Name  string          `json:"name"`
	Brand string          `json:"brand"`
	Price decimal.Decimal `json:"price"`
}

// NewComponent builds a Component, rejecting unknown kinds and negative prices.
func NewComponent(kind Kind, name, brand string, price decimal.Decimal) (Component, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Component{}, err
	}
	if price.IsNegative() {
		return Component{}, fmt.Errorf("%w: %s price must not be negative", ErrInvalidInput, kind)
	}
	return Component{Kind: kind, Name: name, Brand: brand, Price: price}, nil
}

// Equal compares field by field; prices compare numerically.
func (c Component) Equal(o Component) bool {
	return c.Kind == o.Kind && c.Name == o.Name && c.Brand == o.Brand && c.Price.Equal(o.Price)
}

func (c Component) String() string {
	return fmt.Sprintf("%s (%s) - £%s", c.Name, c.Brand, c.Price.StringFixed(2))
}

// Slot names a position in a build.
type Slot string

const (
	SlotCPU         Slot = "cpu"
	SlotGPU         Slot = "gpu"
	SlotRAM         Slot = "ram"
	SlotSSD         Slot = "ssd"
	SlotHDD         Slot = "hdd"
	SlotNVMe        Slot = "nvme"
	SlotPSU         Slot = "psu"
	SlotCase        Slot = "case"
	SlotMotherboard Slot = "motherboard"
)

// Slots is the display and encoding order of every slot.
var Slots = []Slot{
	SlotCPU, SlotGPU, SlotRAM, SlotSSD, SlotHDD, SlotNVMe, SlotPSU, SlotCase, SlotMotherboard,
}

var slotKinds = map[Slot]Kind{
	SlotCPU:         KindCPU,
	SlotGPU:         KindGPU,
	SlotRAM:         KindRAM,
	SlotSSD:         KindSSD,
	SlotHDD:         KindHDD,
	SlotNVMe:        KindNVMe,
	SlotPSU:         KindPSU,
	SlotCase:        KindCase,
	SlotMotherboard: KindMotherboard,
}

// ParseSlot resolves a slot name.
func ParseSlot(s string) (Slot, bool) {
	slot := Slot(strings.ToLower(strings.TrimSpace(s)))
	_, ok := slotKinds[slot]
	return slot, ok
}

// Kind is the only component kind the slot accepts.
func (s Slot) Kind() Kind { return slotKinds[s] }

// Required reports whether a build must fill the slot.
func (s Slot) Required() bool {
	switch s {
	case SlotSSD, SlotHDD, SlotNVMe:
		return false
	}
	return true
}
