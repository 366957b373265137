package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func part(kind Kind, name, brand string, price int64) Component {
	return Component{Kind: kind, Name: name, Brand: brand, Price: decimal.NewFromInt(price)}
}

func exampleBuild() Build {
	ssd := part(KindSSD, "Samsung 970 EVO", "Samsung", 0)
	return Build{
		SKU:             4821,
		CPU:             part(KindCPU, "Ryzen 5 3600", "AMD", 55),
		GPU:             part(KindGPU, "RTX 2060 Super", "NVIDIA", 175),
		RAM:             part(KindRAM, "Kingston FURY Beast RGB (2x8GB)", "Kingston", 48),
		Motherboard:     part(KindMotherboard, "A320M-A", "ASUS", 0),
		PSU:             part(KindPSU, "CORSAIR CX650", "Corsair", 0),
		Case:            part(KindCase, "Corsair 220T White", "Corsair", 0),
		SSD:             &ssd,
		ExtraCosts:      decimal.NewFromInt(180),
		TargetSellPrice: decimal.NewFromInt(600),
		ExtraProfit:     decimal.NewFromInt(60),
	}
}

func TestBuild_DerivedArithmetic(t *testing.T) {
	b := exampleBuild()
	assert.True(t, decimal.NewFromInt(458).Equal(b.TotalPrice()))
	assert.True(t, decimal.NewFromInt(202).Equal(b.TargetProfit()))

	_, ok := b.TotalProfit()
	assert.False(t, ok)

	require.NoError(t, b.SetToSold(decimal.NewFromInt(600), "2024-11-02"))
	profit, ok := b.TotalProfit()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(202).Equal(profit))
	assert.Equal(t, "2024-11-02", b.SellDate)
}

func TestBuild_OptionalSlotsCountWhenPresent(t *testing.T) {
	b := exampleBuild()
	hdd := part(KindHDD, "Barracuda 1TB", "Seagate", 20)
	require.NoError(t, b.SetComponent(SlotHDD, &hdd))
	assert.True(t, decimal.NewFromInt(478).Equal(b.TotalPrice()))

	require.NoError(t, b.SetComponent(SlotHDD, nil))
	assert.Nil(t, b.HDD)
	assert.Len(t, b.Components(), 7)
}

func TestBuild_SetComponentRejectsWrongKind(t *testing.T) {
	b := exampleBuild()
	gpu := part(KindGPU, "GTX 1080", "NVIDIA", 100)
	err := b.SetComponent(SlotCPU, &gpu)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = b.SetComponent(SlotCPU, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuild_Validate(t *testing.T) {
	b := exampleBuild()
	require.NoError(t, b.Validate())

	missing := exampleBuild()
	missing.PSU = Component{}
	assert.ErrorIs(t, missing.Validate(), ErrInvalidInput)

	negative := exampleBuild()
	negative.ExtraCosts = decimal.NewFromInt(-1)
	assert.ErrorIs(t, negative.Validate(), ErrInvalidInput)

	wrong := exampleBuild()
	nvme := part(KindSSD, "SN770", "WD", 40)
	wrong.NVMe = &nvme
	assert.ErrorIs(t, wrong.Validate(), ErrInvalidInput)
}

func TestBuild_UpdateExtraCosts(t *testing.T) {
	b := exampleBuild()
	require.NoError(t, b.UpdateExtraCosts(decimal.NewFromInt(200)))
	assert.True(t, decimal.NewFromInt(478).Equal(b.TotalPrice()))
	assert.ErrorIs(t, b.UpdateExtraCosts(decimal.NewFromInt(-5)), ErrInvalidInput)
	assert.True(t, decimal.NewFromInt(200).Equal(b.ExtraCosts))
}

func TestBuild_CloneIsIndependent(t *testing.T) {
	b := exampleBuild()
	b.Specs = Specs{SlotCPU: {"cores": "6"}}
	cp := b.Clone()

	cp.SSD.Name = "changed"
	cp.Specs[SlotCPU]["cores"] = "8"

	assert.Equal(t, "Samsung 970 EVO", b.SSD.Name)
	assert.Equal(t, "6", b.Specs[SlotCPU]["cores"])
}

func TestNewView(t *testing.T) {
	b := exampleBuild()
	v := NewView(&b)
	assert.Equal(t, 4821, v.SKU)
	assert.Len(t, v.Components, 7)
	assert.Equal(t, SlotCPU, v.Components[0].Slot)
	assert.Equal(t, "55.00", v.Components[0].Price)
	assert.Equal(t, "458.00", v.TotalPrice)
	assert.Equal(t, "202.00", v.TargetProfit)
	assert.Nil(t, v.TotalProfit)

	require.NoError(t, b.SetToSold(decimal.NewFromInt(650), "2024-11-02"))
	v = NewView(&b)
	require.NotNil(t, v.TotalProfit)
	assert.Equal(t, "252.00", *v.TotalProfit)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("harddrive")
	require.NoError(t, err)
	assert.Equal(t, KindHDD, got)

	_, err = ParseKind("Monitor")
	assert.True(t, IsFormatError(err))
}

func TestNewComponent_NegativePrice(t *testing.T) {
	_, err := NewComponent(KindCPU, "i5", "Intel", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
