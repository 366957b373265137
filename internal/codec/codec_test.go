package codec

import (
	"encoding/json"
	"testing"

	"flipledger/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTripEveryKind(t *testing.T) {
	for _, kind := range domain.Kinds {
		c := domain.Component{
			Kind:  kind,
			Name:  "Model " + string(kind) + " (2x8GB)",
			Brand: "Brand",
			Price: decimal.RequireFromString("129.99"),
		}
		got, err := DecodeToken(EncodeToken(c))
		require.NoError(t, err, kind)
		assert.True(t, c.Equal(got), "kind %s: %+v != %+v", kind, c, got)
	}
}

func TestEncodeToken(t *testing.T) {
	c := domain.Component{Kind: domain.KindCPU, Name: "Ryzen 5 3600", Brand: "AMD", Price: decimal.NewFromInt(55)}
	assert.Equal(t, "CPU(Ryzen 5 3600,AMD,55)", EncodeToken(c))
}

func TestDecodeToken_TrimsFields(t *testing.T) {
	c, err := DecodeToken(" PSU( CORSAIR CX650 , Corsair , 42.5 ) ")
	require.NoError(t, err)
	assert.Equal(t, domain.KindPSU, c.Kind)
	assert.Equal(t, "CORSAIR CX650", c.Name)
	assert.Equal(t, "Corsair", c.Brand)
	assert.True(t, decimal.RequireFromString("42.5").Equal(c.Price))
}

func TestDecodeToken_LegacyHardDrive(t *testing.T) {
	c, err := DecodeToken("HardDrive(Barracuda,Seagate,20)")
	require.NoError(t, err)
	assert.Equal(t, domain.KindHDD, c.Kind)
}

func TestDecodeToken_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"no parens":     "CPU Ryzen,AMD,55",
		"unknown kind":  "Monitor(Dell,Dell,100)",
		"two fields":    "CPU(Ryzen,55)",
		"four fields":   "CPU(Ryzen 5, 3600,AMD,55)",
		"bad price":     "CPU(Ryzen,AMD,fifty)",
		"negative":      "CPU(Ryzen,AMD,-5)",
		"missing close": "CPU(Ryzen,AMD,55",
	}
	for name, token := range cases {
		_, err := DecodeToken(token)
		require.Error(t, err, name)
		assert.True(t, domain.IsFormatError(err), name)
	}
}

func TestStructured_RoundTripThroughJSON(t *testing.T) {
	for _, kind := range domain.Kinds {
		c := domain.Component{Kind: kind, Name: "Name, with comma", Brand: "Brand)", Price: decimal.RequireFromString("10.5")}
		raw, err := json.Marshal(EncodeStructured(c))
		require.NoError(t, err)

		var v any
		require.NoError(t, json.Unmarshal(raw, &v))
		got, err := DecodeValue(v)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, c.Equal(*got), "kind %s", kind)
	}
}

func TestDecodeValue(t *testing.T) {
	got, err := DecodeValue(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = DecodeValue("GPU(RTX 2060 Super,NVIDIA,175)")
	require.NoError(t, err)
	assert.Equal(t, domain.KindGPU, got.Kind)

	_, err = DecodeValue(map[string]any{"name": "x", "price": 1})
	assert.True(t, domain.IsFormatError(err))

	_, err = DecodeValue(map[string]any{"kind": "CPU", "name": "Ryzen 5", "brand": "AMD", "price": "abc"})
	assert.True(t, domain.IsFormatError(err))

	_, err = DecodeValue(42)
	assert.True(t, domain.IsFormatError(err))
}

func TestDecodeValue_StructuredNeedsTextFields(t *testing.T) {
	cases := []map[string]any{
		{"kind": "CPU", "brand": "AMD", "price": 55},
		{"kind": "CPU", "name": "Ryzen 5", "price": 55},
		{"kind": "CPU", "name": 3600, "brand": "AMD", "price": 55},
		{"kind": "CPU", "name": "Ryzen 5", "brand": nil, "price": 55},
	}
	for _, m := range cases {
		_, err := DecodeValue(m)
		assert.True(t, domain.IsFormatError(err), "%v", m)
	}

	c, err := DecodeValue(map[string]any{"kind": "CPU", "name": "Ryzen 5", "brand": "AMD", "price": 55})
	require.NoError(t, err)
	assert.Equal(t, "Ryzen 5", c.Name)
	assert.Equal(t, "AMD", c.Brand)
}

func TestEncode_Format(t *testing.T) {
	c := domain.Component{Kind: domain.KindRAM, Name: "Fury", Brand: "Kingston", Price: decimal.NewFromInt(48)}
	assert.Equal(t, "RAM(Fury,Kingston,48)", Encode(c, FormatToken))
	m, ok := Encode(c, FormatStructured).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "RAM", m["kind"])
	assert.Equal(t, json.Number("48"), m["price"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatStructured, f)
	f, err = ParseFormat("TOKEN")
	require.NoError(t, err)
	assert.Equal(t, FormatToken, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestDecimalAndInt(t *testing.T) {
	d, err := Decimal(json.Number("12.50"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d))

	d, err = Decimal(nil)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Decimal(true)
	assert.Error(t, err)

	n, err := Int("1234")
	require.NoError(t, err)
	assert.Equal(t, 1234, n)
	n, err = Int(float64(4321))
	require.NoError(t, err)
	assert.Equal(t, 4321, n)
	_, err = Int(12.5)
	assert.Error(t, err)
}
