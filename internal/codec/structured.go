package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"flipledger/internal/domain"

	"github.com/shopspring/decimal"
)

// Format selects how components are written into build records.
type Format string

const (
	FormatStructured Format = "structured"
	FormatToken      Format = "token"
)

// ParseFormat defaults to FormatStructured for an empty string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatStructured:
		return FormatStructured, nil
	case FormatToken:
		return FormatToken, nil
	}
	return "", fmt.Errorf("unknown component format %q", s)
}

// Encode returns the record value for c in the given format.
func Encode(c domain.Component, f Format) any {
	if f == FormatToken {
		return EncodeToken(c)
	}
	return EncodeStructured(c)
}

// EncodeStructured writes each field separately with the kind as discriminator.
func EncodeStructured(c domain.Component) map[string]any {
	return map[string]any{
		"kind":  string(c.Kind),
		"name":  c.Name,
		"brand": c.Brand,
		"price": json.Number(c.Price.String()),
	}
}

// DecodeValue decodes a record value in either format. nil means the slot is empty.
func DecodeValue(v any) (*domain.Component, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		c, err := DecodeToken(x)
		if err != nil {
			return nil, err
		}
		return &c, nil
	case map[string]any:
		c, err := decodeStructured(x)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	return nil, &domain.FormatError{Token: fmt.Sprint(v), Reason: fmt.Sprintf("unsupported component value of type %T", v)}
}

func decodeStructured(m map[string]any) (domain.Component, error) {
	raw, _ := json.Marshal(m)
	kindName, ok := m["kind"].(string)
	if !ok {
		return domain.Component{}, &domain.FormatError{Token: string(raw), Reason: "missing kind"}
	}
	kind, err := domain.ParseKind(kindName)
	if err != nil {
		return domain.Component{}, &domain.FormatError{Token: string(raw), Reason: "unknown component kind"}
	}
	name, ok := m["name"].(string)
	if !ok {
		return domain.Component{}, &domain.FormatError{Token: string(raw), Reason: "name is missing or not a string"}
	}
	brand, ok := m["brand"].(string)
	if !ok {
		return domain.Component{}, &domain.FormatError{Token: string(raw), Reason: "brand is missing or not a string"}
	}
	price, err := Decimal(m["price"])
	if err != nil {
		return domain.Component{}, &domain.FormatError{Token: string(raw), Reason: "price is not numeric"}
	}
	if price.IsNegative() {
		return domain.Component{}, &domain.FormatError{Token: string(raw), Reason: "price must not be negative"}
	}
	return domain.Component{Kind: kind, Name: name, Brand: brand, Price: price}, nil
}

// Decimal reads a money value from a decoded JSON document. Absent values are zero.
func Decimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		if strings.TrimSpace(x) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case decimal.Decimal:
		return x, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported numeric value of type %T", v)
}

// Number renders d as a JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Int reads an integer identifier that may have been stored as a number or a string.
func Int(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int(x), nil
	case json.Number:
		return strconv.Atoi(x.String())
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	}
	return 0, fmt.Errorf("unsupported identifier of type %T", v)
}
