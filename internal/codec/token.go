// Package codec converts components to and from their persisted forms: the
// packed legacy token "Kind(name,brand,price)" and the structured object
// carrying an explicit kind discriminator.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"flipledger/internal/domain"

	"github.com/shopspring/decimal"
)

// EncodeToken packs c as "<Kind>(<name>,<brand>,<price>)". Nothing is escaped:
// a comma in name or brand makes the token undecodable.
func EncodeToken(c domain.Component) string {
	return fmt.Sprintf("%s(%s,%s,%s)", c.Kind, c.Name, c.Brand, c.Price.String())
}

// DecodeToken parses a token written by EncodeToken.
func DecodeToken(token string) (domain.Component, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return domain.Component{}, &domain.FormatError{Token: token, Reason: "empty token"}
	}
	open := strings.Index(t, "(")
	if open < 0 || !strings.HasSuffix(t, ")") {
		return domain.Component{}, &domain.FormatError{Token: token, Reason: "missing parentheses"}
	}
	kind, err := domain.ParseKind(t[:open])
	if err != nil {
		return domain.Component{}, &domain.FormatError{Token: token, Reason: "unknown component kind"}
	}
	fields := strings.Split(t[open+1:len(t)-1], ",")
	if len(fields) != 3 {
		return domain.Component{}, &domain.FormatError{
			Token:  token,
			Reason: fmt.Sprintf("expected 3 fields, got %d", len(fields)),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	price, err := decimal.NewFromString(fields[2])
	if err != nil {
		return domain.Component{}, &domain.FormatError{Token: token, Reason: "price is not numeric"}
	}
	c, err := domain.NewComponent(kind, fields[0], fields[1], price)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return domain.Component{}, &domain.FormatError{Token: token, Reason: "price must not be negative"}
		}
		return domain.Component{}, err
	}
	return c, nil
}
