package validation

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DateLayouts are the accepted list/sell date forms.
var DateLayouts = []string{"2006-01-02", "02/01/2006"}

// IsValidComponentText accepts a trimmed, non-empty name or brand that survives the
// packed token encoding: no commas (they split fields) and no control characters.
func IsValidComponentText(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return false
	}
	if strings.Contains(s, ",") {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsValidMoney rejects negative amounts.
func IsValidMoney(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// IsValidDate accepts an empty string or one of DateLayouts.
func IsValidDate(s string) bool {
	if s == "" {
		return true
	}
	for _, layout := range DateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// IsValidSpecKey accepts short lowercase attribute names such as "cores" or "clock_speed".
func IsValidSpecKey(k string) bool {
	if k == "" || len(k) > 32 {
		return false
	}
	for _, r := range k {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return false
		}
	}
	return true
}
