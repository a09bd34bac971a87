package invoicing

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric is a tolerant numeric field as received from clients. Payloads mix
// numbers, numeric strings, empty strings, "N/A" and nulls for the same
// fields; the cleaning rule is: empty string, "N/A" and null coerce to null,
// numeric strings are parsed, anything else coerces to null.
type Numeric struct {
	value decimal.Decimal
	valid bool
}

// NewNumeric creates a valid Numeric from a decimal
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{value: d, valid: true}
}

// NumericFromString cleans a raw string into a Numeric
func NumericFromString(s string) Numeric {
	return cleanNumeric(s)
}

// Decimal returns the cleaned value, or nil when the input coerced to null
func (n Numeric) Decimal() *decimal.Decimal {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// Valid reports whether the input carried a usable number
func (n Numeric) Valid() bool {
	return n.valid
}

// UnmarshalJSON implements json.Unmarshaler with the cleaning rule applied
func (n *Numeric) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*n = Numeric{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Numeric{}
			return nil
		}
		*n = cleanNumeric(s)
		return nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		*n = Numeric{}
		return nil
	}
	*n = Numeric{value: d, valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler; null inputs stay null
func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

func cleanNumeric(s string) Numeric {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return Numeric{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Numeric{}
	}
	return Numeric{value: d, valid: true}
}
