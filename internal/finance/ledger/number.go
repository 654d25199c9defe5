package ledger

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a leniently decoded numeric field. Stored ledgers carry amounts
// either as JSON numbers or as strings such as "₹ 1,20,000". Decoding never
// fails: an unparseable value is kept as present-but-invalid and reads as 0.
//
// A nil *Number means the field is absent from the document.
type Number struct {
	value float64
	ok    bool
	raw   string
}

// NewNumber returns a valid Number holding v.
func NewNumber(v float64) *Number {
	return &Number{value: v, ok: true}
}

// Float returns the numeric value, or 0 when absent or unparseable.
func (n *Number) Float() float64 {
	if n == nil || !n.ok {
		return 0
	}
	return n.value
}

// Valid reports whether the field is present and parsed.
func (n *Number) Valid() bool {
	return n != nil && n.ok
}

// UnmarshalJSON accepts numbers and numeric strings. It never returns an error.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n.raw = s
	} else {
		n.raw = string(b)
	}

	n.value, n.ok = ParseNumber(n.raw)
	return nil
}

// MarshalJSON writes the value as a string, matching how the store persists
// amounts. Unparseable values round-trip as their original text.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.ok {
		return json.Marshal(n.raw)
	}
	return json.Marshal(strconv.FormatFloat(n.value, 'f', -1, 64))
}

var symbolStripper = strings.NewReplacer("₹", "", "$", "", ",", "")

// ParseNumber parses s after stripping currency symbols, thousands separators
// and surrounding whitespace. An empty string parses as 0. Values outside the
// float64 range are malformed.
func ParseNumber(s string) (float64, bool) {
	s = symbolStripper.Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// SafeNumber parses s, returning def when it is not numeric.
func SafeNumber(s string, def float64) float64 {
	if v, ok := ParseNumber(s); ok {
		return v
	}
	return def
}
