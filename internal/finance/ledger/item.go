package ledger

import "time"

// RateKind identifies which stored field an item's rate came from.
type RateKind int

const (
	RateNone RateKind = iota
	RateExpectedReturn
	RateInterest
	RateRentalYield
)

// String returns the stored field name for the rate kind.
func (k RateKind) String() string {
	switch k {
	case RateExpectedReturn:
		return "expected_return"
	case RateInterest:
		return "interest_rate"
	case RateRentalYield:
		return "rental_yield"
	default:
		return ""
	}
}

// Item is one holding inside a category. Exactly which value and rate fields
// are present depends on the kind of investment; see Value and Rate.
type Item struct {
	Type           string  `json:"type"`
	Description    string  `json:"description"`
	InvestedAmount *Number `json:"invested_amount,omitempty"`
	PropertyValue  *Number `json:"property_value,omitempty"`
	CurrentValue   *Number `json:"current_value,omitempty"`
	ExpectedReturn *Number `json:"expected_return,omitempty"`
	InterestRate   *Number `json:"interest_rate,omitempty"`
	RentalYield    *Number `json:"rental_yield,omitempty"`
	MaturityDate   string  `json:"maturity_date,omitempty"`
	MaturityPeriod *Number `json:"maturity_period,omitempty"`

	// LegacyMaturityDate is read from older documents that used camelCase.
	LegacyMaturityDate string `json:"maturityDate,omitempty"`
}

// Value returns the item's current value: the first present of
// current_value, property_value and invested_amount, coerced to 0 when
// missing or malformed.
func (it Item) Value() float64 {
	switch {
	case it.CurrentValue != nil:
		return it.CurrentValue.Float()
	case it.PropertyValue != nil:
		return it.PropertyValue.Float()
	default:
		return it.InvestedAmount.Float()
	}
}

// Invested returns invested_amount coerced to a number.
func (it Item) Invested() float64 {
	return it.InvestedAmount.Float()
}

// RateField returns the first present rate field and which one it was.
func (it Item) RateField() (RateKind, *Number) {
	switch {
	case it.ExpectedReturn != nil:
		return RateExpectedReturn, it.ExpectedReturn
	case it.InterestRate != nil:
		return RateInterest, it.InterestRate
	case it.RentalYield != nil:
		return RateRentalYield, it.RentalYield
	default:
		return RateNone, nil
	}
}

// Rate returns the item's rate in percent, or 0 when absent or malformed.
func (it Item) Rate() float64 {
	_, n := it.RateField()
	return n.Float()
}

// Maturity returns the parsed maturity date, if any.
func (it Item) Maturity() (time.Time, bool) {
	raw := it.MaturityDate
	if raw == "" {
		raw = it.LegacyMaturityDate
	}
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
