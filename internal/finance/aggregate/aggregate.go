// Package aggregate reduces an investment ledger into the dashboard summary.
package aggregate

import "github.com/bobmcallan/finplan-portal/internal/finance/ledger"

// Summary is the dashboard view of a ledger.
type Summary struct {
	EquityDirect float64 `json:"equity_direct"`
	EquityMutual float64 `json:"equity_mutual"`
	EquityETF    float64 `json:"equity_etf"`
	EquityCaps   float64 `json:"equity_caps"`

	// AssetValues and AverageExpectedReturn are keyed by major category and
	// always carry all eight categories.
	AssetValues           map[string]float64 `json:"asset_values"`
	AverageExpectedReturn map[string]float64 `json:"average_expected_return"`

	TotalNetWorth       float64 `json:"total_net_worth"`
	TotalEquityInvested float64 `json:"total_equity_invested"`
	TotalEquityCurrent  float64 `json:"total_equity_current"`
	EquityPerformance   float64 `json:"equity_performance"`
}

// CategoryValue is one row of a per-category list.
type CategoryValue struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
}

// Aggregate computes the summary of l. It is a pure function of its input and
// never fails: malformed numeric fields contribute 0.
func Aggregate(l ledger.Ledger) Summary {
	s := Summary{
		AssetValues:           make(map[string]float64, len(ledger.Categories)),
		AverageExpectedReturn: make(map[string]float64, len(ledger.Categories)),
	}

	type rateAcc struct {
		total float64
		count int
	}
	rates := make(map[string]*rateAcc, len(ledger.Categories))
	for _, c := range ledger.Categories {
		s.AssetValues[c] = 0
		rates[c] = &rateAcc{}
	}

	for _, h := range l.Holdings() {
		value := h.Value()
		s.TotalNetWorth += value

		if !h.Major {
			continue
		}
		s.AssetValues[h.Category] += value

		if r := h.Rate(); r > 0 {
			rates[h.Category].total += r
			rates[h.Category].count++
		}

		if h.Category != ledger.CategoryEquity {
			continue
		}
		s.TotalEquityInvested += h.Item.Invested()
		s.TotalEquityCurrent += value

		switch h.Bucket {
		case ledger.BucketDirect:
			s.EquityDirect += value
		case ledger.BucketMutual:
			s.EquityMutual += value
		case ledger.BucketETF:
			s.EquityETF += value
		case ledger.BucketCaps:
			s.EquityCaps += value
		}
	}

	for c, acc := range rates {
		if acc.count > 0 {
			s.AverageExpectedReturn[c] = acc.total / float64(acc.count)
		} else {
			s.AverageExpectedReturn[c] = 0
		}
	}

	s.EquityPerformance = Performance(s.TotalEquityInvested, s.TotalEquityCurrent)
	return s
}

// Performance returns the percentage gain of current over invested, or 0 when
// nothing was invested.
func Performance(invested, current float64) float64 {
	if invested <= 0 {
		return 0
	}
	return (current - invested) / invested * 100
}

// AssetValueList returns categories with a positive value, in display order.
func (s Summary) AssetValueList() []CategoryValue {
	var out []CategoryValue
	for _, c := range ledger.Categories {
		if v := s.AssetValues[c]; v > 0 {
			out = append(out, CategoryValue{Category: c, Name: ledger.DisplayName(c), Value: v})
		}
	}
	return out
}

// ReturnList returns the average expected return of every category, in display order.
func (s Summary) ReturnList() []CategoryValue {
	out := make([]CategoryValue, 0, len(ledger.Categories))
	for _, c := range ledger.Categories {
		out = append(out, CategoryValue{Category: c, Name: ledger.DisplayName(c), Value: s.AverageExpectedReturn[c]})
	}
	return out
}
