package planning

import (
	"context"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/aggregate"
)

// Quote is one market index reading.
type Quote struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	Change     string `json:"change"`
	ChangeType string `json:"change_type"`
}

// Market is the "Market Today" panel. The figures are fixed placeholders.
type Market struct {
	Sensex Quote `json:"sensex"`
	Nifty  Quote `json:"nifty"`
}

// FundPoint is one month of the fund value chart.
type FundPoint struct {
	Month   string  `json:"month"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// MarketToday returns the placeholder market readings.
func MarketToday() Market {
	return Market{
		Sensex: Quote{Name: "Sensex", Value: "75,123.45", Change: "+350.12 (+0.47%)", ChangeType: "up"},
		Nifty:  Quote{Name: "Nifty", Value: "22,876.50", Change: "+120.50 (+0.53%)", ChangeType: "up"},
	}
}

var fundSeries = []struct {
	month string
	value float64
}{
	{"Jan", 500000}, {"Feb", 510000}, {"Mar", 530000}, {"Apr", 520000},
	{"May", 550000}, {"Jun", 560000}, {"Jul", 580000}, {"Aug", 600000},
	{"Sep", 590000}, {"Oct", 610000}, {"Nov", 630000}, {"Dec", 650000},
}

// FundSeries returns the placeholder twelve-month fund value series.
func (s *Service) FundSeries() []FundPoint {
	out := make([]FundPoint, 0, len(fundSeries))
	for _, p := range fundSeries {
		out = append(out, FundPoint{Month: p.month, Value: p.value, Display: s.money(p.value)})
	}
	return out
}

// ListEntry is one category row with its display string.
type ListEntry struct {
	aggregate.CategoryValue
	Display string `json:"display"`
}

// Dashboard is the dashboard view of a user's ledger.
type Dashboard struct {
	Summary                  aggregate.Summary `json:"summary"`
	AssetValues              []ListEntry       `json:"asset_values"`
	Returns                  []ListEntry       `json:"returns"`
	TotalNetWorthDisplay     string            `json:"total_net_worth_display"`
	EquityPerformanceDisplay string            `json:"equity_performance_display"`
	Currency                 string            `json:"currency"`
	Market                   Market            `json:"market"`
	FundSeries               []FundPoint       `json:"fund_series"`
}

// Dashboard aggregates the user's ledger.
func (s *Service) Dashboard(ctx context.Context, email string) (*Dashboard, error) {
	l, err := s.LoadLedger(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.BuildDashboard(aggregate.Aggregate(l)), nil
}

// BuildDashboard decorates sum with display strings and the market panels.
func (s *Service) BuildDashboard(sum aggregate.Summary) *Dashboard {
	d := &Dashboard{
		Summary:                  sum,
		TotalNetWorthDisplay:     s.money(sum.TotalNetWorth),
		EquityPerformanceDisplay: common.FormatPct(sum.EquityPerformance, 2),
		Currency:                 s.opts.Currency,
		Market:                   MarketToday(),
		FundSeries:               s.FundSeries(),
		AssetValues:              []ListEntry{},
	}
	for _, v := range sum.AssetValueList() {
		d.AssetValues = append(d.AssetValues, ListEntry{CategoryValue: v, Display: s.money(v.Value)})
	}
	for _, v := range sum.ReturnList() {
		d.Returns = append(d.Returns, ListEntry{CategoryValue: v, Display: common.FormatPct(v.Value, 1)})
	}
	return d
}

func (s *Service) money(v float64) string {
	return common.FormatMoney(v, s.opts.Currency, 0)
}
