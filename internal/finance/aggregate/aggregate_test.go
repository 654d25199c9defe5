package aggregate

import (
	"testing"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) *ledger.Number { return ledger.NewNumber(v) }

func TestAggregate_DirectStocksScenario(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryEquity: {
			{Type: "Direct Stocks", InvestedAmount: num(100000), CurrentValue: num(120000)},
		},
	}

	s := Aggregate(l)
	assert.Equal(t, 120000.0, s.EquityDirect)
	assert.Equal(t, 120000.0, s.TotalNetWorth)
	assert.InDelta(t, 20.0, s.EquityPerformance, 1e-9)
	assert.Equal(t, 120000.0, s.AssetValues[ledger.CategoryEquity])
}

func TestAggregate_NetWorthIsSumOfCurrentValues(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryEquity: {
			{Type: "Equity Mutual Funds", InvestedAmount: num(50000)},
			{Type: "Unlisted Shares", InvestedAmount: num(7000)},
		},
		ledger.CategoryRealEstate: {
			{Type: "Residential Property", PropertyValue: num(4500000), RentalYield: num(3)},
		},
		ledger.CategoryCash: {
			{Type: "Savings Accounts", InvestedAmount: num(25000), InterestRate: num(3.5)},
		},
		"Collectibles": {
			{Type: "Art", InvestedAmount: num(10000)},
		},
	}

	var want float64
	for _, items := range l {
		for _, it := range items {
			want += it.Value()
		}
	}

	s := Aggregate(l)
	assert.Equal(t, want, s.TotalNetWorth)
	// Unknown categories count toward net worth only.
	_, ok := s.AssetValues["Collectibles"]
	assert.False(t, ok)
	// Unbucketed equity still counts toward the category.
	assert.Equal(t, 57000.0, s.AssetValues[ledger.CategoryEquity])
	assert.Equal(t, 50000.0, s.EquityMutual)
	assert.Equal(t, 0.0, s.EquityDirect+s.EquityETF+s.EquityCaps)
}

func TestAggregate_EquityPerformanceZeroWhenNothingInvested(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryEquity: {
			{Type: "Direct Stocks", CurrentValue: num(90000)},
		},
	}
	s := Aggregate(l)
	assert.Equal(t, 0.0, s.TotalEquityInvested)
	assert.Equal(t, 90000.0, s.TotalEquityCurrent)
	assert.Equal(t, 0.0, s.EquityPerformance)
}

func TestAggregate_AverageExpectedReturnIgnoresNonPositive(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryFixedIncome: {
			{Type: "Fixed Deposits (FDs)", InvestedAmount: num(1), InterestRate: num(7)},
			{Type: "Corporate Bonds", InvestedAmount: num(1), InterestRate: num(9)},
			{Type: "Debt Mutual Funds", InvestedAmount: num(1), ExpectedReturn: num(0)},
			{Type: "Debt Mutual Funds", InvestedAmount: num(1), ExpectedReturn: num(-2)},
			{Type: "Debt Mutual Funds", InvestedAmount: num(1)},
		},
		ledger.CategoryCommodities: {
			{Type: "Gold", InvestedAmount: num(1)},
		},
	}
	s := Aggregate(l)
	assert.Equal(t, 8.0, s.AverageExpectedReturn[ledger.CategoryFixedIncome])
	assert.Equal(t, 0.0, s.AverageExpectedReturn[ledger.CategoryCommodities])
	assert.Len(t, s.AverageExpectedReturn, len(ledger.Categories))
}

func TestAggregate_EquityBuckets(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryEquity: {
			{Type: "Direct Stocks", InvestedAmount: num(1)},
			{Type: "Equity Mutual Funds", InvestedAmount: num(2)},
			{Type: "Exchange-Traded Funds (ETFs)", InvestedAmount: num(4)},
			{Type: "Small-Cap, Mid-Cap, Large-Cap Stocks", InvestedAmount: num(8)},
		},
	}
	s := Aggregate(l)
	assert.Equal(t, 1.0, s.EquityDirect)
	assert.Equal(t, 2.0, s.EquityMutual)
	assert.Equal(t, 4.0, s.EquityETF)
	assert.Equal(t, 8.0, s.EquityCaps)
	assert.Equal(t, 15.0, s.TotalEquityInvested)
	assert.Equal(t, 0.0, s.EquityPerformance)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 0.0, s.TotalNetWorth)
	assert.Len(t, s.AssetValues, len(ledger.Categories))
	assert.Empty(t, s.AssetValueList())
	assert.Len(t, s.ReturnList(), len(ledger.Categories))
}

func TestAggregate_Idempotent(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryEquity: {
			{Type: "Direct Stocks", InvestedAmount: num(100000.1), CurrentValue: num(120000.7), ExpectedReturn: num(12)},
		},
		ledger.CategoryCrypto: {
			{Type: "Coins", InvestedAmount: num(3333.33), ExpectedReturn: num(15)},
		},
	}
	assert.Equal(t, Aggregate(l), Aggregate(l))
}

func TestSummary_Lists(t *testing.T) {
	l := ledger.Ledger{
		ledger.CategoryCash:   {{Type: "Savings Accounts", InvestedAmount: num(100)}},
		ledger.CategoryEquity: {{Type: "Direct Stocks", InvestedAmount: num(200)}},
	}
	s := Aggregate(l)

	list := s.AssetValueList()
	require.Len(t, list, 2)
	assert.Equal(t, "Equity (Stocks)", list[0].Name)
	assert.Equal(t, "Cash & Equivalents", list[1].Name)
}
