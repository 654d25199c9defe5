// Package ledger models a user's investment holdings as stored in the user
// record: a mapping from major category to an ordered list of items.
package ledger

// Major categories, as stored in the ledger document.
const (
	CategoryEquity      = "Equity"
	CategoryFixedIncome = "Fixed-Income"
	CategoryRealEstate  = "Real Estate"
	CategoryCommodities = "Commodities"
	CategoryAlternative = "Alternative Investments"
	CategoryCrypto      = "Cryptocurrencies & Digital Assets"
	CategoryDerivatives = "Derivatives & Structured Products"
	CategoryCash        = "Cash & Cash Equivalents"
)

// Categories lists the major categories in display order.
var Categories = []string{
	CategoryEquity,
	CategoryFixedIncome,
	CategoryRealEstate,
	CategoryCommodities,
	CategoryAlternative,
	CategoryCrypto,
	CategoryDerivatives,
	CategoryCash,
}

var categoryDisplayNames = map[string]string{
	CategoryEquity:      "Equity (Stocks)",
	CategoryFixedIncome: "Fixed Income",
	CategoryRealEstate:  "Real Estate",
	CategoryCommodities: "Commodities",
	CategoryAlternative: "Alternative Investments",
	CategoryCrypto:      "Cryptocurrencies",
	CategoryDerivatives: "Derivatives",
	CategoryCash:        "Cash & Equivalents",
}

// Well-known item types referenced by the transform and asset-key rules.
const (
	TypeDirectStocks        = "Direct Stocks"
	TypeEquityMutualFunds   = "Equity Mutual Funds"
	TypeETFs                = "Exchange-Traded Funds (ETFs)"
	TypeCapStocks           = "Small-Cap, Mid-Cap, Large-Cap Stocks"
	TypeTreasuryBills       = "Treasury Bills (T-Bills)"
	TypeCorporateBonds      = "Corporate Bonds"
	TypeFixedDeposits       = "Fixed Deposits (FDs)"
	TypeDebtMutualFunds     = "Debt Mutual Funds"
	TypeSavingsAccounts     = "Savings Accounts"
	TypeResidentialProperty = "Residential Property"
	TypeCommercialProperty  = "Commercial Property"
)

// IsMajorCategory reports whether name is one of the eight major categories.
func IsMajorCategory(name string) bool {
	_, ok := categoryDisplayNames[name]
	return ok
}

// DisplayName returns the dashboard label for a category, or the name itself
// for unrecognised categories.
func DisplayName(category string) string {
	if n, ok := categoryDisplayNames[category]; ok {
		return n
	}
	return category
}
