package ledger

import "strings"

// EquityBucket is the dashboard sub-split of the Equity category.
type EquityBucket int

const (
	BucketNone EquityBucket = iota
	BucketDirect
	BucketMutual
	BucketETF
	BucketCaps
)

// ClassifyEquity buckets an Equity item by case-insensitive substring match on
// its type. Rules are tried in order and the first match wins.
func ClassifyEquity(typeName string) EquityBucket {
	t := strings.ToLower(typeName)
	switch {
	case strings.Contains(t, "direct"):
		return BucketDirect
	case strings.Contains(t, "mutual"):
		return BucketMutual
	case strings.Contains(t, "etf"), strings.Contains(t, "exchange"):
		return BucketETF
	case strings.Contains(t, "cap"):
		return BucketCaps
	default:
		return BucketNone
	}
}

// AssetKey is the normalised identifier used for risk allocations and CAGRs.
type AssetKey string

const (
	AssetEquityDirect AssetKey = "equity_direct"
	AssetEquityMutual AssetKey = "equity_mutual"
	AssetEquityETF    AssetKey = "equity_etf"
	AssetEquityCaps   AssetKey = "equity_caps"
	AssetFixedGovt    AssetKey = "fixed_govt"
	AssetFixedCorp    AssetKey = "fixed_corp"
	AssetFixedFD      AssetKey = "fixed_fd"
	AssetFixedDebtMF  AssetKey = "fixed_debt_mf"
	AssetRealEstate   AssetKey = "real_estate"
	AssetCommodities  AssetKey = "commodities"
	AssetAlternative  AssetKey = "alternative"
	AssetCrypto       AssetKey = "crypto"
	AssetDerivatives  AssetKey = "derivatives"
	AssetCash         AssetKey = "cash"
)

// AssetKeys lists every asset key in table order.
var AssetKeys = []AssetKey{
	AssetEquityDirect, AssetEquityMutual, AssetEquityETF, AssetEquityCaps,
	AssetFixedGovt, AssetFixedCorp, AssetFixedFD, AssetFixedDebtMF,
	AssetRealEstate, AssetCommodities, AssetAlternative, AssetCrypto,
	AssetDerivatives, AssetCash,
}

// typedAssetKeys maps exact item types to keys within the Equity and
// Fixed-Income categories.
var typedAssetKeys = map[string]map[string]AssetKey{
	CategoryEquity: {
		TypeDirectStocks:      AssetEquityDirect,
		TypeEquityMutualFunds: AssetEquityMutual,
		TypeETFs:              AssetEquityETF,
		TypeCapStocks:         AssetEquityCaps,
	},
	CategoryFixedIncome: {
		TypeTreasuryBills:   AssetFixedGovt,
		TypeCorporateBonds:  AssetFixedCorp,
		TypeFixedDeposits:   AssetFixedFD,
		TypeDebtMutualFunds: AssetFixedDebtMF,
	},
}

// categoryAssetKeys maps whole categories to a single key.
var categoryAssetKeys = map[string]AssetKey{
	CategoryRealEstate:  AssetRealEstate,
	CategoryCommodities: AssetCommodities,
	CategoryAlternative: AssetAlternative,
	CategoryCrypto:      AssetCrypto,
	CategoryDerivatives: AssetDerivatives,
	CategoryCash:        AssetCash,
}

// AssetKeyFor returns the asset key for an item of typeName in category.
func AssetKeyFor(category, typeName string) (AssetKey, bool) {
	if byType, ok := typedAssetKeys[category]; ok {
		k, ok := byType[typeName]
		return k, ok
	}
	k, ok := categoryAssetKeys[category]
	return k, ok
}

// DisplayName renders an asset key as a title, e.g. "Equity Direct".
func (k AssetKey) DisplayName() string {
	words := strings.Split(string(k), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Holding is an item resolved against its category: the category, equity
// bucket and asset key are fixed once here so downstream code switches on
// typed fields rather than re-matching strings.
type Holding struct {
	Category string
	Major    bool
	Bucket   EquityBucket
	AssetKey AssetKey
	HasKey   bool
	Item     Item
}

// Value is the holding's current value.
func (h Holding) Value() float64 { return h.Item.Value() }

// Rate is the holding's rate in percent.
func (h Holding) Rate() float64 { return h.Item.Rate() }

// SnapshotAmount is the amount attributed to the holding's asset key: the
// property value for Real Estate, the invested amount otherwise.
func (h Holding) SnapshotAmount() float64 {
	if h.Category == CategoryRealEstate {
		return h.Item.PropertyValue.Float()
	}
	return h.Item.Invested()
}

// Holdings resolves every item in the ledger, categories in CategoryNames order.
func (l Ledger) Holdings() []Holding {
	var out []Holding
	for _, category := range l.CategoryNames() {
		major := IsMajorCategory(category)
		for _, it := range l[category] {
			h := Holding{Category: category, Major: major, Item: it}
			if category == CategoryEquity {
				h.Bucket = ClassifyEquity(it.Type)
			}
			h.AssetKey, h.HasKey = AssetKeyFor(category, it.Type)
			out = append(out, h)
		}
	}
	return out
}
