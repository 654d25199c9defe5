// Package risk maps risk levels to target allocations and projects a
// portfolio's value under them.
package risk

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
)

// Risk levels.
const (
	LevelLow    = 1
	LevelMedium = 2
	LevelHigh   = 3
)

// ErrUnknownLevel is returned for a risk level outside 1..3.
var ErrUnknownLevel = errors.New("unknown risk level")

// StandardCAGR is the displayed annual growth rate per asset key, as a
// decimal fraction.
var StandardCAGR = map[ledger.AssetKey]float64{
	ledger.AssetEquityDirect: 0.18,
	ledger.AssetEquityMutual: 0.14,
	ledger.AssetEquityETF:    0.11,
	ledger.AssetEquityCaps:   0.12,
	ledger.AssetFixedGovt:    0.07,
	ledger.AssetFixedCorp:    0.09,
	ledger.AssetFixedFD:      0.065,
	ledger.AssetFixedDebtMF:  0.05,
	ledger.AssetRealEstate:   0.08,
	ledger.AssetCommodities:  0.05,
	ledger.AssetAlternative:  0.14,
	ledger.AssetCrypto:       0.15,
	ledger.AssetDerivatives:  0.11,
	ledger.AssetCash:         0.08,
}

// projectionCAGR is the growth table Project compounds with. It is tuned
// separately from StandardCAGR and currently holds the same values.
var projectionCAGR = map[ledger.AssetKey]float64{
	ledger.AssetEquityDirect: 0.18,
	ledger.AssetEquityMutual: 0.14,
	ledger.AssetEquityETF:    0.11,
	ledger.AssetEquityCaps:   0.12,
	ledger.AssetFixedGovt:    0.07,
	ledger.AssetFixedCorp:    0.09,
	ledger.AssetFixedFD:      0.065,
	ledger.AssetFixedDebtMF:  0.05,
	ledger.AssetRealEstate:   0.08,
	ledger.AssetCommodities:  0.05,
	ledger.AssetAlternative:  0.14,
	ledger.AssetCrypto:       0.15,
	ledger.AssetDerivatives:  0.11,
	ledger.AssetCash:         0.08,
}

// Profile is an immutable bundle of target allocations and growth rates for
// one risk level. Allocations are authoritative and are not normalised.
type Profile struct {
	level       int
	name        string
	allocations map[ledger.AssetKey]float64
	cagrs       map[ledger.AssetKey]float64
}

var profiles = map[int]Profile{
	LevelLow: {
		level: LevelLow,
		name:  "Low",
		allocations: map[ledger.AssetKey]float64{
			ledger.AssetEquityDirect: 0.10,
			ledger.AssetEquityMutual: 0.07,
			ledger.AssetEquityETF:    0.05,
			ledger.AssetEquityCaps:   0.03,
			ledger.AssetFixedGovt:    0.05,
			ledger.AssetFixedCorp:    0.00,
			ledger.AssetFixedFD:      0.45,
			ledger.AssetFixedDebtMF:  0.05,
			ledger.AssetRealEstate:   0.10,
			ledger.AssetCommodities:  0.05,
			ledger.AssetAlternative:  0.00,
			ledger.AssetCrypto:       0.00,
			ledger.AssetDerivatives:  0.00,
			ledger.AssetCash:         0.05,
		},
		cagrs: projectionCAGR,
	},
	LevelMedium: {
		level: LevelMedium,
		name:  "Medium",
		allocations: map[ledger.AssetKey]float64{
			ledger.AssetEquityDirect: 0.15,
			ledger.AssetEquityMutual: 0.10,
			ledger.AssetEquityETF:    0.05,
			ledger.AssetEquityCaps:   0.05,
			ledger.AssetFixedGovt:    0.03,
			ledger.AssetFixedCorp:    0.00,
			ledger.AssetFixedFD:      0.30,
			ledger.AssetFixedDebtMF:  0.07,
			ledger.AssetRealEstate:   0.10,
			ledger.AssetCommodities:  0.03,
			ledger.AssetAlternative:  0.00,
			ledger.AssetCrypto:       0.00,
			ledger.AssetDerivatives:  0.10,
			ledger.AssetCash:         0.02,
		},
		cagrs: projectionCAGR,
	},
	LevelHigh: {
		level: LevelHigh,
		name:  "High",
		allocations: map[ledger.AssetKey]float64{
			ledger.AssetEquityDirect: 0.15,
			ledger.AssetEquityMutual: 0.25,
			ledger.AssetEquityETF:    0.05,
			ledger.AssetEquityCaps:   0.05,
			ledger.AssetFixedGovt:    0.03,
			ledger.AssetFixedCorp:    0.00,
			ledger.AssetFixedFD:      0.05,
			ledger.AssetFixedDebtMF:  0.07,
			ledger.AssetRealEstate:   0.10,
			ledger.AssetCommodities:  0.05,
			ledger.AssetAlternative:  0.05,
			ledger.AssetCrypto:       0.03,
			ledger.AssetDerivatives:  0.10,
			ledger.AssetCash:         0.02,
		},
		cagrs: projectionCAGR,
	},
}

// ProfileFor returns the profile for level.
func ProfileFor(level int) (Profile, error) {
	p, ok := profiles[level]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	return p, nil
}

// ValidLevel reports whether level names a profile.
func ValidLevel(level int) bool {
	_, ok := profiles[level]
	return ok
}

// Level returns the profile's risk level.
func (p Profile) Level() int { return p.level }

// Name returns the display name, e.g. "Medium".
func (p Profile) Name() string { return p.name }

// Allocation returns the target fraction for key, 0 when absent.
func (p Profile) Allocation(key ledger.AssetKey) float64 { return p.allocations[key] }

// CAGR returns the projection growth rate for key, 0 when absent.
func (p Profile) CAGR(key ledger.AssetKey) float64 { return p.cagrs[key] }

// Keys returns the asset keys the profile allocates to, in table order.
func (p Profile) Keys() []ledger.AssetKey {
	keys := make([]ledger.AssetKey, 0, len(p.allocations))
	for _, k := range ledger.AssetKeys {
		if _, ok := p.allocations[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// AllocationSum returns the sum of the target fractions.
func (p Profile) AllocationSum() float64 {
	var sum float64
	for _, v := range p.allocations {
		sum += v
	}
	return sum
}
