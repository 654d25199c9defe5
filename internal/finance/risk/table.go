package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
)

// ErrUnknownAssetKey is returned when editing a row the table does not carry.
var ErrUnknownAssetKey = errors.New("unknown asset key")

// Snapshot is the current amount held per asset key.
type Snapshot map[ledger.AssetKey]float64

// SnapshotFromLedger sums the snapshot amount of every holding that maps to an
// asset key. Amounts are truncated to whole currency units.
func SnapshotFromLedger(l ledger.Ledger) Snapshot {
	snap := make(Snapshot, len(ledger.AssetKeys))
	for _, k := range ledger.AssetKeys {
		snap[k] = 0
	}
	for _, h := range l.Holdings() {
		if !h.HasKey {
			continue
		}
		snap[h.AssetKey] += math.Trunc(h.SnapshotAmount())
	}
	return snap
}

// Row is one asset key in an allocation table. Percentages are 0..100.
type Row struct {
	Key                  ledger.AssetKey `json:"key"`
	Name                 string          `json:"name"`
	CurrentAmount        float64         `json:"current_amount"`
	CurrentAllocationPct float64         `json:"current_allocation_pct"`
	TargetAllocationPct  float64         `json:"target_allocation_pct"`
	CAGRPct              float64         `json:"cagr_pct"`
}

// Table is the what-if allocation table for one risk level.
type Table struct {
	Level int   `json:"level"`
	Rows  []Row `json:"rows"`
}

// BuildAllocationTable builds a row for every key the level's profile
// allocates to. Displayed CAGR comes from StandardCAGR.
func BuildAllocationTable(level int, snap Snapshot) (*Table, error) {
	p, err := ProfileFor(level)
	if err != nil {
		return nil, err
	}

	t := &Table{Level: level}
	for _, k := range p.Keys() {
		t.Rows = append(t.Rows, Row{
			Key:                 k,
			Name:                k.DisplayName(),
			CurrentAmount:       snap[k],
			TargetAllocationPct: p.Allocation(k) * 100,
			CAGRPct:             StandardCAGR[k] * 100,
		})
	}
	t.Renormalize()
	return t, nil
}

// Total returns the sum of current amounts.
func (t *Table) Total() float64 {
	var total float64
	for _, r := range t.Rows {
		total += r.CurrentAmount
	}
	return total
}

// Renormalize recomputes every row's current allocation from the current
// amounts. All allocations are 0 when the total is 0.
func (t *Table) Renormalize() {
	total := t.Total()
	for i := range t.Rows {
		if total > 0 {
			t.Rows[i].CurrentAllocationPct = t.Rows[i].CurrentAmount / total * 100
		} else {
			t.Rows[i].CurrentAllocationPct = 0
		}
	}
}

// SetCurrentAmount applies a what-if edit to one row and renormalises the
// table. It does not reproject.
func (t *Table) SetCurrentAmount(key ledger.AssetKey, amount float64) error {
	for i := range t.Rows {
		if t.Rows[i].Key == key {
			t.Rows[i].CurrentAmount = amount
			t.Renormalize()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAssetKey, key)
}

// WeightedAverageCAGR returns Σ(amount*cagr)/Σ(amount) as a decimal fraction,
// using the displayed CAGR of each row. It is 0 for an empty table. The value
// is reported alongside a projection but does not feed into it.
func (t *Table) WeightedAverageCAGR() float64 {
	var weighted, total float64
	for _, r := range t.Rows {
		weighted += r.CurrentAmount * r.CAGRPct / 100
		total += r.CurrentAmount
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{Level: t.Level, Rows: make([]Row, len(t.Rows))}
	copy(c.Rows, t.Rows)
	return c
}

// KeyProjection is one asset key's share of a projection.
type KeyProjection struct {
	Key          ledger.AssetKey `json:"key"`
	TargetAmount float64         `json:"target_amount"`
	CAGR         float64         `json:"cagr"`
	P5           float64         `json:"p5"`
	P10          float64         `json:"p10"`
	P20          float64         `json:"p20"`
}

// Projection is the projected total value at each horizon.
type Projection struct {
	Level               int             `json:"level"`
	TotalCurrentValue   float64         `json:"total_current_value"`
	WeightedAverageCAGR float64         `json:"weighted_average_cagr"`
	P5                  float64         `json:"p5"`
	P10                 float64         `json:"p10"`
	P20                 float64         `json:"p20"`
	ByKey               []KeyProjection `json:"by_key"`
}

// Project rebalances the table's total into the level's target allocation and
// compounds each key at the profile's growth rate. Keys the profile does not
// carry grow at 0.
func Project(t *Table, level int) (Projection, error) {
	p, err := ProfileFor(level)
	if err != nil {
		return Projection{}, err
	}

	total := t.Total()
	proj := Projection{
		Level:               level,
		TotalCurrentValue:   total,
		WeightedAverageCAGR: t.WeightedAverageCAGR(),
	}

	for _, r := range t.Rows {
		kp := KeyProjection{
			Key:          r.Key,
			TargetAmount: total * p.Allocation(r.Key),
			CAGR:         p.CAGR(r.Key),
		}
		kp.P5 = compound(kp.TargetAmount, kp.CAGR, 5)
		kp.P10 = compound(kp.TargetAmount, kp.CAGR, 10)
		kp.P20 = compound(kp.TargetAmount, kp.CAGR, 20)

		proj.P5 += kp.P5
		proj.P10 += kp.P10
		proj.P20 += kp.P20
		proj.ByKey = append(proj.ByKey, kp)
	}
	return proj, nil
}

func compound(amount, rate float64, years int) float64 {
	return amount * math.Pow(1+rate, float64(years))
}
