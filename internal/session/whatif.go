package session

import (
	"sync"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/finance/risk"
)

// WhatIf is a user's projection working copy: the snapshot taken from their
// ledger, the allocation table for the selected risk level with any what-if
// edits, and the last projection run.
type WhatIf struct {
	mu         sync.Mutex
	snapshot   risk.Snapshot
	table      *risk.Table
	projection risk.Projection
	stale      bool
}

// WhatIfView is a point-in-time copy of a WhatIf.
type WhatIfView struct {
	Level               int             `json:"level"`
	ProfileName         string          `json:"profile_name"`
	Table               *risk.Table     `json:"table"`
	TotalCurrentValue   float64         `json:"total_current_value"`
	WeightedAverageCAGR float64         `json:"weighted_average_cagr"`
	Projection          risk.Projection `json:"projection"`
	// Stale is set when the table was edited after the last projection.
	Stale bool `json:"stale"`
}

// NewWhatIf builds the table for level from snap and runs a projection.
func NewWhatIf(snap risk.Snapshot, level int) (*WhatIf, error) {
	w := &WhatIf{snapshot: snap}
	if err := w.SetLevel(level); err != nil {
		return nil, err
	}
	return w, nil
}

// SetLevel rebuilds the table from the snapshot for level and reprojects.
// What-if edits are discarded.
func (w *WhatIf) SetLevel(level int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := risk.BuildAllocationTable(level, w.snapshot)
	if err != nil {
		return err
	}
	proj, err := risk.Project(t, level)
	if err != nil {
		return err
	}
	w.table = t
	w.projection = proj
	w.stale = false
	return nil
}

// SetAmount applies a what-if edit and renormalises the table without
// reprojecting.
func (w *WhatIf) SetAmount(key ledger.AssetKey, amount float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.table.SetCurrentAmount(key, amount); err != nil {
		return err
	}
	w.stale = true
	return nil
}

// Run reprojects the current table.
func (w *WhatIf) Run() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	proj, err := risk.Project(w.table, w.table.Level)
	if err != nil {
		return err
	}
	w.projection = proj
	w.stale = false
	return nil
}

// View returns a copy of the current state.
func (w *WhatIf) View() WhatIfView {
	w.mu.Lock()
	defer w.mu.Unlock()

	var name string
	if p, err := risk.ProfileFor(w.table.Level); err == nil {
		name = p.Name()
	}
	proj := w.projection
	proj.ByKey = append([]risk.KeyProjection(nil), w.projection.ByKey...)

	return WhatIfView{
		Level:               w.table.Level,
		ProfileName:         name,
		Table:               w.table.Clone(),
		TotalCurrentValue:   w.table.Total(),
		WeightedAverageCAGR: w.table.WeightedAverageCAGR(),
		Projection:          proj,
		Stale:               w.stale,
	}
}
