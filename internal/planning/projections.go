package planning

import (
	"context"

	"github.com/bobmcallan/finplan-portal/internal/finance/risk"
	"github.com/bobmcallan/finplan-portal/internal/session"
)

// NewWhatIf snapshots the user's ledger and builds a what-if working copy
// for level. A level of 0 selects the default risk level.
func (s *Service) NewWhatIf(ctx context.Context, email string, level int) (*session.WhatIf, error) {
	if level == 0 {
		level = s.opts.DefaultRiskLevel
	}
	if !risk.ValidLevel(level) {
		_, err := risk.ProfileFor(level)
		return nil, err
	}
	snap, err := s.Snapshot(ctx, email)
	if err != nil {
		return nil, err
	}
	return session.NewWhatIf(snap, level)
}

// Project snapshots the user's ledger and projects it at level without
// keeping a working copy.
func (s *Service) Project(ctx context.Context, email string, level int) (*session.WhatIfView, error) {
	w, err := s.NewWhatIf(ctx, email, level)
	if err != nil {
		return nil, err
	}
	v := w.View()
	return &v, nil
}
