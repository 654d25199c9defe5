// Package planning composes the finance packages over a user's stored data
// into the views served by the HTTP API and the MCP tools.
package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/finance/risk"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

// ErrStoreUnavailable wraps data store failures other than a missing record.
// Callers surface it to the user and do not retry.
var ErrStoreUnavailable = errors.New("data store unavailable")

// Options are the planning assumptions.
type Options struct {
	AssumedRate      float64
	Currency         string
	DefaultRiskLevel int
}

// Service reads users' ledgers and builds planning views.
type Service struct {
	logger *common.Logger
	store  interfaces.UserStore
	opts   Options
}

// NewService creates a Service. Zero options fall back to a 12% assumed rate,
// INR and the Medium risk level.
func NewService(logger *common.Logger, store interfaces.UserStore, opts Options) *Service {
	if opts.AssumedRate <= 0 {
		opts.AssumedRate = 0.12
	}
	if opts.Currency == "" {
		opts.Currency = common.DefaultCurrency
	}
	if !risk.ValidLevel(opts.DefaultRiskLevel) {
		opts.DefaultRiskLevel = risk.LevelMedium
	}
	return &Service{logger: logger, store: store, opts: opts}
}

// Options returns the effective planning assumptions.
func (s *Service) Options() Options {
	return s.opts
}

// Store returns the underlying user store.
func (s *Service) Store() interfaces.UserStore {
	return s.store
}

// LoadLedger reads the user's ledger. A user with no record reads as an
// empty ledger. Other failures are logged here and returned wrapping
// ErrStoreUnavailable.
func (s *Service) LoadLedger(ctx context.Context, email string) (ledger.Ledger, error) {
	l, err := s.store.ReadInvestments(ctx, email)
	if errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Debug().Str("email", email).Msg("no user record, using empty portfolio")
		return ledger.Ledger{}, nil
	}
	if err != nil {
		s.logger.Warn().Str("email", email).Err(err).Msg("failed to read investments")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if l == nil {
		l = ledger.Ledger{}
	}
	return l, nil
}

// SaveLedger overwrites the user's ledger.
func (s *Service) SaveLedger(ctx context.Context, email string, l ledger.Ledger) error {
	err := s.store.WriteInvestments(ctx, email, l)
	if errors.Is(err, interfaces.ErrNotFound) {
		return err
	}
	if err != nil {
		s.logger.Warn().Str("email", email).Err(err).Msg("failed to write investments")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.logger.Info().Str("email", email).Int("items", l.ItemCount()).Msg("investments saved")
	return nil
}

// Snapshot reads the user's ledger and maps it to asset-key amounts.
func (s *Service) Snapshot(ctx context.Context, email string) (risk.Snapshot, error) {
	l, err := s.LoadLedger(ctx, email)
	if err != nil {
		return nil, err
	}
	return risk.SnapshotFromLedger(l), nil
}
