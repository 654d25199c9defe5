package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/finplan-portal/internal/finance/profile"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

// ProfileView is the personal details page with derived totals.
type ProfileView struct {
	Details profile.Details `json:"details"`
	Totals  profile.Totals  `json:"totals"`
}

func newProfileView(d profile.Details) *ProfileView {
	return &ProfileView{Details: d, Totals: d.Totals()}
}

// Profile reads the user's personal details. A user with no record reads as
// empty details.
func (s *Service) Profile(ctx context.Context, email string) (*ProfileView, error) {
	rec, err := s.store.ReadUserRecord(ctx, email)
	if errors.Is(err, interfaces.ErrNotFound) {
		return newProfileView(profile.Empty()), nil
	}
	if err != nil {
		s.logger.Warn().Str("email", email).Err(err).Msg("failed to read user record")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return newProfileView(profile.FromColumns(rec)), nil
}

// SaveProfile validates d and writes it to the user's record.
func (s *Service) SaveProfile(ctx context.Context, email string, d profile.Details) (*ProfileView, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.Normalize()

	err := s.store.UpdateUserRecord(ctx, email, d.Columns())
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn().Str("email", email).Err(err).Msg("failed to update user record")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.logger.Info().Str("email", email).Msg("profile saved")
	return newProfileView(d), nil
}
