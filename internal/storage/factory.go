package storage

import (
	"fmt"

	"github.com/bobmcallan/finplan-portal/internal/cache"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/config"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
	"github.com/bobmcallan/finplan-portal/internal/storage/memory"
	"github.com/bobmcallan/finplan-portal/internal/storage/sqlite"
	"github.com/bobmcallan/finplan-portal/internal/storage/supabase"
)

// NewUserStore creates the configured backend, wrapped with the ledger cache
// when a cache TTL is set.
func NewUserStore(logger *common.Logger, cfg *config.Config) (interfaces.UserStore, error) {
	var store interfaces.UserStore

	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		store = memory.New()
	case config.BackendSQLite:
		s, err := sqlite.Open(logger, cfg.Store.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store = s
	case config.BackendSupabase:
		store = supabase.NewClient(logger,
			cfg.Store.Supabase.URL,
			cfg.Store.Supabase.APIKey,
			cfg.Store.Supabase.Table,
			cfg.SupabaseTimeout(),
		)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	logger.Info().Str("backend", cfg.Store.Backend).Msg("user store ready")

	if ttl := cfg.CacheTTL(); ttl > 0 {
		store = NewCachedStore(logger, store, cache.New(ttl, cfg.Store.Cache.MaxEntries))
		logger.Info().Dur("ttl", ttl).Int("max_entries", cfg.Store.Cache.MaxEntries).Msg("ledger cache enabled")
	}
	return store, nil
}
