package storage

import (
	"path/filepath"
	"testing"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/config"
	"github.com/bobmcallan/finplan-portal/internal/storage/memory"
	"github.com/bobmcallan/finplan-portal/internal/storage/sqlite"
	"github.com/bobmcallan/finplan-portal/internal/storage/supabase"
)

func TestNewUserStore_Backends(t *testing.T) {
	logger := common.NewSilentLogger()

	cfg := config.NewDefaultConfig()
	cfg.Store.Cache.TTL = ""
	s, err := NewUserStore(logger, cfg)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Errorf("memory backend type = %T", s)
	}

	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "finplan.db")
	s, err = NewUserStore(logger, cfg)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*sqlite.Store); !ok {
		t.Errorf("sqlite backend type = %T", s)
	}

	cfg.Store.Backend = config.BackendSupabase
	cfg.Store.Supabase.URL = "http://localhost:3000"
	s, err = NewUserStore(logger, cfg)
	if err != nil {
		t.Fatalf("supabase: %v", err)
	}
	if _, ok := s.(*supabase.Client); !ok {
		t.Errorf("supabase backend type = %T", s)
	}
}

func TestNewUserStore_WrapsWithCache(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Store.Cache.TTL = "30s"

	s, err := NewUserStore(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*CachedStore); !ok {
		t.Errorf("expected *CachedStore, got %T", s)
	}
}

func TestNewUserStore_UnknownBackend(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Store.Backend = "mongo"
	if _, err := NewUserStore(common.NewSilentLogger(), cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
