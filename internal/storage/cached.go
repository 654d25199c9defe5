package storage

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/finplan-portal/internal/cache"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

// CachedStore wraps a UserStore with a read-through ledger cache. Concurrent
// reads for the same email share one backend fetch. Writes go straight to
// the backend and invalidate the entry.
type CachedStore struct {
	interfaces.UserStore
	cache  *cache.Cache
	group  singleflight.Group
	logger *common.Logger

	mu       sync.Mutex
	versions map[string]uint64
}

// NewCachedStore wraps next with c.
func NewCachedStore(logger *common.Logger, next interfaces.UserStore, c *cache.Cache) *CachedStore {
	return &CachedStore{
		UserStore: next,
		cache:     c,
		logger:    logger,
		versions:  make(map[string]uint64),
	}
}

func cacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CachedStore) version(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key]
}

// invalidate drops the entry and bumps the key's version so an in-flight
// fetch that started before the write does not repopulate the cache.
func (s *CachedStore) invalidate(key string) {
	s.mu.Lock()
	s.versions[key]++
	s.mu.Unlock()
	s.cache.Delete(key)
}

// ReadInvestments returns the cached ledger or fetches it once. The shared
// fetch ignores the leader's cancellation since other callers may be
// waiting on it; the backends bound it with their own timeouts.
func (s *CachedStore) ReadInvestments(ctx context.Context, email string) (ledger.Ledger, error) {
	key := cacheKey(email)
	if data, ok := s.cache.Get(key); ok {
		return ledger.Decode(data)
	}

	fetchCtx := context.WithoutCancel(ctx)
	result, err, shared := s.group.Do(key, func() (interface{}, error) {
		v := s.version(key)
		l, err := s.UserStore.ReadInvestments(fetchCtx, email)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.versions[key] == v {
			s.cache.Set(key, data)
		}
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug().Str("email", key).Msg("ledger read coalesced")
	}
	return ledger.Decode(result.([]byte))
}

// WriteInvestments writes through and invalidates.
func (s *CachedStore) WriteInvestments(ctx context.Context, email string, l ledger.Ledger) error {
	defer s.invalidate(cacheKey(email))
	return s.UserStore.WriteInvestments(ctx, email, l)
}

// UpdateUserRecord writes through and invalidates, since fields may include
// the investments column.
func (s *CachedStore) UpdateUserRecord(ctx context.Context, email string, fields interfaces.Record) error {
	defer s.invalidate(cacheKey(email))
	return s.UserStore.UpdateUserRecord(ctx, email, fields)
}

// CreateUserRecord writes through and invalidates.
func (s *CachedStore) CreateUserRecord(ctx context.Context, email string, fields interfaces.Record) error {
	defer s.invalidate(cacheKey(email))
	return s.UserStore.CreateUserRecord(ctx, email, fields)
}

// Sweep drops expired ledger entries and returns how many were removed with
// the cache counters after the sweep.
func (s *CachedStore) Sweep() (int, cache.Stats) {
	return s.cache.PurgeExpired(), s.cache.Stats()
}
