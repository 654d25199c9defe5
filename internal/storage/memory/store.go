package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

// Store is an in-process UserStore. Records are held as encoded JSON so no
// caller ever shares a value with the store.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) load(email string) (interfaces.Record, error) {
	data, ok := s.records[key(email)]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	var rec interfaces.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}

func (s *Store) save(email string, rec interfaces.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	s.records[key(email)] = data
	return nil
}

// ReadInvestments returns the user's ledger.
func (s *Store) ReadInvestments(_ context.Context, email string) (ledger.Ledger, error) {
	s.mu.RLock()
	rec, err := s.load(email)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(rec[interfaces.InvestmentsColumn])
	if err != nil {
		return nil, fmt.Errorf("failed to encode investments: %w", err)
	}
	return ledger.Decode(raw)
}

// WriteInvestments overwrites the user's ledger.
func (s *Store) WriteInvestments(_ context.Context, email string, l ledger.Ledger) error {
	return s.update(email, interfaces.Record{interfaces.InvestmentsColumn: l})
}

// ReadUserRecord returns the user's record.
func (s *Store) ReadUserRecord(_ context.Context, email string) (interfaces.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(email)
}

// UpdateUserRecord merges fields into the user's record.
func (s *Store) UpdateUserRecord(_ context.Context, email string, fields interfaces.Record) error {
	return s.update(email, fields)
}

func (s *Store) update(email string, fields interfaces.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(email)
	if err != nil {
		return err
	}
	for k, v := range fields {
		if k == "email" {
			continue
		}
		if v == nil {
			delete(rec, k)
			continue
		}
		rec[k] = v
	}
	return s.save(email, rec)
}

// CreateUserRecord inserts a new record.
func (s *Store) CreateUserRecord(_ context.Context, email string, fields interfaces.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key(email)]; ok {
		return interfaces.ErrAlreadyExists
	}
	rec := interfaces.Record{}
	for k, v := range fields {
		if v != nil {
			rec[k] = v
		}
	}
	rec["email"] = key(email)
	return s.save(email, rec)
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
