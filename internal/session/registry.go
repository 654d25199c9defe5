// Package session holds each user's in-memory working copies (the portfolio
// editor and the what-if projection table) between requests.
//
// A load that reads the data store first takes a Ticket. Only the most
// recent ticket for a user may install its result, so a slow load that
// finishes after a newer one is dropped instead of overwriting it.
package session

import (
	"strings"
	"sync"
	"time"
)

// Ticket identifies one load of a user's working copy.
type Ticket struct {
	Email      string
	Generation uint64
}

type slot[T any] struct {
	generation uint64
	value      T
	present    bool
	touched    time.Time
}

// Registry maps a user to one working copy of type T. Copies idle for
// longer than the TTL are dropped.
type Registry[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	slots map[string]*slot[T]
	now   func() time.Time
}

// NewRegistry creates a Registry. A ttl of 0 keeps copies until dropped.
func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	return &Registry[T]{
		ttl:   ttl,
		slots: make(map[string]*slot[T]),
		now:   time.Now,
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Registry[T]) slotFor(email string) *slot[T] {
	k := key(email)
	s, ok := r.slots[k]
	if !ok {
		s = &slot[T]{}
		r.slots[k] = s
	}
	return s
}

func (r *Registry[T]) expired(s *slot[T]) bool {
	return r.ttl > 0 && r.now().Sub(s.touched) > r.ttl
}

// Begin starts a load for email and supersedes any load already in flight.
func (r *Registry[T]) Begin(email string) Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slotFor(email)
	s.generation++
	return Ticket{Email: key(email), Generation: s.generation}
}

// Commit installs v if t is still the latest ticket for its user. It
// reports whether v was installed.
func (r *Registry[T]) Commit(t Ticket, v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.slotFor(t.Email)
	if s.generation != t.Generation {
		return false
	}
	s.value = v
	s.present = true
	s.touched = r.now()
	return true
}

// Get returns the user's working copy.
func (r *Registry[T]) Get(email string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	s, ok := r.slots[key(email)]
	if !ok || !s.present {
		return zero, false
	}
	if r.expired(s) {
		s.value = zero
		s.present = false
		return zero, false
	}
	s.touched = r.now()
	return s.value, true
}

// Drop discards the user's copy and invalidates in-flight loads.
func (r *Registry[T]) Drop(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[key(email)]
	if !ok {
		return
	}
	var zero T
	s.generation++
	s.value = zero
	s.present = false
}

// Len returns the number of users holding a copy.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.slots {
		if s.present {
			n++
		}
	}
	return n
}

// Cleanup drops expired copies and returns how many were removed. The slot
// keeps its generation so a load already in flight can still commit.
func (r *Registry[T]) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	removed := 0
	for _, s := range r.slots {
		if s.present && r.expired(s) {
			s.value = zero
			s.present = false
			removed++
		}
	}
	return removed
}
