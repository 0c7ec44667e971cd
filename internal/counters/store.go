package counters

import (
	"sync"
	"time"
)

// Store holds the most recent result set for concurrent readers. The serve
// mode poller writes into it while the scrape handler reads from it.
type Store struct {
	mu      sync.RWMutex
	rs      *ResultSet
	updated time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rs: &ResultSet{}}
}

// Set replaces the stored result set.
func (s *Store) Set(rs *ResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs = rs
	s.updated = time.Now()
}

// Snapshot returns the stored result set and the time it was fetched.
func (s *Store) Snapshot() (*ResultSet, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rs, s.updated
}
