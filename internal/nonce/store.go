// Package nonce implements the replay-protection ledger: a thread-safe,
// self-expiring set of nonces with a background sweep.
package nonce

import (
	"sync"
	"time"

	"shary/internal/crypto"
	"shary/internal/domain"
)

// Store accepts each nonce at most once while it is live. Entries outlive the
// window by a small margin so a nonce cannot be replayed right at the edge,
// and the sweeper purges them shortly after.
type Store struct {
	mu      sync.Mutex
	entries map[string]time.Time
	window  time.Duration

	done chan struct{}
	once sync.Once
}

// NewStore creates a store and starts its sweeper. Call Close to stop it.
func NewStore(window time.Duration) *Store {
	s := &Store{
		entries: make(map[string]time.Time),
		window:  window,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

var _ domain.NonceStore = (*Store)(nil)

// Add atomically checks and inserts n. It returns false when the nonce is
// already present and not yet expired, which callers treat as a replay.
func (s *Store) Add(n string) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.entries[n]; ok && now.Before(exp) {
		return false
	}
	s.entries[n] = now.Add(s.window + s.window/10)
	return true
}

// Generate returns a fresh random nonce.
func (s *Store) Generate() (string, error) {
	return crypto.GenerateNonce()
}

// Len reports the number of retained entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the background sweep. Idempotent.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweep() {
	t := time.NewTicker(s.window / 2)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-t.C:
			s.mu.Lock()
			for n, exp := range s.entries {
				if exp.Before(now) {
					delete(s.entries, n)
				}
			}
			s.mu.Unlock()
		}
	}
}
