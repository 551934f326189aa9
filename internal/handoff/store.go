// Package handoff implements the transient key-value store that carries an
// extracted receipt from the chat flow to the split flow across a page
// navigation. Entries are written once, read once, then cleared; unclaimed
// entries expire after a TTL.
package handoff

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/budgetly/budgetly/internal/receipts"
)

var (
	// ErrNotFound is returned when no receipt is waiting under the key.
	// This is the split page's explicit "no data" state.
	ErrNotFound = errors.New("no receipt waiting")

	// ErrExists is returned when a key is written twice.
	ErrExists = errors.New("receipt already stored under this key")
)

type entry struct {
	receipt  *receipts.Receipt
	storedAt time.Time
}

// Store is an in-memory write-once/read-once receipt store.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewStore creates a store whose unclaimed entries expire after ttl. A
// background sweep reclaims expired entries until Close is called.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put stores a receipt under a fresh key and returns the key. The key is
// what the chat flow hands to the split page.
func (s *Store) Put(receipt *receipts.Receipt) string {
	key := uuid.New().String()
	s.mu.Lock()
	s.entries[key] = entry{receipt: receipt, storedAt: time.Now()}
	s.mu.Unlock()
	return key
}

// PutKeyed stores a receipt under a caller-chosen key. Writing the same key
// twice is an error; the hand-off contract is write-once.
func (s *Store) PutKeyed(key string, receipt *receipts.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return ErrExists
	}
	s.entries[key] = entry{receipt: receipt, storedAt: time.Now()}
	return nil
}

// Take returns the receipt stored under key and clears it. A second Take
// for the same key returns ErrNotFound.
func (s *Store) Take(key string) (*receipts.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.entries, key)
	return e.receipt, nil
}

// Close stops the background sweep.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweep() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if now.Sub(e.storedAt) > s.ttl {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
