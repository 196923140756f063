package store

import (
	"context"
	"sync"

	"github.com/halcyonforge/bookvault/internal/books"
)

// Compile-time interface guard.
var _ books.Store = (*Memory)(nil)

// Memory keeps the collection in a process-wide list. State resets on
// restart, which makes it the wrong choice for production but the right one
// for tests and throwaway runs.
type Memory struct {
	mu      sync.RWMutex
	records []books.Book
}

// NewMemory constructs a Memory store seeded with the provided records.
func NewMemory(seed []books.Book) *Memory {
	records := make([]books.Book, len(seed))
	copy(records, seed)
	return &Memory{records: records}
}

// Load returns a copy of the collection so callers can mutate freely.
func (s *Memory) Load(_ context.Context) ([]books.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]books.Book, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Save replaces the collection.
func (s *Memory) Save(_ context.Context, records []books.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]books.Book, len(records))
	copy(s.records, records)
	return nil
}
