package history

import (
	"sync"

	"github.com/iwanhae/rating-tourniquet/aggregate"
	"github.com/iwanhae/rating-tourniquet/types"
)

// MemoryStore is a simple in-memory result store.
type MemoryStore struct {
	mu      sync.RWMutex
	results []types.GameResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make([]types.GameResult, 0)}
}

func (s *MemoryStore) Init() error {
	return nil
}

func (s *MemoryStore) Append(r types.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *MemoryStore) Totals() ([24]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.Totals(s.results), nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results), nil
}

// Results returns a copy of the stored results.
func (s *MemoryStore) Results() []types.GameResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.GameResult, len(s.results))
	copy(out, s.results)
	return out
}

func (s *MemoryStore) Close() error {
	return nil
}
