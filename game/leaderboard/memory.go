package leaderboard

import (
	"context"
	"sort"
	"sync"

	"github.com/wricardo/tmge/game/service"
)

// DefaultCapacity is the number of entries kept per variant
const DefaultCapacity = 100

// MemoryStore keeps the best scores per variant in process memory
type MemoryStore struct {
	entries  map[string][]service.LeaderboardEntry
	capacity int
	mu       sync.RWMutex
}

// NewMemoryStore creates a store keeping at most capacity entries per variant
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		entries:  make(map[string][]service.LeaderboardEntry),
		capacity: capacity,
	}
}

// Submit records a final score
func (s *MemoryStore) Submit(ctx context.Context, entry service.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.entries[entry.Variant], entry)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	s.entries[entry.Variant] = entries
	return nil
}

// Top returns up to limit entries for a variant, best first
func (s *MemoryStore) Top(ctx context.Context, variant string, limit int) ([]service.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[variant]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return append([]service.LeaderboardEntry{}, entries...), nil
}
