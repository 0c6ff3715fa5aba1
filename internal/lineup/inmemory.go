package lineup

import (
	"context"
	"fmt"
	"sync"
)

type memoryBackend struct {
	mu      sync.RWMutex
	lineups map[string][]string
}

// NewInMemory returns a Repository that keeps lineups in process memory.
func NewInMemory() Repository {
	return &repo{b: &memoryBackend{lineups: make(map[string][]string)}}
}

func (m *memoryBackend) load(_ context.Context, userID string) (*Lineup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cards, ok := m.lineups[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return &Lineup{UserID: userID, Cards: append([]string(nil), cards...)}, nil
}

func (m *memoryBackend) save(_ context.Context, l *Lineup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lineups[l.UserID] = append([]string(nil), l.Cards...)
	return nil
}

func (m *memoryBackend) remove(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lineups, userID)
	return nil
}
