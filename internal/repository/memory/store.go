package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

// GameStore keeps game snapshots in a map. Snapshots are never mutated after
// they are stored, so handing out the stored pointer is safe.
type GameStore struct {
	games map[string]*domain.Game
	mu    sync.RWMutex
}

func NewGameStore() *GameStore {
	return &GameStore{games: make(map[string]*domain.Game)}
}

func (s *GameStore) Create(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID]; exists {
		return fmt.Errorf("%w: game %s already exists", domain.ErrBadRequest, g.ID)
	}
	s.games[g.ID] = g
	return nil
}

func (s *GameStore) Get(ctx context.Context, id string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.games[id]
	if !exists {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, id)
	}
	return g, nil
}

func (s *GameStore) Replace(ctx context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[g.ID]; !exists {
		return fmt.Errorf("%w: game %s", domain.ErrNotFound, g.ID)
	}
	s.games[g.ID] = g
	return nil
}

func (s *GameStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.games, id)
	return nil
}

func (s *GameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Evict drops every game last updated before cutoff and reports how many went.
func (s *GameStore) Evict(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, g := range s.games {
		if g.UpdatedAt.Before(cutoff) {
			delete(s.games, id)
			count++
		}
	}
	return count
}
