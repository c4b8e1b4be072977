package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/iamasit07/5-in-a-row/backend/pkg/uid"
)

// Store is the keyed registry of live games. Get and Replace report
// domain.ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, g *domain.Game) error
	Get(ctx context.Context, id string) (*domain.Game, error)
	Replace(ctx context.Context, g *domain.Game) error
	Delete(ctx context.Context, id string) error
}

// Archive receives every game once it reaches a terminal state.
type Archive interface {
	SaveGame(ctx context.Context, g *domain.Game) error
}

const archiveTimeout = 10 * time.Second

// Service owns the read-modify-write cycle around the Store. Every mutation of
// a game runs under that game's lock, so concurrent writers never apply a move
// to a stale snapshot.
type Service struct {
	store    Store
	archive  Archive
	defaults domain.Config
	locks    *gameLocks
	now      func() time.Time
}

// NewService wires a Service. archive may be nil.
func NewService(store Store, archive Archive, defaults domain.Config) *Service {
	return &Service{
		store:    store,
		archive:  archive,
		defaults: defaults.WithDefaults(),
		locks:    newGameLocks(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Defaults() domain.Config {
	return s.defaults
}

// Create starts a game. Zero fields of cfg fall back to the service defaults.
func (s *Service) Create(ctx context.Context, cfg domain.Config) (*domain.Game, error) {
	cfg = s.withDefaults(cfg)

	g, err := domain.NewGame(uid.GenerateGameID(), cfg, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}

	log.Printf("[GAME] Created game %s: %dx%d, %d in a row, overlines=%t, first=%s",
		g.ID, cfg.Size, cfg.Size, cfg.WinLength, cfg.AllowOverlines, cfg.FirstPlayer)
	return g, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Game, error) {
	return s.store.Get(ctx, id)
}

// ApplyMove plays (x, y) for whoever is next.
func (s *Service) ApplyMove(ctx context.Context, id string, x, y int) (*domain.Game, error) {
	return s.update(ctx, id, func(g *domain.Game) (*domain.Game, error) {
		return g.ApplyMove(x, y, s.now())
	})
}

// ApplyMoveAs plays (x, y) only if player is the one to move. The turn check
// happens under the game lock together with the move itself.
func (s *Service) ApplyMoveAs(ctx context.Context, id string, player domain.Player, x, y int) (*domain.Game, error) {
	return s.update(ctx, id, func(g *domain.Game) (*domain.Game, error) {
		if g.IsFinished() {
			return nil, fmt.Errorf("%w: game is %s", domain.ErrInvalidState, g.Status)
		}
		if g.NextPlayer != player {
			return nil, fmt.Errorf("%w: %s to move", domain.ErrNotYourTurn, g.NextPlayer)
		}
		return g.ApplyMove(x, y, s.now())
	})
}

func (s *Service) Undo(ctx context.Context, id string, steps int) (*domain.Game, error) {
	return s.update(ctx, id, func(g *domain.Game) (*domain.Game, error) {
		return g.Undo(steps, s.now())
	})
}

// Clear removes a game. Unknown ids report domain.ErrNotFound.
func (s *Service) Clear(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[GAME] Cleared game %s", id)
	return nil
}

func (s *Service) update(ctx context.Context, id string, mutate func(*domain.Game) (*domain.Game, error)) (*domain.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := mutate(current)
	if err != nil {
		return nil, err
	}

	if err := s.store.Replace(ctx, next); err != nil {
		return nil, err
	}

	if next.IsFinished() && !current.IsFinished() {
		log.Printf("[GAME] Game %s finished: status=%s winner=%s moves=%d",
			next.ID, next.Status, next.Winner, len(next.Moves))
		s.archiveAsync(next)
	}
	return next, nil
}

// archiveAsync saves a finished game in the background so callers are not held
// up by the archive database.
func (s *Service) archiveAsync(g *domain.Game) {
	if s.archive == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := s.archive.SaveGame(ctx, g); err != nil {
			log.Printf("[ARCHIVE] Error saving game %s: %v", g.ID, err)
			return
		}
		log.Printf("[ARCHIVE] Game %s saved successfully", g.ID)
	}()
}

func (s *Service) withDefaults(cfg domain.Config) domain.Config {
	if cfg.Size == 0 {
		cfg.Size = s.defaults.Size
	}
	if cfg.WinLength == 0 {
		cfg.WinLength = min(s.defaults.WinLength, cfg.Size)
	}
	if cfg.FirstPlayer == domain.Empty {
		cfg.FirstPlayer = s.defaults.FirstPlayer
	}
	return cfg
}
