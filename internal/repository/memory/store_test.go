package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

func newGame(t *testing.T, id string, updated time.Time) *domain.Game {
	t.Helper()
	g, err := domain.NewGame(id, domain.Config{}.WithDefaults(), updated)
	require.NoError(t, err)
	return g
}

func TestGameStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewGameStore()
	g := newGame(t, "g1", time.Now())

	_, err := s.Get(ctx, "g1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Replace(ctx, g), domain.ErrNotFound)

	require.NoError(t, s.Create(ctx, g))
	assert.ErrorIs(t, s.Create(ctx, g), domain.ErrBadRequest)

	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Same(t, g, got)

	next, err := g.ApplyMove(7, 7, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, next))
	got, err = s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, got.Moves, 1)

	require.NoError(t, s.Delete(ctx, "g1"))
	require.NoError(t, s.Delete(ctx, "g1"))
	assert.Zero(t, s.Len())
}

func TestGameStoreEvict(t *testing.T) {
	ctx := context.Background()
	s := NewGameStore()
	now := time.Now()

	require.NoError(t, s.Create(ctx, newGame(t, "old", now.Add(-2*time.Hour))))
	require.NoError(t, s.Create(ctx, newGame(t, "fresh", now)))

	assert.Equal(t, 1, s.Evict(now.Add(-time.Hour)))
	_, err := s.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(ctx, "fresh")
	assert.NoError(t, err)
}
