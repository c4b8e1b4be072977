package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/memory"
)

func TestRunOnceEvictsIdleGames(t *testing.T) {
	store := memory.NewGameStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old, err := domain.NewGame("old", domain.Config{}.WithDefaults(), now.Add(-2*time.Hour))
	require.NoError(t, err)
	fresh, err := domain.NewGame("fresh", domain.Config{}.WithDefaults(), now.Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, old))
	require.NoError(t, store.Create(ctx, fresh))

	var roomCutoff time.Time
	w := NewWorker(time.Minute,
		Target{Name: "games", MaxIdle: time.Hour, Evictor: store},
		Target{Name: "rooms", MaxIdle: 30 * time.Minute, Evictor: EvictorFunc(func(cutoff time.Time) int {
			roomCutoff = cutoff
			return 2
		})},
	)
	w.now = func() time.Time { return now }

	assert.Equal(t, 3, w.RunOnce())
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, now.Add(-30*time.Minute), roomCutoff)

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestStartRunsOnSchedule(t *testing.T) {
	calls := make(chan time.Time, 8)
	w := NewWorker(20*time.Millisecond, Target{Name: "rooms", MaxIdle: time.Second, Evictor: EvictorFunc(func(cutoff time.Time) int {
		calls <- cutoff
		return 0
	})})

	require.NoError(t, w.Start())
	defer w.Stop()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup job never ran")
	}
}
