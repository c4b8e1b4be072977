package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/memory"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/postgres"
	"github.com/iamasit07/5-in-a-row/backend/internal/service/game"
	"github.com/iamasit07/5-in-a-row/backend/internal/service/room"
	"github.com/iamasit07/5-in-a-row/backend/pkg/auth"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type nopBroadcaster struct{}

func (nopBroadcaster) SendMessage(string, domain.ServerMessage) error { return nil }

type fakeArchive struct {
	games map[string]*domain.Game
}

func (a *fakeArchive) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	g, ok := a.games[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (a *fakeArchive) ListRecent(ctx context.Context, limit int) ([]postgres.GameSummary, error) {
	out := []postgres.GameSummary{}
	for _, g := range a.games {
		out = append(out, postgres.GameSummary{GameID: g.ID, Status: g.Status, TotalMoves: len(g.Moves)})
	}
	return out, nil
}

type testEnv struct {
	router *gin.Engine
	games  *game.Service
	rooms  *room.Coordinator
}

func newTestEnv(t *testing.T, archive Archive, requireAuth bool) *testEnv {
	t.Helper()
	defaults := domain.Config{}.WithDefaults()
	svc := game.NewService(memory.NewGameStore(), nil, defaults)
	coordinator := room.NewCoordinator(svc, nopBroadcaster{}, defaults)
	router := NewRouter(RouterConfig{
		Games:          svc,
		Rooms:          coordinator,
		Archive:        archive,
		AllowedOrigins: []string{"http://localhost:5173"},
		JWTSecret:      testSecret,
		RequireAuth:    requireAuth,
		Auth:           NewAuthHandler(testSecret, time.Hour, false),
	})
	return &testEnv{router: router, games: svc, rooms: coordinator}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	return body.Error
}

func TestGameLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, false)

	w := env.do(t, http.MethodPost, "/api/games", map[string]any{"size": 9, "winLength": 5, "firstPlayer": "W"})
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decodeSnapshot(t, w)
	assert.Equal(t, 9, snap.Size)
	require.NotNil(t, snap.NextPlayer)
	assert.Equal(t, domain.White, *snap.NextPlayer)
	id := snap.GameID

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/moves", map[string]int{"x": 4, "y": 4})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeSnapshot(t, w)
	assert.Len(t, snap.Moves, 1)
	assert.Equal(t, domain.White, snap.Board.At(4, 4))

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/moves", map[string]int{"x": 4, "y": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cell_occupied", decodeError(t, w))

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/moves", map[string]int{"x": 9, "y": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "out_of_bounds", decodeError(t, w))

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/moves", map[string]int{"x": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/games/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeSnapshot(t, w).Moves, 1)

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSnapshot(t, w).Moves)

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/undo", map[string]int{"steps": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "nothing_to_undo", decodeError(t, w))

	w = env.do(t, http.MethodDelete, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w))
}

func TestCreateGameValidation(t *testing.T) {
	env := newTestEnv(t, nil, false)

	w := env.do(t, http.MethodPost, "/api/games", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 15, decodeSnapshot(t, w).Size)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"board too large", map[string]any{"size": 26}},
		{"board too small", map[string]any{"size": 4}},
		{"win length longer than board", map[string]any{"size": 5, "winLength": 6}},
		{"unknown first player", map[string]any{"firstPlayer": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/games", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "bad_request", decodeError(t, w))
		})
	}
}

func TestFinishedGameRejectsMoves(t *testing.T) {
	env := newTestEnv(t, nil, false)
	w := env.do(t, http.MethodPost, "/api/games", map[string]any{"size": 5, "winLength": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeSnapshot(t, w).GameID

	for _, m := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}} {
		w = env.do(t, http.MethodPost, "/api/games/"+id+"/moves", map[string]int{"x": m[0], "y": m[1]})
		require.Equal(t, http.StatusOK, w.Code)
	}
	snap := decodeSnapshot(t, w)
	assert.Equal(t, domain.StatusWon, snap.Status)
	require.NotNil(t, snap.Winner)
	assert.Equal(t, domain.Black, *snap.Winner)
	require.NotNil(t, snap.WinningLine)

	w = env.do(t, http.MethodPost, "/api/games/"+id+"/moves", map[string]int{"x": 4, "y": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decodeError(t, w))
}

func TestRoomsListing(t *testing.T) {
	env := newTestEnv(t, nil, false)
	_, err := env.rooms.Join(context.Background(), "lobby", "a", "")
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []room.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "lobby", rooms[0].RoomID)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, nil, false)
	w := env.do(t, http.MethodGet, "/api/history/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	g, err := domain.NewGame("done", domain.Config{Size: 5, WinLength: 3, FirstPlayer: domain.Black}, time.Now())
	require.NoError(t, err)
	archive := &fakeArchive{games: map[string]*domain.Game{"done": g}}
	env = newTestEnv(t, archive, false)

	w = env.do(t, http.MethodGet, "/api/history/done", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", decodeSnapshot(t, w).GameID)

	w = env.do(t, http.MethodGet, "/api/history/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/history?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []postgres.GameSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	assert.Len(t, summaries, 1)

	w = env.do(t, http.MethodGet, "/api/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestTokenAndRequiredAuth(t *testing.T) {
	env := newTestEnv(t, nil, true)

	w := env.do(t, http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/guest", map[string]string{"name": "  ada  "})
	require.Equal(t, http.StatusCreated, w.Code)
	var guest guestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guest))
	assert.Equal(t, "ada", guest.Name)
	assert.NotEmpty(t, w.Result().Cookies())

	claims, err := auth.ValidatePlayerToken(guest.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, guest.PlayerID, claims.PlayerID)

	w = env.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+guest.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), guest.PlayerID)

	w = env.do(t, http.MethodGet, "/api/rooms", nil, "Authorization", "Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSAndHealth(t *testing.T) {
	env := newTestEnv(t, nil, false)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = env.do(t, http.MethodOptions, "/api/games", nil, "Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = env.do(t, http.MethodGet, "/api/rooms", nil, "Origin", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
