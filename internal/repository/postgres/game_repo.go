package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameSummary is one row of the archive listing.
type GameSummary struct {
	GameID     string            `json:"gameId"`
	Size       int               `json:"size"`
	WinLength  int               `json:"winLength"`
	Status     domain.GameStatus `json:"status"`
	Winner     domain.Player     `json:"winner,omitempty"`
	TotalMoves int               `json:"totalMoves"`
	CreatedAt  time.Time         `json:"createdAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// SaveGame archives a finished game. Saving the same game again overwrites the
// row unless the stored result finished later, so saves that commit out of order
// (finish, undo, finish again) keep the most recent result.
func (r *GameRepo) SaveGame(ctx context.Context, g *domain.Game) error {
	if !g.IsFinished() {
		return fmt.Errorf("%w: game %s is still %s", domain.ErrInvalidState, g.ID, g.Status)
	}

	movesJSON, err := json.Marshal(g.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %v", err)
	}
	boardJSON, err := json.Marshal(g.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %v", err)
	}

	var winner sql.NullString
	if g.Winner != domain.Empty {
		winner = sql.NullString{String: g.Winner.String(), Valid: true}
	}

	query := `
		INSERT INTO finished_games (game_id, size, win_length, allow_overlines, first_player, status, winner, total_moves, moves, board, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id) DO UPDATE SET
			status = EXCLUDED.status,
			winner = EXCLUDED.winner,
			total_moves = EXCLUDED.total_moves,
			moves = EXCLUDED.moves,
			board = EXCLUDED.board,
			finished_at = EXCLUDED.finished_at
		WHERE finished_games.finished_at <= EXCLUDED.finished_at
	`
	_, err = r.DB.ExecContext(ctx, query,
		g.ID, g.Config.Size, g.Config.WinLength, g.Config.AllowOverlines, g.Config.FirstPlayer.String(),
		string(g.Status), winner, len(g.Moves), movesJSON, boardJSON, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save game: %v", err)
	}
	return nil
}

// GetGame loads an archived game and rebuilds it by replaying its moves.
func (r *GameRepo) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	query := `
		SELECT size, win_length, allow_overlines, first_player, moves, created_at
		FROM finished_games WHERE game_id = $1
	`
	var (
		cfg         domain.Config
		firstPlayer string
		movesJSON   []byte
		createdAt   time.Time
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&cfg.Size, &cfg.WinLength, &cfg.AllowOverlines, &firstPlayer, &movesJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: archived game %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %v", err)
	}

	if cfg.FirstPlayer, err = domain.ParsePlayer(firstPlayer); err != nil {
		return nil, err
	}
	var moves []domain.Move
	if err := json.Unmarshal(movesJSON, &moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves: %v", err)
	}
	return Replay(id, cfg, moves, createdAt)
}

// ListRecent returns the most recently finished games, newest first.
func (r *GameRepo) ListRecent(ctx context.Context, limit int) ([]GameSummary, error) {
	query := `
		SELECT game_id, size, win_length, status, winner, total_moves, created_at, finished_at
		FROM finished_games
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %v", err)
	}
	defer rows.Close()

	summaries := []GameSummary{}
	for rows.Next() {
		var (
			s      GameSummary
			status string
			winner sql.NullString
		)
		if err := rows.Scan(&s.GameID, &s.Size, &s.WinLength, &status, &winner, &s.TotalMoves, &s.CreatedAt, &s.FinishedAt); err != nil {
			return nil, err
		}
		s.Status = domain.GameStatus(status)
		if winner.Valid {
			if s.Winner, err = domain.ParsePlayer(winner.String); err != nil {
				return nil, err
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Replay rebuilds a game from its move log. Each move must match the colour
// the rules expect at that point.
func Replay(id string, cfg domain.Config, moves []domain.Move, createdAt time.Time) (*domain.Game, error) {
	g, err := domain.NewGame(id, cfg, createdAt)
	if err != nil {
		return nil, err
	}
	for _, m := range moves {
		if m.Player != g.NextPlayer {
			return nil, fmt.Errorf("%w: move %d played by %s, expected %s", domain.ErrBadRequest, m.SequenceIndex, m.Player, g.NextPlayer)
		}
		if g, err = g.ApplyMove(m.X, m.Y, m.Timestamp); err != nil {
			return nil, fmt.Errorf("replay move %d: %w", m.SequenceIndex, err)
		}
	}
	return g, nil
}
