package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type Move struct {
	X             int       `json:"x"`
	Y             int       `json:"y"`
	Player        Player    `json:"player"`
	SequenceIndex int       `json:"sequenceIndex"`
	Timestamp     time.Time `json:"timestamp"`
}

type Config struct {
	Size           int    `json:"size"`
	WinLength      int    `json:"winLength"`
	AllowOverlines bool   `json:"allowOverlines"`
	FirstPlayer    Player `json:"firstPlayer"`
}

// WithDefaults fills zero fields: 15x15 board, five in a row, Black first.
func (c Config) WithDefaults() Config {
	if c.Size == 0 {
		c.Size = DefaultBoardSize
	}
	if c.WinLength == 0 {
		c.WinLength = DefaultWinLength
		if c.WinLength > c.Size {
			c.WinLength = c.Size
		}
	}
	if c.FirstPlayer == Empty {
		c.FirstPlayer = Black
	}
	return c
}

func (c Config) Validate() error {
	if c.Size < MinBoardSize || c.Size > MaxBoardSize {
		return fmt.Errorf("%w: size must be within [%d, %d], got %d", ErrBadRequest, MinBoardSize, MaxBoardSize, c.Size)
	}
	if c.WinLength < MinWinLength || c.WinLength > c.Size {
		return fmt.Errorf("%w: winLength must be within [%d, %d], got %d", ErrBadRequest, MinWinLength, c.Size, c.WinLength)
	}
	if !c.FirstPlayer.Valid() {
		return fmt.Errorf("%w: firstPlayer must be B or W", ErrBadRequest)
	}
	return nil
}

// Game is the authoritative state of one match. ApplyMove and Undo leave the
// receiver untouched and return the next snapshot.
type Game struct {
	ID          string
	Config      Config
	Board       Board
	Moves       []Move
	Status      GameStatus
	Winner      Player
	WinningLine *Line
	NextPlayer  Player
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewGame(id string, cfg Config, now time.Time) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	board, err := NewBoard(cfg.Size)
	if err != nil {
		return nil, err
	}
	return &Game{
		ID:         id,
		Config:     cfg,
		Board:      board,
		Moves:      []Move{},
		Status:     StatusOngoing,
		NextPlayer: cfg.FirstPlayer,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (g *Game) IsFinished() bool {
	return g.Status.Terminal()
}

// Validate checks, in order, that the game accepts moves, that (x, y) is on the
// board and that the cell is empty. Turn ownership is the caller's concern.
func (g *Game) Validate(x, y int) error {
	if g.Status != StatusOngoing {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, g.Status)
	}
	if !g.Board.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) on a %dx%d board", ErrOutOfBounds, x, y, g.Config.Size, g.Config.Size)
	}
	if g.Board.At(x, y) != Empty {
		return fmt.Errorf("%w: (%d, %d)", ErrCellOccupied, x, y)
	}
	return nil
}

// ApplyMove places a stone for NextPlayer at (x, y). Every check runs before
// anything is built, so a failed move leaves no trace.
func (g *Game) ApplyMove(x, y int, now time.Time) (*Game, error) {
	if err := g.Validate(x, y); err != nil {
		return nil, err
	}

	player := g.NextPlayer
	board, err := g.Board.Place(x, y, player)
	if err != nil {
		return nil, err
	}

	move := Move{X: x, Y: y, Player: player, SequenceIndex: len(g.Moves), Timestamp: now}
	result := CheckWin(board, move, g.Config.WinLength, g.Config.AllowOverlines)

	next := g.clone()
	next.Board = board
	next.Moves = append(next.Moves, move)
	next.UpdatedAt = now

	switch {
	case result.Won():
		next.Status = StatusWon
		next.Winner = result.Winner
		next.WinningLine = result.Line
		next.NextPlayer = Empty
	case board.IsFull():
		next.Status = StatusDraw
		next.NextPlayer = Empty
	default:
		next.Status = StatusOngoing
		next.NextPlayer = player.Other()
	}
	return next, nil
}

// Undo drops the last steps moves and rebuilds the board from empty by replaying
// the remaining log. It also revives finished games.
func (g *Game) Undo(steps int, now time.Time) (*Game, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be at least 1, got %d", ErrBadRequest, steps)
	}
	if len(g.Moves) == 0 {
		return nil, ErrNothingToUndo
	}

	keep := len(g.Moves) - min(steps, len(g.Moves))
	replay := g.Moves[:keep]

	board, err := NewBoard(g.Config.Size)
	if err != nil {
		return nil, err
	}
	for _, m := range replay {
		if board, err = board.Place(m.X, m.Y, m.Player); err != nil {
			return nil, fmt.Errorf("replay move %d: %w", m.SequenceIndex, err)
		}
	}

	next := g.clone()
	next.Board = board
	next.Moves = next.Moves[:keep]
	next.Status = StatusOngoing
	next.Winner = Empty
	next.WinningLine = nil
	next.NextPlayer = g.Config.FirstPlayer
	if keep > 0 {
		next.NextPlayer = replay[keep-1].Player.Other()
	}
	next.UpdatedAt = now
	return next, nil
}

// clone copies the move log so appends and truncations never alias g.
func (g *Game) clone() *Game {
	next := *g
	next.Moves = make([]Move, len(g.Moves), len(g.Moves)+1)
	copy(next.Moves, g.Moves)
	return &next
}

// Snapshot is the wire shape of a Game shared by REST, room events and the Redis store.
type Snapshot struct {
	GameID      string     `json:"gameId"`
	Size        int        `json:"size"`
	Board       Board      `json:"board"`
	NextPlayer  *Player    `json:"nextPlayer"`
	Status      GameStatus `json:"status"`
	Winner      *Player    `json:"winner"`
	WinningLine *Line      `json:"winningLine"`
	Moves       []Move     `json:"moves"`
	Config      Config     `json:"config"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		GameID:      g.ID,
		Size:        g.Config.Size,
		Board:       g.Board,
		Status:      g.Status,
		WinningLine: g.WinningLine,
		Moves:       g.Moves,
		Config:      g.Config,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	if s.Moves == nil {
		s.Moves = []Move{}
	}
	if g.NextPlayer != Empty {
		p := g.NextPlayer
		s.NextPlayer = &p
	}
	if g.Winner != Empty {
		w := g.Winner
		s.Winner = &w
	}
	return s
}

// Game rebuilds a Game from a snapshot, checking it is internally consistent.
func (s Snapshot) Game() (*Game, error) {
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	if s.Size != s.Config.Size || s.Board.Size() != s.Config.Size {
		return nil, fmt.Errorf("%w: snapshot size mismatch", ErrBadRequest)
	}
	if s.Board.Stones() != len(s.Moves) {
		return nil, fmt.Errorf("%w: snapshot has %d stones but %d moves", ErrBadRequest, s.Board.Stones(), len(s.Moves))
	}
	for i, m := range s.Moves {
		if m.SequenceIndex != i || !m.Player.Valid() || s.Board.At(m.X, m.Y) != m.Player {
			return nil, fmt.Errorf("%w: move %d does not match the board", ErrBadRequest, i)
		}
	}
	if err := s.checkStatus(); err != nil {
		return nil, err
	}

	g := &Game{
		ID:          s.GameID,
		Config:      s.Config,
		Board:       s.Board,
		Moves:       s.Moves,
		Status:      s.Status,
		WinningLine: s.WinningLine,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if g.Moves == nil {
		g.Moves = []Move{}
	}
	if s.NextPlayer != nil {
		g.NextPlayer = *s.NextPlayer
	}
	if s.Winner != nil {
		g.Winner = *s.Winner
	}
	return g, nil
}

// checkStatus ties status to the other fields: Ongoing has a next player and
// no winner, Won has a winner with its line, Draw has a full board.
func (s Snapshot) checkStatus() error {
	full := s.Board.IsFull()
	switch s.Status {
	case StatusOngoing:
		if s.NextPlayer == nil || s.Winner != nil || s.WinningLine != nil || full {
			return fmt.Errorf("%w: inconsistent ongoing snapshot", ErrBadRequest)
		}
		want := s.Config.FirstPlayer
		if n := len(s.Moves); n > 0 {
			want = s.Moves[n-1].Player.Other()
		}
		if *s.NextPlayer != want {
			return fmt.Errorf("%w: next player is %s, expected %s", ErrBadRequest, *s.NextPlayer, want)
		}
	case StatusWon:
		if s.NextPlayer != nil || s.Winner == nil || !s.Winner.Valid() || s.WinningLine == nil {
			return fmt.Errorf("%w: inconsistent won snapshot", ErrBadRequest)
		}
	case StatusDraw:
		if s.NextPlayer != nil || s.Winner != nil || s.WinningLine != nil || !full {
			return fmt.Errorf("%w: inconsistent draw snapshot", ErrBadRequest)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrBadRequest, s.Status)
	}
	return nil
}

func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored, err := s.Game()
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}
