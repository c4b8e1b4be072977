package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Player int8

const (
	Empty Player = 0
	Black Player = 1
	White Player = 2
)

// Other returns the opponent of p. Empty has no opponent.
func (p Player) Other() Player {
	switch p {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (p Player) Valid() bool {
	return p == Black || p == White
}

func (p Player) String() string {
	switch p {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return ""
}

func (p Player) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	parsed, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePlayer accepts "B"/"W" (any case) and the long forms "black"/"white".
// An empty string parses to Empty.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return Empty, nil
	case "B", "BLACK":
		return Black, nil
	case "W", "WHITE":
		return White, nil
	}
	return Empty, fmt.Errorf("%w: unknown player %q", ErrBadRequest, s)
}

// to represent the game status
type GameStatus string

const (
	StatusOngoing GameStatus = "ongoing"
	StatusWon     GameStatus = "won"
	StatusDraw    GameStatus = "draw"
)

func (s GameStatus) Terminal() bool {
	return s == StatusWon || s == StatusDraw
}

const (
	MinBoardSize     = 5
	MaxBoardSize     = 25
	MinWinLength     = 3
	DefaultBoardSize = 15
	DefaultWinLength = 5
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNotFound      Error = "not found"
	ErrOutOfBounds   Error = "out of bounds"
	ErrCellOccupied  Error = "cell occupied"
	ErrInvalidState  Error = "invalid state"
	ErrBadRequest    Error = "bad request"
	ErrNothingToUndo Error = "nothing to undo"
	ErrNotYourTurn   Error = "not your turn"
	ErrWrongSeat     Error = "wrong seat"
)

var reasonCodes = []struct {
	err  Error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrOutOfBounds, "out_of_bounds"},
	{ErrCellOccupied, "cell_occupied"},
	{ErrInvalidState, "invalid_state"},
	{ErrBadRequest, "bad_request"},
	{ErrNothingToUndo, "nothing_to_undo"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrWrongSeat, "wrong_seat"},
}

// ErrorCode maps err onto the reason code sent to clients. Errors outside the
// domain taxonomy report "internal".
func ErrorCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "internal"
}
