package domain

import (
	"encoding/json"
	"fmt"
)

// Board is a square grid stored row-major. Place never mutates the receiver,
// so a Board can be shared freely between goroutines once built.
type Board struct {
	size  int
	cells []Player
}

func NewBoard(size int) (Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return Board{}, fmt.Errorf("%w: board size must be within [%d, %d], got %d",
			ErrBadRequest, MinBoardSize, MaxBoardSize, size)
	}
	return Board{size: size, cells: make([]Player, size*size)}, nil
}

func (b Board) Size() int {
	return b.size
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.size && y >= 0 && y < b.size
}

// At returns the cell at column x, row y. Out of range coordinates read as Empty.
func (b Board) At(x, y int) Player {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.cells[y*b.size+x]
}

// Place returns a copy of the board with (x, y) set to player.
func (b Board) Place(x, y int, player Player) (Board, error) {
	if !player.Valid() {
		return Board{}, fmt.Errorf("%w: cannot place %q", ErrBadRequest, player.String())
	}
	if !b.InBounds(x, y) {
		return Board{}, fmt.Errorf("%w: (%d, %d) on a %dx%d board", ErrOutOfBounds, x, y, b.size, b.size)
	}
	if b.cells[y*b.size+x] != Empty {
		return Board{}, fmt.Errorf("%w: (%d, %d)", ErrCellOccupied, x, y)
	}

	cells := make([]Player, len(b.cells))
	copy(cells, b.cells)
	cells[y*b.size+x] = player
	return Board{size: b.size, cells: cells}, nil
}

func (b Board) IsFull() bool {
	for _, c := range b.cells {
		if c == Empty {
			return false
		}
	}
	return true
}

// Stones counts the non-empty cells.
func (b Board) Stones() int {
	n := 0
	for _, c := range b.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// Rows returns the grid as board[y][x], freshly allocated.
func (b Board) Rows() [][]Player {
	rows := make([][]Player, b.size)
	for y := range rows {
		rows[y] = make([]Player, b.size)
		copy(rows[y], b.cells[y*b.size:(y+1)*b.size])
	}
	return rows
}

// Equal reports whether both boards have the same size and stones.
func (b Board) Equal(other Board) bool {
	if b.size != other.size || len(b.cells) != len(other.cells) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]Player
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	board, err := NewBoard(len(rows))
	if err != nil {
		return err
	}
	for y, row := range rows {
		if len(row) != board.size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadRequest, y, len(row), board.size)
		}
		copy(board.cells[y*board.size:], row)
	}
	*b = board
	return nil
}
