package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardWith(t *testing.T, size int, player Player, cells ...Point) Board {
	t.Helper()
	b, err := NewBoard(size)
	require.NoError(t, err)
	for _, c := range cells {
		b, err = b.Place(c.X, c.Y, player)
		require.NoError(t, err)
	}
	return b
}

func row(y int, xs ...int) []Point {
	points := make([]Point, len(xs))
	for i, x := range xs {
		points[i] = Point{X: x, Y: y}
	}
	return points
}

func TestCheckWinAxes(t *testing.T) {
	tests := []struct {
		name  string
		cells []Point
		last  Point
		axis  Axis
		start Point
		end   Point
	}{
		{"horizontal", row(7, 3, 4, 5, 6, 7), Point{5, 7}, AxisHorizontal, Point{3, 7}, Point{7, 7}},
		{"vertical", []Point{{2, 0}, {2, 1}, {2, 2}, {2, 3}, {2, 4}}, Point{2, 0}, AxisVertical, Point{2, 0}, Point{2, 4}},
		{"diagonal down", []Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}, Point{4, 4}, AxisDiagonalDown, Point{0, 0}, Point{4, 4}},
		{"diagonal up", []Point{{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}}, Point{2, 2}, AxisDiagonalUp, Point{0, 4}, Point{4, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boardWith(t, 15, Black, tt.cells...)
			res := CheckWin(b, Move{X: tt.last.X, Y: tt.last.Y, Player: Black}, 5, false)
			require.True(t, res.Won())
			assert.Equal(t, Black, res.Winner)
			assert.Equal(t, tt.axis, res.Line.Axis)
			assert.Equal(t, tt.start, res.Line.Start)
			assert.Equal(t, tt.end, res.Line.End)
			assert.Len(t, res.Line.Cells, 5)
		})
	}
}

func TestCheckWinExactLengthRejectsOverline(t *testing.T) {
	// six in a row completed in the middle
	b := boardWith(t, 15, Black, row(0, 0, 1, 2, 3, 4, 5)...)
	res := CheckWin(b, Move{X: 2, Y: 0, Player: Black}, 5, false)
	assert.False(t, res.Won())
	assert.Nil(t, res.Line)
}

func TestCheckWinOverlineAllowed(t *testing.T) {
	b := boardWith(t, 15, Black, row(0, 0, 1, 2, 3, 4, 5)...)
	res := CheckWin(b, Move{X: 5, Y: 0, Player: Black}, 5, true)
	require.True(t, res.Won())
	assert.Len(t, res.Line.Cells, 6)
	assert.Equal(t, Point{0, 0}, res.Line.Start)
	assert.Equal(t, Point{5, 0}, res.Line.End)
}

func TestCheckWinShortRun(t *testing.T) {
	b := boardWith(t, 15, White, row(3, 3, 4, 5, 6)...)
	res := CheckWin(b, Move{X: 6, Y: 3, Player: White}, 5, true)
	assert.False(t, res.Won())
}

func TestCheckWinAxisOrderTieBreak(t *testing.T) {
	// the last stone completes a horizontal and a vertical five at once
	cells := append(row(4, 0, 1, 2, 3, 4), Point{4, 0}, Point{4, 1}, Point{4, 2}, Point{4, 3})
	b := boardWith(t, 15, Black, cells...)
	res := CheckWin(b, Move{X: 4, Y: 4, Player: Black}, 5, false)
	require.True(t, res.Won())
	assert.Equal(t, AxisHorizontal, res.Line.Axis)
}

func TestCheckWinExactLengthFallsThroughToNextAxis(t *testing.T) {
	// horizontal is an overline, vertical is exactly five
	cells := append(row(5, 0, 1, 2, 3, 4, 5), Point{2, 1}, Point{2, 2}, Point{2, 3}, Point{2, 4})
	b := boardWith(t, 15, Black, cells...)
	res := CheckWin(b, Move{X: 2, Y: 5, Player: Black}, 5, false)
	require.True(t, res.Won())
	assert.Equal(t, AxisVertical, res.Line.Axis)
}

func TestCheckWinIgnoresOpponentStones(t *testing.T) {
	b := boardWith(t, 15, Black, row(0, 0, 1, 2, 3)...)
	b, err := b.Place(4, 0, White)
	require.NoError(t, err)
	res := CheckWin(b, Move{X: 4, Y: 0, Player: White}, 5, true)
	assert.False(t, res.Won())
}
