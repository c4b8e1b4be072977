package domain

type Axis string

const (
	AxisHorizontal   Axis = "horizontal"
	AxisVertical     Axis = "vertical"
	AxisDiagonalDown Axis = "diagonal_down"
	AxisDiagonalUp   Axis = "diagonal_up"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Line is the run of stones that decided a game. Cells are ordered from Start to End.
type Line struct {
	Axis  Axis    `json:"axis"`
	Start Point   `json:"start"`
	End   Point   `json:"end"`
	Cells []Point `json:"cells"`
}

type WinResult struct {
	Winner Player
	Line   *Line
}

func (r WinResult) Won() bool {
	return r.Winner != Empty
}

// axes are scanned in this order; the first qualifying one is reported.
var axes = []struct {
	axis   Axis
	dx, dy int
}{
	{AxisHorizontal, 1, 0},
	{AxisVertical, 0, 1},
	{AxisDiagonalDown, 1, 1},
	{AxisDiagonalUp, 1, -1},
}

// CheckWin looks for a winning run through the cell of last only.
// With allowOverlines false the run must be exactly winLength long.
func CheckWin(board Board, last Move, winLength int, allowOverlines bool) WinResult {
	player := board.At(last.X, last.Y)
	if player == Empty || player != last.Player {
		return WinResult{}
	}

	for _, a := range axes {
		forward := countInDirection(board, last.X, last.Y, a.dx, a.dy, player)
		backward := countInDirection(board, last.X, last.Y, -a.dx, -a.dy, player)
		total := 1 + forward + backward

		won := total == winLength
		if allowOverlines {
			won = total >= winLength
		}
		if !won {
			continue
		}

		start := Point{X: last.X - backward*a.dx, Y: last.Y - backward*a.dy}
		cells := make([]Point, total)
		for i := range cells {
			cells[i] = Point{X: start.X + i*a.dx, Y: start.Y + i*a.dy}
		}
		return WinResult{
			Winner: player,
			Line: &Line{
				Axis:  a.axis,
				Start: start,
				End:   cells[total-1],
				Cells: cells,
			},
		}
	}

	return WinResult{}
}

// this counts the number of stones in a specific direction, excluding the origin
func countInDirection(board Board, x, y, dx, dy int, player Player) int {
	count := 0
	cx, cy := x+dx, y+dy
	for board.InBounds(cx, cy) && board.At(cx, cy) == player {
		count++
		cx += dx
		cy += dy
	}
	return count
}
