package engine

// Position is a (row, col) pair on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid maps linear cell indices to positions for a fixed-size board
type Grid struct {
	Width  int
	Height int
}

// Size returns the number of cells
func (g Grid) Size() int {
	return g.Width * g.Height
}

// ToIndex converts a position to a linear cell index
func (g Grid) ToIndex(p Position) int {
	return p.Row*g.Width + p.Col
}

// ToPosition converts a linear cell index to a position
func (g Grid) ToPosition(index int) Position {
	return Position{Row: index / g.Width, Col: index % g.Width}
}

// Contains reports whether the position lies on the board
func (g Grid) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < g.Height && p.Col >= 0 && p.Col < g.Width
}

// Step returns the index one cell away from index in direction d.
// It reports false when the step would leave the board, including
// wrapping around a row edge.
func (g Grid) Step(index int, d Direction) (int, bool) {
	switch d {
	case Up:
		next := index - g.Width
		return next, next >= 0
	case Down:
		next := index + g.Width
		return next, next < g.Size()
	case Left:
		if index%g.Width == 0 {
			return index - 1, false
		}
		return index - 1, true
	case Right:
		if index%g.Width == g.Width-1 {
			return index + 1, false
		}
		return index + 1, true
	}
	return index, false
}

// Neighbors returns the in-bounds 4-neighbors of index in Left, Right, Down, Up order
func (g Grid) Neighbors(index int) []int {
	neighbors := make([]int, 0, 4)
	for _, d := range []Direction{Left, Right, Down, Up} {
		if next, ok := g.Step(index, d); ok {
			neighbors = append(neighbors, next)
		}
	}
	return neighbors
}

// Delta returns the (row, col) offset of one step in direction d
func Delta(d Direction) (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}

// Opposite returns the reverse direction
func Opposite(d Direction) Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}
