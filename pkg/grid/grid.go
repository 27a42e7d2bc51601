package grid

import "fmt"

// Position is a cell coordinate in the grid. Row grows downwards and Col
// grows to the right; (0,0) is the top-left origin.
type Position struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// Origin is the top-left cell. Nothing is ever placed there.
var Origin = Position{}

// IsProblematic reports whether p is the origin or has a negative
// coordinate. Such positions are treated as corrupted and replaced.
func (p Position) IsProblematic() bool {
	return p == Origin || p.Row < 0 || p.Col < 0
}

// String returns "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Size is a footprint extent in grid units.
type Size struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// Grid is a rows × cols occupancy matrix. Every footprint marked on it
// carries a one-cell spacing halo on its right, bottom, and bottom-right
// corner, so that adjacent footprints never touch.
//
// A Grid is meant to be built fresh for a single layout computation and
// discarded afterwards. It is not safe for concurrent use.
type Grid struct {
	rows, cols int
	cells      []bool
}

// New creates an empty grid. Negative dimensions are treated as zero, which
// yields a grid on which every footprint is occupied.
func New(rows, cols int) *Grid {
	rows, cols = max(rows, 0), max(cols, 0)
	return &Grid{rows: rows, cols: cols, cells: make([]bool, rows*cols)}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// At reports whether a single cell is occupied. Cells outside the grid are
// reported as occupied.
func (g *Grid) At(row, col int) bool {
	if !g.inside(row, col) {
		return true
	}
	return g.cells[row*g.cols+col]
}

func (g *Grid) inside(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

// IsOccupied reports whether a footprint of size s at p collides with
// anything already marked, including the spacing halo.
//
// The footprint is out of bounds, and therefore occupied, when p has a
// negative coordinate or when p.Row+s.Height or p.Col+s.Width reaches the
// grid extent. The comparison is ≥, so the last row and column can only
// ever hold a halo. Negative sizes are occupied everywhere.
func (g *Grid) IsOccupied(p Position, s Size) bool {
	if s.Width < 0 || s.Height < 0 {
		return true
	}
	endRow, endCol := p.Row+s.Height, p.Col+s.Width
	if p.Row < 0 || p.Col < 0 || endRow >= g.rows || endCol >= g.cols {
		return true
	}

	for r := p.Row; r < endRow; r++ {
		for c := p.Col; c < endCol; c++ {
			if g.cells[r*g.cols+c] {
				return true
			}
		}
	}

	// Right halo column.
	for r := p.Row; r < endRow; r++ {
		if g.cells[r*g.cols+endCol] {
			return true
		}
	}
	// Bottom halo row.
	for c := p.Col; c < endCol; c++ {
		if g.cells[endRow*g.cols+c] {
			return true
		}
	}
	// Corner.
	return g.cells[endRow*g.cols+endCol]
}

// MarkOccupied marks the footprint of size s at p, plus its halo, as
// occupied. Cells outside the grid are skipped.
func (g *Grid) MarkOccupied(p Position, s Size) {
	endRow, endCol := p.Row+s.Height, p.Col+s.Width

	for r := p.Row; r < endRow; r++ {
		for c := p.Col; c < endCol; c++ {
			g.set(r, c)
		}
	}
	for r := p.Row; r < endRow; r++ {
		g.set(r, endCol)
	}
	for c := p.Col; c < endCol; c++ {
		g.set(endRow, c)
	}
	g.set(endRow, endCol)
}

func (g *Grid) set(row, col int) {
	if g.inside(row, col) {
		g.cells[row*g.cols+col] = true
	}
}

// Occupied returns the number of occupied cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}
