package grid

// FindPlacement returns the first position, in a fixed scan order, where a
// footprint of size s fits on g without overflowing containerCols columns.
//
// The scan order is:
//
//  1. rows 1.. and columns 1.. (the interior, row by row)
//  2. row 0, columns 1..
//  3. column 0, rows 1..
//
// The origin is never returned. The third pass only checks that s fits in
// the container at all, not that it fits from column 0 onwards; with column
// 0 as the start the two checks are the same thing.
func FindPlacement(g *Grid, s Size, containerCols int) (Position, bool) {
	maxCols := min(g.cols, containerCols)

	for r := 1; r < g.rows; r++ {
		for c := 1; c < maxCols; c++ {
			p := Position{Row: r, Col: c}
			if c+s.Width <= containerCols && !g.IsOccupied(p, s) {
				return p, true
			}
		}
	}

	for c := 1; c < maxCols; c++ {
		p := Position{Row: 0, Col: c}
		if c+s.Width <= containerCols && !g.IsOccupied(p, s) {
			return p, true
		}
	}

	for r := 1; r < g.rows; r++ {
		p := Position{Row: r, Col: 0}
		if s.Width <= containerCols && !g.IsOccupied(p, s) {
			return p, true
		}
	}

	return Position{}, false
}
