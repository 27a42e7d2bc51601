package grid

import "testing"

func TestPositionIsProblematic(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"origin", Position{0, 0}, true},
		{"negative row", Position{-1, 3}, true},
		{"negative col", Position{3, -1}, true},
		{"both negative", Position{-2, -2}, true},
		{"row zero", Position{0, 4}, false},
		{"col zero", Position{4, 0}, false},
		{"interior", Position{1, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsProblematic(); got != tt.want {
				t.Errorf("%v.IsProblematic() = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestMarkOccupiedIncludesHalo(t *testing.T) {
	g := New(10, 10)
	g.MarkOccupied(Position{1, 1}, Size{Width: 2, Height: 2})

	// 2x2 footprint + 2 right + 2 bottom + 1 corner
	if got := g.Occupied(); got != 9 {
		t.Fatalf("Occupied() = %d, want 9", got)
	}

	marked := []Position{
		{1, 1}, {1, 2}, {2, 1}, {2, 2}, // footprint
		{1, 3}, {2, 3}, // right halo
		{3, 1}, {3, 2}, // bottom halo
		{3, 3}, // corner
	}
	for _, p := range marked {
		if !g.At(p.Row, p.Col) {
			t.Errorf("cell %v should be occupied", p)
		}
	}

	free := []Position{{0, 0}, {0, 1}, {1, 0}, {1, 4}, {4, 1}, {4, 4}}
	for _, p := range free {
		if g.At(p.Row, p.Col) {
			t.Errorf("cell %v should be free", p)
		}
	}
}

func TestIsOccupied(t *testing.T) {
	g := New(10, 10)
	g.MarkOccupied(Position{1, 1}, Size{Width: 2, Height: 2})

	tests := []struct {
		name string
		pos  Position
		size Size
		want bool
	}{
		{"same spot", Position{1, 1}, Size{2, 2}, true},
		{"overlaps right halo", Position{1, 3}, Size{2, 2}, true},
		{"overlaps bottom halo", Position{3, 1}, Size{2, 2}, true},
		{"one cell gap right", Position{1, 4}, Size{2, 2}, false},
		{"one cell gap below", Position{4, 1}, Size{2, 2}, false},
		{"diagonal", Position{4, 4}, Size{2, 2}, false},
		{"row zero beside existing", Position{0, 4}, Size{2, 1}, false},
		{"halo reaches existing from the left", Position{1, 0}, Size{1, 1}, true},
		{"negative row", Position{-1, 5}, Size{1, 1}, true},
		{"negative col", Position{5, -1}, Size{1, 1}, true},
		{"bottom edge", Position{8, 5}, Size{2, 2}, true},
		{"right edge", Position{5, 8}, Size{2, 2}, true},
		{"last fitting row", Position{7, 5}, Size{2, 2}, false},
		{"negative size", Position{5, 5}, Size{-1, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IsOccupied(tt.pos, tt.size); got != tt.want {
				t.Errorf("IsOccupied(%v, %+v) = %v, want %v", tt.pos, tt.size, got, tt.want)
			}
		})
	}
}

func TestMarkOccupiedNeverWritesOutside(t *testing.T) {
	g := New(4, 4)

	// Footprints hanging off every edge must not panic.
	g.MarkOccupied(Position{-2, -2}, Size{Width: 3, Height: 3})
	g.MarkOccupied(Position{3, 3}, Size{Width: 5, Height: 5})
	g.MarkOccupied(Position{0, 2}, Size{Width: 10, Height: 1})

	if !g.At(0, 0) || !g.At(3, 3) || !g.At(0, 3) {
		t.Error("in-range cells of clipped footprints should be marked")
	}
	if !g.At(-1, 0) || !g.At(0, 4) {
		t.Error("cells outside the grid should read as occupied")
	}
}

func TestEmptyGridIsAlwaysOccupied(t *testing.T) {
	for _, g := range []*Grid{New(0, 0), New(-5, 3), New(3, 0)} {
		if !g.IsOccupied(Position{1, 1}, Size{1, 1}) {
			t.Errorf("%dx%d grid should report every footprint occupied", g.Rows(), g.Cols())
		}
		g.MarkOccupied(Position{0, 0}, Size{2, 2})
	}
}
