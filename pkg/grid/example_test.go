package grid_test

import (
	"fmt"

	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

func ExampleFindPlacement() {
	g := grid.New(50, 50)
	card := grid.Size{Width: 5, Height: 4}

	for range 3 {
		p, ok := grid.FindPlacement(g, card, 20)
		if !ok {
			break
		}
		g.MarkOccupied(p, card)
		fmt.Println(p)
	}
	// Output:
	// (1,1)
	// (1,7)
	// (1,13)
}

func ExampleFromPixel() {
	p := grid.FromPixel(118, 41, 20)
	fmt.Println(p, grid.ToPixel(p, 20))
	// Output:
	// (6,2) {120 40}
}
