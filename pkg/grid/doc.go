// Package grid provides the spatial primitives of the fragment layout: cell
// positions, footprint sizes, an occupancy matrix with spacing halos, a
// first-fit placement search, and grid/pixel coordinate conversion.
//
// # Occupancy
//
// A [Grid] records which cells are taken. Marking a footprint also marks a
// one-cell halo on its right, bottom, and bottom-right corner:
//
//	. . . . . .
//	. # # # h .      # footprint
//	. # # # h .      h halo
//	. h h h h .
//	. . . . . .
//
// Two footprints checked and marked this way are always separated by at
// least one empty cell, without a separate spacing pass. Footprints that
// touch or cross the grid edge are reported as occupied, so nothing is ever
// written outside the matrix.
//
// # Placement
//
// [FindPlacement] scans the grid in a fixed order and returns the first free
// position for a size, limited to a container column budget. The scan never
// returns the origin (0,0).
//
// # Coordinates
//
// [ToPixel] and [FromPixel] convert between grid cells and pixel offsets for
// rendering and drag-and-drop code. The layout engine itself works only in
// grid units.
package grid
