package grid

import "math"

// Pixel is a top-left pixel offset.
type Pixel struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// ToPixel maps a grid position to its top-left pixel offset for a grid unit
// of unit pixels.
func ToPixel(p Position, unit float64) Pixel {
	return Pixel{
		Top:  float64(p.Row) * unit,
		Left: float64(p.Col) * unit,
	}
}

// FromPixel maps a pixel offset to the nearest grid position. Coordinates
// are rounded half away from zero and clamped to 0. A non-positive unit
// maps everything to the origin.
func FromPixel(top, left, unit float64) Position {
	if unit <= 0 {
		return Origin
	}
	return Position{
		Row: max(0, int(math.Round(top/unit))),
		Col: max(0, int(math.Round(left/unit))),
	}
}
