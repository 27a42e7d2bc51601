package layout

import (
	"math"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// Default configuration values.
const (
	DefaultGridUnit         = 20.0
	DefaultContainerWidth   = 1200.0
	DefaultMaxContentLength = 100
	DefaultMaxNoteLength    = 50
	DefaultRows             = 200
	DefaultCols             = 200
)

// Config holds the constants a layout is computed against. It must be fixed
// before a layout runs; the engine never loads configuration itself.
type Config struct {
	// GridUnit is the pixel length of one grid cell.
	GridUnit float64 `json:"grid_unit" toml:"grid_unit"`

	// ContainerWidth is the pixel width of the container. The column budget
	// is ⌊ContainerWidth / GridUnit⌋.
	ContainerWidth float64 `json:"container_width" toml:"container_width"`

	// MaxContentLength and MaxNoteLength cap the number of runes of content
	// and note text that size estimation looks at.
	MaxContentLength int `json:"max_content_length" toml:"max_content_length"`
	MaxNoteLength    int `json:"max_note_length" toml:"max_note_length"`

	// Rows and Cols are the occupancy grid dimensions.
	Rows int `json:"rows" toml:"rows"`
	Cols int `json:"cols" toml:"cols"`
}

// DefaultConfig returns the default configuration: 20px cells in a 1200px
// container (60 columns) on a 200×200 grid.
func DefaultConfig() Config {
	return Config{
		GridUnit:         DefaultGridUnit,
		ContainerWidth:   DefaultContainerWidth,
		MaxContentLength: DefaultMaxContentLength,
		MaxNoteLength:    DefaultMaxNoteLength,
		Rows:             DefaultRows,
		Cols:             DefaultCols,
	}
}

// WithDefaults returns c with zero fields replaced by their defaults.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.GridUnit == 0 {
		c.GridUnit = d.GridUnit
	}
	if c.ContainerWidth == 0 {
		c.ContainerWidth = d.ContainerWidth
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = d.MaxContentLength
	}
	if c.MaxNoteLength == 0 {
		c.MaxNoteLength = d.MaxNoteLength
	}
	if c.Rows == 0 {
		c.Rows = d.Rows
	}
	if c.Cols == 0 {
		c.Cols = d.Cols
	}
	return c
}

// Validate checks that c describes a usable grid.
func (c Config) Validate() error {
	if c.GridUnit <= 0 || math.IsNaN(c.GridUnit) || math.IsInf(c.GridUnit, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "grid_unit must be positive, got %v", c.GridUnit)
	}
	if c.ContainerWidth < c.GridUnit || math.IsInf(c.ContainerWidth, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "container_width must hold at least one grid unit, got %v", c.ContainerWidth)
	}
	if c.MaxContentLength <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_content_length must be positive, got %d", c.MaxContentLength)
	}
	if c.MaxNoteLength <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_note_length must be positive, got %d", c.MaxNoteLength)
	}
	if c.Rows <= 0 || c.Cols <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid must have positive dimensions, got %dx%d", c.Rows, c.Cols)
	}
	return nil
}

// ContainerCols returns the container's column budget.
func (c Config) ContainerCols() int {
	if c.GridUnit <= 0 {
		return 0
	}
	return int(math.Floor(c.ContainerWidth / c.GridUnit))
}

// ToPixel converts a grid position to pixels using c.GridUnit.
func (c Config) ToPixel(p grid.Position) grid.Pixel {
	return grid.ToPixel(p, c.GridUnit)
}

// FromPixel converts a pixel offset to a grid position using c.GridUnit.
func (c Config) FromPixel(top, left float64) grid.Position {
	return grid.FromPixel(top, left, c.GridUnit)
}
