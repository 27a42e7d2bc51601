package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if got := cfg.ContainerCols(); got != 60 {
		t.Errorf("ContainerCols() = %d, want 60", got)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{GridUnit: 10}.WithDefaults()
	if cfg.GridUnit != 10 {
		t.Errorf("GridUnit = %v, want 10", cfg.GridUnit)
	}
	if cfg.ContainerWidth != DefaultContainerWidth || cfg.Rows != DefaultRows {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if got := cfg.ContainerCols(); got != 120 {
		t.Errorf("ContainerCols() = %d, want 120", got)
	}
}

func TestConfigContainerColsFloors(t *testing.T) {
	cfg := Config{GridUnit: 20, ContainerWidth: 1219}
	if got := cfg.ContainerCols(); got != 60 {
		t.Errorf("ContainerCols() = %d, want 60", got)
	}
	if got := (Config{}).ContainerCols(); got != 0 {
		t.Errorf("zero config ContainerCols() = %d, want 0", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero unit", func(c *Config) { c.GridUnit = 0 }},
		{"negative unit", func(c *Config) { c.GridUnit = -1 }},
		{"nan unit", func(c *Config) { c.GridUnit = math.NaN() }},
		{"narrow container", func(c *Config) { c.ContainerWidth = 10 }},
		{"zero content length", func(c *Config) { c.MaxContentLength = 0 }},
		{"zero note length", func(c *Config) { c.MaxNoteLength = 0 }},
		{"zero rows", func(c *Config) { c.Rows = 0 }},
		{"negative cols", func(c *Config) { c.Cols = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestConfigPixelConversion(t *testing.T) {
	cfg := DefaultConfig()
	p := grid.Position{Row: 3, Col: 4}

	px := cfg.ToPixel(p)
	if px != (grid.Pixel{Top: 60, Left: 80}) {
		t.Errorf("ToPixel(%v) = %+v", p, px)
	}
	if got := cfg.FromPixel(px.Top, px.Left); got != p {
		t.Errorf("FromPixel(ToPixel(%v)) = %v", p, got)
	}
}
