package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// convertCommand creates the coordinate conversion command.
func (c *CLI) convertCommand() *cobra.Command {
	var unit float64

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between grid positions and pixel offsets",
	}
	cmd.PersistentFlags().Float64Var(&unit, "unit", 0, "grid unit in pixels (default: from config)")

	gridUnit := func(cmd *cobra.Command) (float64, error) {
		if !cmd.Flags().Changed("unit") {
			return c.Config.Grid.WithDefaults().GridUnit, nil
		}
		if unit <= 0 || math.IsNaN(unit) || math.IsInf(unit, 0) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "unit must be a positive number, got %v", unit)
		}
		return unit, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "to-pixel ROW COL",
		Short: "Print the pixel offset of a grid position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseInt("row", args[0])
			if err != nil {
				return err
			}
			col, err := parseInt("col", args[1])
			if err != nil {
				return err
			}
			u, err := gridUnit(cmd)
			if err != nil {
				return err
			}
			px := grid.ToPixel(grid.Position{Row: row, Col: col}, u)
			fmt.Fprintf(cmd.OutOrStdout(), "top=%g left=%g\n", px.Top, px.Left)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "to-grid TOP LEFT",
		Short: "Print the nearest grid position of a pixel offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			top, err := parseFloat("top", args[0])
			if err != nil {
				return err
			}
			left, err := parseFloat("left", args[1])
			if err != nil {
				return err
			}
			u, err := gridUnit(cmd)
			if err != nil {
				return err
			}
			pos := grid.FromPixel(top, left, u)
			fmt.Fprintf(cmd.OutOrStdout(), "row=%d col=%d\n", pos.Row, pos.Col)
			return nil
		},
	})

	return cmd
}

func parseInt(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be an integer: %q", name, s)
	}
	return v, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be a number: %q", name, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be finite: %q", name, s)
	}
	return v, nil
}
