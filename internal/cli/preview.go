package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
	"github.com/matzehuels/fragmentgrid/pkg/text"
)

// Card styles by reading direction.
var (
	styleCardHorizontal = lipgloss.NewStyle().Foreground(colorCyan)
	styleCardVertical   = lipgloss.NewStyle().Foreground(colorGreen)
	styleCardPatched    = lipgloss.NewStyle().Foreground(colorYellow)
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		interactive bool
		noTable     bool
		plain       bool
	)

	cmd := &cobra.Command{
		Use:   "preview <layout.json>",
		Short: "Draw a computed layout in the terminal",
		Long: `Draw a computed layout in the terminal.

Each card is drawn as a box of its grid footprint, one character per grid
cell, labelled with its id and a direction marker (↔ horizontal,
↕ vertical). Cards whose position changed in this layout are highlighted.
A table listing every card follows the drawing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := layout.ReadResultFile(args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("loaded layout", "path", args[0], "fragments", len(res.Fragments))

			if interactive {
				_, err := tea.NewProgram(NewPreviewModel(args[0], res), tea.WithAltScreen()).Run()
				return err
			}

			out := cmd.OutOrStdout()
			canvas := newCanvas(res)
			if plain {
				fmt.Fprint(out, canvas.String())
			} else {
				fmt.Fprint(out, canvas.Render())
			}
			if !noTable {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderCardTable(res))
			}
			writeUnplaced(out, res)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open a scrollable viewer")
	cmd.Flags().BoolVar(&noTable, "no-table", false, "omit the card table")
	cmd.Flags().BoolVar(&plain, "plain", false, "draw without colors")

	return cmd
}

// =============================================================================
// Canvas
// =============================================================================

// Box-drawing runes and direction markers.
const (
	boxTopLeft     = '┌'
	boxTopRight    = '┐'
	boxBottomLeft  = '└'
	boxBottomRight = '┘'
	boxHorizontal  = '─'
	boxVertical    = '│'
	boxFill        = '█'
	emptyCell      = ' '

	markHorizontal = '↔'
	markVertical   = '↕'
)

// canvas is a character raster of a layout, one cell per grid unit.
type canvas struct {
	cells [][]rune

	// owner holds the index into res.Fragments drawn at each cell, or -1.
	owner [][]int
	res   *layout.Result
}

func newCanvas(res *layout.Result) *canvas {
	rows, cols := res.Rows(), res.ContainerCols
	for _, p := range res.Fragments {
		cols = max(cols, p.Position.Col+p.Size.Width)
	}

	cv := &canvas{
		cells: make([][]rune, rows),
		owner: make([][]int, rows),
		res:   res,
	}
	for r := range rows {
		cv.cells[r] = []rune(strings.Repeat(string(emptyCell), cols))
		cv.owner[r] = make([]int, cols)
		for c := range cols {
			cv.owner[r][c] = -1
		}
	}
	for i := range res.Fragments {
		cv.draw(i)
	}
	return cv
}

func (cv *canvas) set(row, col int, ch rune, owner int) {
	if row < 0 || row >= len(cv.cells) || col < 0 || col >= len(cv.cells[row]) {
		return
	}
	cv.cells[row][col] = ch
	cv.owner[row][col] = owner
}

func (cv *canvas) draw(i int) {
	p := &cv.res.Fragments[i]
	top, left := p.Position.Row, p.Position.Col
	w, h := p.Size.Width, p.Size.Height
	bottom, right := top+h-1, left+w-1

	if w < 2 || h < 2 {
		for r := top; r <= bottom; r++ {
			for c := left; c <= right; c++ {
				cv.set(r, c, boxFill, i)
			}
		}
		return
	}

	for c := left; c <= right; c++ {
		cv.set(top, c, boxHorizontal, i)
		cv.set(bottom, c, boxHorizontal, i)
	}
	for r := top; r <= bottom; r++ {
		cv.set(r, left, boxVertical, i)
		cv.set(r, right, boxVertical, i)
	}
	cv.set(top, left, boxTopLeft, i)
	cv.set(top, right, boxTopRight, i)
	cv.set(bottom, left, boxBottomLeft, i)
	cv.set(bottom, right, boxBottomRight, i)

	if w > 2 {
		cv.set(top, left+1, directionMark(p.Direction), i)
	}
	if h > 2 {
		label := text.Ellipsize(p.ID(), w-2)
		for j, ch := range []rune(label) {
			cv.set(top+1, left+1+j, ch, i)
		}
	}
}

func directionMark(d fragment.Direction) rune {
	if d == fragment.Vertical {
		return markVertical
	}
	return markHorizontal
}

// Lines returns the raster as plain lines with trailing spaces trimmed.
func (cv *canvas) Lines() []string {
	lines := make([]string, len(cv.cells))
	for r, row := range cv.cells {
		lines[r] = strings.TrimRight(string(row), string(emptyCell))
	}
	return lines
}

// String returns the raster without styling.
func (cv *canvas) String() string {
	var b strings.Builder
	for _, line := range cv.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Render returns the raster with each card colored by direction, and
// patched cards highlighted.
func (cv *canvas) Render() string {
	var b strings.Builder
	for r, row := range cv.cells {
		line := strings.TrimRight(string(row), string(emptyCell))
		n := len([]rune(line))
		for start := 0; start < n; {
			owner := cv.owner[r][start]
			end := start + 1
			for end < n && cv.owner[r][end] == owner {
				end++
			}
			run := string(row[start:end])
			if owner >= 0 {
				run = cv.styleFor(owner).Render(run)
			}
			b.WriteString(run)
			start = end
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (cv *canvas) styleFor(i int) lipgloss.Style {
	p := &cv.res.Fragments[i]
	if _, ok := cv.res.Patch[p.ID()]; ok {
		return styleCardPatched
	}
	if p.Direction == fragment.Vertical {
		return styleCardVertical
	}
	return styleCardHorizontal
}

// =============================================================================
// Card table
// =============================================================================

// cardStatus names how a card's position came about.
func cardStatus(res *layout.Result, id string) string {
	for _, group := range []struct {
		name string
		ids  []string
	}{
		{"added", res.Added},
		{"repaired", res.Repaired},
		{"clipped", res.Clipped},
		{"relocated", res.Relocated},
	} {
		for _, gid := range group.ids {
			if gid == id {
				return group.name
			}
		}
	}
	return "kept"
}

// cardRows returns one table row per placed card.
func cardRows(res *layout.Result) [][]string {
	rows := make([][]string, 0, len(res.Fragments))
	for i := range res.Fragments {
		p := &res.Fragments[i]
		rows = append(rows, []string{
			text.Ellipsize(p.ID(), 14),
			p.Position.String(),
			fmt.Sprintf("%d×%d", p.Size.Width, p.Size.Height),
			string(p.Direction),
			cardStatus(res, p.ID()),
		})
	}
	return rows
}

func renderCardTable(res *layout.Result) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := cardRows(res)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Position", "Size", "Direction", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(rows) && rows[row][4] != "kept" {
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func writeUnplaced(w io.Writer, res *layout.Result) {
	for _, u := range res.Unplaced {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+
			StyleWarning.Render(fmt.Sprintf("%s not placed: %s", u.ID, u.Reason)))
	}
}
