package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fragmentgrid/pkg/layout"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// chromeLines is the number of lines taken by the header and footer.
const chromeLines = 4

// =============================================================================
// PreviewModel - Scrollable layout viewer
// =============================================================================

// PreviewModel is the bubbletea model for browsing a layout that is larger
// than the terminal.
type PreviewModel struct {
	Title string
	Lines []string

	// Row and Col are the scroll offsets of the top-left visible cell.
	Row, Col int

	Width, Height int
}

// NewPreviewModel creates a viewer for res.
func NewPreviewModel(title string, res *layout.Result) PreviewModel {
	return PreviewModel{
		Title:  title,
		Lines:  newCanvas(res).Lines(),
		Width:  80,
		Height: 20,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Row--
		case "down", "j":
			m.Row++
		case "left", "h":
			m.Col--
		case "right", "l":
			m.Col++
		case "pgup":
			m.Row -= m.viewRows()
		case "pgdown", " ":
			m.Row += m.viewRows()
		case "home", "g":
			m.Row, m.Col = 0, 0
		case "end", "G":
			m.Row = m.maxRow()
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	m.clamp()
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓/←/→ scroll  pgup/pgdn page  home top  q quit"))
	b.WriteString("\n")

	end := min(m.Row+m.viewRows(), len(m.Lines))
	for _, line := range m.Lines[m.Row:end] {
		b.WriteString(sliceRunes(line, m.Col, m.Width))
		b.WriteString("\n")
	}

	b.WriteString(listDimStyle.Render(fmt.Sprintf("  rows %d-%d of %d", m.Row+1, end, len(m.Lines))))
	return b.String()
}

func (m PreviewModel) viewRows() int {
	return max(1, m.Height-chromeLines)
}

func (m PreviewModel) maxRow() int {
	return max(0, len(m.Lines)-m.viewRows())
}

func (m *PreviewModel) clamp() {
	m.Row = min(max(m.Row, 0), m.maxRow())
	widest := 0
	for _, line := range m.Lines {
		widest = max(widest, len([]rune(line)))
	}
	m.Col = min(max(m.Col, 0), max(0, widest-m.Width))
}

// sliceRunes returns up to n runes of s starting at rune offset from.
func sliceRunes(s string, from, n int) string {
	r := []rune(s)
	if from >= len(r) {
		return ""
	}
	return string(r[from:min(len(r), from+n)])
}
