package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
)

func sampleResult() *layout.Result {
	return &layout.Result{
		Fragments: []layout.Placed{
			{
				Fragment:  fragment.Fragment{ID: "a"},
				Position:  grid.Position{Row: 1, Col: 1},
				Size:      grid.Size{Width: 5, Height: 4},
				Direction: fragment.Horizontal,
			},
			{
				Fragment:  fragment.Fragment{ID: "abcdef"},
				Position:  grid.Position{Row: 1, Col: 7},
				Size:      grid.Size{Width: 5, Height: 4},
				Direction: fragment.Vertical,
			},
		},
		Patch:         layout.Patch{"abcdef": {Row: 1, Col: 7}},
		Added:         []string{"abcdef"},
		Unplaced:      []layout.Unplaced{{ID: "lost", Reason: layout.ReasonNoSpace}},
		ContainerCols: 12,
		GridUnit:      20,
	}
}

func TestCanvasLines(t *testing.T) {
	got := newCanvas(sampleResult()).Lines()
	want := []string{
		"",
		" ┌↔──┐ ┌↕──┐",
		" │a  │ │ab…│",
		" │   │ │   │",
		" └───┘ └───┘",
	}

	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCanvasRenderKeepsText(t *testing.T) {
	cv := newCanvas(sampleResult())
	rendered := cv.Render()
	for _, part := range []string{"┌↔──┐", "│a  │", "ab…"} {
		if !strings.Contains(rendered, part) {
			t.Errorf("Render() lost %q", part)
		}
	}
	if strings.Count(rendered, "\n") != len(cv.Lines()) {
		t.Errorf("Render() has %d lines, want %d", strings.Count(rendered, "\n"), len(cv.Lines()))
	}
}

func TestCanvasTinyCard(t *testing.T) {
	res := &layout.Result{
		Fragments: []layout.Placed{{
			Fragment: fragment.Fragment{ID: "x"},
			Position: grid.Position{Row: 0, Col: 2},
			Size:     grid.Size{Width: 1, Height: 2},
		}},
	}
	got := newCanvas(res).Lines()
	want := []string{"  █", "  █"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCardRows(t *testing.T) {
	rows := cardRows(sampleResult())
	want := [][]string{
		{"a", "(1,1)", "5×4", "horizontal", "kept"},
		{"abcdef", "(1,7)", "5×4", "vertical", "added"},
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}

	table := renderCardTable(sampleResult())
	for _, s := range []string{"ID", "Status", "abcdef", "added"} {
		if !strings.Contains(table, s) {
			t.Errorf("table missing %q", s)
		}
	}
}

func TestPreviewModelScroll(t *testing.T) {
	m := NewPreviewModel("layout.json", sampleResult())

	key := func(m PreviewModel, k tea.KeyType) PreviewModel {
		next, _ := m.Update(tea.KeyMsg{Type: k})
		return next.(PreviewModel)
	}

	// Everything fits: scrolling is a no-op.
	m = key(m, tea.KeyDown)
	if m.Row != 0 {
		t.Errorf("Row = %d, want 0 when the layout fits", m.Row)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 6, Height: 6})
	m = next.(PreviewModel)
	if m.viewRows() != 2 {
		t.Fatalf("viewRows() = %d, want 2", m.viewRows())
	}

	m = key(m, tea.KeyEnd)
	if m.Row != 3 {
		t.Errorf("Row after end = %d, want 3", m.Row)
	}
	m = key(m, tea.KeyDown)
	if m.Row != 3 {
		t.Errorf("Row past the end = %d, want 3", m.Row)
	}
	m = key(m, tea.KeyPgUp)
	if m.Row != 1 {
		t.Errorf("Row after pgup = %d, want 1", m.Row)
	}

	for range 20 {
		m = key(m, tea.KeyRight)
	}
	if m.Col != 6 {
		t.Errorf("Col = %d, want 6 (widest line 12, width 6)", m.Col)
	}

	m = key(m, tea.KeyHome)
	if m.Row != 0 || m.Col != 0 {
		t.Errorf("home: Row=%d Col=%d, want 0,0", m.Row, m.Col)
	}

	view := m.View()
	if !strings.Contains(view, "layout.json") || !strings.Contains(view, "rows 1-2 of 5") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestPreviewModelQuit(t *testing.T) {
	m := NewPreviewModel("x", sampleResult())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q did not return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestSliceRunes(t *testing.T) {
	tests := []struct {
		s        string
		from, n  int
		expected string
	}{
		{"┌↔──┐", 1, 2, "↔─"},
		{"abc", 5, 2, ""},
		{"abc", 0, 10, "abc"},
	}
	for _, tt := range tests {
		if got := sliceRunes(tt.s, tt.from, tt.n); got != tt.expected {
			t.Errorf("sliceRunes(%q, %d, %d) = %q, want %q", tt.s, tt.from, tt.n, got, tt.expected)
		}
	}
}
