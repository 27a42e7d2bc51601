package layout

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// Empty horizontal cards are 11×5 at the default configuration.
var cardSize = grid.Size{Width: 11, Height: 5}

func fragments(ids ...string) []fragment.Fragment {
	out := make([]fragment.Fragment, len(ids))
	for i, id := range ids {
		out[i] = fragment.Fragment{ID: id}
	}
	return out
}

// checkInvariants verifies the properties every layout must have.
func checkInvariants(t *testing.T, res *Result, stored map[string]grid.Position) {
	t.Helper()

	for _, p := range res.Fragments {
		if p.Position == grid.Origin {
			t.Errorf("%s placed at origin", p.ID())
		}
		if p.Position.Col+p.Size.Width > res.ContainerCols {
			t.Errorf("%s at %v width %d overflows %d columns", p.ID(), p.Position, p.Size.Width, res.ContainerCols)
		}
		if s, ok := stored[p.ID()]; !ok || s != p.Position {
			if got, ok := res.Patch[p.ID()]; !ok || got != p.Position {
				t.Errorf("%s moved to %v but patch has %v", p.ID(), p.Position, got)
			}
		}
	}

	// Footprints extended by their halo must be pairwise disjoint.
	for i, a := range res.Fragments {
		for _, b := range res.Fragments[i+1:] {
			if a.Position.Row <= b.Position.Row+b.Size.Height &&
				b.Position.Row <= a.Position.Row+a.Size.Height &&
				a.Position.Col <= b.Position.Col+b.Size.Width &&
				b.Position.Col <= a.Position.Col+a.Size.Width {
				t.Errorf("%s at %v overlaps %s at %v", a.ID(), a.Position, b.ID(), b.Position)
			}
		}
	}

	if got, want := len(res.Fragments)+len(res.Unplaced), len(res.Directions); got != want {
		t.Errorf("placed+unplaced = %d, want %d", got, want)
	}
}

func TestComputeNewFragments(t *testing.T) {
	res := Compute(fragments("a", "b", "c"), nil, nil, Options{})
	checkInvariants(t, res, nil)

	want := map[string]grid.Position{
		"a": {Row: 1, Col: 1},
		"b": {Row: 1, Col: 13},
		"c": {Row: 1, Col: 25},
	}
	if got := res.Positions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Positions() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(map[string]grid.Position(res.Patch), want) {
		t.Errorf("Patch = %v, want %v", res.Patch, want)
	}
	if !slices.Equal(res.Added, []string{"a", "b", "c"}) {
		t.Errorf("Added = %v", res.Added)
	}
	for _, p := range res.Fragments {
		if p.Size != cardSize {
			t.Errorf("%s size = %+v, want %+v", p.ID(), p.Size, cardSize)
		}
	}
}

func TestComputeStablePositions(t *testing.T) {
	stored := map[string]grid.Position{
		"a": {Row: 2, Col: 3},
		"b": {Row: 10, Col: 20},
	}
	res := Compute(fragments("a", "b"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	if got := res.Positions(); !reflect.DeepEqual(got, stored) {
		t.Errorf("Positions() = %v, want %v", got, stored)
	}
	if len(res.Patch) != 0 {
		t.Errorf("Patch = %v, want empty", res.Patch)
	}
}

func TestComputeRepairsOrigin(t *testing.T) {
	stored := map[string]grid.Position{"a": grid.Origin}
	res := Compute(fragments("a"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	want := grid.Position{Row: 1, Col: 1}
	if got := res.Patch["a"]; got != want {
		t.Errorf("Patch[a] = %v, want %v", got, want)
	}
	if !slices.Equal(res.Repaired, []string{"a"}) {
		t.Errorf("Repaired = %v", res.Repaired)
	}
}

func TestComputeRelocatesConflicts(t *testing.T) {
	stored := map[string]grid.Position{
		"a": {Row: 1, Col: 1},
		"b": {Row: 1, Col: 1},
	}
	res := Compute(fragments("a", "b"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	a, _ := res.Lookup("a")
	b, _ := res.Lookup("b")
	if a.Position != (grid.Position{Row: 1, Col: 1}) {
		t.Errorf("a = %v, want (1,1)", a.Position)
	}
	if b.Position != (grid.Position{Row: 1, Col: 13}) {
		t.Errorf("b = %v, want (1,13)", b.Position)
	}
	if _, ok := res.Patch["a"]; ok {
		t.Error("a should not be patched")
	}
	if !slices.Equal(res.Relocated, []string{"b"}) {
		t.Errorf("Relocated = %v", res.Relocated)
	}
}

func TestComputeRelocatesHaloConflicts(t *testing.T) {
	// b would start on a's right halo column.
	stored := map[string]grid.Position{
		"a": {Row: 1, Col: 1},
		"b": {Row: 1, Col: 12},
	}
	res := Compute(fragments("a", "b"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	if !slices.Equal(res.Relocated, []string{"b"}) {
		t.Errorf("Relocated = %v", res.Relocated)
	}
}

func TestComputeClipsOverflowingColumns(t *testing.T) {
	stored := map[string]grid.Position{"a": {Row: 3, Col: 55}}
	res := Compute(fragments("a"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	want := grid.Position{Row: 3, Col: 49}
	if got := res.Patch["a"]; got != want {
		t.Errorf("Patch[a] = %v, want %v", got, want)
	}
	if !slices.Equal(res.Clipped, []string{"a"}) {
		t.Errorf("Clipped = %v", res.Clipped)
	}
}

func TestComputeStoredBeforeNew(t *testing.T) {
	// "new" comes first in input but must not take the stored cell of "old".
	frags := fragments("new", "old")
	stored := map[string]grid.Position{"old": {Row: 1, Col: 1}}

	res := Compute(frags, stored, nil, Options{})
	checkInvariants(t, res, stored)

	old, _ := res.Lookup("old")
	if old.Position != (grid.Position{Row: 1, Col: 1}) {
		t.Errorf("old = %v, want (1,1)", old.Position)
	}
	if res.Fragments[0].ID() != "new" {
		t.Errorf("Fragments not in input order: %v", res.Fragments[0].ID())
	}
}

func TestComputeExhaustion(t *testing.T) {
	// Eight rows hold a single band of 11×5 cards: five across 60 columns.
	cfg := DefaultConfig()
	cfg.Rows = 8

	stored := map[string]grid.Position{
		"a": {Row: 1, Col: 1},
		"b": {Row: 1, Col: 13},
		"c": {Row: 1, Col: 25},
		"d": {Row: 1, Col: 37},
		"e": {Row: 1, Col: 49},
		"f": grid.Origin,
		"g": {Row: 1, Col: 1},
	}
	res := Compute(fragments("a", "b", "c", "d", "e", "f", "g", "h"), stored, nil, Options{Config: cfg})
	checkInvariants(t, res, stored)

	want := []Unplaced{
		{ID: "f", Reason: ReasonProblematic},
		{ID: "g", Reason: ReasonConflict},
		{ID: "h", Reason: ReasonNoSpace},
	}
	if !reflect.DeepEqual(res.Unplaced, want) {
		t.Errorf("Unplaced = %v, want %v", res.Unplaced, want)
	}
	if len(res.Fragments) != 5 {
		t.Errorf("placed %d fragments, want 5", len(res.Fragments))
	}
	if len(res.Patch) != 0 {
		t.Errorf("Patch = %v, want empty", res.Patch)
	}
}

func TestComputeNegativeStoredPositionOnFullGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 8

	stored := map[string]grid.Position{
		"a": {Row: 1, Col: 1},
		"b": {Row: 1, Col: 13},
		"c": {Row: 1, Col: 25},
		"d": {Row: 1, Col: 37},
		"e": {Row: 1, Col: 49},
		"n": {Row: -2, Col: 5},
	}
	res := Compute(fragments("a", "b", "c", "d", "e", "n"), stored, nil, Options{Config: cfg})
	checkInvariants(t, res, stored)

	want := []Unplaced{{ID: "n", Reason: ReasonProblematic}}
	if !reflect.DeepEqual(res.Unplaced, want) {
		t.Errorf("Unplaced = %v, want %v", res.Unplaced, want)
	}
}

func TestComputeOutOfGridStoredPosition(t *testing.T) {
	stored := map[string]grid.Position{"a": {Row: 500, Col: 3}}
	res := Compute(fragments("a"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	if got := res.Patch["a"]; got != (grid.Position{Row: 1, Col: 1}) {
		t.Errorf("Patch[a] = %v, want (1,1)", got)
	}
}

func TestComputeIgnoresUnknownStoredIDs(t *testing.T) {
	stored := map[string]grid.Position{"gone": {Row: 1, Col: 1}}
	res := Compute(fragments("a"), stored, nil, Options{})
	checkInvariants(t, res, stored)

	if len(res.Fragments) != 1 || res.Fragments[0].Position != (grid.Position{Row: 1, Col: 1}) {
		t.Errorf("Fragments = %+v", res.Fragments)
	}
}

func TestComputeFixedPoint(t *testing.T) {
	frags := randomFragments(rand.New(rand.NewPCG(7, 7)), 40)
	first := Compute(frags, nil, nil, Options{})
	checkInvariants(t, first, nil)

	second := Compute(frags, first.Positions(), first.Directions, Options{})
	checkInvariants(t, second, first.Positions())

	if len(second.Patch) != 0 {
		t.Errorf("recomputed layout patched %v", second.Patch)
	}
	if !reflect.DeepEqual(first.Positions(), second.Positions()) {
		t.Error("recomputed layout moved fragments")
	}
}

func TestComputeDeterministic(t *testing.T) {
	frags := randomFragments(rand.New(rand.NewPCG(1, 2)), 60)
	stored := map[string]grid.Position{
		"f3":  {Row: 4, Col: 4},
		"f7":  {Row: 4, Col: 4},
		"f11": grid.Origin,
		"f20": {Row: 30, Col: 58},
	}

	a := Compute(frags, stored, nil, Options{Decider: HeuristicDecider()})
	b := Compute(frags, stored, nil, Options{Decider: HeuristicDecider()})
	if !reflect.DeepEqual(a, b) {
		t.Error("Compute is not deterministic")
	}
	checkInvariants(t, a, stored)
}

func TestComputeRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 1))
	for round := range 20 {
		frags := randomFragments(rng, 1+rng.IntN(80))
		stored := map[string]grid.Position{}
		for _, f := range frags {
			if rng.IntN(2) == 0 {
				stored[f.ID] = grid.Position{Row: rng.IntN(60), Col: rng.IntN(70)}
			}
		}
		res := Compute(frags, stored, nil, Options{Decider: RandomDecider(rng)})
		t.Run(fmt.Sprintf("round %d", round), func(t *testing.T) {
			checkInvariants(t, res, stored)
		})
	}
}

func TestComputeDirections(t *testing.T) {
	frags := []fragment.Fragment{
		{ID: "explicit", Direction: fragment.Vertical},
		{ID: "hinted"},
		{ID: "decided"},
	}
	hints := map[string]fragment.Direction{"hinted": fragment.Vertical}

	res := Compute(frags, nil, hints, Options{Decider: FixedDecider(fragment.Horizontal)})

	want := map[string]fragment.Direction{
		"explicit": fragment.Vertical,
		"hinted":   fragment.Vertical,
		"decided":  fragment.Horizontal,
	}
	if !reflect.DeepEqual(res.Directions, want) {
		t.Errorf("Directions = %v, want %v", res.Directions, want)
	}
	p, _ := res.Lookup("explicit")
	if p.Size != (grid.Size{Width: 5, Height: 12}) {
		t.Errorf("vertical size = %+v", p.Size)
	}
}

func TestComputeVisibility(t *testing.T) {
	frags := []fragment.Fragment{{ID: "a", ShowNote: fragment.Bool(false)}}
	res := Compute(frags, nil, nil, Options{})

	p := res.Fragments[0]
	if !p.ShowContent || p.ShowNote || !p.ShowTags {
		t.Errorf("visibility = %v/%v/%v, want true/false/true", p.ShowContent, p.ShowNote, p.ShowTags)
	}
}

func TestComputeDoesNotAliasInput(t *testing.T) {
	frags := []fragment.Fragment{{ID: "a", Tags: []fragment.Tag{{Name: "x"}}}}
	res := Compute(frags, nil, nil, Options{})

	res.Fragments[0].Fragment.Tags[0].Name = "changed"
	if frags[0].Tags[0].Name != "x" {
		t.Error("result aliases input tags")
	}
}

func randomFragments(rng *rand.Rand, n int) []fragment.Fragment {
	words := []string{"grid", "card", "片段", "縦書き", "note", "layout", "字"}
	out := make([]fragment.Fragment, n)
	for i := range out {
		var sb strings.Builder
		for range rng.IntN(25) {
			sb.WriteString(words[rng.IntN(len(words))])
		}
		f := fragment.Fragment{ID: fmt.Sprintf("f%d", i), Content: sb.String()}
		if rng.IntN(3) == 0 {
			f.Notes = []fragment.Note{{Value: strings.Repeat("n", rng.IntN(80))}}
		}
		for range rng.IntN(6) {
			f.Tags = append(f.Tags, fragment.Tag{Name: "t"})
		}
		out[i] = f
	}
	return out
}
