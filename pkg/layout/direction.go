package layout

import (
	"math/rand/v2"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/text"
)

// Decider picks a reading direction for a fragment that has neither an
// explicit direction nor a cached hint.
type Decider func(content, note string) fragment.Direction

// HeuristicDecider returns the deterministic text heuristic.
func HeuristicDecider() Decider {
	return func(content, note string) fragment.Direction {
		return text.DecideDirection(content, note, nil)
	}
}

// RandomDecider returns the randomized text heuristic drawing from rng.
// A nil rng falls back to the deterministic rule.
func RandomDecider(rng *rand.Rand) Decider {
	return func(content, note string) fragment.Direction {
		return text.DecideDirection(content, note, rng)
	}
}

// FixedDecider always answers d.
func FixedDecider(d fragment.Direction) Decider {
	return func(string, string) fragment.Direction { return d }
}

// ResolveDirection returns the direction of f. An explicit direction on the
// fragment wins, then a hint keyed by fragment id, then decide. Without a
// decider the answer is horizontal.
func ResolveDirection(f *fragment.Fragment, hints map[string]fragment.Direction, decide Decider) fragment.Direction {
	if f.Direction.Valid() {
		return f.Direction
	}
	if d, ok := hints[f.ID]; ok && d.Valid() {
		return d
	}
	if decide != nil {
		if d := decide(f.Content, f.NoteText()); d.Valid() {
			return d
		}
	}
	return fragment.Horizontal
}

// AssignDirections resolves the direction of every fragment. The result
// contains an entry for each fragment and is suitable for caching as hints
// for later runs.
func AssignDirections(frags []fragment.Fragment, hints map[string]fragment.Direction, decide Decider) map[string]fragment.Direction {
	out := make(map[string]fragment.Direction, len(frags))
	for i := range frags {
		out[frags[i].ID] = ResolveDirection(&frags[i], hints, decide)
	}
	return out
}

// DirectionMap builds a fresh hint map for frags from their explicit
// directions and decide, ignoring any previously cached hints.
func DirectionMap(frags []fragment.Fragment, decide Decider) map[string]fragment.Direction {
	return AssignDirections(frags, nil, decide)
}
