// Package pipeline runs fragment layouts with memoization.
//
// [layout.Compute] is pure: the same fragments, stored positions, hints,
// and settings always produce the same result. This package exploits that.
// A [Runner] hashes the inputs, looks the result up in a [cache.Cache], and
// only computes on a miss. The CLI, the HTTP API, and tests all go through
// the Runner so they share defaults, logging, and cache keys.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	res, err := runner.Execute(ctx, doc, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for id, pos := range res.Layout.Patch {
//	    // persist pos for id
//	}
//
// For a single long-lived view that recomputes on every change, [Memo]
// keeps just the last result in memory.
package pipeline

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fragmentgrid/pkg/cache"
	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSeed seeds the random direction decider.
	DefaultSeed = uint64(42)

	// DefaultDecider is the direction decider used when none is named.
	DefaultDecider = DeciderRandom
)

// Direction decider names.
const (
	DeciderRandom     = "random"
	DeciderHeuristic  = "heuristic"
	DeciderHorizontal = "horizontal"
	DeciderVertical   = "vertical"
)

// ValidDeciders is the set of supported decider names.
var ValidDeciders = map[string]bool{
	DeciderRandom:     true,
	DeciderHeuristic:  true,
	DeciderHorizontal: true,
	DeciderVertical:   true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Config holds the grid and container constants. Zero fields take
	// layout defaults.
	Config layout.Config `json:"config"`

	// Decider names how directions are picked for fragments with neither an
	// explicit direction nor a hint.
	Decider string `json:"decider,omitempty"`

	// Seed seeds the random decider.
	Seed uint64 `json:"seed,omitempty"`

	// Relevance feeds layout.FontSize per fragment id.
	Relevance map[string]float64 `json:"relevance,omitempty"`

	// Refresh skips the cache lookup and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults applies defaults and checks every field. Calling it
// again after success is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Config = o.Config.WithDefaults()
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Decider == "" {
		o.Decider = DefaultDecider
	}
	if err := ValidateDecider(o.Decider); err != nil {
		return err
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	for id, r := range o.Relevance {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "relevance of %s must be finite", id)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ValidateDecider checks that name is a known decider.
func ValidateDecider(name string) error {
	if !ValidDeciders[name] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid decider: %q (must be one of: random, heuristic, horizontal, vertical)", name)
	}
	return nil
}

// NewDecider builds the named decider. Each call to the random decider
// starts a fresh PCG stream from seed, so a run is reproducible.
func NewDecider(name string, seed uint64) layout.Decider {
	switch name {
	case DeciderHeuristic:
		return layout.HeuristicDecider()
	case DeciderHorizontal:
		return layout.FixedDecider(fragment.Horizontal)
	case DeciderVertical:
		return layout.FixedDecider(fragment.Vertical)
	default:
		return layout.RandomDecider(rand.New(rand.NewPCG(seed, seed)))
	}
}

// LayoutOptions returns the engine options for o.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Config:    o.Config,
		Decider:   NewDecider(o.Decider, o.Seed),
		Relevance: o.Relevance,
	}
}

// LayoutKeyOpts returns the settings that go into the cache key.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	seed := o.Seed
	if o.Decider != DeciderRandom {
		seed = 0
	}
	opts := cache.LayoutKeyOpts{
		GridUnit:         o.Config.GridUnit,
		ContainerWidth:   o.Config.ContainerWidth,
		MaxContentLength: o.Config.MaxContentLength,
		MaxNoteLength:    o.Config.MaxNoteLength,
		Rows:             o.Config.Rows,
		Cols:             o.Config.Cols,
		Decider:          o.Decider,
		Seed:             seed,
	}
	if len(o.Relevance) > 0 {
		// JSON rejects non-finite scores; fmt sorts map keys too.
		h, err := cache.HashJSON(o.Relevance)
		if err != nil {
			h = cache.Hash(fmt.Appendf(nil, "%v", o.Relevance))
		}
		opts.Relevance = h
	}
	return opts
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of a pipeline run.
type Result struct {
	// Layout is the computed (or cached) layout.
	Layout *layout.Result

	// InputHash is the content hash of the fragments, stored positions,
	// and hints.
	InputHash string

	Stats Stats

	// CacheHit reports whether Layout came from the cache.
	CacheHit bool
}

// Stats summarizes a run.
type Stats struct {
	Fragments int
	Placed    int
	Patched   int
	Unplaced  int
	Duration  time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d placed, %d patched, %d unplaced in %s",
		s.Placed, s.Fragments, s.Patched, s.Unplaced, s.Duration.Round(time.Microsecond))
}

// HashInput returns the content hash of a document's layout inputs.
func HashInput(doc *fragment.Document) (string, error) {
	h, err := cache.HashJSON(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash layout input")
	}
	return h, nil
}
