package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fragmentgrid/pkg/cache"
	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
	"github.com/matzehuels/fragmentgrid/pkg/observability"
)

const cacheKeyType = "layout"

// Runner computes layouts through a cache.
//
// A Runner holds no per-run state, so one Runner can serve concurrent
// requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means cache.DefaultKeyer, and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute validates doc and opts, then returns the layout of doc together
// with run statistics.
func (r *Runner) Execute(ctx context.Context, doc *fragment.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no fragments document")
	}
	if err := fragment.Validate(doc.Fragments); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, len(doc.Fragments))

	hash, err := HashInput(doc)
	if err != nil {
		return nil, err
	}
	res, hit, err := r.computeLayout(ctx, doc, hash, opts)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Layout:    res,
		InputHash: hash,
		CacheHit:  hit,
		Stats: Stats{
			Fragments: len(doc.Fragments),
			Placed:    len(res.Fragments),
			Patched:   len(res.Patch),
			Unplaced:  len(res.Unplaced),
			Duration:  time.Since(start),
		},
	}

	for _, u := range res.Unplaced {
		r.Logger.Warn("fragment not placed", "id", u.ID, "reason", u.Reason)
		observability.Layout().OnUnplaced(ctx, u.ID, string(u.Reason))
	}
	r.Logger.Info("computed layout",
		"fragments", out.Stats.Fragments,
		"placed", out.Stats.Placed,
		"patched", out.Stats.Patched,
		"cached", hit,
		"duration", out.Stats.Duration)
	observability.Layout().OnLayoutComplete(ctx, out.Stats.Placed, out.Stats.Unplaced, out.Stats.Duration)

	return out, nil
}

// ComputeLayoutWithCacheInfo returns the layout of doc and whether it came
// from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, doc *fragment.Document, opts Options) (*layout.Result, bool, error) {
	res, err := r.Execute(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}
	return res.Layout, res.CacheHit, nil
}

// ComputeLayout returns the layout of doc.
func (r *Runner) ComputeLayout(ctx context.Context, doc *fragment.Document, opts Options) (*layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, doc, opts)
	return res, err
}

func (r *Runner) computeLayout(ctx context.Context, doc *fragment.Document, hash string, opts Options) (*layout.Result, bool, error) {
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Debug("cache read failed", "error", err)
		case hit:
			if res, err := layout.UnmarshalResult(data); err == nil {
				observability.Cache().OnCacheHit(ctx, cacheKeyType)
				return res, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	res := layout.Compute(doc.Fragments, doc.Positions, doc.Directions, opts.LayoutOptions())

	if data, err := layout.MarshalResult(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Debug("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return res, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
