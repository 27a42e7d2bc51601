// Package pkg provides the libraries behind fragmentgrid, a layout engine
// that packs content cards ("fragments") onto a spaced grid.
//
// # Overview
//
// A layout takes a list of fragments, the positions stored for them by an
// earlier layout, and cached reading directions. It returns where every
// card goes plus a patch of positions the caller should persist. Stored
// positions are kept whenever they are valid, so cards do not jump around
// between runs; corrupted or overlapping positions are repaired and new
// fragments are fitted into free space.
//
// The pkg directory is organized into these areas:
//
//  1. [fragment] - Fragment types and the JSON document format
//  2. [grid] - Occupancy grid, placement search, and pixel conversion
//  3. [layout] - Size estimation, direction deciders, and the reconciler
//  4. [pipeline] - Validation, caching, and statistics around a layout
//  5. [store] - Persistence of fragments, positions, and hints
//  6. [api] - HTTP API over the pipeline and a store
//
// Supporting packages: [cache] (layout caches), [errors] (coded errors),
// [observability] (hooks), [text] (rune-aware text utilities), and
// [buildinfo] (version stamping).
//
// # Architecture
//
// The typical data flow:
//
//	store / fragments.json
//	         ↓
//	    [fragment] Document (fragments, stored positions, hints)
//	         ↓
//	    [pipeline] Runner (validate, hash, cache lookup)
//	         ↓
//	    [layout] Compute (estimate sizes, reconcile, place new)
//	         ↓
//	    layout.Result (placed cards + patch)
//	         ↓
//	    [store] Persist / layout.json / HTTP response
//
// # Quick Start
//
//	doc, _ := fragment.ReadFile("fragments.json")
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
//	res, _ := runner.Execute(ctx, doc, pipeline.Options{})
//	for _, p := range res.Layout.Fragments {
//	    fmt.Println(p.ID(), p.Position, p.Size)
//	}
//
// [fragment]: github.com/matzehuels/fragmentgrid/pkg/fragment
// [grid]: github.com/matzehuels/fragmentgrid/pkg/grid
// [layout]: github.com/matzehuels/fragmentgrid/pkg/layout
// [pipeline]: github.com/matzehuels/fragmentgrid/pkg/pipeline
// [store]: github.com/matzehuels/fragmentgrid/pkg/store
// [api]: github.com/matzehuels/fragmentgrid/pkg/api
// [cache]: github.com/matzehuels/fragmentgrid/pkg/cache
// [errors]: github.com/matzehuels/fragmentgrid/pkg/errors
// [observability]: github.com/matzehuels/fragmentgrid/pkg/observability
// [text]: github.com/matzehuels/fragmentgrid/pkg/text
// [buildinfo]: github.com/matzehuels/fragmentgrid/pkg/buildinfo
package pkg
