// Package layout computes grid layouts for fragment cards.
//
// Given fragments, the positions stored for them by an earlier run, and
// cached direction hints, [Compute] produces a non-overlapping placement of
// every fragment that fits, plus a [Patch] of positions the caller should
// persist so the next run reproduces the same arrangement.
//
// # Pipeline
//
// A layout runs in four steps:
//
//  1. Direction: each fragment's reading direction is its explicit
//     direction, else its cached hint, else the answer of a [Decider]
//     (see [ResolveDirection]).
//  2. Sizing: [EstimateSize] turns text lengths, tag count, direction, and
//     font size into a card footprint in grid units, clamped to
//     [MinCardWidth]..[MaxCardWidth] × [MinCardHeight]..[MaxCardHeight].
//  3. Stored positions: fragments with a stored position are placed first,
//     in input order. Origin positions are repaired by search, overflowing
//     columns are clipped, and colliding positions are relocated.
//  4. New fragments: the remaining fragments are placed by first-fit
//     search, in input order.
//
// # Stability
//
// A stored position that is valid, inside the container, and free is kept
// as is and does not appear in the patch. Only positions that changed are
// patched, so a layout recomputed from its own patch is a fixed point.
//
// # Failure
//
// Compute never fails. Fragments that cannot be placed are listed in
// [Result.Unplaced] with a [Reason] and omitted from [Result.Fragments].
//
// # Configuration
//
// [Config] carries the grid unit, container width, text length caps, and
// grid dimensions. [DefaultConfig] gives 20px cells in a 1200px container.
//
// # Font Size
//
// [FontSize] maps a relevance score to a font size. It currently returns
// [BaseFontSize] for every score.
package layout
