package layout

import (
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// Options configures a layout computation.
type Options struct {
	// Config holds grid and container constants. Zero fields take their
	// defaults.
	Config Config

	// Decider picks directions for fragments with neither an explicit
	// direction nor a hint. Nil means horizontal.
	Decider Decider

	// Relevance maps fragment ids to relevance scores fed to FontSize.
	// Missing ids score zero.
	Relevance map[string]float64
}

// Compute places fragments on a fresh occupancy grid.
//
// Fragments with a usable stored position are placed first, in input order,
// so that earlier cards keep their cells. Stored positions at the origin are
// repaired by search, columns that would overflow the container are clipped
// back, and positions that collide with an earlier card are relocated.
// Fragments without a stored position are then placed by search, also in
// input order. Every position that differs from what was stored is reported
// in Result.Patch; fragments that cannot be placed are reported in
// Result.Unplaced and omitted from Result.Fragments.
//
// Compute is deterministic for a given input and Decider.
func Compute(frags []fragment.Fragment, stored map[string]grid.Position, hints map[string]fragment.Direction, opts Options) *Result {
	cfg := opts.Config.WithDefaults()
	r := &reconciler{
		cfg:  cfg,
		cc:   cfg.ContainerCols(),
		grid: grid.New(cfg.Rows, cfg.Cols),
		res: &Result{
			Fragments:     make([]Placed, 0, len(frags)),
			Patch:         Patch{},
			Directions:    AssignDirections(frags, hints, opts.Decider),
			ContainerCols: cfg.ContainerCols(),
			GridUnit:      cfg.GridUnit,
		},
	}

	placed := make([]*Placed, len(frags))
	for i := range frags {
		f := &frags[i]
		dir := r.res.Directions[f.ID]
		fs := FontSize(opts.Relevance[f.ID])
		placed[i] = &Placed{
			Fragment:    f.Clone(),
			Size:        EstimateSize(f, dir, fs, cfg),
			Direction:   dir,
			FontSize:    fs,
			ShowContent: f.ContentVisible(),
			ShowNote:    f.NoteVisible(),
			ShowTags:    f.TagsVisible(),
		}
	}

	ok := make([]bool, len(frags))
	for i, p := range placed {
		if pos, has := stored[p.ID()]; has {
			ok[i] = r.placeStored(p, pos)
		}
	}
	for i, p := range placed {
		if _, has := stored[p.ID()]; !has {
			ok[i] = r.placeNew(p)
		}
	}

	for i, p := range placed {
		if ok[i] {
			r.res.Fragments = append(r.res.Fragments, *p)
		}
	}
	return r.res
}

type reconciler struct {
	cfg  Config
	cc   int
	grid *grid.Grid
	res  *Result
}

// fits reports whether p can sit at pos: free on the grid and inside the
// container's column budget.
func (r *reconciler) fits(pos grid.Position, s grid.Size) bool {
	return !pos.IsProblematic() && pos.Col+s.Width <= r.cc && !r.grid.IsOccupied(pos, s)
}

func (r *reconciler) accept(p *Placed, pos grid.Position) {
	p.Position = pos
	r.grid.MarkOccupied(pos, p.Size)
}

func (r *reconciler) unplaced(p *Placed, reason Reason) bool {
	r.res.Unplaced = append(r.res.Unplaced, Unplaced{ID: p.ID(), Reason: reason})
	return false
}

func (r *reconciler) placeStored(p *Placed, orig grid.Position) bool {
	id := p.ID()
	pos := orig

	if pos.IsProblematic() {
		found, ok := grid.FindPlacement(r.grid, p.Size, r.cc)
		if !ok {
			return r.unplaced(p, ReasonProblematic)
		}
		r.accept(p, found)
		r.res.Patch[id] = found
		r.res.Repaired = append(r.res.Repaired, id)
		return true
	}

	if pos.Col+p.Size.Width > r.cc {
		pos.Col = max(1, r.cc-p.Size.Width)
	}

	if r.fits(pos, p.Size) {
		r.accept(p, pos)
		if pos != orig {
			r.res.Patch[id] = pos
			r.res.Clipped = append(r.res.Clipped, id)
		}
		return true
	}

	found, ok := grid.FindPlacement(r.grid, p.Size, r.cc)
	if !ok {
		return r.unplaced(p, ReasonConflict)
	}
	r.accept(p, found)
	r.res.Patch[id] = found
	r.res.Relocated = append(r.res.Relocated, id)
	return true
}

func (r *reconciler) placeNew(p *Placed) bool {
	found, ok := grid.FindPlacement(r.grid, p.Size, r.cc)
	if !ok || found.IsProblematic() {
		return r.unplaced(p, ReasonNoSpace)
	}
	r.accept(p, found)
	r.res.Patch[p.ID()] = found
	r.res.Added = append(r.res.Added, p.ID())
	return true
}
