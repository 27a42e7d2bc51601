package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/fragmentgrid/pkg/buildinfo"
	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
	"github.com/matzehuels/fragmentgrid/pkg/pipeline"
	"github.com/matzehuels/fragmentgrid/pkg/store"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout: a fragment document plus
// optional pipeline options.
type LayoutRequest struct {
	fragment.Document
	Options pipeline.Options `json:"options"`
}

// StoreLayoutRequest is the body of POST /v1/fragments/layout.
type StoreLayoutRequest struct {
	Options pipeline.Options `json:"options"`

	// DryRun computes the layout without writing the patch back.
	DryRun bool `json:"dry_run,omitempty"`
}

// LayoutResponse carries a computed layout.
type LayoutResponse struct {
	Layout    *layout.Result        `json:"layout"`
	Pixels    map[string]grid.Pixel `json:"pixels"`
	InputHash string                `json:"input_hash"`
	Stats     StatsBody             `json:"stats"`
	CacheHit  bool                  `json:"cache_hit"`
	Persisted bool                  `json:"persisted,omitempty"`
}

// StatsBody mirrors pipeline.Stats with the duration in milliseconds.
type StatsBody struct {
	Fragments  int     `json:"fragments"`
	Placed     int     `json:"placed"`
	Patched    int     `json:"patched"`
	Unplaced   int     `json:"unplaced"`
	DurationMS float64 `json:"duration_ms"`
}

// SaveResponse lists the ids of stored fragments in request order.
type SaveResponse struct {
	IDs []string `json:"ids"`
}

// MoveResponse confirms a position write.
type MoveResponse struct {
	ID       string        `json:"id"`
	Position grid.Position `json:"position"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decodeJSON(w, r, s.maxBody(), &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.Document.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	opts := mergeOptions(s.Defaults, req.Options)
	res, err := s.runner.Execute(r.Context(), &req.Document, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse(res, false))
}

func (s *Server) handleStoreLayout(w http.ResponseWriter, r *http.Request) {
	var req StoreLayoutRequest
	if err := decodeJSON(w, r, s.maxBody(), &req, true); err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()

	doc, err := store.LoadDocument(ctx, s.store)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(ctx, doc, mergeOptions(s.Defaults, req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !req.DryRun {
		if err := store.Persist(ctx, s.store, res.Layout); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, layoutResponse(res, !req.DryRun))
}

func (s *Server) handleToPixel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	row, err := intParam(q.Get("row"), "row")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	col, err := intParam(q.Get("col"), "col")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	unit, err := s.unitParam(q.Get("unit"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grid.ToPixel(grid.Position{Row: row, Col: col}, unit))
}

func (s *Server) handleToGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	top, err := floatParam(q.Get("top"), "top")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	left, err := floatParam(q.Get("left"), "left")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	unit, err := s.unitParam(q.Get("unit"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grid.FromPixel(top, left, unit))
}

func (s *Server) handleListFragments(w http.ResponseWriter, r *http.Request) {
	doc, err := store.LoadDocument(r.Context(), s.store)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if doc.Fragments == nil {
		doc.Fragments = []fragment.Fragment{}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveFragments(w http.ResponseWriter, r *http.Request) {
	var doc fragment.Document
	if err := decodeJSON(w, r, s.maxBody(), &doc, false); err != nil {
		s.fail(w, r, err)
		return
	}
	fragment.EnsureIDs(doc.Fragments)
	if err := doc.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	if err := s.store.SaveFragments(ctx, doc.Fragments); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(doc.Positions) > 0 {
		if err := s.store.ApplyPatch(ctx, doc.Positions); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if len(doc.Directions) > 0 {
		if err := s.store.SaveDirections(ctx, doc.Directions); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	ids := make([]string, len(doc.Fragments))
	for i, f := range doc.Fragments {
		ids[i] = f.ID
	}
	writeJSON(w, http.StatusCreated, SaveResponse{IDs: ids})
}

func (s *Server) handleDeleteFragment(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFragment(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveFragment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var pos grid.Position
	if err := decodeJSON(w, r, s.maxBody(), &pos, false); err != nil {
		s.fail(w, r, err)
		return
	}
	if pos.IsProblematic() {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidPosition,
			"position %v is reserved or negative", pos))
		return
	}
	if err := s.store.ApplyPatch(r.Context(), map[string]grid.Position{id: pos}); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResponse{ID: id, Position: pos})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if StatusFor(errors.GetCode(err)) >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err)
	}
	writeError(w, r, err)
}

func (s *Server) unitParam(v string) (float64, error) {
	if v == "" {
		return s.Defaults.Config.WithDefaults().GridUnit, nil
	}
	unit, err := floatParam(v, "unit")
	if err != nil {
		return 0, err
	}
	if unit <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "unit must be positive, got %v", unit)
	}
	return unit, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "missing query parameter %q", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %q must be an integer", name)
	}
	return n, nil
}

func floatParam(v, name string) (float64, error) {
	if v == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "missing query parameter %q", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %q must be a number", name)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %q must be finite, got %v", name, f)
	}
	return f, nil
}

// mergeOptions overlays the fields set in req onto base. The result is
// always unvalidated so request values get checked.
func mergeOptions(base, req pipeline.Options) pipeline.Options {
	out := pipeline.Options{
		Config:    base.Config,
		Decider:   base.Decider,
		Seed:      base.Seed,
		Relevance: base.Relevance,
		Logger:    base.Logger,
	}
	c := &out.Config
	if req.Config.GridUnit != 0 {
		c.GridUnit = req.Config.GridUnit
	}
	if req.Config.ContainerWidth != 0 {
		c.ContainerWidth = req.Config.ContainerWidth
	}
	if req.Config.MaxContentLength != 0 {
		c.MaxContentLength = req.Config.MaxContentLength
	}
	if req.Config.MaxNoteLength != 0 {
		c.MaxNoteLength = req.Config.MaxNoteLength
	}
	if req.Config.Rows != 0 {
		c.Rows = req.Config.Rows
	}
	if req.Config.Cols != 0 {
		c.Cols = req.Config.Cols
	}
	if req.Decider != "" {
		out.Decider = req.Decider
	}
	if req.Seed != 0 {
		out.Seed = req.Seed
	}
	if req.Relevance != nil {
		out.Relevance = req.Relevance
	}
	out.Refresh = req.Refresh
	return out
}

func layoutResponse(res *pipeline.Result, persisted bool) LayoutResponse {
	pixels := make(map[string]grid.Pixel, len(res.Layout.Fragments))
	for i := range res.Layout.Fragments {
		p := &res.Layout.Fragments[i]
		pixels[p.ID()] = p.Pixel(res.Layout.GridUnit)
	}
	return LayoutResponse{
		Layout:    res.Layout,
		Pixels:    pixels,
		InputHash: res.InputHash,
		Stats: StatsBody{
			Fragments:  res.Stats.Fragments,
			Placed:     res.Stats.Placed,
			Patched:    res.Stats.Patched,
			Unplaced:   res.Stats.Unplaced,
			DurationMS: float64(res.Stats.Duration.Microseconds()) / 1000,
		},
		CacheHit:  res.CacheHit,
		Persisted: persisted,
	}
}
