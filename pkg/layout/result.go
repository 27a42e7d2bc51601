package layout

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// Reason explains why a fragment was left out of a layout.
type Reason string

const (
	// ReasonProblematic means the stored position was at the origin or
	// negative and no replacement cell could be found.
	ReasonProblematic Reason = "problematic position unresolved"

	// ReasonConflict means the stored position overlapped an earlier card
	// and no alternative could be found.
	ReasonConflict Reason = "conflict unresolved"

	// ReasonNoSpace means a fragment without a stored position found no
	// free cell.
	ReasonNoSpace Reason = "no space found"
)

// Placed is a fragment together with everything needed to render it.
type Placed struct {
	Fragment    fragment.Fragment  `json:"fragment"`
	Position    grid.Position      `json:"position"`
	Size        grid.Size          `json:"size"`
	Direction   fragment.Direction `json:"direction"`
	FontSize    float64            `json:"font_size"`
	ShowContent bool               `json:"show_content"`
	ShowNote    bool               `json:"show_note"`
	ShowTags    bool               `json:"show_tags"`
}

// ID returns the placed fragment's id.
func (p *Placed) ID() string { return p.Fragment.ID }

// Pixel returns the card's top-left corner in pixels.
func (p *Placed) Pixel(unit float64) grid.Pixel { return grid.ToPixel(p.Position, unit) }

// Unplaced records a fragment that could not be placed.
type Unplaced struct {
	ID     string `json:"id"`
	Reason Reason `json:"reason"`
}

// Patch maps fragment ids to positions the caller should persist.
type Patch map[string]grid.Position

// Result is the outcome of one layout computation.
type Result struct {
	// Fragments holds the placed fragments in input order.
	Fragments []Placed `json:"fragments"`

	// Patch holds every position that was newly assigned, repaired,
	// clipped, or relocated. Positions accepted unchanged are absent.
	Patch Patch `json:"patch"`

	// Directions holds the resolved direction of every input fragment.
	Directions map[string]fragment.Direction `json:"directions"`

	// Added, Repaired, Clipped, and Relocated list fragment ids by how
	// their position came about.
	Added     []string `json:"added,omitempty"`
	Repaired  []string `json:"repaired,omitempty"`
	Clipped   []string `json:"clipped,omitempty"`
	Relocated []string `json:"relocated,omitempty"`

	// Unplaced lists fragments that are absent from Fragments.
	Unplaced []Unplaced `json:"unplaced,omitempty"`

	ContainerCols int     `json:"container_cols"`
	GridUnit      float64 `json:"grid_unit"`
}

// Lookup returns the placed fragment with the given id.
func (r *Result) Lookup(id string) (*Placed, bool) {
	for i := range r.Fragments {
		if r.Fragments[i].Fragment.ID == id {
			return &r.Fragments[i], true
		}
	}
	return nil, false
}

// Positions returns the position of every placed fragment.
func (r *Result) Positions() map[string]grid.Position {
	out := make(map[string]grid.Position, len(r.Fragments))
	for _, p := range r.Fragments {
		out[p.Fragment.ID] = p.Position
	}
	return out
}

// Rows returns the number of grid rows the layout spans, halo excluded.
func (r *Result) Rows() int {
	rows := 0
	for _, p := range r.Fragments {
		rows = max(rows, p.Position.Row+p.Size.Height)
	}
	return rows
}

// MarshalResult encodes r as indented JSON.
func MarshalResult(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteResult(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalResult decodes a Result produced by MarshalResult.
func UnmarshalResult(data []byte) (*Result, error) {
	return ReadResult(bytes.NewReader(data))
}

// WriteResult encodes r as indented JSON to w.
func WriteResult(r *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return nil
}

// ReadResult decodes a Result from r.
func ReadResult(r io.Reader) (*Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	if res.Patch == nil {
		res.Patch = Patch{}
	}
	return &res, nil
}

// WriteResultFile writes r to path as indented JSON.
func WriteResultFile(r *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteResult(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadResultFile reads a layout written by WriteResultFile.
func ReadResultFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "layout file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadResult(f)
}
