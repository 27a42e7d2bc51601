package fragment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// Document is the on-disk format of a fragment file.
type Document struct {
	Fragments  []Fragment               `json:"fragments"`
	Positions  map[string]grid.Position `json:"positions,omitempty"`
	Directions map[string]Direction     `json:"directions,omitempty"`
}

// =============================================================================
// Fragment File API
// =============================================================================

// ReadFile reads and validates a fragment document from a JSON file.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes and validates a fragment document from r.
func Read(r io.Reader) (*Document, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode decodes a fragment document without validating it. Importers use
// it to assign missing ids before validation.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode fragments")
	}
	return &doc, nil
}

// Validate checks the fragments and the cached direction hints.
func (doc *Document) Validate() error {
	if err := Validate(doc.Fragments); err != nil {
		return err
	}
	for id, d := range doc.Directions {
		if !d.Valid() {
			return errors.New(errors.ErrCodeInvalidDirection, "fragment %s: unknown direction %q", id, d)
		}
	}
	return nil
}

// WriteFile writes a fragment document to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(doc, f)
}

// Write encodes a fragment document as indented JSON.
func Write(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Validate checks that every fragment has a valid, unique ID and that
// explicit directions are known values.
func Validate(frags []Fragment) error {
	seen := make(map[string]bool, len(frags))
	for i := range frags {
		f := &frags[i]
		if err := errors.ValidateFragmentID(f.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFragment, err, "fragment %d", i)
		}
		if seen[f.ID] {
			return errors.New(errors.ErrCodeInvalidFragment, "duplicate fragment id: %s", f.ID)
		}
		seen[f.ID] = true
		if f.Direction != "" && !f.Direction.Valid() {
			return errors.New(errors.ErrCodeInvalidDirection, "fragment %s: unknown direction %q", f.ID, f.Direction)
		}
	}
	return nil
}
