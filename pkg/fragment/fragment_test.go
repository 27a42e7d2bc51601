package fragment

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

func TestNoteText(t *testing.T) {
	f := Fragment{}
	if got := f.NoteText(); got != "" {
		t.Errorf("NoteText() = %q, want empty", got)
	}

	f.Notes = []Note{{Value: "first"}, {Value: "second"}}
	if got := f.NoteText(); got != "first" {
		t.Errorf("NoteText() = %q, want first", got)
	}
}

func TestVisibility(t *testing.T) {
	f := Fragment{ShowNote: Bool(false), ShowTags: Bool(true)}
	if !f.ContentVisible() {
		t.Error("nil ShowContent should be visible")
	}
	if f.NoteVisible() {
		t.Error("ShowNote=false should be hidden")
	}
	if !f.TagsVisible() {
		t.Error("ShowTags=true should be visible")
	}
}

func TestClone(t *testing.T) {
	f := Fragment{
		ID:       "a",
		Notes:    []Note{{Value: "n"}},
		Tags:     []Tag{{Name: "t"}},
		ShowNote: Bool(true),
	}
	c := f.Clone()
	c.Notes[0].Value = "changed"
	c.Tags[0].Name = "changed"
	*c.ShowNote = false

	if f.Notes[0].Value != "n" || f.Tags[0].Name != "t" || !*f.ShowNote {
		t.Errorf("Clone shares state with original: %+v", f)
	}
}

func TestDirectionValid(t *testing.T) {
	for _, d := range []Direction{Horizontal, Vertical} {
		if !d.Valid() {
			t.Errorf("%q should be valid", d)
		}
	}
	for _, d := range []Direction{"", "diagonal", "Horizontal"} {
		if d.Valid() {
			t.Errorf("%q should be invalid", d)
		}
	}
}

func TestReadValid(t *testing.T) {
	input := `{
		"fragments": [
			{"id": "a", "content": "hello", "tags": [{"name": "x"}]},
			{"id": "b", "content": "縦書き", "direction": "vertical"}
		],
		"positions": {"a": {"row": 2, "col": 3}},
		"directions": {"b": "vertical"}
	}`

	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(doc.Fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(doc.Fragments))
	}
	if doc.Fragments[1].Direction != Vertical {
		t.Errorf("direction = %q", doc.Fragments[1].Direction)
	}
	if doc.Positions["a"] != (grid.Position{Row: 2, Col: 3}) {
		t.Errorf("positions = %v", doc.Positions)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"fragments": [`, errors.ErrCodeInvalidInput},
		{"missing id", `{"fragments": [{"content": "x"}]}`, errors.ErrCodeInvalidFragment},
		{"duplicate id", `{"fragments": [{"id": "a"}, {"id": "a"}]}`, errors.ErrCodeInvalidFragment},
		{"bad direction", `{"fragments": [{"id": "a", "direction": "up"}]}`, errors.ErrCodeInvalidDirection},
		{"bad hint", `{"fragments": [{"id": "a"}], "directions": {"a": "up"}}`, errors.ErrCodeInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	doc := &Document{
		Fragments: []Fragment{{ID: "a", Content: "x"}, {ID: "b"}},
		Positions: map[string]grid.Position{"a": {Row: 1, Col: 1}},
	}
	path := filepath.Join(t.TempDir(), "frags.json")
	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(got.Fragments) != 2 || got.Fragments[0].Content != "x" {
		t.Errorf("fragments = %+v", got.Fragments)
	}
	if got.Positions["a"] != (grid.Position{Row: 1, Col: 1}) {
		t.Errorf("positions = %v", got.Positions)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteOmitsUnsetFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&Document{Fragments: []Fragment{{ID: "a"}}}, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, key := range []string{"created_at", "show_note", "positions", "direction"} {
		if strings.Contains(out, key) {
			t.Errorf("output contains %q:\n%s", key, out)
		}
	}
}

func TestEnsureIDs(t *testing.T) {
	frags := []Fragment{{ID: "keep"}, {}, {Content: "x"}}
	if n := EnsureIDs(frags); n != 2 {
		t.Fatalf("EnsureIDs() = %d, want 2", n)
	}
	if frags[0].ID != "keep" {
		t.Errorf("existing id changed to %q", frags[0].ID)
	}
	if frags[1].ID == "" || frags[1].ID == frags[2].ID {
		t.Errorf("ids not unique: %q %q", frags[1].ID, frags[2].ID)
	}
	if err := Validate(frags); err != nil {
		t.Errorf("generated ids should validate: %v", err)
	}
	if n := EnsureIDs(frags); n != 0 {
		t.Errorf("second EnsureIDs() = %d, want 0", n)
	}
}

func TestDecodeSkipsValidation(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"fragments":[{"content":"no id"}]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := doc.Validate(); !errors.Is(err, errors.ErrCodeInvalidFragment) {
		t.Errorf("Validate() = %v, want INVALID_FRAGMENT", err)
	}
	EnsureIDs(doc.Fragments)
	if err := doc.Validate(); err != nil {
		t.Errorf("Validate() after EnsureIDs = %v", err)
	}
}
