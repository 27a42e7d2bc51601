package layout

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

func TestResultFileRoundTrip(t *testing.T) {
	stored := map[string]grid.Position{"a": grid.Origin}
	res := Compute(fragments("a", "b"), stored, nil, Options{})

	path := filepath.Join(t.TempDir(), "out.layout.json")
	if err := WriteResultFile(res, path); err != nil {
		t.Fatalf("WriteResultFile() error = %v", err)
	}

	got, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile() error = %v", err)
	}
	if !reflect.DeepEqual(got.Positions(), res.Positions()) {
		t.Errorf("positions = %v, want %v", got.Positions(), res.Positions())
	}
	if !reflect.DeepEqual(got.Patch, res.Patch) {
		t.Errorf("patch = %v, want %v", got.Patch, res.Patch)
	}
	if !reflect.DeepEqual(got.Repaired, []string{"a"}) {
		t.Errorf("repaired = %v", got.Repaired)
	}
}

func TestReadResultFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadResultFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadResultFile(bad)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad file: err = %v, want INVALID_INPUT", err)
	}
}

func TestMarshalResultShape(t *testing.T) {
	res := Compute(fragments("a"), nil, nil, Options{})
	data, err := MarshalResult(res)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"fragments"`, `"patch"`, `"position"`, `"container_cols": 60`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded result missing %s", key)
		}
	}

	back, err := UnmarshalResult(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != res.Rows() {
		t.Errorf("Rows() = %d, want %d", back.Rows(), res.Rows())
	}
}

func TestResultRows(t *testing.T) {
	res := Compute(fragments("a"), nil, nil, Options{})
	// (1,1) + height 5.
	if got := res.Rows(); got != 6 {
		t.Errorf("Rows() = %d, want 6", got)
	}
	if got := (&Result{}).Rows(); got != 0 {
		t.Errorf("empty Rows() = %d, want 0", got)
	}
}
