package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// DefaultFileName is the document name used when NewFileStore gets a
// directory or an empty path.
const DefaultFileName = "fragments.json"

// FileStore keeps a store in a single fragment JSON document, the same
// format the CLI reads and writes. Every call re-reads the file, so edits
// made by other tools are picked up.
type FileStore struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time
}

// NewFileStore creates a file-backed store at path.
// If path is empty, defaults to ~/.config/fragmentgrid/fragments.json.
// A missing file is treated as an empty store and created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "fragmentgrid", DefaultFileName)
	}
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store dir")
	}
	return &FileStore{path: path, now: time.Now}, nil
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() (state, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newState(), nil
		}
		return state{}, errors.Wrap(errors.ErrCodeStore, err, "read %s", s.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return newState(), nil
	}
	doc, err := fragment.Read(bytes.NewReader(data))
	if err != nil {
		return state{}, err
	}
	return stateFromDocument(doc), nil
}

func (s *FileStore) store(st state) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".fragments-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if err := fragment.Write(st.document(), tmp); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", s.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", s.path)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "replace %s", s.path)
	}
	return nil
}

func (s *FileStore) read() (state, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&st); err != nil {
		return err
	}
	return s.store(st)
}

func (s *FileStore) Fragments(context.Context) ([]fragment.Fragment, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	return st.fragments(), nil
}

func (s *FileStore) Positions(context.Context) (map[string]grid.Position, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	return st.positions, nil
}

func (s *FileStore) Directions(context.Context) (map[string]fragment.Direction, error) {
	st, err := s.read()
	if err != nil {
		return nil, err
	}
	return st.directions, nil
}

func (s *FileStore) SaveFragments(_ context.Context, frags []fragment.Fragment) error {
	now := s.now()
	return s.update(func(st *state) error { return st.save(frags, now) })
}

func (s *FileStore) DeleteFragment(_ context.Context, id string) error {
	return s.update(func(st *state) error { return st.remove(id) })
}

func (s *FileStore) ApplyPatch(_ context.Context, patch map[string]grid.Position) error {
	return s.update(func(st *state) error { return st.patch(patch) })
}

func (s *FileStore) SaveDirections(_ context.Context, dirs map[string]fragment.Direction) error {
	return s.update(func(st *state) error { return st.setDirections(dirs) })
}

// Close is a no-op; every write is flushed immediately.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
