package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

// MemoryStore keeps everything in process memory. It is safe for concurrent
// use and is the default backend for tests and one-off CLI runs.
type MemoryStore struct {
	mu    sync.RWMutex
	state state
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newState(), now: time.Now}
}

func (s *MemoryStore) Fragments(context.Context) ([]fragment.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.fragments(), nil
}

func (s *MemoryStore) Positions(context.Context) (map[string]grid.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state.positions), nil
}

func (s *MemoryStore) Directions(context.Context) (map[string]fragment.Direction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state.directions), nil
}

func (s *MemoryStore) SaveFragments(_ context.Context, frags []fragment.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.save(frags, s.now())
}

func (s *MemoryStore) DeleteFragment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.remove(id)
}

func (s *MemoryStore) ApplyPatch(_ context.Context, patch map[string]grid.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.patch(patch)
}

func (s *MemoryStore) SaveDirections(_ context.Context, dirs map[string]fragment.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.setDirections(dirs)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

// =============================================================================
// Shared State
// =============================================================================

// state is the document model shared by the memory and file backends.
// Callers hold the lock.
type state struct {
	order      []string
	byID       map[string]fragment.Fragment
	positions  map[string]grid.Position
	directions map[string]fragment.Direction
}

func newState() state {
	return state{
		byID:       make(map[string]fragment.Fragment),
		positions:  make(map[string]grid.Position),
		directions: make(map[string]fragment.Direction),
	}
}

func stateFromDocument(doc *fragment.Document) state {
	st := newState()
	for _, f := range doc.Fragments {
		if _, ok := st.byID[f.ID]; !ok {
			st.order = append(st.order, f.ID)
		}
		st.byID[f.ID] = f.Clone()
	}
	for id, p := range doc.Positions {
		if _, ok := st.byID[id]; ok {
			st.positions[id] = p
		}
	}
	for id, d := range doc.Directions {
		if _, ok := st.byID[id]; ok {
			st.directions[id] = d
		}
	}
	return st
}

func (st *state) document() *fragment.Document {
	return &fragment.Document{
		Fragments:  st.fragments(),
		Positions:  maps.Clone(st.positions),
		Directions: maps.Clone(st.directions),
	}
}

func (st *state) fragments() []fragment.Fragment {
	out := make([]fragment.Fragment, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.byID[id].Clone())
	}
	return out
}

func (st *state) save(frags []fragment.Fragment, now time.Time) error {
	if err := fragment.Validate(frags); err != nil {
		return err
	}
	for _, f := range frags {
		f = f.Clone()
		prev, exists := st.byID[f.ID]
		switch {
		case f.CreatedAt.IsZero() && exists:
			f.CreatedAt = prev.CreatedAt
		case f.CreatedAt.IsZero():
			f.CreatedAt = now
		}
		f.UpdatedAt = now
		if !exists {
			st.order = append(st.order, f.ID)
		}
		st.byID[f.ID] = f
	}
	return nil
}

func (st *state) remove(id string) error {
	if _, ok := st.byID[id]; !ok {
		return notFound(id)
	}
	delete(st.byID, id)
	delete(st.positions, id)
	delete(st.directions, id)
	for i, o := range st.order {
		if o == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return nil
}

func (st *state) patch(patch map[string]grid.Position) error {
	if err := validatePatch(patch); err != nil {
		return err
	}
	for id := range patch {
		if _, ok := st.byID[id]; !ok {
			return notFound(id)
		}
	}
	maps.Copy(st.positions, patch)
	return nil
}

func (st *state) setDirections(dirs map[string]fragment.Direction) error {
	if err := validateDirections(dirs); err != nil {
		return err
	}
	for id, d := range dirs {
		if _, ok := st.byID[id]; ok {
			st.directions[id] = d
		}
	}
	return nil
}
