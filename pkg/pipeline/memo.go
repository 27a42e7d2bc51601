package pipeline

import (
	"sync"

	"github.com/matzehuels/fragmentgrid/pkg/cache"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
)

// Memo remembers the most recent layout. Computing again with unchanged
// inputs and options returns the remembered result; anything else replaces
// it.
type Memo struct {
	mu   sync.Mutex
	key  string
	last *layout.Result
}

// Compute returns the layout of doc under opts, reusing the previous result
// when nothing changed. The bool reports reuse.
func (m *Memo) Compute(doc *fragment.Document, opts Options) (*layout.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := HashInput(doc)
	if err != nil {
		return nil, false, err
	}
	key := cache.NewDefaultKeyer().LayoutKey(hash, opts.LayoutKeyOpts())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last != nil && m.key == key {
		return m.last, true, nil
	}
	m.last = layout.Compute(doc.Fragments, doc.Positions, doc.Directions, opts.LayoutOptions())
	m.key = key
	return m.last, false, nil
}

// Reset forgets the remembered layout.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.key, m.last = "", nil
	m.mu.Unlock()
}
