// Package store persists fragments, their grid positions, and cached
// direction hints.
//
// The layout engine never touches a store. Callers load a
// [fragment.Document] with [LoadDocument], run a layout, and write the
// resulting patch back with [Persist].
//
// # Backends
//
//   - "memory": [MemoryStore], process-local
//   - "file": [FileStore], a single fragment JSON document on disk
//   - "sqlite": [SQLiteStore], a local SQLite database (modernc.org/sqlite)
//   - "mongo": [MongoStore], a MongoDB database
//
// Use [Open] to pick one from a [Config].
package store

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
)

// Store is the interface every backend implements. Fragments are returned
// in insertion order.
type Store interface {
	// Fragments returns every fragment.
	Fragments(ctx context.Context) ([]fragment.Fragment, error)

	// Positions returns the stored position of every fragment that has one.
	Positions(ctx context.Context) (map[string]grid.Position, error)

	// Directions returns the cached direction hints.
	Directions(ctx context.Context) (map[string]fragment.Direction, error)

	// SaveFragments inserts or replaces fragments by id. Positions and
	// hints of replaced fragments are kept.
	SaveFragments(ctx context.Context, frags []fragment.Fragment) error

	// DeleteFragment removes a fragment with its position and hint.
	DeleteFragment(ctx context.Context, id string) error

	// ApplyPatch writes positions. Every id must name a stored fragment;
	// otherwise nothing is written and the error has code NOT_FOUND.
	ApplyPatch(ctx context.Context, patch map[string]grid.Position) error

	// SaveDirections writes direction hints for stored fragments. Hints for
	// unknown ids are ignored.
	SaveDirections(ctx context.Context, dirs map[string]fragment.Direction) error

	// Close releases the backend.
	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// DefaultMongoDatabase is used when Config.Database is empty.
const DefaultMongoDatabase = "fragmentgrid"

// Config selects and configures a backend.
type Config struct {
	// Backend is one of the Backend* names. Empty means memory.
	Backend string `toml:"backend" json:"backend"`

	// DSN is the file path for "file" and "sqlite", or the connection URI
	// for "mongo".
	DSN string `toml:"dsn" json:"dsn"`

	// Database is the MongoDB database name.
	Database string `toml:"database" json:"database"`
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(cfg.DSN)
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.DSN)
	case BackendMongo:
		db := cfg.Database
		if db == "" {
			db = DefaultMongoDatabase
		}
		return NewMongoStore(ctx, cfg.DSN, db)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"unknown store backend: %q (must be one of: memory, file, sqlite, mongo)", cfg.Backend)
	}
}

// LoadDocument reads the full layout input from s.
func LoadDocument(ctx context.Context, s Store) (*fragment.Document, error) {
	frags, err := s.Fragments(ctx)
	if err != nil {
		return nil, err
	}
	pos, err := s.Positions(ctx)
	if err != nil {
		return nil, err
	}
	dirs, err := s.Directions(ctx)
	if err != nil {
		return nil, err
	}
	return &fragment.Document{Fragments: frags, Positions: pos, Directions: dirs}, nil
}

// Persist writes a layout's patch and resolved directions back to s.
func Persist(ctx context.Context, s Store, res *layout.Result) error {
	if len(res.Patch) > 0 {
		if err := s.ApplyPatch(ctx, res.Patch); err != nil {
			return err
		}
	}
	if len(res.Directions) > 0 {
		if err := s.SaveDirections(ctx, res.Directions); err != nil {
			return err
		}
	}
	return nil
}

func storeErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeStore, err, format, args...)
}

// cleanPath validates and normalizes a store location.
func cleanPath(path string) (string, error) {
	if err := errors.ValidatePath(path); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}

func validatePatch(patch map[string]grid.Position) error {
	for id, p := range patch {
		if p.Row < 0 || p.Col < 0 {
			return errors.New(errors.ErrCodeInvalidPosition, "fragment %s: negative position %v", id, p)
		}
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "fragment not found: %s", id)
}

func validateDirections(dirs map[string]fragment.Direction) error {
	for id, d := range dirs {
		if !d.Valid() {
			return errors.New(errors.ErrCodeInvalidDirection, "fragment %s: unknown direction %q", id, d)
		}
	}
	return nil
}
