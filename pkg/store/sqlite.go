package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSQLiteFile is the database name used when NewSQLiteStore gets an
// empty path.
const DefaultSQLiteFile = "fragments.db"

// SQLiteStore keeps fragments in a SQLite database through the pure-Go
// modernc.org/sqlite driver.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. If path is empty, defaults to ~/.config/fragmentgrid/fragments.db.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "get home dir")
		}
		path = filepath.Join(home, ".config", "fragmentgrid", DefaultSQLiteFile)
	}
	if path != ":memory:" {
		clean, err := cleanPath(path)
		if err != nil {
			return nil, err
		}
		path = clean
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "create store dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open %s", path)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "apply schema")
	}
	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Fragments(ctx context.Context) ([]fragment.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM fragments ORDER BY seq`)
	if err != nil {
		return nil, storeErr(err, "query fragments")
	}
	defer rows.Close()

	var out []fragment.Fragment
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, storeErr(err, "scan fragment")
		}
		var f fragment.Fragment
		if err := json.Unmarshal([]byte(body), &f); err != nil {
			return nil, storeErr(err, "decode fragment")
		}
		out = append(out, f)
	}
	return out, storeErr(rows.Err(), "query fragments")
}

func (s *SQLiteStore) Positions(ctx context.Context) (map[string]grid.Position, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fragment_id, grid_row, grid_col FROM positions`)
	if err != nil {
		return nil, storeErr(err, "query positions")
	}
	defer rows.Close()

	out := make(map[string]grid.Position)
	for rows.Next() {
		var id string
		var p grid.Position
		if err := rows.Scan(&id, &p.Row, &p.Col); err != nil {
			return nil, storeErr(err, "scan position")
		}
		out[id] = p
	}
	return out, storeErr(rows.Err(), "query positions")
}

func (s *SQLiteStore) Directions(ctx context.Context) (map[string]fragment.Direction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fragment_id, direction FROM directions`)
	if err != nil {
		return nil, storeErr(err, "query directions")
	}
	defer rows.Close()

	out := make(map[string]fragment.Direction)
	for rows.Next() {
		var id, d string
		if err := rows.Scan(&id, &d); err != nil {
			return nil, storeErr(err, "scan direction")
		}
		out[id] = fragment.Direction(d)
	}
	return out, storeErr(rows.Err(), "query directions")
}

func (s *SQLiteStore) SaveFragments(ctx context.Context, frags []fragment.Fragment) error {
	if err := fragment.Validate(frags); err != nil {
		return err
	}
	now := s.now().UTC()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, f := range frags {
			var seq int64
			var created string
			err := tx.QueryRowContext(ctx,
				`SELECT seq, created_at FROM fragments WHERE fragment_id = ?`, f.ID).Scan(&seq, &created)
			switch {
			case err == sql.ErrNoRows:
				if err := tx.QueryRowContext(ctx,
					`SELECT COALESCE(MAX(seq), 0) + 1 FROM fragments`).Scan(&seq); err != nil {
					return storeErr(err, "next sequence")
				}
				if f.CreatedAt.IsZero() {
					f.CreatedAt = now
				}
			case err != nil:
				return storeErr(err, "lookup fragment %s", f.ID)
			case f.CreatedAt.IsZero():
				if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
					f.CreatedAt = t
				}
			}
			f.UpdatedAt = now

			body, err := json.Marshal(f)
			if err != nil {
				return storeErr(err, "encode fragment %s", f.ID)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO fragments (fragment_id, seq, body, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(fragment_id) DO UPDATE SET
					body = excluded.body,
					created_at = excluded.created_at,
					updated_at = excluded.updated_at`,
				f.ID, seq, string(body),
				f.CreatedAt.UTC().Format(time.RFC3339Nano),
				f.UpdatedAt.Format(time.RFC3339Nano),
			); err != nil {
				return storeErr(err, "save fragment %s", f.ID)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) DeleteFragment(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM fragments WHERE fragment_id = ?`, id)
		if err != nil {
			return storeErr(err, "delete fragment %s", id)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(id)
		}
		for _, table := range []string{"positions", "directions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE fragment_id = ?`, id); err != nil {
				return storeErr(err, "delete %s of %s", table, id)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ApplyPatch(ctx context.Context, patch map[string]grid.Position) error {
	if err := validatePatch(patch); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for id, p := range patch {
			ok, err := exists(ctx, tx, id)
			if err != nil {
				return err
			}
			if !ok {
				return notFound(id)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO positions (fragment_id, grid_row, grid_col) VALUES (?, ?, ?)
				ON CONFLICT(fragment_id) DO UPDATE SET grid_row = excluded.grid_row, grid_col = excluded.grid_col`,
				id, p.Row, p.Col); err != nil {
				return storeErr(err, "save position of %s", id)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SaveDirections(ctx context.Context, dirs map[string]fragment.Direction) error {
	if err := validateDirections(dirs); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for id, d := range dirs {
			ok, err := exists(ctx, tx, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO directions (fragment_id, direction) VALUES (?, ?)
				ON CONFLICT(fragment_id) DO UPDATE SET direction = excluded.direction`,
				id, string(d)); err != nil {
				return storeErr(err, "save direction of %s", id)
			}
		}
		return nil
	})
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return storeErr(tx.Commit(), "commit")
}

func exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments WHERE fragment_id = ?`, id).Scan(&n)
	if err != nil {
		return false, storeErr(err, "lookup fragment %s", id)
	}
	return n > 0, nil
}

var _ Store = (*SQLiteStore)(nil)
