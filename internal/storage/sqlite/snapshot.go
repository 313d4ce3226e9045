// Package sqlite implements durable local snapshots backed by an embedded
// SQLite database. One store file corresponds to one client session; no
// cross-process locking is attempted.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/xenking/streamline-storefront/db"
	"github.com/xenking/streamline-storefront/internal/domain/cart"
)

var _ cart.Snapshots = (*SnapshotStore)(nil)

// SnapshotStore persists named snapshots in a single SQLite table.
type SnapshotStore struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the snapshot database at path and
// applies the embedded schema.
func Open(ctx context.Context, path string) (*SnapshotStore, error) {
	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot database")
	}
	if _, err := conn.ExecContext(ctx, db.Schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "apply snapshot schema")
	}
	return &SnapshotStore{db: conn}, nil
}

// Save upserts the snapshot stored under name.
func (s *SnapshotStore) Save(ctx context.Context, name string, version int, data []byte) error {
	const q = `
		INSERT INTO snapshots (name, version, data, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, q, name, version, data); err != nil {
		return errors.Wrapf(err, "save snapshot %q", name)
	}
	return nil
}

// Load reads the snapshot stored under name. It returns
// cart.ErrSnapshotNotFound when no snapshot exists.
func (s *SnapshotStore) Load(ctx context.Context, name string) (int, []byte, error) {
	var row struct {
		Version int    `db:"version"`
		Data    []byte `db:"data"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT version, data FROM snapshots WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, cart.ErrSnapshotNotFound
		}
		return 0, nil, errors.Wrapf(err, "load snapshot %q", name)
	}
	return row.Version, row.Data, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
