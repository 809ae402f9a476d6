// internal/cache/store.go
//
// Optional durable storage for cache snapshots.
//
// Context
// -------
// Long-lived deployments persist the result cache across restarts so a
// process bounce does not re-validate every template from cold.  Snapshots
// are the ToJSON wire form, stored whole under a deployment-chosen name:
//
//	cache_snapshot (name VARCHAR PK, body MEDIUMBLOB, updated_at DATETIME)
//
// The store is deliberately thin; callers decide when to Save and Load and
// feed the bytes through ToJSON/FromJSON themselves.
package cache

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNoSnapshot is returned by Load when no snapshot exists under the name.
var ErrNoSnapshot = errors.New("cache: snapshot not found")

// SnapshotStore reads and writes cache snapshots through a sqlx pool.
type SnapshotStore struct {
	db *sqlx.DB
}

// NewSnapshotStore wraps an open pool.  The caller owns the pool lifecycle.
func NewSnapshotStore(db *sqlx.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save upserts the snapshot body under name.
func (s *SnapshotStore) Save(ctx context.Context, name string, body []byte) error {
	const q = `INSERT INTO cache_snapshot (name, body, updated_at)
	           VALUES (?, ?, NOW())
	           ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, q, name, body)
	return err
}

// Load returns the snapshot body stored under name.
func (s *SnapshotStore) Load(ctx context.Context, name string) ([]byte, error) {
	const q = `SELECT body FROM cache_snapshot WHERE name = ?`
	var body []byte
	if err := s.db.GetContext(ctx, &body, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return body, nil
}

// Delete removes the snapshot under name.  Deleting a missing snapshot is
// not an error.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	const q = `DELETE FROM cache_snapshot WHERE name = ?`
	_, err := s.db.ExecContext(ctx, q, name)
	return err
}
