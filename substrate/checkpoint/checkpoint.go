// Package checkpoint persists the last block number a consumer has fully
// processed, so a restarted subscriber can resume a finalized-event stream
// without re-deriving it from chain state. It is not a storage-value cache
// — it stores exactly one cursor per stream identifier, nothing else.
package checkpoint

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// NewStreamID mints a fresh stream identifier for callers that don't have a
// natural one of their own (e.g. an ad hoc inspection session that should
// not collide with a named, long-lived consumer's cursor).
func NewStreamID() string {
	return uuid.New().String()
}

// Store is a single-row-per-stream cursor store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: wal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const stmt = `CREATE TABLE IF NOT EXISTS cursors (
		stream_id   TEXT PRIMARY KEY,
		block_num   INTEGER NOT NULL
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("checkpoint: migrate: %w", err)
	}
	return nil
}

// Load returns the last saved block number for streamID, and false if no
// checkpoint has ever been saved for it.
func (s *Store) Load(ctx context.Context, streamID string) (blockNum uint64, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT block_num FROM cursors WHERE stream_id = ?`, streamID)
	if err := row.Scan(&blockNum); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("checkpoint: load %q: %w", streamID, err)
	}
	return blockNum, true, nil
}

// Save records blockNum as the last processed block for streamID,
// overwriting any previous value.
func (s *Store) Save(ctx context.Context, streamID string, blockNum uint64) error {
	const stmt = `INSERT INTO cursors (stream_id, block_num) VALUES (?, ?)
		ON CONFLICT(stream_id) DO UPDATE SET block_num = excluded.block_num`
	if _, err := s.db.ExecContext(ctx, stmt, streamID, blockNum); err != nil {
		return fmt.Errorf("checkpoint: save %q: %w", streamID, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
