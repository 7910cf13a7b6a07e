package handoff

import (
	"context"
	"database/sql"
	"errors"
	_ "embed"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteStore persists entries in a SQLite file so that stage commands
// running as separate processes can share a run.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// OpenSQLite opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "handoff: open %s", path)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "handoff: apply schema")
	}
	return &SQLiteStore{db: db, clock: clockwork.NewRealClock()}, nil
}

func (s *SQLiteStore) Push(ctx context.Context, runID, taskID, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO handoff (run_id, task_id, key, value, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (run_id, task_id, key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		runID, taskID, key, value, s.clock.Now().UnixMilli(),
	)
	if err != nil {
		return eris.Wrapf(err, "handoff: push %s/%s/%s", runID, taskID, key)
	}
	return nil
}

func (s *SQLiteStore) Pull(ctx context.Context, runID, taskID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM handoff WHERE run_id = ? AND task_id = ? AND key = ?`,
		runID, taskID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "handoff: pull %s/%s/%s", runID, taskID, key)
	}
	return value, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
