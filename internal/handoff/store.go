// Package handoff moves a stage's output batch to the next stage of the same
// run. Entries are addressed by run id, producing task id and key, and are
// written once per (run, task, key); a later write replaces the earlier one.
package handoff

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Pull when no entry exists for the address.
var ErrNotFound = errors.New("handoff: entry not found")

// Store is a run-scoped key/value transfer medium.
type Store interface {
	Push(ctx context.Context, runID, taskID, key string, value []byte) error
	Pull(ctx context.Context, runID, taskID, key string) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

type address struct {
	runID, taskID, key string
}

// Open returns the store for driver: "sqlite" opens the file at path,
// "memory" ignores path.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case "sqlite":
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("handoff: unknown driver %q", driver)
	}
}
