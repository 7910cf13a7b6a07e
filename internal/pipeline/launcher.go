package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned by Launcher.Start while another run is active.
var ErrRunInProgress = errors.New("pipeline: a run is already in progress")

// Launcher starts asynchronous runs, at most one at a time.
type Launcher struct {
	pipeline *Pipeline
	ctx      context.Context
	logger   *slog.Logger
	running  atomic.Bool
	wg       sync.WaitGroup

	mu   sync.Mutex
	last *RunStatus
}

// RunStatus describes the most recent run started by a Launcher.
type RunStatus struct {
	RunID  string `json:"run_id"`
	Done   bool   `json:"done"`
	Object string `json:"object,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewLauncher creates a Launcher whose runs are bound to ctx; cancelling it
// aborts an active run.
func NewLauncher(ctx context.Context, p *Pipeline, logger *slog.Logger) *Launcher {
	return &Launcher{pipeline: p, ctx: ctx, logger: logger}
}

// Start begins a run against url (empty means the configured source) and
// returns its id without waiting for completion.
func (l *Launcher) Start(url string) (string, error) {
	if !l.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}

	runID := uuid.NewString()
	l.setStatus(&RunStatus{RunID: runID})

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.running.Store(false)

		res, err := l.pipeline.Run(l.ctx, runID, url)
		status := &RunStatus{RunID: runID, Done: true, Object: res.Object}
		if err != nil {
			status.Error = err.Error()
			l.logger.Error("run failed", "run_id", runID, "error", err)
		}
		l.setStatus(status)
	}()
	return runID, nil
}

// Running reports whether a run is active.
func (l *Launcher) Running() bool {
	return l.running.Load()
}

// Last returns the status of the most recent run, or nil if none was started.
func (l *Launcher) Last() *RunStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return nil
	}
	s := *l.last
	return &s
}

// Wait blocks until the active run, if any, has finished.
func (l *Launcher) Wait() {
	l.wg.Wait()
}

func (l *Launcher) setStatus(s *RunStatus) {
	l.mu.Lock()
	l.last = s
	l.mu.Unlock()
}
