package replicator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a key already has an unfinished run.
var ErrRunInProgress = errors.New("replicator: a run is already in progress for this key")

// finishedRetention bounds how long a completed run stays queryable.
// Front-ends that key every request freshly would otherwise grow the
// registry for the life of the process.
const finishedRetention = time.Hour

// Registry tracks in-flight and recent runs by caller-chosen key (a
// user id, a generated request id). The driving layer owns it and
// passes it around by reference; the engine itself keeps no
// process-wide state.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*Run
	log  *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		runs: make(map[string]*Run),
		log:  log,
	}
}

// Start launches a run under key, refusing while a previous run for the
// same key is still going. The finished run, if any, is replaced, and
// runs finished longer than finishedRetention ago are dropped.
func (g *Registry) Start(ctx context.Context, key string, api GuildAPI, sourceID, targetID string, opts Options) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for k, run := range g.runs {
		if done, at := run.finishedAt(); done && time.Since(at) > finishedRetention {
			delete(g.runs, k)
		}
	}

	if existing, ok := g.runs[key]; ok && !existing.Status().Done {
		return nil, ErrRunInProgress
	}

	run := Start(ctx, api, sourceID, targetID, g.log, opts)
	g.runs[key] = run
	return run, nil
}

// Get returns the current or most recent run for key.
func (g *Registry) Get(key string) (*Run, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	run, ok := g.runs[key]
	return run, ok
}

// CancelAll stops every unfinished run; used during shutdown.
func (g *Registry) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, run := range g.runs {
		if !run.Status().Done {
			run.Cancel()
		}
	}
}
