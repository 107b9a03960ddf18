package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Runner drives batch ingestion over a bounded worker pool. Identifiers
// are isolated: one failure never stops the rest of the batch.
type Runner struct {
	orchestrator *Orchestrator
	workers      int
	locks        keyedLocks
	log          *slog.Logger
}

// NewRunner builds a batch runner with the given pool size.
func NewRunner(orchestrator *Orchestrator, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		orchestrator: orchestrator,
		workers:      workers,
		log:          slog.Default().With("component", "ingest-runner"),
	}
}

// Run ingests every identifier and returns one result per unique input, in
// input order. An empty input yields an empty result set. Cancellation
// stops the batch before the next identifier is started; identifiers never
// submitted are reported as failed with the context error.
func (r *Runner) Run(ctx context.Context, fileIdentifiers []string) []Result {
	unique := dedupe(fileIdentifiers)
	results := make([]Result, len(unique))
	if len(unique) == 0 {
		return results
	}

	r.orchestrator.Bootstrap(ctx)

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		r.log.Error("worker pool unavailable, running sequentially", "error", err)
		for i, id := range unique {
			if ctx.Err() != nil {
				results[i] = Result{FileIdentifier: id, Status: StatusFailed, Err: ctx.Err()}
				continue
			}
			results[i] = r.ingestLocked(ctx, id)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, id := range unique {
		if ctx.Err() != nil {
			results[i] = Result{FileIdentifier: id, Status: StatusFailed, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		slot, fileIdentifier := i, id
		if err := pool.Submit(func() {
			defer wg.Done()
			results[slot] = r.ingestLocked(ctx, fileIdentifier)
		}); err != nil {
			wg.Done()
			results[slot] = Result{FileIdentifier: fileIdentifier, Status: StatusFailed, Err: err}
		}
	}
	wg.Wait()
	return results
}

// ingestLocked serializes work per identifier so the duplicate-check-then
// insert sequence stays atomic even across overlapping batches.
func (r *Runner) ingestLocked(ctx context.Context, fileIdentifier string) Result {
	lock := r.locks.forKey(fileIdentifier)
	lock.Lock()
	defer lock.Unlock()
	return r.orchestrator.IngestOne(ctx, fileIdentifier)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// keyedLocks hands out one mutex per key. The zero value is ready to use.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) forKey(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}
