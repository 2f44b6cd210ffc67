// Package reconcile implements the per-source indexing cycle: fetch the
// source's current items, convert them, upsert everything under a fresh
// run tag, sweep documents left over from earlier cycles, and commit
// once. The run-tag protocol makes the index converge to exactly the
// source's current contents without ever emptying its partition and
// without diffing against the previous item set.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keystroke-labs/lantern/internal/errors"
	"github.com/keystroke-labs/lantern/internal/index"
	"github.com/keystroke-labs/lantern/internal/item"
)

// State is the observable phase of a source's current cycle.
type State string

const (
	StateIdle       State = "idle"
	StateConverting State = "converting"
	StateUpserting  State = "upserting"
	StateSweeping   State = "sweeping"
	StateCommitted  State = "committed"
)

// CycleStats summarizes one completed cycle.
type CycleStats struct {
	Source    string
	RunTag    string
	Upserted  int
	Skipped   int
	Swept     int
	Duration  time.Duration
	Completed time.Time
}

// Reconciler runs indexing cycles against the shared index store.
// It is safe for concurrent use across different sources; callers must
// not run two cycles of the same source concurrently (the scheduler
// guarantees that).
type Reconciler struct {
	store    *index.Store
	registry *item.Registry

	mu     sync.RWMutex
	states map[string]State
	last   map[string]CycleStats
}

// New creates a reconciler over the given store and converter registry.
func New(store *index.Store, registry *item.Registry) *Reconciler {
	return &Reconciler{
		store:    store,
		registry: registry,
		states:   make(map[string]State),
		last:     make(map[string]CycleStats),
	}
}

// State returns the current cycle phase for a source.
func (r *Reconciler) State(source string) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.states[source]; ok {
		return st
	}
	return StateIdle
}

// LastCycle returns the stats of the source's most recent committed
// cycle, if any.
func (r *Reconciler) LastCycle(source string) (CycleStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.last[source]
	return st, ok
}

func (r *Reconciler) setState(source string, st State) {
	r.mu.Lock()
	r.states[source] = st
	r.mu.Unlock()
}

// Reconcile runs one full cycle for src. Fetch and commit failures
// abort the cycle leaving the previous committed state authoritative;
// per-item conversion failures are skipped and logged. Errors never
// propagate past the cycle: the caller retries on the next tick.
func (r *Reconciler) Reconcile(ctx context.Context, src item.Source) error {
	source := src.Name()
	started := time.Now()

	defer r.setState(source, StateIdle)

	r.setState(source, StateConverting)
	items, err := src.Items(ctx)
	if err != nil {
		slog.Warn("cycle_fetch_failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return errors.SourceError(source, err)
	}

	tag := uuid.NewString()
	slog.Debug("cycle_started",
		slog.String("source", source),
		slog.String("run_tag", tag),
		slog.Int("items", len(items)))

	r.setState(source, StateUpserting)
	batch := r.store.NewBatch()
	upserted, skipped := 0, 0
	for _, it := range items {
		fields, err := r.registry.Convert(it)
		if err != nil {
			skipped++
			slog.Warn("cycle_item_skipped",
				slog.String("source", source),
				slog.String("item", it.Text()),
				slog.String("error", err.Error()))
			continue
		}

		doc := index.Document{
			ID:       index.DocumentID(source, item.Identity(it)),
			SourceID: source,
			RunTag:   tag,
			Fields:   fields,
		}
		if err := batch.Upsert(doc); err != nil {
			skipped++
			slog.Warn("cycle_item_skipped",
				slog.String("source", source),
				slog.String("item", it.Text()),
				slog.String("error", err.Error()))
			continue
		}
		upserted++
	}

	r.setState(source, StateSweeping)
	swept, err := r.store.DeleteStale(ctx, batch, source, tag)
	if err != nil {
		slog.Warn("cycle_sweep_failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return errors.Wrap(errors.ErrCodeIndexCommit, err).WithDetail("source", source)
	}

	if err := r.store.Commit(ctx, batch); err != nil {
		slog.Warn("cycle_commit_failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return errors.CommitError(err).WithDetail("source", source)
	}
	r.setState(source, StateCommitted)

	stats := CycleStats{
		Source:    source,
		RunTag:    tag,
		Upserted:  upserted,
		Skipped:   skipped,
		Swept:     swept,
		Duration:  time.Since(started),
		Completed: time.Now(),
	}
	r.mu.Lock()
	r.last[source] = stats
	r.mu.Unlock()

	slog.Info("cycle_committed",
		slog.String("source", source),
		slog.String("run_tag", tag),
		slog.Int("upserted", upserted),
		slog.Int("skipped", skipped),
		slog.Int("swept", swept),
		slog.Duration("duration", stats.Duration))

	return nil
}
