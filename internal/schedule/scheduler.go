// Package schedule owns the periodic per-source reconciliation timers.
// One loop per source, each with an independent interval; cycles for
// different sources never block each other, and a source can never run
// two cycles concurrently because its loop executes them inline.
//
// Misfire policy: ticks that land while a cycle is running coalesce
// into at most one pending tick (time.Ticker semantics), so recovery
// after a long cycle is a single catch-up cycle, never a cascade.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/keystroke-labs/lantern/internal/item"
)

// Runner executes one reconciliation cycle for a source.
type Runner interface {
	Reconcile(ctx context.Context, src item.Source) error
}

// Scheduler triggers reconciliation cycles for registered sources.
// Created at startup, torn down with Stop; not an ambient singleton.
type Scheduler struct {
	runner Runner

	mu      sync.Mutex
	entries map[string]*entry
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

type entry struct {
	src      item.Source
	interval time.Duration
	// kick requests an early cycle; capacity 1 so bursts coalesce.
	kick chan struct{}
}

// New creates a scheduler that drives cycles through runner.
func New(runner Runner) *Scheduler {
	return &Scheduler{
		runner:  runner,
		entries: make(map[string]*entry),
	}
}

// Add registers a source with its reconciliation interval.
// Must be called before Start.
func (s *Scheduler) Add(src item.Source, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval for source %q must be positive", src.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if _, dup := s.entries[src.Name()]; dup {
		return fmt.Errorf("source %q already registered", src.Name())
	}

	s.entries[src.Name()] = &entry{
		src:      src,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
	return nil
}

// Sources returns the names of all registered sources.
func (s *Scheduler) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Start launches one loop per registered source. Each loop runs an
// initial cycle immediately, then fires on its interval. Non-blocking;
// call Stop to tear down.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)

	for _, e := range s.entries {
		e := e
		s.group.Go(func() error {
			s.loop(ctx, e)
			return nil
		})
	}

	slog.Info("scheduler_started", slog.Int("sources", len(s.entries)))
	return nil
}

// Kick requests an early cycle for the named source. If a kick is
// already pending it is absorbed.
func (s *Scheduler) Kick(name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown source %q", name)
	}

	select {
	case e.kick <- struct{}{}:
	default:
	}
	return nil
}

// Stop cancels all loops and waits for in-flight cycles to finish.
// Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	group := s.group
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	_ = group.Wait()
	slog.Info("scheduler_stopped")
}

// loop drives one source. Cycles run inline, so a tick arriving during
// a cycle waits in the ticker's single-slot buffer and later ticks are
// dropped; the next occurrence is effectively rescheduled rather than
// replayed.
func (s *Scheduler) loop(ctx context.Context, e *entry) {
	name := e.src.Name()

	// Ticker first, then the initial cycle: if the initial cycle is
	// slow, due ticks coalesce into the single pending slot instead of
	// being lost entirely.
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	s.runCycle(ctx, e)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("scheduler_loop_stopped", slog.String("source", name))
			return
		case <-ticker.C:
			s.runCycle(ctx, e)
		case <-e.kick:
			slog.Debug("scheduler_kicked", slog.String("source", name))
			s.runCycle(ctx, e)
		}
	}
}

// runCycle executes one cycle, containing any error to this source.
func (s *Scheduler) runCycle(ctx context.Context, e *entry) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.Reconcile(ctx, e.src); err != nil {
		// The reconciler already logged with source context; the next
		// tick retries.
		slog.Debug("scheduler_cycle_failed",
			slog.String("source", e.src.Name()),
			slog.String("error", err.Error()))
	}
}
