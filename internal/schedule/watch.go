package schedule

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keystroke-labs/lantern/internal/item"
)

// WatchKicker bridges filesystem events to early reconciliation cycles
// for sources that expose a watchable root. Events are debounced per
// source so a burst of writes produces one kick, and a kick is only a
// hint: the cycle still re-fetches the full item set.
type WatchKicker struct {
	sched    *Scheduler
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu     sync.Mutex
	roots  map[string]string // watch root -> source name
	timers map[string]*time.Timer
	closed bool
}

// NewWatchKicker creates a kicker feeding the given scheduler.
func NewWatchKicker(sched *Scheduler, debounce time.Duration) (*WatchKicker, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &WatchKicker{
		sched:    sched,
		watcher:  w,
		debounce: debounce,
		roots:    make(map[string]string),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch registers a watchable source's root directory.
func (k *WatchKicker) Watch(src item.WatchableSource) error {
	root := src.WatchRoot()
	if err := k.watcher.Add(root); err != nil {
		return err
	}

	k.mu.Lock()
	k.roots[root] = src.Name()
	k.mu.Unlock()

	slog.Debug("watch_added",
		slog.String("source", src.Name()),
		slog.String("root", root))
	return nil
}

// Run consumes filesystem events until ctx is cancelled.
func (k *WatchKicker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-k.watcher.Events:
			if !ok {
				return
			}
			k.handle(ev)
		case err, ok := <-k.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// handle maps an event path to its source and schedules a debounced kick.
func (k *WatchKicker) handle(ev fsnotify.Event) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return
	}

	for root, source := range k.roots {
		if !strings.HasPrefix(ev.Name, root) {
			continue
		}

		source := source
		if t, ok := k.timers[source]; ok {
			t.Stop()
		}
		k.timers[source] = time.AfterFunc(k.debounce, func() {
			if err := k.sched.Kick(source); err != nil {
				slog.Debug("watch_kick_failed",
					slog.String("source", source),
					slog.String("error", err.Error()))
			}
		})
	}
}

// Close stops watching. Safe to call multiple times.
func (k *WatchKicker) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	for _, t := range k.timers {
		t.Stop()
	}
	return k.watcher.Close()
}
