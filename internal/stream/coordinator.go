// Package stream coordinates superseding requests. Each submission
// cancels the one before it, and only the newest generation may publish
// its result: a stale computation can finish, but its output is
// discarded instead of overwriting fresher state.
package stream

import (
	"context"
	"log/slog"
	"sync"
)

// Func computes the result for one request. Implementations must honor
// ctx; a newer submission cancels it.
type Func[T any] func(ctx context.Context) (T, error)

// Coordinator runs one logical request stream. Results are delivered
// through the publish callback, which is invoked under the coordinator
// lock, so deliveries are serialized and never out of order.
type Coordinator[T any] struct {
	publish func(T)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a coordinator delivering current results to publish.
func New[T any](publish func(T)) *Coordinator[T] {
	return &Coordinator[T]{publish: publish}
}

// Submit starts fn for the next generation, cancelling any request
// still in flight. Non-blocking; fn runs on its own goroutine.
func (c *Coordinator[T]) Submit(ctx context.Context, fn Func[T]) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()

		out, err := fn(reqCtx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || gen != c.gen {
			// Superseded while running; the result must not surface.
			return
		}
		if err != nil {
			if reqCtx.Err() == nil {
				slog.Warn("stream_request_failed",
					slog.String("error", err.Error()))
			}
			return
		}
		c.publish(out)
	}()
}

// Close cancels any in-flight request and waits for its goroutine to
// exit. Submissions after Close are dropped. Idempotent.
func (c *Coordinator[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
}
