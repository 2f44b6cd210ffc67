package stream

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collector records published values in delivery order.
type collector struct {
	mu   sync.Mutex
	got  []string
	seen chan string
}

func newCollector() *collector {
	return &collector{seen: make(chan string, 16)}
}

func (c *collector) publish(v string) {
	c.mu.Lock()
	c.got = append(c.got, v)
	c.mu.Unlock()
	c.seen <- v
}

func (c *collector) values() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func (c *collector) wait(t *testing.T) string {
	t.Helper()
	select {
	case v := <-c.seen:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a published result")
		return ""
	}
}

func TestSubmit_PublishesResult(t *testing.T) {
	col := newCollector()
	coord := New(col.publish)
	defer coord.Close()

	coord.Submit(context.Background(), func(context.Context) (string, error) {
		return "firefox", nil
	})

	assert.Equal(t, "firefox", col.wait(t))
}

func TestSubmit_NewerSupersedesOlder(t *testing.T) {
	col := newCollector()
	coord := New(col.publish)
	defer coord.Close()

	release := make(chan struct{})
	started := make(chan struct{})

	// First request blocks until released, ignoring cancellation, so it
	// finishes after the second request has already published.
	coord.Submit(context.Background(), func(context.Context) (string, error) {
		close(started)
		<-release
		return "stale", nil
	})
	<-started

	coord.Submit(context.Background(), func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.Equal(t, "fresh", col.wait(t))

	close(release)
	coord.Close()

	assert.Equal(t, []string{"fresh"}, col.values(),
		"a superseded request must not publish even if it completes")
}

func TestSubmit_CancelsPreviousContext(t *testing.T) {
	col := newCollector()
	coord := New(col.publish)
	defer coord.Close()

	cancelled := make(chan struct{})
	started := make(chan struct{})

	coord.Submit(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	})
	<-started

	coord.Submit(context.Background(), func(context.Context) (string, error) {
		return "second", nil
	})

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("first request context was never cancelled")
	}
	assert.Equal(t, "second", col.wait(t))
}

func TestSubmit_ErrorNotPublished(t *testing.T) {
	col := newCollector()
	coord := New(col.publish)
	defer coord.Close()

	coord.Submit(context.Background(), func(context.Context) (string, error) {
		return "", fmt.Errorf("index unavailable")
	})
	coord.Submit(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})

	assert.Equal(t, "ok", col.wait(t))
	assert.Equal(t, []string{"ok"}, col.values())
}

func TestClose_DropsInFlightAndLaterSubmits(t *testing.T) {
	col := newCollector()
	coord := New(col.publish)

	started := make(chan struct{})
	coord.Submit(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", nil
	})
	<-started

	coord.Close()
	coord.Close()

	coord.Submit(context.Background(), func(context.Context) (string, error) {
		return "after-close", nil
	})

	assert.Empty(t, col.values())
}

func TestSubmit_SequentialAllPublish(t *testing.T) {
	col := newCollector()
	coord := New(col.publish)
	defer coord.Close()

	for i := 0; i < 5; i++ {
		coord.Submit(context.Background(), func(context.Context) (string, error) {
			return fmt.Sprintf("q%d", i), nil
		})
		assert.Equal(t, fmt.Sprintf("q%d", i), col.wait(t))
	}
}
