package notify

import (
	"context"
	"log/slog"

	"github.com/roach88/listsync/internal/queue"
)

// Dispatcher is the execution context sinks are touched from.
//
// Dispatch schedules fn and returns true, or returns false if the context no
// longer accepts work. Implementations must run functions in the order they
// were dispatched.
type Dispatcher interface {
	Dispatch(fn func()) bool
}

// Immediate runs each function synchronously on the caller's goroutine.
// With the engine this means sinks are called from the worker goroutine.
type Immediate struct{}

// Dispatch runs fn and returns true.
func (Immediate) Dispatch(fn func()) bool {
	fn()
	return true
}

// Loop is a dispatcher backed by one dedicated goroutine, the Go analogue of
// a UI main thread. Functions run one at a time in FIFO order.
//
// Thread-safety model:
//   - Dispatch(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Loop struct {
	queue *queue.Queue[func()]
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop() *Loop {
	return &Loop{queue: queue.New[func()]()}
}

// Dispatch queues fn. Returns false after Close.
func (l *Loop) Dispatch(fn func()) bool {
	return l.queue.Enqueue(fn)
}

// Run executes queued functions until ctx is cancelled or the loop is closed
// and drained.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if fn, ok := l.queue.TryDequeue(); ok {
			fn()
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("dispatch loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			if l.queue.Closed() && l.queue.Len() == 0 {
				slog.Debug("dispatch loop stopping: closed")
				return nil
			}
		}
	}
}

// Close stops accepting work. Functions already queued still run.
func (l *Loop) Close() {
	l.queue.Close()
}
