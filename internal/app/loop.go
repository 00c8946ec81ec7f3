package app

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned when work is submitted after the event loop ended.
var ErrStopped = errors.New("event loop stopped")

// eventLoop runs submitted closures one at a time on a single goroutine.
// Every handler that touches the surface, the driver or the overlay runs
// here, so they never overlap.
type eventLoop struct {
	queue    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

func newEventLoop(size int) *eventLoop {
	return &eventLoop{queue: make(chan func(), size), stopped: make(chan struct{})}
}

// Run executes queued closures until ctx is done. It must be called once.
func (l *eventLoop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.stopped) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn without waiting for it to run.
func (l *eventLoop) Post(fn func()) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.stopped:
		return ErrStopped
	}
}

// Call runs fn on the loop and waits for it to finish. It must not be used
// from the loop goroutine itself.
func (l *eventLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case l.queue <- wrapped:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		// Run may have returned with wrapped still queued.
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
