// Package eventloop is the editor's single mutator thread. Graph edits,
// gesture handling and engine commits are all posted here, so the graph
// never needs locking.
package eventloop

import (
	"context"
	"sync"
	"time"
)

// Poster accepts work to run on the loop goroutine.
type Poster interface {
	Post(f func())
}

// Loop is an unbounded FIFO of callbacks drained by a single goroutine.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// New creates an idle loop. Nothing runs until Run or Drain is called.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues f. It never blocks and is safe from any goroutine.
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	l.pending = append(l.pending, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After posts f once d has elapsed. Stopping the returned timer before it
// fires cancels the post.
func (l *Loop) After(d time.Duration, f func()) *time.Timer {
	return time.AfterFunc(d, func() { l.Post(f) })
}

// Call posts f and waits until it has run on the loop.
func (l *Loop) Call(ctx context.Context, f func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs everything queued so far, including work posted by the
// callbacks themselves, and returns how many callbacks ran. It must only be
// called from the goroutine that owns the loop.
func (l *Loop) Drain() int {
	ran := 0
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, f := range batch {
			f()
			ran++
		}
	}
}

// Run processes callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
