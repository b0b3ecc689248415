package engine

import (
	"context"
	"sync/atomic"

	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/eventloop"
	"github.com/vk/pipegraph/internal/progress"
)

// Runner executes plans on a worker goroutine and posts every commit and
// observer call back onto the editor's loop. Only one run is active at a
// time.
type Runner struct {
	loop    eventloop.Poster
	running atomic.Bool
}

// NewRunner creates a runner posting to loop.
func NewRunner(loop eventloop.Poster) *Runner {
	return &Runner{loop: loop}
}

// Running reports whether a run is in flight.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Start plans on the calling goroutine, which must own g, and executes on a
// new goroutine. done, if not nil, is posted to the loop after the
// observer's Finished call.
func (r *Runner) Start(ctx context.Context, g *dataflow.Graph, obs progress.Observer, done func(Summary), targets ...dataflow.NodeID) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	if obs == nil {
		obs = progress.Nop{}
	}

	plan := NewPlan(g, targets...)
	posted := progress.OnLoop(r.loop, obs)
	commit := func(u Update) {
		r.loop.Post(func() { Apply(g, u) })
	}

	go func() {
		summary := Execute(ctx, plan, posted, commit)
		r.loop.Post(func() {
			r.running.Store(false)
			if done != nil {
				done(summary)
			}
		})
	}()
	return nil
}
