package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/eventloop"
	"github.com/vk/pipegraph/internal/progress"
)

// pump drains the loop until cond holds or the deadline passes.
func pump(t *testing.T, loop *eventloop.Loop, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		loop.Drain()
		time.Sleep(time.Millisecond)
	}
}

func TestRunner_CommitsThroughTheLoop(t *testing.T) {
	// --- Arrange ---
	h := newHarness()
	a := h.add(t, "A")
	a.Block = make(chan struct{})
	h.add(t, "B", "A")
	loop := eventloop.New()
	runner := NewRunner(loop)

	var summary *Summary
	var finishedOnLoop bool
	obs := progress.Func{OnFinished: func(error) { finishedOnLoop = true }}

	// --- Act ---
	require.NoError(t, runner.Start(testContext(t), h.g, obs, func(s Summary) { summary = &s }))

	// --- Assert ---
	require.True(t, runner.Running())
	require.ErrorIs(t, runner.Start(context.Background(), h.g, nil, nil), ErrRunInProgress)

	pump(t, loop, func() bool { return h.nodes["A"].State() == dataflow.Running })
	require.Equal(t, dataflow.Dirty, h.nodes["B"].State(), "nothing lands before the loop runs it")

	close(a.Block)
	pump(t, loop, func() bool { return summary != nil })

	require.True(t, finishedOnLoop)
	require.False(t, runner.Running())
	require.Equal(t, 2, summary.Invoked)
	require.Equal(t, dataflow.Clean, h.nodes["B"].State())
}

func TestRunner_EditDuringRunKeepsNodeDirty(t *testing.T) {
	h := newHarness()
	a := h.add(t, "A")
	a.Block = make(chan struct{})
	loop := eventloop.New()
	runner := NewRunner(loop)

	done := false
	require.NoError(t, runner.Start(testContext(t), h.g, nil, func(Summary) { done = true }))
	pump(t, loop, func() bool { return h.nodes["A"].State() == dataflow.Running })

	require.NoError(t, h.g.Rename(h.nodes["A"].ID(), "A2"))
	close(a.Block)
	pump(t, loop, func() bool { return done })

	require.Equal(t, dataflow.Dirty, h.nodes["A"].State())
}
