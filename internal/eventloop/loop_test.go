package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDrain_RunsInOrderIncludingNestedPosts(t *testing.T) {
	l := New()
	var got []int
	l.Post(func() {
		got = append(got, 1)
		l.Post(func() { got = append(got, 3) })
	})
	l.Post(func() { got = append(got, 2) })

	require.Equal(t, 3, l.Drain())
	require.Equal(t, []int{1, 2, 3}, got)
	require.Zero(t, l.Drain())
}

func TestRun_ExecutesPostsFromOtherGoroutines(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	require.NoError(t, l.Call(ctx, func() {}))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 50, count)
}

func TestCall_HonoursContext(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Nobody runs the loop, so the call can only end through the context.
	err := l.Call(ctx, func() {})

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAfter(t *testing.T) {
	l := New()
	fired := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	l.After(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer callback never ran")
	}

	stopped := l.After(time.Hour, func() { t.Error("stopped timer fired") })
	require.True(t, stopped.Stop())
}
