package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop(t *testing.T) {
	t.Run("runs posted tasks on the loop goroutine", func(t *testing.T) {
		l := New()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- l.Run(ctx) }()

		onThread := make(chan bool, 1)
		l.Post(func() { onThread <- l.OnThread() })

		select {
		case got := <-onThread:
			assert.True(t, got)
		case <-time.After(time.Second):
			t.Fatal("posted task never ran")
		}

		assert.False(t, l.OnThread())

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
		assert.False(t, l.Running())
	})

	t.Run("timers fire through the loop", func(t *testing.T) {
		l := New()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go l.Run(ctx)

		fired := make(chan bool, 1)
		l.AfterFunc(5*time.Millisecond, func() { fired <- l.OnThread() })

		select {
		case got := <-fired:
			assert.True(t, got)
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
	})

	t.Run("stopped timers do not fire", func(t *testing.T) {
		l := New()

		calls := 0
		timer := l.AfterFunc(time.Millisecond, func() { calls++ })
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())

		time.Sleep(10 * time.Millisecond)
		l.RunPending()

		assert.Equal(t, 0, calls)
	})

	t.Run("run pending drains tasks posted by tasks", func(t *testing.T) {
		l := New()
		log := []string{}

		l.Post(func() {
			log = append(log, "first")
			l.Post(func() { log = append(log, "second") })
		})

		assert.Equal(t, 2, l.RunPending())
		assert.Equal(t, []string{"first", "second"}, log)
	})

	t.Run("panicking tasks do not stop the loop", func(t *testing.T) {
		l := New()
		log := []string{}

		l.Post(func() { panic("boom") })
		l.Post(func() { log = append(log, "after") })

		require.Equal(t, 2, l.RunPending())
		assert.Equal(t, []string{"after"}, log)
	})
}

func TestCurrent(t *testing.T) {
	t.Run("same goroutine gets the same loop", func(t *testing.T) {
		assert.Same(t, Current(), Current())
	})

	t.Run("other goroutines get their own loop", func(t *testing.T) {
		mine := Current()

		other := make(chan *Loop)
		go func() { other <- Current() }()

		assert.NotSame(t, mine, <-other)
	})
}
