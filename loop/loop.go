// Package loop provides the single-threaded scheduling primitives bindings rely on:
// single-shot timers that fire on the UI goroutine and a way to post work to it.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// Timer is a pending single-shot callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was prevented from running.
	Stop() bool
}

// Scheduler is what the binding core needs from the host runtime.
type Scheduler interface {
	// AfterFunc runs fn once on the UI goroutine after d.
	AfterFunc(d time.Duration, fn func()) Timer
	// Post runs fn on the UI goroutine at the next loop turn.
	Post(fn func())
	// Now returns the scheduler's current time.
	Now() time.Time
}

// Loop is a cooperative event loop pinned to the goroutine that calls Run.
// Post and AfterFunc are safe to call from any goroutine; everything they
// schedule runs on the loop goroutine.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}

	// goroutine id of the running loop, 0 when not running
	gid atomic.Int64

	log *slog.Logger
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		log:  slog.Default().With("component", "loop"),
	}
}

// SetLogger replaces the logger used to report panicking tasks.
func (l *Loop) SetLogger(log *slog.Logger) {
	if log != nil {
		l.log = log
	}
}

func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})

	return t
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

// Run processes posted tasks on the calling goroutine until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.gid.Store(goid.Get())
	defer l.gid.Store(0)

	for {
		l.RunPending()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunPending runs every queued task, including the ones they post, and returns how many ran.
// Hosts with their own event loop call it once per turn instead of Run.
func (l *Loop) RunPending() int {
	ran := 0

	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		if len(tasks) == 0 {
			return ran
		}

		for _, task := range tasks {
			l.run(task)
			ran++
		}
	}
}

// Running reports whether Run is active.
func (l *Loop) Running() bool {
	return l.gid.Load() != 0
}

// OnThread reports whether the caller is the goroutine running the loop.
func (l *Loop) OnThread() bool {
	gid := l.gid.Load()
	return gid != 0 && gid == goid.Get()
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Warn("loop task panicked", "panic", r)
		}
	}()

	task()
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}

	t.timer.Stop()
	return !t.fired.Load()
}
