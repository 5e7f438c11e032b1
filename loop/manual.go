package loop

import (
	"sync"
	"time"

	"github.com/AnatoleLucet/bind/internal"
)

// Manual is a Scheduler driven by hand: time only moves on Advance and posted
// tasks only run on Flush. Tests use it to make deferred updates deterministic.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers *internal.TimerHeap
	posted []func()
}

// NewManual returns a Manual scheduler starting at a fixed epoch.
func NewManual() *Manual {
	return &Manual{
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		timers: internal.NewTimerHeap(),
	}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}

	return &manualTimer{m: m, entry: m.timers.Insert(m.now.Add(d), fn)}
}

func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}

	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()
}

// Advance moves the clock forward by d, firing due timers in deadline order,
// then runs posted tasks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		entry, ok := m.timers.PopDue(target)
		if ok {
			m.now = entry.Deadline
		}
		m.mu.Unlock()

		if !ok {
			break
		}
		entry.Fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()

	m.Flush()
}

// Flush runs posted tasks until none are left and returns how many ran.
func (m *Manual) Flush() int {
	ran := 0

	for {
		m.mu.Lock()
		tasks := m.posted
		m.posted = nil
		m.mu.Unlock()

		if len(tasks) == 0 {
			return ran
		}

		for _, task := range tasks {
			task()
			ran++
		}
	}
}

// Pending returns the number of timers that have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers.Len()
}

type manualTimer struct {
	m     *Manual
	entry *internal.TimerEntry
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.m.timers.Remove(t.entry)
}
