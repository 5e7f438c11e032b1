package internal

import (
	"container/heap"
	"time"
)

// TimerEntry is a pending callback in a TimerHeap.
type TimerEntry struct {
	Deadline time.Time
	Fn       func()

	seq   uint64
	index int // -1 once removed
}

// Pending reports whether the entry is still waiting in its heap.
func (e *TimerEntry) Pending() bool {
	return e.index >= 0
}

// TimerHeap orders callbacks by deadline, then by insertion order.
type TimerHeap struct {
	entries timerEntries
	seq     uint64
}

func NewTimerHeap() *TimerHeap {
	return &TimerHeap{
		entries: make(timerEntries, 0),
	}
}

func (h *TimerHeap) Insert(deadline time.Time, fn func()) *TimerEntry {
	h.seq++
	e := &TimerEntry{Deadline: deadline, Fn: fn, seq: h.seq}
	heap.Push(&h.entries, e)
	return e
}

// Remove takes e out of the heap. It reports whether e was still pending.
func (h *TimerHeap) Remove(e *TimerEntry) bool {
	if e == nil || e.index < 0 || e.index >= len(h.entries) || h.entries[e.index] != e {
		return false
	}

	heap.Remove(&h.entries, e.index)
	return true
}

// PopDue removes and returns the earliest entry whose deadline is not after t.
func (h *TimerHeap) PopDue(t time.Time) (*TimerEntry, bool) {
	if len(h.entries) == 0 || h.entries[0].Deadline.After(t) {
		return nil, false
	}

	return heap.Pop(&h.entries).(*TimerEntry), true
}

func (h *TimerHeap) Len() int {
	return len(h.entries)
}

type timerEntries []*TimerEntry

func (t timerEntries) Len() int { return len(t) }

func (t timerEntries) Less(i, j int) bool {
	if t[i].Deadline.Equal(t[j].Deadline) {
		return t[i].seq < t[j].seq
	}
	return t[i].Deadline.Before(t[j].Deadline)
}

func (t timerEntries) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
	t[i].index = i
	t[j].index = j
}

func (t *timerEntries) Push(x any) {
	e := x.(*TimerEntry)
	e.index = len(*t)
	*t = append(*t, e)
}

func (t *timerEntries) Pop() any {
	old := *t
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*t = old[:n-1]
	return e
}
