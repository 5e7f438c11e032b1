package internal

// Handle identifies a subscription on a Source.
type Handle uint64

type subscriber struct {
	id     Handle
	fn     func(any)
	active bool
}

// Source is an untyped value cell that notifies its subscribers on change.
// It is not safe for concurrent use.
type Source struct {
	value any

	subs []*subscriber
	next Handle

	// notifying is true while subscribers are being called.
	// writes that happen meanwhile are queued and drained afterwards
	notifying bool
	queue     *NotifyQueue

	closed bool

	// Equal reports whether two values are the same. Defaults to IsEqual.
	Equal func(a, b any) bool

	// OnPanic is called with the recovered value when a subscriber panics.
	OnPanic func(recovered any)
}

func NewSource(initial any) *Source {
	return &Source{
		value: initial,
		queue: NewNotifyQueue(),
		Equal: IsEqual,
	}
}

func (s *Source) Value() any {
	return s.value
}

// Write stores v and notifies subscribers if it differs from the current value.
// It reports whether the value changed.
func (s *Source) Write(v any) bool {
	if s.Equal(s.value, v) {
		return false
	}

	s.value = v
	s.dispatch(v)
	return true
}

// Notify stores v and notifies subscribers unconditionally.
func (s *Source) Notify(v any) {
	s.value = v
	s.dispatch(v)
}

func (s *Source) Subscribe(fn func(any)) Handle {
	if s.closed || fn == nil {
		return 0
	}

	s.next++
	s.subs = append(s.subs, &subscriber{id: s.next, fn: fn, active: true})
	return s.next
}

// Unsubscribe removes the subscription. It reports whether it was still registered.
func (s *Source) Unsubscribe(h Handle) bool {
	for i, sub := range s.subs {
		if sub.id == h {
			sub.active = false
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return true
		}
	}

	return false
}

func (s *Source) Len() int {
	return len(s.subs)
}

// Close severs every subscription and drops queued notifications.
func (s *Source) Close() {
	if s.closed {
		return
	}
	s.closed = true

	for _, sub := range s.subs {
		sub.active = false
	}
	s.subs = nil
	s.queue.Clear()
}

func (s *Source) Closed() bool {
	return s.closed
}

func (s *Source) dispatch(v any) {
	if s.closed {
		return
	}

	// nested writes from a subscriber are delivered once the current round is done
	if s.notifying {
		s.queue.Enqueue(v)
		return
	}

	s.notifying = true
	defer func() { s.notifying = false }()

	for next, ok := v, true; ok; next, ok = s.queue.Dequeue() {
		// snapshot so that subscribers added during the round wait for the next one
		subs := make([]*subscriber, len(s.subs))
		copy(subs, s.subs)

		for _, sub := range subs {
			if sub.active {
				s.call(sub, next)
			}
		}
	}
}

func (s *Source) call(sub *subscriber, v any) {
	defer func() {
		if r := recover(); r != nil && s.OnPanic != nil {
			s.OnPanic(r)
		}
	}()

	sub.fn(v)
}
