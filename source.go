package bind

import (
	"fmt"
	"reflect"

	"github.com/AnatoleLucet/bind/internal"
)

// Subscription identifies a callback registered on a Source.
type Subscription uint64

// Source is a typed reactive value.
//
// Set notifies subscribers in subscription order when the value changes.
// A subscriber that writes to the same Source from its callback gets its
// notification queued until the current round has finished.
type Source[T any] struct {
	src *internal.Source
}

// SourceOption configures a Source.
type SourceOption[T any] func(*Source[T])

// WithEqual replaces the equality used to skip same-value writes.
func WithEqual[T any](equal func(a, b T) bool) SourceOption[T] {
	return func(s *Source[T]) {
		s.src.Equal = func(a, b any) bool { return equal(as[T](a), as[T](b)) }
	}
}

// NewSource creates a Source holding initial.
func NewSource[T any](initial T, opts ...SourceOption[T]) *Source[T] {
	s := &Source[T]{src: internal.NewSource(initial)}
	s.src.OnPanic = func(r any) {
		logger().Warn("source subscriber panicked", "source", s.String(), "panic", r)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the current value.
func (s *Source[T]) Get() T {
	return as[T](s.src.Value())
}

// Set stores v and notifies subscribers unless v equals the current value.
func (s *Source[T]) Set(v T) {
	s.src.Write(v)
}

// Update applies fn to the current value and stores the result.
func (s *Source[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

// Subscribe registers fn to receive every new value.
func (s *Source[T]) Subscribe(fn func(T)) Subscription {
	return Subscription(s.src.Subscribe(func(v any) { fn(as[T](v)) }))
}

// Unsubscribe removes a subscription. It reports whether it was still registered.
func (s *Source[T]) Unsubscribe(sub Subscription) bool {
	return s.src.Unsubscribe(internal.Handle(sub))
}

// Watch implements Observable.
func (s *Source[T]) Watch(fn func()) func() {
	h := s.src.Subscribe(func(any) { fn() })
	return func() { s.src.Unsubscribe(h) }
}

// SubscriberCount returns the number of live subscriptions.
func (s *Source[T]) SubscriberCount() int {
	return s.src.Len()
}

// Close severs every subscription. The value stays readable and writable.
func (s *Source[T]) Close() {
	s.src.Close()
}

// Closed implements Observable.
func (s *Source[T]) Closed() bool {
	return s.src.Closed()
}

// String returns the source path, e.g. "Source[int]@0xc000012345".
func (s *Source[T]) String() string {
	return fmt.Sprintf("Source[%s]@%p", reflect.TypeFor[T](), s)
}
