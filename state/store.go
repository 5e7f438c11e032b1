// Package state is a key to Source registry that bindings can draw from.
//
// A Store holds named sources, computed entries that recompute when the keys
// they depend on change, and per-key validators. Like the bind package it is
// meant for the UI goroutine only.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/AnatoleLucet/bind"
	"github.com/AnatoleLucet/bind/internal"
)

var (
	ErrExists       = errors.New("state: key already exists")
	ErrNotFound     = errors.New("state: key not found")
	ErrTypeMismatch = errors.New("state: type mismatch")
	ErrValidation   = errors.New("state: validation failed")
)

type entry struct {
	key  string
	src  any // *bind.Source[T]
	obs  bind.Observable
	kind reflect.Type

	validators []any // func(T) bool

	// set for computed entries
	recompute func()
	deps      []string

	cleanups []func()
}

func (e *entry) close() {
	for _, fn := range slices.Backward(e.cleanups) {
		fn()
	}
	e.cleanups = nil
}

type Store struct {
	entries map[string]*entry
	order   []string

	batcher *internal.Batcher
	pending []string

	changed *internal.Source
	log     *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		batcher: internal.NewBatcher(),
		changed: internal.NewSource(nil),
		log:     slog.Default().With("component", "state"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.changed.OnPanic = func(r any) {
		s.log.Warn("change handler panicked", "panic", r)
	}

	return s
}

// Create registers a new source under key.
func Create[T any](s *Store, key string, initial T) (*bind.Source[T], error) {
	if _, ok := s.entries[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrExists, key)
	}

	src := bind.NewSource(initial)
	insert(s, key, src)
	return src, nil
}

// Get returns the source registered under key.
func Get[T any](s *Store, key string) (*bind.Source[T], error) {
	e, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	src, ok := e.src.(*bind.Source[T])
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %s, not %s", ErrTypeMismatch, key, e.kind, reflect.TypeFor[T]())
	}
	return src, nil
}

// Computed registers a read-only entry whose value is fn(), recomputed every
// time one of deps changes. Inside a Batch, recomputation waits for the
// outermost batch to end.
func Computed[T any](s *Store, key string, fn func() T, deps ...string) (*bind.Source[T], error) {
	if fn == nil {
		return nil, errors.New("state: nil compute function")
	}
	if _, ok := s.entries[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrExists, key)
	}
	for _, dep := range deps {
		if _, ok := s.entries[dep]; !ok {
			return nil, fmt.Errorf("%w: dependency %q of %q", ErrNotFound, dep, key)
		}
	}

	src := bind.NewSource(fn())
	e := insert(s, key, src)
	e.deps = slices.Clone(deps)
	e.recompute = func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Warn("computed entry panicked", "key", key, "panic", r)
			}
		}()

		src.Set(fn())
	}

	for _, dep := range deps {
		cancel := s.entries[dep].obs.Watch(func() { s.invalidate(key) })
		e.cleanups = append(e.cleanups, cancel)
	}

	return src, nil
}

// AddValidator adds a check that Set runs before writing key.
func AddValidator[T any](s *Store, key string, fn func(T) bool) error {
	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if _, ok := e.src.(*bind.Source[T]); !ok {
		return fmt.Errorf("%w: %q holds %s, not %s", ErrTypeMismatch, key, e.kind, reflect.TypeFor[T]())
	}

	e.validators = append(e.validators, fn)
	return nil
}

// Set validates v and writes it to key. Computed entries cannot be set.
func Set[T any](s *Store, key string, v T) error {
	src, err := Get[T](s, key)
	if err != nil {
		return err
	}

	e := s.entries[key]
	if e.recompute != nil {
		return fmt.Errorf("state: %q is computed", key)
	}

	for i, fn := range e.validators {
		if !fn.(func(T) bool)(v) {
			s.log.Warn("state value rejected", "key", key, "validator", i)
			return fmt.Errorf("%w: %q", ErrValidation, key)
		}
	}

	src.Set(v)
	return nil
}

// Batch runs fn and recomputes the computed entries it invalidated once the
// outermost batch ends. Nested batches run inline.
func (s *Store) Batch(fn func()) {
	s.batcher.Batch(fn, s.flush)
}

func (s *Store) IsBatching() bool {
	return s.batcher.IsBatching()
}

func (s *Store) invalidate(key string) {
	if s.batcher.IsBatching() {
		if !slices.Contains(s.pending, key) {
			s.pending = append(s.pending, key)
		}
		return
	}

	if e, ok := s.entries[key]; ok {
		e.recompute()
	}
}

func (s *Store) flush() {
	for len(s.pending) > 0 {
		key := s.pending[0]
		s.pending = s.pending[1:]

		if e, ok := s.entries[key]; ok {
			e.recompute()
		}
	}
}

// Remove closes the source under key and forgets it. Computed entries that
// depended on it keep their last value.
func (s *Store) Remove(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}

	delete(s.entries, key)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == key })
	e.close()
	return true
}

// Clear removes every entry.
func (s *Store) Clear() {
	for _, key := range slices.Backward(slices.Clone(s.order)) {
		s.Remove(key)
	}
	s.pending = nil
}

func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Keys returns the registered keys in creation order.
func (s *Store) Keys() []string {
	return slices.Clone(s.order)
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Dependencies returns the keys a computed entry depends on.
func (s *Store) Dependencies(key string) []string {
	if e, ok := s.entries[key]; ok {
		return slices.Clone(e.deps)
	}
	return nil
}

// Observable returns the entry under key as a dependency for computed bindings.
func (s *Store) Observable(key string) (bind.Observable, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.obs, true
}

// OnChanged calls fn with the key of every entry whose value changes.
func (s *Store) OnChanged(fn func(key string)) (cancel func()) {
	h := s.changed.Subscribe(func(v any) { fn(v.(string)) })
	return func() { s.changed.Unsubscribe(h) }
}

func insert[T any](s *Store, key string, src *bind.Source[T]) *entry {
	e := &entry{
		key:  key,
		src:  src,
		obs:  src,
		kind: reflect.TypeFor[T](),
	}
	e.cleanups = append(e.cleanups, src.Close, src.Watch(func() { s.changed.Notify(key) }))

	s.entries[key] = e
	s.order = append(s.order, key)
	return e
}
