package bind

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/AnatoleLucet/bind/loop"
)

// Option configures a binding at construction.
type Option func(*settings)

type settings struct {
	direction Direction
	mode      UpdateMode
	debounce  time.Duration

	modeSet     bool
	debounceSet bool
	noInitial   bool

	// typed functions, checked against the binding's type parameters
	convert  any
	reverse  any
	validate any

	onError func(error)
	deps    []Observable

	scheduler loop.Scheduler
	log       *slog.Logger
	manager   *Manager
}

func newSettings(opts []Option) *settings {
	s := &settings{
		direction: OneWay,
		mode:      Immediate,
		debounce:  MinDebounce,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if m := s.manager; m != nil {
		if !s.modeSet {
			s.mode = m.mode
		}
		if !s.debounceSet {
			s.debounce = m.debounce
		}
		if s.scheduler == nil {
			s.scheduler = m.scheduler
		}
		if s.log == nil {
			s.log = m.log
		}
	}

	if s.scheduler == nil {
		s.scheduler = loop.Current()
	}
	if s.log == nil {
		s.log = logger()
	}

	return s
}

// WithDirection sets the binding direction. The default is OneWay.
func WithDirection(d Direction) Option {
	return func(s *settings) { s.direction = d }
}

// WithUpdateMode sets the update mode. The default is Immediate, or the manager's global mode.
// Deferred writes fire on the scheduler, which defaults to the calling goroutine's
// loop.Loop; pair Deferred with WithScheduler or InManager unless that loop is run.
func WithUpdateMode(m UpdateMode) Option {
	return func(s *settings) {
		s.mode = m
		s.modeSet = true
	}
}

// WithDebounce sets the Deferred quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(s *settings) {
		s.debounce = d
		s.debounceSet = true
	}
}

// WithoutInitialWrite defers the single write of a OneTime binding to its first Update.
func WithoutInitialWrite() Option {
	return func(s *settings) { s.noInitial = true }
}

// WithConverter replaces the default source to target conversion.
func WithConverter[S, T any](fn func(S) (T, error)) Option {
	return func(s *settings) { s.convert = fn }
}

// Map is WithConverter for conversions that cannot fail.
func Map[S, T any](fn func(S) T) Option {
	return WithConverter(func(v S) (T, error) { return fn(v), nil })
}

// WithReverseConverter replaces the default target to source conversion of TwoWay bindings.
func WithReverseConverter[T, S any](fn func(T) (S, error)) Option {
	return func(s *settings) { s.reverse = fn }
}

// WithValidator rejects target values for which fn returns false.
func WithValidator[T any](fn func(T) bool) Option {
	return func(s *settings) { s.validate = fn }
}

// WithErrorHandler receives every runtime error of the binding.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) { s.onError = fn }
}

// WithDependencies lists the observables a computed binding re-evaluates on.
func WithDependencies(deps ...Observable) Option {
	return func(s *settings) { s.deps = append(s.deps, deps...) }
}

// WithScheduler sets the scheduler used for deferred writes and timestamps.
// The default is the Loop of the calling goroutine.
func WithScheduler(sched loop.Scheduler) Option {
	return func(s *settings) { s.scheduler = sched }
}

// WithLogger sets the logger of the binding.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// InManager applies the manager's global defaults and adds the binding to it once created.
func InManager(m *Manager) Option {
	return func(s *settings) { s.manager = m }
}

func typedFunc[F any](op, name string, fn any) (F, error) {
	var zero F
	if fn == nil {
		return zero, nil
	}

	typed, ok := fn.(F)
	if !ok {
		return zero, invalidArgument(op, "%s has type %T, want %s", name, fn, reflect.TypeFor[F]())
	}
	return typed, nil
}

// debounceInterval coerces non-positive intervals to MinDebounce.
func debounceInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return MinDebounce
	}
	return d
}
