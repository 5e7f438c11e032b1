package bind

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/AnatoleLucet/bind/internal"
	"github.com/AnatoleLucet/bind/loop"
	"github.com/AnatoleLucet/bind/value"
	"github.com/AnatoleLucet/bind/widget"
)

var errRejected = errors.New("validation failed for target value")

// Binding connects a source of type S to a widget property holding a T.
//
// The binding holds only a weak reference to its widget. Once the widget is
// destroyed the binding disconnects itself; writes attempted before it notices
// are silently dropped.
type Binding[S, T any] struct {
	source  *Source[S]
	compute func() (T, error)
	deps    []Observable
	warned  map[int]bool

	target     widget.Ref
	targetPath string
	property   string

	direction Direction
	mode      UpdateMode
	debounce  time.Duration
	noInitial bool

	convert  func(S) (T, error)
	reverse  func(T) (S, error)
	validate func(T) bool
	onError  func(error)

	sched loop.Scheduler
	timer loop.Timer
	owner *internal.Owner
	log   *slog.Logger

	// set by a Manager while it monitors performance
	observer func(updateEvent)

	valid     bool
	connected bool
	enabled   bool
	// true while a write in either direction is in progress
	updating bool
	written  bool

	count uint64
	last  time.Time
}

type updateEvent struct {
	duration time.Duration
	err      error
}

// NewBinding binds source to the named property of target.
//
// Unless the binding is OneTime with WithoutInitialWrite, the target is
// written once before NewBinding returns.
func NewBinding[S, T any](source *Source[S], target widget.Widget, property string, opts ...Option) (*Binding[S, T], error) {
	const op = "bind.NewBinding"

	if source == nil {
		return nil, invalidArgument(op, "nil source")
	}

	s := newSettings(opts)
	b, err := newBinding[S, T](op, s, target, property)
	if err != nil {
		return nil, err
	}
	b.source = source

	if b.convert, err = typedFunc[func(S) (T, error)](op, "converter", s.convert); err != nil {
		return nil, err
	}
	if b.reverse, err = typedFunc[func(T) (S, error)](op, "reverse converter", s.reverse); err != nil {
		return nil, err
	}

	b.setup(s)
	return b, nil
}

// Bind is NewBinding for a property of the same type as the source.
func Bind[T any](source *Source[T], target widget.Widget, property string, opts ...Option) (*Binding[T, T], error) {
	return NewBinding[T, T](source, target, property, opts...)
}

func newBinding[S, T any](op string, s *settings, target widget.Widget, property string) (*Binding[S, T], error) {
	if isNil(target) {
		return nil, invalidArgument(op, "nil target widget")
	}
	if property == "" {
		return nil, invalidArgument(op, "empty property name")
	}

	ref := target.Ref()
	if _, ok := ref.Get(); !ok {
		return nil, invalidArgument(op, "target widget %s is destroyed", target.ClassName())
	}

	validate, err := typedFunc[func(T) bool](op, "validator", s.validate)
	if err != nil {
		return nil, err
	}

	b := &Binding[S, T]{
		target:     ref,
		targetPath: targetPath(target, property),
		property:   property,

		direction: s.direction,
		mode:      s.mode,
		debounce:  debounceInterval(s.debounce),
		noInitial: s.noInitial,

		validate: validate,
		onError:  s.onError,

		sched: s.scheduler,
		log:   s.log,
	}

	if l, ok := s.scheduler.(*loop.Loop); ok && l.Running() && !l.OnThread() {
		b.log.Warn("binding created off the UI goroutine", "target", b.targetPath)
	}

	return b, nil
}

func (b *Binding[S, T]) setup(s *settings) {
	b.owner = internal.NewOwner()
	b.valid = true
	b.enabled = true

	// OneTime bindings never listen
	if b.direction != OneTime {
		if b.source != nil {
			b.owner.OnCleanup(b.source.Watch(b.sourceChanged))
		}
		for _, dep := range b.deps {
			b.owner.OnCleanup(dep.Watch(b.sourceChanged))
		}
	}

	if b.direction == TwoWay {
		b.connectTarget()
	}

	b.owner.OnCleanup(b.target.OnDestroyed(b.detach))
	b.owner.OnCleanup(b.cancelPending)
	b.connected = true

	if s.manager != nil {
		s.manager.Add(b)
	}

	if b.direction == OneTime && b.noInitial {
		return
	}
	b.write()
}

func (b *Binding[S, T]) connectTarget() {
	w, ok := b.target.Get()
	if !ok {
		return
	}

	sig, ok := w.NotifySignal(b.property)
	if !ok {
		b.direction = OneWay
		b.log.Warn("two-way target has no notify signal, binding downgraded to one-way",
			"kind", KindSignalResolution.String(),
			"target", b.targetPath,
			"signal", widget.SignalName(b.property),
		)
		return
	}

	b.owner.OnCleanup(sig.Connect(b.targetChanged))
}

// Update re-evaluates the source and writes the target. In Deferred mode the
// write is debounced like a source change.
func (b *Binding[S, T]) Update() {
	if !b.valid || !b.enabled {
		return
	}

	if b.mode == Deferred {
		b.schedule()
		return
	}
	b.write()
}

// Disconnect severs every subscription and cancels a pending deferred write.
// The binding is inert afterwards. Calling it again is a no-op.
func (b *Binding[S, T]) Disconnect() {
	if b.owner == nil {
		return
	}

	b.owner.Dispose()
	b.valid = false
	b.connected = false
}

func (b *Binding[S, T]) detach() {
	if b.connected {
		b.log.Debug("binding target destroyed", "target", b.targetPath)
	}
	b.Disconnect()
}

func (b *Binding[S, T]) sourceChanged() {
	if !b.connected || !b.enabled || b.updating {
		return
	}

	switch b.mode {
	case Immediate:
		b.write()
	case Deferred:
		b.schedule()
	}
}

func (b *Binding[S, T]) targetChanged() {
	if !b.connected || !b.enabled || b.updating || b.source == nil {
		return
	}

	w, ok := b.target.Get()
	if !ok {
		b.detach()
		return
	}

	box, ok := w.Property(b.property)
	if !ok {
		b.fail("bind.reverse", KindConversion, fmt.Errorf("%s is not readable", b.targetPath))
		return
	}

	b.updating = true
	defer func() { b.updating = false }()

	var src S
	err := b.owner.Run(func() error {
		t, err := value.To[T](box)
		if err != nil {
			return err
		}
		src, err = b.toSource(t)
		return err
	})
	if err != nil {
		b.fail("bind.reverse", KindConversion, err)
		return
	}

	b.source.Set(src)
}

func (b *Binding[S, T]) schedule() {
	if b.timer != nil {
		b.timer.Stop()
	}
	if l, ok := b.sched.(*loop.Loop); ok && !l.Running() {
		b.log.Debug("deferred write scheduled on a loop that is not running", "target", b.targetPath)
	}
	b.timer = b.sched.AfterFunc(b.debounce, b.flushDeferred)
}

func (b *Binding[S, T]) flushDeferred() {
	b.timer = nil
	if !b.connected || !b.enabled {
		return
	}
	b.write()
}

func (b *Binding[S, T]) cancelPending() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Binding[S, T]) write() {
	if b.updating || (b.direction == OneTime && b.written) {
		return
	}

	w, ok := b.target.Get()
	if !ok {
		b.detach()
		return
	}

	b.updating = true
	defer func() { b.updating = false }()

	start := time.Now()
	err := b.apply(w)
	if b.observer != nil {
		b.observer(updateEvent{duration: time.Since(start), err: err})
	}
}

func (b *Binding[S, T]) apply(w widget.Widget) error {
	v, err := b.evaluate()
	if err != nil {
		return err
	}

	if b.validate != nil {
		accepted := false
		if err := b.owner.Run(func() error { accepted = b.validate(v); return nil }); err != nil {
			return b.fail("bind.update", KindValidation, err)
		}
		if !accepted {
			return b.fail("bind.update", KindValidation, errRejected)
		}
	}

	if !w.SetProperty(b.property, value.Of(v)) {
		return b.fail("bind.update", KindPropertyWrite, fmt.Errorf("%s refused value of type %T", b.targetPath, v))
	}

	b.count++
	b.last = b.sched.Now()
	b.written = true
	return nil
}

func (b *Binding[S, T]) evaluate() (T, error) {
	var out T

	if b.compute != nil {
		b.checkDependencies()

		err := b.owner.Run(func() (err error) {
			out, err = b.compute()
			return err
		})
		if err != nil {
			return out, b.fail("bind.update", KindCompute, err)
		}
		return out, nil
	}

	src := b.source.Get()
	err := b.owner.Run(func() (err error) {
		out, err = b.toTarget(src)
		return err
	})
	if err != nil {
		return out, b.fail("bind.update", KindConversion, err)
	}
	return out, nil
}

func (b *Binding[S, T]) checkDependencies() {
	for i, dep := range b.deps {
		if dep.Closed() && !b.warned[i] {
			if b.warned == nil {
				b.warned = make(map[int]bool)
			}
			b.warned[i] = true
			b.log.Warn("computed binding dependency was closed", "target", b.targetPath, "dependency", i)
		}
	}
}

func (b *Binding[S, T]) toTarget(v S) (T, error) {
	if b.convert != nil {
		return b.convert(v)
	}
	return convertValue[S, T](v)
}

func (b *Binding[S, T]) toSource(v T) (S, error) {
	if b.reverse != nil {
		return b.reverse(v)
	}
	return convertValue[T, S](v)
}

func (b *Binding[S, T]) fail(op string, kind ErrorKind, err error) error {
	e := &Error{
		Op:        op,
		Kind:      kind,
		Target:    b.targetPath,
		Err:       err,
		Timestamp: b.sched.Now(),
	}

	b.log.Warn("binding update failed",
		"op", op,
		"kind", kind.String(),
		"source", b.SourcePath(),
		"target", b.targetPath,
		"err", err,
	)

	if b.onError != nil {
		if err := b.owner.Run(func() error { b.onError(e); return nil }); err != nil {
			b.log.Warn("binding error handler panicked", "target", b.targetPath, "err", err)
		}
	}

	return e
}

func (b *Binding[S, T]) observe(fn func(updateEvent)) {
	b.observer = fn
}

// SetUpdateMode changes the update mode. Leaving Deferred drops a pending write.
func (b *Binding[S, T]) SetUpdateMode(mode UpdateMode) {
	if b.mode == Deferred && mode != Deferred {
		b.cancelPending()
	}
	b.mode = mode
}

// SetDebounceInterval sets the Deferred quiescence window; zero means MinDebounce.
func (b *Binding[S, T]) SetDebounceInterval(d time.Duration) {
	b.debounce = debounceInterval(d)
}

// SetEnabled pauses or resumes propagation without dropping subscriptions.
func (b *Binding[S, T]) SetEnabled(enabled bool) {
	b.enabled = enabled
}

func (b *Binding[S, T]) SetConverter(fn func(S) (T, error))        { b.convert = fn }
func (b *Binding[S, T]) SetReverseConverter(fn func(T) (S, error)) { b.reverse = fn }
func (b *Binding[S, T]) SetValidator(fn func(T) bool)              { b.validate = fn }
func (b *Binding[S, T]) SetErrorHandler(fn func(error))            { b.onError = fn }

func (b *Binding[S, T]) IsValid() bool { return b.valid }

// IsConnected reports whether the binding is live and its widget still exists.
func (b *Binding[S, T]) IsConnected() bool {
	if !b.connected {
		return false
	}
	_, ok := b.target.Get()
	return ok
}

func (b *Binding[S, T]) IsEnabled() bool                 { return b.enabled }
func (b *Binding[S, T]) Direction() Direction            { return b.direction }
func (b *Binding[S, T]) UpdateMode() UpdateMode          { return b.mode }
func (b *Binding[S, T]) DebounceInterval() time.Duration { return b.debounce }
func (b *Binding[S, T]) Target() widget.Ref              { return b.target }
func (b *Binding[S, T]) TargetPath() string              { return b.targetPath }
func (b *Binding[S, T]) UpdateCount() uint64             { return b.count }

// LastUpdateTime returns the scheduler time of the last successful write, or the zero time.
func (b *Binding[S, T]) LastUpdateTime() time.Time { return b.last }

func (b *Binding[S, T]) SourcePath() string {
	if b.source != nil {
		return b.source.String()
	}
	return fmt.Sprintf("Computed(%d deps)", len(b.deps))
}

func (b *Binding[S, T]) String() string {
	return b.SourcePath() + " -> " + b.TargetPath()
}

func targetPath(w widget.Widget, property string) string {
	if name := w.ObjectName(); name != "" {
		return fmt.Sprintf("%s(%s)::%s", w.ClassName(), name, property)
	}
	return w.ClassName() + "::" + property
}

func isNil(w widget.Widget) bool {
	if w == nil {
		return true
	}

	v := reflect.ValueOf(w)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
