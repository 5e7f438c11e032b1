package widget

import (
	"slices"
	"weak"

	"github.com/AnatoleLucet/bind/internal"
	"github.com/AnatoleLucet/bind/value"
)

// Property declares a property of an Object with its initial value.
type Property struct {
	PropertyInfo
	Initial value.Value
}

// Prop declares a notifying property whose kind is taken from its initial value.
func Prop(name string, initial value.Value) Property {
	return Property{
		PropertyInfo: PropertyInfo{Name: name, Kind: initial.Kind(), Notify: true},
		Initial:      initial,
	}
}

// Silent drops the notify signal of the property.
func (p Property) Silent() Property {
	p.Notify = false
	return p
}

// Locked makes the property refuse writes.
func (p Property) Locked() Property {
	p.ReadOnly = true
	return p
}

type slot struct {
	info   PropertyInfo
	value  value.Value
	signal *signal
}

// Object is an in-memory widget with a fixed set of typed properties.
// It is not safe for concurrent use.
type Object struct {
	class string
	name  string

	order []string
	slots map[string]*slot

	destroyed bool
	onDestroy *internal.Source
}

func NewObject(class string, props ...Property) *Object {
	o := &Object{
		class:     class,
		slots:     make(map[string]*slot, len(props)),
		onDestroy: internal.NewSource(nil),
	}

	for _, p := range props {
		s := &slot{info: p.PropertyInfo, value: p.Initial}
		if p.Notify {
			s.signal = &signal{src: internal.NewSource(nil)}
		}
		if _, ok := o.slots[p.Name]; !ok {
			o.order = append(o.order, p.Name)
		}
		o.slots[p.Name] = s
	}

	return o
}

// Named sets the object name and returns o.
func (o *Object) Named(name string) *Object {
	o.name = name
	return o
}

func (o *Object) ClassName() string  { return o.class }
func (o *Object) ObjectName() string { return o.name }

func (o *Object) Properties() []PropertyInfo {
	infos := make([]PropertyInfo, 0, len(o.order))
	for _, name := range o.order {
		infos = append(infos, o.slots[name].info)
	}
	return infos
}

func (o *Object) Property(name string) (value.Value, bool) {
	s, ok := o.slots[name]
	if !ok || o.destroyed {
		return value.Value{}, false
	}
	return s.value, true
}

// Get returns the property value, or the invalid Value when there is none.
func (o *Object) Get(name string) value.Value {
	v, _ := o.Property(name)
	return v
}

// SetProperty coerces v to the declared kind and stores it, emitting the notify
// signal when the stored value changes. Unknown, read-only or unconvertible
// writes are refused.
func (o *Object) SetProperty(name string, v value.Value) bool {
	s, ok := o.slots[name]
	if !ok || o.destroyed || s.info.ReadOnly {
		return false
	}

	coerced, err := value.Convert(v, s.info.Kind)
	if err != nil {
		return false
	}

	if s.value.Equal(coerced) {
		return true
	}

	s.value = coerced
	if s.signal != nil {
		s.signal.src.Notify(nil)
	}
	return true
}

func (o *Object) NotifySignal(property string) (Signal, bool) {
	s, ok := o.slots[property]
	if !ok || s.signal == nil {
		return nil, false
	}
	return s.signal, true
}

// Signal looks a notify signal up by its full name, e.g. "textChanged".
func (o *Object) Signal(name string) (Signal, bool) {
	i := slices.IndexFunc(o.order, func(p string) bool { return SignalName(p) == name })
	if i < 0 {
		return nil, false
	}
	return o.NotifySignal(o.order[i])
}

// Destroy tears the object down: references stop resolving, writes are refused
// and destruction callbacks run once.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true

	o.onDestroy.Notify(nil)
	o.onDestroy.Close()
	for _, s := range o.slots {
		if s.signal != nil {
			s.signal.src.Close()
		}
	}
}

func (o *Object) IsDestroyed() bool {
	return o.destroyed
}

func (o *Object) Ref() Ref {
	return &objectRef{p: weak.Make(o)}
}

type signal struct {
	src *internal.Source
}

func (s *signal) Connect(fn func()) func() {
	h := s.src.Subscribe(func(any) { fn() })
	return func() { s.src.Unsubscribe(h) }
}

type objectRef struct {
	p weak.Pointer[Object]
}

func (r *objectRef) Get() (Widget, bool) {
	o := r.p.Value()
	if o == nil || o.destroyed {
		return nil, false
	}
	return o, true
}

func (r *objectRef) Is(w Widget) bool {
	o, ok := w.(*Object)
	return ok && o != nil && weak.Make(o) == r.p
}

func (r *objectRef) OnDestroyed(fn func()) func() {
	o := r.p.Value()
	if o == nil || o.destroyed {
		fn()
		return func() {}
	}

	// the cancel func must not pin the object
	src := o.onDestroy
	h := src.Subscribe(func(any) { fn() })
	return func() { src.Unsubscribe(h) }
}
