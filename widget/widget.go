// Package widget describes what the binding core needs from a UI toolkit and
// provides Object, an in-memory implementation hosts can embed or adapt.
package widget

import "github.com/AnatoleLucet/bind/value"

// PropertyInfo describes a property a widget advertises.
type PropertyInfo struct {
	Name     string
	Kind     value.Kind
	Notify   bool // the widget emits "<Name>Changed" when the property changes
	ReadOnly bool
}

// Widget is the toolkit contract consumed by bindings.
type Widget interface {
	// ClassName is the toolkit class, e.g. "Label".
	ClassName() string
	// ObjectName is an optional instance name; empty when unset.
	ObjectName() string

	Properties() []PropertyInfo
	Property(name string) (value.Value, bool)
	// SetProperty reports whether the toolkit accepted the value.
	SetProperty(name string, v value.Value) bool

	// NotifySignal returns the change signal of a property, if it has one.
	NotifySignal(property string) (Signal, bool)

	// Ref returns a reference that does not keep the widget alive.
	Ref() Ref
}

// Signal is an observable toolkit event.
type Signal interface {
	Connect(fn func()) (disconnect func())
}

// Ref is a weak reference to a widget.
type Ref interface {
	// Get returns the widget if it has not been destroyed.
	Get() (Widget, bool)
	// Is reports whether the reference points at w.
	Is(w Widget) bool
	// OnDestroyed registers fn to run when the widget is destroyed.
	OnDestroyed(fn func()) (cancel func())
}

// SignalName returns the name of the notify signal for a property.
func SignalName(property string) string {
	return property + "Changed"
}
