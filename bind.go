// Package bind keeps widget properties and application state in sync.
//
// A Source holds a value and notifies on change. A Binding connects a Source
// (or a compute function) to a named property of a widget, converting and
// validating values on the way, in one of three directions and three update
// modes. A Manager owns a set of bindings and runs batch operations over them.
//
// Everything in this package runs on the UI goroutine; nothing here is safe for
// concurrent use. Work from other goroutines must be posted through loop.Scheduler.
package bind

import (
	"fmt"
	"strings"
	"time"

	"github.com/AnatoleLucet/bind/widget"
)

// Direction controls which way values flow through a binding.
type Direction int

const (
	// OneWay copies source changes to the target.
	OneWay Direction = iota
	// TwoWay also copies target changes back to the source.
	TwoWay
	// OneTime writes the target once, when the binding is created.
	OneTime
)

func (d Direction) String() string {
	switch d {
	case OneWay:
		return "one-way"
	case TwoWay:
		return "two-way"
	case OneTime:
		return "one-time"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// UpdateMode controls when a source change reaches the target.
type UpdateMode int

const (
	// Immediate writes the target synchronously.
	Immediate UpdateMode = iota
	// Deferred coalesces changes and writes the last one once the debounce interval has passed quietly.
	// The write runs on the binding's scheduler: when that is a loop.Loop, the host
	// must Run it or call RunPending, or the write never happens.
	Deferred
	// Manual ignores source changes; only Update writes the target.
	Manual
)

func (m UpdateMode) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Deferred:
		return "deferred"
	case Manual:
		return "manual"
	default:
		return fmt.Sprintf("UpdateMode(%d)", int(m))
	}
}

// ParseUpdateMode parses the String form of an UpdateMode.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate", "":
		return Immediate, nil
	case "deferred":
		return Deferred, nil
	case "manual":
		return Manual, nil
	}
	return Immediate, fmt.Errorf("unknown update mode %q", s)
}

// MinDebounce is the shortest debounce interval; it matches one frame at 60Hz.
const MinDebounce = 16 * time.Millisecond

// Observable is anything a binding can watch for changes.
type Observable interface {
	// Watch calls fn after every change until cancel is called.
	Watch(fn func()) (cancel func())
	// Closed reports whether the observable was torn down.
	Closed() bool
}

// PropertyBinding is the type-erased view of a Binding, as held by a Manager.
type PropertyBinding interface {
	Update()
	Disconnect()

	IsValid() bool
	IsConnected() bool
	IsEnabled() bool
	SetEnabled(enabled bool)

	Direction() Direction
	UpdateMode() UpdateMode
	SetUpdateMode(mode UpdateMode)
	SetDebounceInterval(d time.Duration)

	SourcePath() string
	TargetPath() string
	Target() widget.Ref

	UpdateCount() uint64
	LastUpdateTime() time.Time
}

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}
