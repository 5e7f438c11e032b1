package internal

import (
	"fmt"
	"runtime/debug"
)

// Panic is the error returned by Owner.Run when the function panicked.
type Panic struct {
	Value any
	Stack string
}

func (p *Panic) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (p *Panic) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// Owner collects cleanup functions for a set of subscriptions and runs them once on Dispose.
type Owner struct {
	// cleanup functions to be called when the owner is disposed
	cleanups []func()

	disposed bool
}

func NewOwner() *Owner {
	return &Owner{
		cleanups: make([]func(), 0),
	}
}

// Run calls fn and turns a panic into a *Panic error.
func (o *Owner) Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Panic{Value: r, Stack: string(debug.Stack())}
		}
	}()

	return fn()
}

// OnCleanup registers fn to run on Dispose. On an already disposed owner fn runs right away.
func (o *Owner) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if o.disposed {
		fn()
		return
	}

	o.cleanups = append(o.cleanups, fn)
}

// Dispose runs the cleanups in reverse registration order. Calling it again is a no-op.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	for i := len(o.cleanups) - 1; i >= 0; i-- {
		o.cleanups[i]()
	}
	o.cleanups = nil
}

func (o *Owner) Disposed() bool {
	return o.disposed
}
