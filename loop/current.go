//go:build !wasm

package loop

import (
	"sync"

	"github.com/petermattis/goid"
)

var loops sync.Map

// Current returns the Loop associated with the calling goroutine, creating it on first use.
func Current() *Loop {
	gid := goid.Get()

	if l, ok := loops.Load(gid); ok {
		return l.(*Loop)
	}

	l, _ := loops.LoadOrStore(gid, New())
	return l.(*Loop)
}
