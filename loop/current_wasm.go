//go:build wasm

package loop

import "sync"

var once sync.Once
var globalLoop *Loop

// Current returns the process-wide Loop; wasm runs a single UI goroutine.
func Current() *Loop {
	once.Do(func() {
		globalLoop = New()
	})

	return globalLoop
}
