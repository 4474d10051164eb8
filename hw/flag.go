// hw/flag.go
package hw

import (
	"sync"
	"sync/atomic"
)

// Flag is a boolean shared between mainline code and a completion
// interrupt. The mainline side must set the flag and trigger the
// asynchronous operation as one unit, or a completion that lands between
// the two writes can be lost and leave the flag stuck true; SetAndArm
// brackets both inside one critical section, and Clear (the interrupt
// side) takes the same section. Get is a plain atomic read and is safe
// from any context.
type Flag struct {
	mu sync.Mutex
	v  atomic.Bool
}

// Get reports the current value without taking the critical section.
func (f *Flag) Get() bool { return f.v.Load() }

// SetAndArm sets the flag true and runs arm while completions are
// excluded. arm must start the asynchronous operation whose completion
// will Clear the flag.
func (f *Flag) SetAndArm(arm func()) {
	f.mu.Lock()
	f.v.Store(true)
	arm()
	f.mu.Unlock()
}

// Clear resets the flag from the completion path. It blocks until any
// in-progress SetAndArm has finished, mirroring an interrupt held off by
// a global interrupt-disable section.
func (f *Flag) Clear() {
	f.mu.Lock()
	f.v.Store(false)
	f.mu.Unlock()
}
