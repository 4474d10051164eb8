// drivers/dmac/dmac.go
// Package dmac is the asynchronous transfer engine that offloads UART
// transmission from the mainline loop. Each channel carries at most one
// transfer descriptor; completion is signalled through a per-channel
// callback that runs in completion-interrupt context (its own goroutine
// here), never on the caller.
package dmac

import "sync/atomic"

// Descriptor binds a channel to its destination: one write per beat into
// the peripheral's data register.
type Descriptor struct {
	Dst func(b byte)
}

type channel struct {
	desc       Descriptor
	src        []byte
	completion func()
	busy       atomic.Bool
}

// Engine multiplexes numbered transfer channels.
type Engine struct {
	ch []channel
}

func NewEngine(channels int) *Engine {
	if channels <= 0 {
		channels = 1
	}
	return &Engine{ch: make([]channel, channels)}
}

// Configure registers the channel's destination. Call once before use.
func (e *Engine) Configure(ch int, d Descriptor) {
	e.ch[ch].desc = d
}

// SetCompletion installs the completion callback for the channel. The
// callback runs exactly once per enabled transfer, from the engine's own
// execution context.
func (e *Engine) SetCompletion(ch int, fn func()) {
	e.ch[ch].completion = fn
}

// Load arms the channel's descriptor with a source buffer. The caller
// must not Load while a transfer is in flight; the channel keeps at most
// one outstanding descriptor.
func (e *Engine) Load(ch int, src []byte) {
	e.ch[ch].src = src
}

// Enable starts the armed transfer. Enabling a busy channel is a no-op,
// as on the hardware. The transfer runs asynchronously: each source byte
// is written to the descriptor destination, then the busy state drops and
// the completion callback fires.
func (e *Engine) Enable(ch int) {
	c := &e.ch[ch]
	if !c.busy.CompareAndSwap(false, true) {
		return
	}
	src := c.src
	go func() {
		for _, b := range src {
			c.desc.Dst(b)
		}
		c.busy.Store(false)
		if c.completion != nil {
			c.completion()
		}
	}()
}

// Busy reports whether the channel has a transfer in flight.
func (e *Engine) Busy(ch int) bool {
	return e.ch[ch].busy.Load()
}
