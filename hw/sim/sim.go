// hw/sim/sim.go
// Package sim is the host-side binding of the hw contracts: a recording
// pin port and a manually advanced microsecond clock. Tests and the
// selftest binary use it in place of silicon.
package sim

import (
	"sync"

	"emonnode-go/hw"
)

// PinEvent records one mutation applied through the port.
type PinEvent struct {
	Kind string // "mux" | "muxclear" | "dir" | "drv" | "cfg"
	Grp  uint8
	Pin  uint8
	Mux  hw.Mux
	Dir  hw.Dir
	Drv  hw.Drv
	Cfg  uint8
	Set  bool
}

// PinState is a snapshot of one simulated pin.
type PinState struct {
	Muxed bool
	Mux   hw.Mux
	Dir   hw.Dir
	Out   bool
	Cfg   uint8
	In    bool
}

// Port implements hw.Port over an in-memory pin table. Input levels are
// set by the test through SetInput; every mutation is traced. OnDrv, when
// non-nil, runs after each drive operation so a test can stand in for a
// bus peer reacting to pin edges (e.g. releasing SDA after some number of
// SCL toggles).
type Port struct {
	mu    sync.Mutex
	pins  map[hw.Pin]*PinState
	trace []PinEvent

	OnDrv func(grp, pin uint8, drv hw.Drv)
}

func NewPort() *Port {
	return &Port{pins: make(map[hw.Pin]*PinState)}
}

func (p *Port) pin(grp, pin uint8) *PinState {
	k := hw.Pin{Grp: grp, Pin: pin}
	s, ok := p.pins[k]
	if !ok {
		s = &PinState{}
		p.pins[k] = s
	}
	return s
}

func (p *Port) PinMux(grp, pin uint8, mux hw.Mux) {
	p.mu.Lock()
	s := p.pin(grp, pin)
	s.Muxed = true
	s.Mux = mux
	p.trace = append(p.trace, PinEvent{Kind: "mux", Grp: grp, Pin: pin, Mux: mux})
	p.mu.Unlock()
}

func (p *Port) PinMuxClear(grp, pin uint8) {
	p.mu.Lock()
	s := p.pin(grp, pin)
	s.Muxed = false
	p.trace = append(p.trace, PinEvent{Kind: "muxclear", Grp: grp, Pin: pin})
	p.mu.Unlock()
}

func (p *Port) PinDir(grp, pin uint8, dir hw.Dir) {
	p.mu.Lock()
	p.pin(grp, pin).Dir = dir
	p.trace = append(p.trace, PinEvent{Kind: "dir", Grp: grp, Pin: pin, Dir: dir})
	p.mu.Unlock()
}

func (p *Port) PinDrv(grp, pin uint8, drv hw.Drv) {
	p.mu.Lock()
	s := p.pin(grp, pin)
	switch drv {
	case hw.DrvClr:
		s.Out = false
	case hw.DrvSet:
		s.Out = true
	case hw.DrvTgl:
		s.Out = !s.Out
	}
	p.trace = append(p.trace, PinEvent{Kind: "drv", Grp: grp, Pin: pin, Drv: drv})
	hook := p.OnDrv
	p.mu.Unlock()
	if hook != nil {
		hook(grp, pin, drv)
	}
}

func (p *Port) PinCfg(grp, pin uint8, cfg uint8, set bool) {
	p.mu.Lock()
	s := p.pin(grp, pin)
	if set {
		s.Cfg |= cfg
	} else {
		s.Cfg &^= cfg
	}
	p.trace = append(p.trace, PinEvent{Kind: "cfg", Grp: grp, Pin: pin, Cfg: cfg, Set: set})
	p.mu.Unlock()
}

func (p *Port) PinValue(grp, pin uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pin(grp, pin).In
}

// SetInput sets the level a subsequent PinValue read returns.
func (p *Port) SetInput(grp, pin uint8, level bool) {
	p.mu.Lock()
	p.pin(grp, pin).In = level
	p.mu.Unlock()
}

// State returns a snapshot of one pin.
func (p *Port) State(grp, pin uint8) PinState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.pin(grp, pin)
}

// Events returns a copy of the mutation trace.
func (p *Port) Events() []PinEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PinEvent, len(p.trace))
	copy(out, p.trace)
	return out
}

// ResetTrace discards the mutation trace.
func (p *Port) ResetTrace() {
	p.mu.Lock()
	p.trace = p.trace[:0]
	p.mu.Unlock()
}

// Clock implements hw.Clock without real time. Each Micros call advances
// the counter by AutoStep (zero by default), so a driver polling loop
// observes time passing; Advance moves it explicitly.
type Clock struct {
	mu       sync.Mutex
	now      uint32
	AutoStep uint32
}

func NewClock(autoStep uint32) *Clock {
	return &Clock{AutoStep: autoStep}
}

func (c *Clock) Micros() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += c.AutoStep
	return c.now
}

// Since is a clock read like Micros and advances by AutoStep too, so a
// polling loop that only re-checks its deadline still observes time.
func (c *Clock) Since(prev uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += c.AutoStep
	return c.now - prev
}

func (c *Clock) DelayMicros(n uint32) {
	c.mu.Lock()
	c.now += n
	c.mu.Unlock()
}

// Advance moves the clock forward without a read.
func (c *Clock) Advance(n uint32) {
	c.mu.Lock()
	c.now += n
	c.mu.Unlock()
}
