// events/events.go
// Package events carries pending-event bits from interrupt handlers to
// the mainline loop. Handlers set bits; the loop takes them one at a
// time and runs the matching follow-up work outside interrupt context.
package events

import "sync/atomic"

// Event is a bit index in the pending word.
type Event uint8

const (
	EventUartRx Event = iota
	EventRadio
	EventGateChange
	EventTick

	numEvents
)

func (e Event) String() string {
	switch e {
	case EventUartRx:
		return "uart_rx"
	case EventRadio:
		return "radio"
	case EventGateChange:
		return "gate_change"
	case EventTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Pending is the shared event word. The zero value is ready to use.
type Pending struct {
	bits atomic.Uint32
}

// Set marks an event pending. Safe from interrupt context.
func (p *Pending) Set(e Event) {
	p.bits.Or(1 << e)
}

// Take clears the event and reports whether it was pending. Repeated
// sets before the mainline gets around to it coalesce into one.
func (p *Pending) Take(e Event) bool {
	old := p.bits.And(^(uint32(1) << e))
	return old&(1<<e) != 0
}

// Any reports whether any event is pending.
func (p *Pending) Any() bool {
	return p.bits.Load() != 0
}

// Drain calls fn for every pending event in bit order, clearing each
// first so a handler that re-raises its own event is seen next round.
func (p *Pending) Drain(fn func(Event)) {
	for e := Event(0); e < numEvents; e++ {
		if p.Take(e) {
			fn(e)
		}
	}
}
