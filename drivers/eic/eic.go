// drivers/eic/eic.go
// Package eic drives the external interrupt controller: edge detection on
// the interface-disable line and the radio interrupt request. The disable
// line gates the whole external segment, so its handler runs before any
// other dispatch.
package eic

import (
	"runtime"

	"emonnode-go/hw"
)

// Sense selects the edge condition an interrupt line detects.
type Sense uint8

const (
	SenseNone Sense = iota
	SenseRise
	SenseFall
	SenseBoth
)

// Hw is the register surface of the interrupt controller.
type Hw interface {
	// ConfigureLine selects the edge condition for a line; filter enables
	// majority-vote input filtering against glitches.
	ConfigureLine(line uint8, s Sense, filter bool)
	EnableLine(line uint8)
	DisableLine(line uint8)
	// Pending returns the latched interrupt line bitmap.
	Pending() uint32
	ClearPending(mask uint32)
	SetEnabled(on bool)
	SyncBusy() bool
}

// Gate is the external-interface gate the controller toggles as the
// disable line changes level.
type Gate interface {
	Enabled() bool
	Enable()
	Disable()
}

// Config binds the controller to its two lines. The disable line is
// active-low: a high level means the external interface operates.
type Config struct {
	Port hw.Port
	Gate Gate

	DisablePin  hw.Pin
	DisableLine uint8
	DisableMux  hw.Mux

	RadioPin  hw.Pin
	RadioLine uint8
	RadioMux  hw.Mux

	// OnRadio runs in interrupt context on a radio request edge. Never
	// dispatched while the gate is off.
	OnRadio func()
}

type Controller struct {
	hw  Hw
	cfg Config
}

func NewController(h Hw, cfg Config) *Controller {
	return &Controller{hw: h, cfg: cfg}
}

// Setup routes both pins to the interrupt function, arms edge detection
// and enables the controller. The disable line senses both edges so
// assertion and release are each observed; the radio request is a rising
// edge only.
//
// A level change on the disable line between boot-time sampling and the
// controller going live would be lost, so the level is re-checked after
// arming and any transition applied by hand.
func (c *Controller) Setup() {
	p := c.cfg.Port

	p.PinCfg(c.cfg.DisablePin.Grp, c.cfg.DisablePin.Pin, hw.CfgInputEnable, true)
	p.PinMux(c.cfg.DisablePin.Grp, c.cfg.DisablePin.Pin, c.cfg.DisableMux)
	p.PinCfg(c.cfg.RadioPin.Grp, c.cfg.RadioPin.Pin, hw.CfgInputEnable, true)
	p.PinMux(c.cfg.RadioPin.Grp, c.cfg.RadioPin.Pin, c.cfg.RadioMux)

	c.hw.ConfigureLine(c.cfg.DisableLine, SenseBoth, true)
	c.hw.ConfigureLine(c.cfg.RadioLine, SenseRise, true)
	c.hw.EnableLine(c.cfg.DisableLine)
	if c.cfg.Gate.Enabled() {
		c.hw.EnableLine(c.cfg.RadioLine)
	}

	before := p.PinValue(c.cfg.DisablePin.Grp, c.cfg.DisablePin.Pin)

	c.hw.SetEnabled(true)
	for c.hw.SyncBusy() {
		runtime.Gosched()
	}

	if p.PinValue(c.cfg.DisablePin.Grp, c.cfg.DisablePin.Pin) != before {
		c.applyDisableLevel()
	}
}

// ServiceIRQ dispatches latched edges. The disable line goes first: if the
// external segment was just gated off, a simultaneously latched radio
// request must not reach its handler.
func (c *Controller) ServiceIRQ() {
	pend := c.hw.Pending()

	if pend&(1<<c.cfg.DisableLine) != 0 {
		c.hw.ClearPending(1 << c.cfg.DisableLine)
		c.applyDisableLevel()
	}

	if pend&(1<<c.cfg.RadioLine) != 0 {
		c.hw.ClearPending(1 << c.cfg.RadioLine)
		if c.cfg.Gate.Enabled() && c.cfg.OnRadio != nil {
			c.cfg.OnRadio()
		}
	}
}

// applyDisableLevel brings the gate and the radio interrupt line into the
// state the disable pin currently demands. On the way down the radio line
// is silenced before the gate closes; on the way up the gate opens before
// the line is re-armed.
func (c *Controller) applyDisableLevel() {
	if c.cfg.Port.PinValue(c.cfg.DisablePin.Grp, c.cfg.DisablePin.Pin) {
		c.cfg.Gate.Enable()
		c.hw.EnableLine(c.cfg.RadioLine)
		return
	}
	c.hw.DisableLine(c.cfg.RadioLine)
	c.cfg.Gate.Disable()
}
