// drivers/sercom/extintf.go
package sercom

import (
	"sync/atomic"

	"emonnode-go/hw"
)

// ExtPins is the external SPI bus pin set torn down or restored as the
// interface gate changes state.
type ExtPins struct {
	MISO hw.Pin
	MOSI hw.Pin
	SCK  hw.Pin
	SS   hw.Pin
	Mux  hw.Mux
}

// ExtIntf is the process-wide gate over the external bus segment (radio,
// external I2C/SPI peers). The flag defaults to enabled at boot and
// tracks the last observed level of the physical disable line; it is
// mutated from the edge interrupt handler and read from mainline SPI and
// I2C-external operations. A stale read spans at most one interrupt
// latency, which the short bus operations tolerate.
type ExtIntf struct {
	enabled atomic.Bool
	port    hw.Port
	pins    ExtPins
}

func NewExtIntf(port hw.Port, pins ExtPins) *ExtIntf {
	g := &ExtIntf{port: port, pins: pins}
	g.enabled.Store(true)
	return g
}

// Enabled is a pure read of the gate flag.
func (g *ExtIntf) Enabled() bool { return g.enabled.Load() }

// Disable gates the external interface off and tri-states the SPI pins so
// the unpowered segment floats safely.
func (g *ExtIntf) Disable() {
	g.enabled.Store(false)
	g.pinsSetup(false)
}

// Enable re-asserts the SPI pin multiplexing and opens the gate. Driven by
// the interrupt controller when the disable condition clears.
func (g *ExtIntf) Enable() {
	g.enabled.Store(true)
	g.pinsSetup(true)
}

func (g *ExtIntf) pinsSetup(enable bool) {
	p := g.port
	if enable {
		p.PinMux(g.pins.MISO.Grp, g.pins.MISO.Pin, g.pins.Mux)
		p.PinMux(g.pins.MOSI.Grp, g.pins.MOSI.Pin, g.pins.Mux)
		p.PinMux(g.pins.SCK.Grp, g.pins.SCK.Pin, g.pins.Mux)
		p.PinDir(g.pins.SS.Grp, g.pins.SS.Pin, hw.DirOut)
		return
	}
	p.PinMuxClear(g.pins.MISO.Grp, g.pins.MISO.Pin)
	p.PinMuxClear(g.pins.MOSI.Grp, g.pins.MOSI.Pin)
	p.PinMuxClear(g.pins.SCK.Grp, g.pins.SCK.Pin)

	p.PinDir(g.pins.MISO.Grp, g.pins.MISO.Pin, hw.DirIn)
	p.PinDir(g.pins.MOSI.Grp, g.pins.MOSI.Pin, hw.DirIn)
	p.PinDir(g.pins.SCK.Grp, g.pins.SCK.Pin, hw.DirIn)
	p.PinDir(g.pins.SS.Grp, g.pins.SS.Pin, hw.DirIn)
}
