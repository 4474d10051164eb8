// drivers/sercom/spi.go
package sercom

import (
	"runtime"

	"emonnode-go/hw"
)

// SPI interrupt flags.
const (
	SPIIntFlagDRE uint8 = 1 << 0
	SPIIntFlagTXC uint8 = 1 << 1
	SPIIntFlagRXC uint8 = 1 << 2
)

// SPIHw is the register surface of the SPI master channel (mode 0,
// full-duplex byte transfers).
type SPIHw interface {
	IntFlag() uint8
	ClearIntFlag(mask uint8)
	WriteData(b byte)
	// ReadData returns the shifted-in byte; the read clears the RXC flag.
	ReadData() byte
}

// SPI is the external-bus master. Every operation consults the interface
// gate and degrades to a no-op while the segment is off: an absent radio
// is a normal operating mode, not an error.
type SPI struct {
	hw   SPIHw
	gate *ExtIntf
	port hw.Port
}

func NewSPI(h SPIHw, gate *ExtIntf, port hw.Port) *SPI {
	return &SPI{hw: h, gate: gate, port: port}
}

// ConfigureExternal samples the (active-low) disable line once and brings
// the gate and the bus pins into the matching state. Run at startup
// before the interrupt controller takes over tracking the line.
func (s *SPI) ConfigureExternal(nDisable hw.Pin) {
	if s.port.PinValue(nDisable.Grp, nDisable.Pin) {
		s.gate.Enable()
	} else {
		s.gate.Disable()
	}
}

// Select drives a chip-select low. No-op while the gate is off.
func (s *SPI) Select(nSS hw.Pin) {
	if !s.gate.Enabled() {
		return
	}
	s.port.PinDrv(nSS.Grp, nSS.Pin, hw.DrvClr)
}

// Deselect drives a chip-select high. No-op while the gate is off.
func (s *SPI) Deselect(nSS hw.Pin) {
	if !s.gate.Enabled() {
		return
	}
	s.port.PinDrv(nSS.Grp, nSS.Pin, hw.DrvSet)
}

// SendByte clocks one byte out and returns the byte shifted in. Returns 0
// without touching the bus while the gate is off. Hardware-bounded waits,
// no software timeout.
func (s *SPI) SendByte(b byte) byte {
	if !s.gate.Enabled() {
		return 0
	}

	for s.hw.IntFlag()&SPIIntFlagDRE == 0 {
		runtime.Gosched()
	}
	// Drop any stale receive-complete before starting the exchange.
	s.hw.ClearIntFlag(SPIIntFlagRXC)
	s.hw.WriteData(b)

	for s.hw.IntFlag()&SPIIntFlagRXC == 0 {
		runtime.Gosched()
	}
	return s.hw.ReadData()
}

// SendBuffer clocks the buffer out, discarding the shifted-in bytes.
// No-op while the gate is off.
func (s *SPI) SendBuffer(p []byte) {
	if !s.gate.Enabled() {
		return
	}
	for _, b := range p {
		s.SendByte(b)
	}
}
