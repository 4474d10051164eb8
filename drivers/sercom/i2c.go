// drivers/sercom/i2c.go
package sercom

import (
	"runtime"

	"emonnode-go/hw"
)

// I2C master interrupt flags.
const (
	I2CIntFlagMB uint8 = 1 << 0 // master on bus
	I2CIntFlagSB uint8 = 1 << 1 // slave on bus
)

// I2C master bus status bits.
const (
	I2CStatusBusErr  uint8 = 1 << 0
	I2CStatusArbLost uint8 = 1 << 1
	I2CStatusRxNack  uint8 = 1 << 2
)

// Timeout budgets, measured against the monotonic microsecond clock.
const (
	I2CActivateTimeoutUs = 200
	I2CDataTimeoutUs     = 200
)

// Clock-toggle ceiling for bus recovery: nine cycles walks a peer out of
// any bit position of a wedged byte.
const i2cRecoveryToggles = 9

const i2cRecoveryDelayUs = 5

// I2CHw is the register surface of one I2C master channel.
type I2CHw interface {
	Enabled() bool
	SetEnabled(on bool)
	SyncBusy() bool
	// WriteAddr starts the address phase; b carries the 7-bit address and
	// the read/write bit.
	WriteAddr(b byte)
	WriteData(b byte)
	ReadData() byte
	IntFlag() uint8
	BusStatus() uint8
	// Command issues the acknowledge action plus a bus command; the
	// hardware synchronises afterwards (SyncBusy).
	Command(ack Ack, cmd AckCmd)
	// Reset reinitialises the peripheral to its operating configuration:
	// master mode, fast-mode-equivalent timing, extended data hold,
	// forced bus-idle state.
	Reset()
}

// I2CPins is the bus pin pair, needed for bit-level recovery.
type I2CPins struct {
	SDA hw.Pin
	SCL hw.Pin
	Mux hw.Mux
}

// I2C is one master channel. Two independent instances exist: the
// internal bus and the external bus. The external instance must not be
// used while the interface gate is off; that check is the caller's, not
// this channel's.
type I2C struct {
	hw   I2CHw
	clk  hw.Clock
	port hw.Port
	pins I2CPins
}

func NewI2C(h I2CHw, clk hw.Clock, port hw.Port, pins I2CPins) *I2C {
	return &I2C{hw: h, clk: clk, port: port, pins: pins}
}

// Activate writes the address and waits for a master-on-bus or
// slave-on-bus condition within the timeout budget.
func (c *I2C) Activate(addr byte) Status {
	if !c.hw.Enabled() {
		return StatusDisabled
	}

	t := c.clk.Micros()
	c.hw.WriteAddr(addr)

	for c.hw.IntFlag()&(I2CIntFlagMB|I2CIntFlagSB) == 0 {
		if c.clk.Since(t) > I2CActivateTimeoutUs {
			return StatusTimeout
		}
		runtime.Gosched()
	}

	if c.hw.BusStatus()&(I2CStatusBusErr|I2CStatusArbLost) != 0 {
		return StatusError
	}
	if c.hw.BusStatus()&I2CStatusRxNack != 0 {
		return StatusNoAck
	}
	return StatusSuccess
}

// DataWrite sends one byte and waits for the master-on-bus condition
// within the timeout budget.
func (c *I2C) DataWrite(b byte) Status {
	t := c.clk.Micros()
	c.hw.WriteData(b)

	for c.hw.IntFlag()&I2CIntFlagMB == 0 {
		if c.clk.Since(t) > I2CDataTimeoutUs {
			return StatusTimeout
		}
		runtime.Gosched()
	}

	if c.hw.BusStatus()&(I2CStatusBusErr|I2CStatusArbLost) != 0 {
		return StatusError
	}
	if c.hw.BusStatus()&I2CStatusRxNack != 0 {
		return StatusNoAck
	}
	return StatusSuccess
}

// DataRead receives one byte, waiting for a slave-on-bus (or error
// master-on-bus) condition within the timeout budget.
func (c *I2C) DataRead() (byte, Status) {
	t := c.clk.Micros()

	for c.hw.IntFlag()&(I2CIntFlagMB|I2CIntFlagSB) == 0 {
		if c.clk.Since(t) > I2CDataTimeoutUs {
			return 0, StatusTimeout
		}
		runtime.Gosched()
	}

	if c.hw.BusStatus()&(I2CStatusBusErr|I2CStatusArbLost) != 0 {
		return 0, StatusError
	}
	return c.hw.ReadData(), StatusSuccess
}

// Ack sends the acknowledge action and bus command, then waits out the
// hardware synchronisation. No software timeout; the wait is
// hardware-bounded.
func (c *I2C) Ack(ack Ack, cmd AckCmd) {
	c.hw.Command(ack, cmd)
	for c.hw.SyncBusy() {
		runtime.Gosched()
	}
}

// BusRecovery forces a stuck bus back to idle. I2C has no protocol-level
// reset: a peer stuck mid-byte holds SDA low forever, so the clock is
// bit-banged until the peer releases the line, a stop condition is forced
// by hand, and the peripheral is reinitialised. Invoke after sustained
// Timeout/BusError results, or proactively at startup when the bus is
// suspect.
func (c *I2C) BusRecovery() {
	p := c.port
	sda, scl := c.pins.SDA, c.pins.SCL

	c.hw.SetEnabled(false)
	for c.hw.SyncBusy() {
		runtime.Gosched()
	}

	// Pins back to plain digital I/O: SCL driven high, SDA input with
	// pull-up.
	p.PinMuxClear(sda.Grp, sda.Pin)
	p.PinMuxClear(scl.Grp, scl.Pin)

	p.PinDir(scl.Grp, scl.Pin, hw.DirOut)
	p.PinDrv(scl.Grp, scl.Pin, hw.DrvSet)
	p.PinDir(sda.Grp, sda.Pin, hw.DirIn)
	p.PinCfg(sda.Grp, sda.Pin, hw.CfgInputEnable|hw.CfgPullEnable, true)
	p.PinDrv(sda.Grp, sda.Pin, hw.DrvSet) // pull-up

	// Toggle SCL until the peer releases the data line, nine cycles at
	// most. SDA is sampled before each falling edge; on hardware that
	// samples on the other phase this ordering matters electrically.
	for i := 0; i < i2cRecoveryToggles; i++ {
		if p.PinValue(sda.Grp, sda.Pin) {
			break // peer released the data line
		}
		p.PinDrv(scl.Grp, scl.Pin, hw.DrvClr)
		c.clk.DelayMicros(i2cRecoveryDelayUs)
		p.PinDrv(scl.Grp, scl.Pin, hw.DrvSet)
		c.clk.DelayMicros(i2cRecoveryDelayUs)
	}

	// Stop condition: SDA low-to-high while SCL stays high.
	p.PinDir(sda.Grp, sda.Pin, hw.DirOut)
	p.PinDrv(sda.Grp, sda.Pin, hw.DrvClr)
	c.clk.DelayMicros(i2cRecoveryDelayUs)
	p.PinDrv(scl.Grp, scl.Pin, hw.DrvSet)
	c.clk.DelayMicros(i2cRecoveryDelayUs)
	p.PinDrv(sda.Grp, sda.Pin, hw.DrvSet)
	c.clk.DelayMicros(i2cRecoveryDelayUs)

	// Back to the peripheral function and operating configuration.
	p.PinMux(sda.Grp, sda.Pin, c.pins.Mux)
	p.PinMux(scl.Grp, scl.Pin, c.pins.Mux)
	c.hw.Reset()
}
