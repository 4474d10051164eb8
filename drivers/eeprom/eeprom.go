// drivers/eeprom/eeprom.go
// Package eeprom drives the byte-addressed configuration EEPROM on the
// internal I2C bus. The device folds the high address bits into its bus
// address and accepts writes only up to the next page boundary, so writes
// are chunked per page with a write-cycle delay between chunks; reads are
// sequential and unpaged.
package eeprom

import (
	"emonnode-go/drivers/sercom"
	"emonnode-go/errcode"
	"emonnode-go/hw"
	"emonnode-go/x/mathx"
)

// Channel is the slice of an I2C master this driver needs.
type Channel interface {
	Activate(addr byte) sercom.Status
	DataWrite(b byte) sercom.Status
	DataRead() (byte, sercom.Status)
	Ack(ack sercom.Ack, cmd sercom.AckCmd)
}

type Config struct {
	// Addr is the 7-bit device base address.
	Addr      uint8
	SizeBytes int
	PageSize  int
	// WriteDelayUs is the device's internal write-cycle time, waited out
	// after every page write.
	WriteDelayUs uint32
}

type EEPROM struct {
	ch  Channel
	clk hw.Clock
	cfg Config
}

func New(ch Channel, clk hw.Clock, cfg Config) *EEPROM {
	return &EEPROM{ch: ch, clk: clk, cfg: cfg}
}

// busAddr builds the wire byte for a memory address: base address with the
// high address bits folded in, shifted for the read/write flag.
func (e *EEPROM) busAddr(addr uint16) byte {
	return (e.cfg.Addr | byte(addr>>8)) << 1
}

// WriteBytes programs p at addr, chunked on page boundaries.
func (e *EEPROM) WriteBytes(addr uint16, p []byte) error {
	if int(addr)+len(p) > e.cfg.SizeBytes {
		return &errcode.E{C: errcode.OutOfRange, Op: "eeprom.write"}
	}

	for len(p) > 0 {
		n := mathx.Min(e.cfg.PageSize-int(addr)%e.cfg.PageSize, len(p))

		if s := e.ch.Activate(e.busAddr(addr)); s != sercom.StatusSuccess {
			return s.Err("eeprom.write")
		}
		if s := e.ch.DataWrite(byte(addr)); s != sercom.StatusSuccess {
			e.ch.Ack(sercom.AckAck, sercom.AckCmdStop)
			return s.Err("eeprom.write")
		}
		for _, b := range p[:n] {
			if s := e.ch.DataWrite(b); s != sercom.StatusSuccess {
				e.ch.Ack(sercom.AckAck, sercom.AckCmdStop)
				return s.Err("eeprom.write")
			}
		}
		e.ch.Ack(sercom.AckAck, sercom.AckCmdStop)

		// The device goes silent while it commits the page.
		e.clk.DelayMicros(e.cfg.WriteDelayUs)

		addr += uint16(n)
		p = p[n:]
	}
	return nil
}

// ReadBytes fills p from addr with one sequential read.
func (e *EEPROM) ReadBytes(addr uint16, p []byte) error {
	if int(addr)+len(p) > e.cfg.SizeBytes {
		return &errcode.E{C: errcode.OutOfRange, Op: "eeprom.read"}
	}
	if len(p) == 0 {
		return nil
	}

	// Dummy write sets the device's address pointer.
	if s := e.ch.Activate(e.busAddr(addr)); s != sercom.StatusSuccess {
		return s.Err("eeprom.read")
	}
	if s := e.ch.DataWrite(byte(addr)); s != sercom.StatusSuccess {
		e.ch.Ack(sercom.AckAck, sercom.AckCmdStop)
		return s.Err("eeprom.read")
	}

	// Repeated start into the read.
	if s := e.ch.Activate(e.busAddr(addr) | 1); s != sercom.StatusSuccess {
		e.ch.Ack(sercom.AckAck, sercom.AckCmdStop)
		return s.Err("eeprom.read")
	}
	for i := range p {
		v, s := e.ch.DataRead()
		if s != sercom.StatusSuccess {
			e.ch.Ack(sercom.AckNack, sercom.AckCmdStop)
			return s.Err("eeprom.read")
		}
		p[i] = v
		if i < len(p)-1 {
			e.ch.Ack(sercom.AckAck, sercom.AckCmdContinue)
		}
	}
	e.ch.Ack(sercom.AckNack, sercom.AckCmdStop)
	return nil
}
