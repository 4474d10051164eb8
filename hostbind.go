// hostbind.go
// Host stand-ins for the register surfaces the mainline binds. The UART
// forwards transmit bytes to standard output; the rest are inert but
// keep the drivers' handshakes honest.
package main

import (
	"os"
	"sync"

	"emonnode-go/drivers/eic"
	"emonnode-go/drivers/sercom"
	"emonnode-go/drivers/wdt"
)

type hostUART struct {
	mu      sync.Mutex
	rxq     []byte
	enabled bool
	syncs   int
}

func (h *hostUART) SetBaud(div uint16) {}

func (h *hostUART) IntFlag() uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := sercom.UARTIntFlagDRE
	if len(h.rxq) > 0 {
		f |= sercom.UARTIntFlagRXC
	}
	return f
}

func (h *hostUART) ClearIntFlag(mask uint8) {}

func (h *hostUART) WriteData(b byte) {
	h.mu.Lock()
	os.Stdout.Write([]byte{b})
	h.mu.Unlock()
}

func (h *hostUART) ReadData() byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.rxq) == 0 {
		return 0
	}
	b := h.rxq[0]
	h.rxq = h.rxq[1:]
	return b
}

// feed queues a received byte as the receive shifter would.
func (h *hostUART) feed(p []byte) {
	h.mu.Lock()
	h.rxq = append(h.rxq, p...)
	h.mu.Unlock()
}

func (h *hostUART) SetRxEnabled(bool)  {}
func (h *hostUART) SetTxEnabled(bool)  {}
func (h *hostUART) EnableRxInterrupt() {}
func (h *hostUART) Enabled() bool      { return h.enabled }
func (h *hostUART) SetEnabled(on bool) { h.enabled = on; h.syncs = 2 }

func (h *hostUART) SyncBusy() bool {
	if h.syncs > 0 {
		h.syncs--
		return true
	}
	return false
}

// hostSPI loops MOSI back to MISO.
type hostSPI struct {
	intflag uint8
	shift   byte
}

func (h *hostSPI) IntFlag() uint8 { return h.intflag | sercom.SPIIntFlagDRE }

func (h *hostSPI) ClearIntFlag(mask uint8) { h.intflag &^= mask }

func (h *hostSPI) WriteData(b byte) {
	h.shift = b
	h.intflag |= sercom.SPIIntFlagRXC
}

func (h *hostSPI) ReadData() byte {
	h.intflag &^= sercom.SPIIntFlagRXC
	return h.shift
}

type hostEIC struct {
	enabled bool
	syncs   int
}

func (h *hostEIC) ConfigureLine(line uint8, s eic.Sense, filter bool) {}
func (h *hostEIC) EnableLine(line uint8)                              {}
func (h *hostEIC) DisableLine(line uint8)                             {}
func (h *hostEIC) Pending() uint32                                    { return 0 }
func (h *hostEIC) ClearPending(mask uint32)                           {}
func (h *hostEIC) SetEnabled(on bool)                                 { h.enabled = on; h.syncs = 2 }

func (h *hostEIC) SyncBusy() bool {
	if h.syncs > 0 {
		h.syncs--
		return true
	}
	return false
}

type hostWDT struct {
	enabled bool
	syncs   int
}

func (h *hostWDT) UseLowPowerClock()           {}
func (h *hostWDT) SetPeriod(uint8)             {}
func (h *hostWDT) SetEarlyWarningOffset(uint8) {}
func (h *hostWDT) EnableEarlyWarningIRQ()      {}
func (h *hostWDT) ClearEarlyWarning()          {}
func (h *hostWDT) SetEnabled(on bool)          { h.enabled = on; h.syncs = 2 }

func (h *hostWDT) SyncBusy() bool {
	if h.syncs > 0 {
		h.syncs--
		return true
	}
	return false
}

func (h *hostWDT) WriteClear(key uint8) {
	if key != wdt.ClearKey {
		panic("watchdog clear with bad key")
	}
}

func (h *hostWDT) DebuggerAttached() bool { return false }
func (h *hostWDT) Breakpoint()            {}
