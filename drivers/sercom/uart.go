// drivers/sercom/uart.go
package sercom

import (
	"runtime"

	"emonnode-go/drivers/dmac"
	"emonnode-go/hw"
	"emonnode-go/x/mathx"
	"emonnode-go/x/ringbuf"
)

// UART interrupt flags.
const (
	UARTIntFlagDRE uint8 = 1 << 0 // data register empty
	UARTIntFlagTXC uint8 = 1 << 1 // transmit complete
	UARTIntFlagRXC uint8 = 1 << 2 // receive complete
)

// UARTHw is the register surface of one USART channel.
type UARTHw interface {
	SetBaud(div uint16)
	IntFlag() uint8
	ClearIntFlag(mask uint8)
	WriteData(b byte)
	// ReadData returns the received byte; the read clears the RXC flag.
	ReadData() byte
	SetRxEnabled(on bool)
	SetTxEnabled(on bool)
	EnableRxInterrupt()
	Enabled() bool
	SetEnabled(on bool)
	SyncBusy() bool
}

// Baud is a requested line rate selector.
type Baud uint32

const (
	Baud9600   Baud = 9600
	Baud19200  Baud = 19200
	Baud28800  Baud = 28800
	Baud38400  Baud = 38400
	Baud57600  Baud = 57600
	Baud76800  Baud = 76800
	Baud115200 Baud = 115200
)

// Fractional baud-rate divisors for an 8 MHz reference clock, precomputed
// rather than derived at runtime.
var baudDivisor = map[Baud]uint16{
	Baud9600:   64279,
	Baud19200:  63020,
	Baud28800:  61762,
	Baud38400:  60504,
	Baud57600:  57987,
	Baud76800:  55471,
	Baud115200: 50438,
}

// A rate outside the supported table falls back to 9600.
const baudDivisorDefault = 64279

// DivisorFor resolves a rate selector to its register divisor.
func DivisorFor(b Baud) uint16 {
	if d, ok := baudDivisor[b]; ok {
		return d
	}
	return baudDivisorDefault
}

// UARTPins is the TX/RX routing for one channel.
type UARTPins struct {
	TX  hw.Pin
	RX  hw.Pin
	Mux hw.Mux
}

// UARTConfig binds a channel to its rate, pins and transfer channel.
type UARTConfig struct {
	Baud       Baud
	Pins       UARTPins
	DMAChannel int
	// RxBuf is the receive ring size; clamped and rounded up to a power
	// of two, default 64.
	RxBuf int
}

// UART is one buffered serial channel: transmit offloaded to the dmac
// engine behind a busy flag, receive interrupt-driven into a byte ring.
type UART struct {
	hw   UARTHw
	port hw.Port
	eng  *dmac.Engine
	ch   int

	// busy is shared with the transfer-completion interrupt; see hw.Flag.
	busy hw.Flag
	rx   *ringbuf.Ring
}

func NewUART(h UARTHw, port hw.Port, eng *dmac.Engine) *UART {
	return &UART{hw: h, port: port, eng: eng}
}

// Configure binds pins, the tabulated baud divisor and the transfer
// descriptor whose destination is this channel's data register. The
// channel is left ready but not enabled; EnableTransmit/EnableReceive
// switch it on.
func (u *UART) Configure(cfg UARTConfig) {
	u.port.PinMux(cfg.Pins.TX.Grp, cfg.Pins.TX.Pin, cfg.Pins.Mux)
	u.port.PinMux(cfg.Pins.RX.Grp, cfg.Pins.RX.Pin, cfg.Pins.Mux)

	u.hw.SetBaud(DivisorFor(cfg.Baud))

	size := cfg.RxBuf
	if size == 0 {
		size = 64
	}
	size = mathx.Clamp(size, 16, 1024)
	u.rx = ringbuf.New(nextPow2(size))

	u.ch = cfg.DMAChannel
	u.eng.Configure(u.ch, dmac.Descriptor{Dst: u.hw.WriteData})
	u.eng.SetCompletion(u.ch, u.busy.Clear)
}

func nextPow2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}

// WriteByteBlocking waits for any outstanding asynchronous transfer, then
// for the data register, then writes. Bounded by the hardware handshake,
// so there is no software timeout.
func (u *UART) WriteByteBlocking(b byte) {
	for u.busy.Get() {
		runtime.Gosched()
	}
	for u.hw.IntFlag()&UARTIntFlagDRE == 0 {
		runtime.Gosched()
	}
	u.hw.WriteData(b)
	u.hw.ClearIntFlag(UARTIntFlagDRE)
}

// WriteStringBlocking writes s one byte at a time.
func (u *UART) WriteStringBlocking(s string) {
	for i := 0; i < len(s); i++ {
		u.WriteByteBlocking(s[i])
	}
}

// WriteBufferAsync hands the buffer to the transfer engine and returns
// immediately. The busy flag is set and the transfer armed inside one
// critical section so a completion cannot slip between the two writes.
// A transfer already in flight rejects the call; the buffer must stay
// untouched until TxBusy reports false.
func (u *UART) WriteBufferAsync(p []byte) bool {
	if u.busy.Get() {
		return false
	}
	u.eng.Load(u.ch, p)
	u.busy.SetAndArm(func() {
		u.eng.Enable(u.ch)
	})
	return true
}

// TxBusy reports whether an asynchronous transfer is still in flight.
func (u *UART) TxBusy() bool { return u.busy.Get() }

// EnableReceive switches the receiver on, enabling the channel first if
// needed and waiting out the hardware enable synchronisation. Idempotent.
func (u *UART) EnableReceive() {
	u.hw.EnableRxInterrupt()
	u.hw.SetRxEnabled(true)
	u.enableChannel()
}

// EnableTransmit switches the transmitter on. Idempotent.
func (u *UART) EnableTransmit() {
	u.hw.SetTxEnabled(true)
	u.enableChannel()
}

func (u *UART) enableChannel() {
	if u.hw.Enabled() {
		return
	}
	u.hw.SetEnabled(true)
	for u.hw.SyncBusy() {
		runtime.Gosched()
	}
}

// ServiceRxIRQ drains the receive data register into the ring. It is the
// channel's receive interrupt handler.
func (u *UART) ServiceRxIRQ() {
	for u.hw.IntFlag()&UARTIntFlagRXC != 0 {
		u.rx.Put(u.hw.ReadData())
	}
}

// ByteAvailable reports whether ReadByte would return fresh data.
func (u *UART) ByteAvailable() bool {
	return u.rx.Len() > 0 || u.hw.IntFlag()&UARTIntFlagRXC != 0
}

// ReadByte returns the oldest buffered byte, falling back to the data
// register. Non-blocking; check ByteAvailable first or the result is
// stale.
func (u *UART) ReadByte() byte {
	if b, ok := u.rx.Get(); ok {
		return b
	}
	return u.hw.ReadData()
}

// RxDrops reports receive bytes discarded on a full ring.
func (u *UART) RxDrops() uint32 { return u.rx.Drops() }
