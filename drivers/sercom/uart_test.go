// drivers/sercom/uart_test.go
package sercom

import (
	"sync"
	"testing"
	"time"

	"emonnode-go/drivers/dmac"
	"emonnode-go/hw"
	"emonnode-go/hw/sim"
)

// fakeUARTHw models an instantly-completing transmitter: writing the data
// register clears DRE, and the next status poll restores it (the shifter
// has finished by then). Writing while DRE is clear is the fault the
// driver must never commit.
type fakeUARTHw struct {
	mu      sync.Mutex
	intflag uint8
	tx      []byte
	rxq     []byte
	hold    chan struct{} // when non-nil, WriteData blocks until closed

	baud            uint16
	rxEn, txEn      bool
	rxIRQ           bool
	enabled         bool
	setEnabledCalls int
	syncLeft        int
	wroteWhileBusy  bool
}

func (f *fakeUARTHw) SetBaud(d uint16) {
	f.mu.Lock()
	f.baud = d
	f.mu.Unlock()
}

func (f *fakeUARTHw) IntFlag() uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intflag |= UARTIntFlagDRE
	if len(f.rxq) > 0 {
		f.intflag |= UARTIntFlagRXC
	}
	return f.intflag
}

func (f *fakeUARTHw) ClearIntFlag(mask uint8) {
	f.mu.Lock()
	f.intflag &^= mask
	f.mu.Unlock()
}

func (f *fakeUARTHw) WriteData(b byte) {
	if f.hold != nil {
		<-f.hold
	}
	f.mu.Lock()
	if f.intflag&UARTIntFlagDRE == 0 {
		f.wroteWhileBusy = true
	}
	f.tx = append(f.tx, b)
	f.intflag &^= UARTIntFlagDRE
	f.mu.Unlock()
}

func (f *fakeUARTHw) ReadData() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.rxq) == 0 {
		return 0
	}
	b := f.rxq[0]
	f.rxq = f.rxq[1:]
	if len(f.rxq) == 0 {
		f.intflag &^= UARTIntFlagRXC
	}
	return b
}

func (f *fakeUARTHw) SetRxEnabled(on bool) { f.mu.Lock(); f.rxEn = on; f.mu.Unlock() }
func (f *fakeUARTHw) SetTxEnabled(on bool) { f.mu.Lock(); f.txEn = on; f.mu.Unlock() }
func (f *fakeUARTHw) EnableRxInterrupt()   { f.mu.Lock(); f.rxIRQ = true; f.mu.Unlock() }

func (f *fakeUARTHw) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeUARTHw) SetEnabled(on bool) {
	f.mu.Lock()
	f.enabled = on
	f.setEnabledCalls++
	f.syncLeft = 2
	f.mu.Unlock()
}

func (f *fakeUARTHw) SyncBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncLeft > 0 {
		f.syncLeft--
		return true
	}
	return false
}

func (f *fakeUARTHw) txBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.tx...)
}

func newTestUART(f *fakeUARTHw, baud Baud) (*UART, *sim.Port) {
	port := sim.NewPort()
	eng := dmac.NewEngine(1)
	u := NewUART(f, port, eng)
	u.Configure(UARTConfig{
		Baud: baud,
		Pins: UARTPins{
			TX:  hw.Pin{Grp: 0, Pin: 10},
			RX:  hw.Pin{Grp: 0, Pin: 11},
			Mux: hw.MuxC,
		},
		DMAChannel: 0,
	})
	return u, port
}

func TestBaudDivisorTable(t *testing.T) {
	cases := []struct {
		baud Baud
		want uint16
	}{
		{Baud9600, 64279},
		{Baud19200, 63020},
		{Baud28800, 61762},
		{Baud38400, 60504},
		{Baud57600, 57987},
		{Baud76800, 55471},
		{Baud115200, 50438},
		{Baud(4800), 64279},   // unsupported: falls back to 9600
		{Baud(921600), 64279}, // unsupported: falls back to 9600
	}
	for _, c := range cases {
		if got := DivisorFor(c.baud); got != c.want {
			t.Errorf("DivisorFor(%d) = %d, want %d", c.baud, got, c.want)
		}
	}

	f := &fakeUARTHw{}
	newTestUART(f, Baud115200)
	if f.baud != 50438 {
		t.Errorf("Configure applied divisor %d, want 50438", f.baud)
	}
}

func TestWriteStringBlockingOrder(t *testing.T) {
	f := &fakeUARTHw{}
	u, _ := newTestUART(f, Baud115200)
	u.EnableTransmit()

	u.WriteStringBlocking("OK\r\n")

	if got := string(f.txBytes()); got != "OK\r\n" {
		t.Fatalf("data register saw %q, want %q", got, "OK\r\n")
	}
	if f.wroteWhileBusy {
		t.Fatal("byte written without observing transmit-empty first")
	}
}

func TestWriteBufferAsyncBusyFlag(t *testing.T) {
	f := &fakeUARTHw{hold: make(chan struct{})}
	u, _ := newTestUART(f, Baud115200)

	buf := []byte("hello")
	if !u.WriteBufferAsync(buf) {
		t.Fatal("first WriteBufferAsync rejected on idle channel")
	}
	if !u.TxBusy() {
		t.Fatal("busy flag not set after arming the transfer")
	}

	// Second transfer while the first is in flight must be rejected and
	// must not disturb it.
	if u.WriteBufferAsync([]byte("nope")) {
		t.Fatal("WriteBufferAsync accepted while busy")
	}

	close(f.hold)
	waitIdle(t, u)

	if got := string(f.txBytes()); got != "hello" {
		t.Fatalf("transfer delivered %q, want %q", got, "hello")
	}
}

func TestWriteByteBlockingWaitsForAsync(t *testing.T) {
	f := &fakeUARTHw{hold: make(chan struct{})}
	u, _ := newTestUART(f, Baud9600)

	u.WriteBufferAsync([]byte("ab"))

	done := make(chan struct{})
	go func() {
		u.WriteByteBlocking('c')
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("blocking write completed while a transfer was in flight")
	case <-time.After(10 * time.Millisecond):
	}

	close(f.hold)
	<-done
	if got := string(f.txBytes()); got != "abc" {
		t.Fatalf("data register saw %q, want %q", got, "abc")
	}
}

func TestEnableReceiveIdempotent(t *testing.T) {
	f := &fakeUARTHw{}
	u, _ := newTestUART(f, Baud9600)

	u.EnableReceive()
	u.EnableReceive()

	if !f.rxEn || !f.rxIRQ || !f.enabled {
		t.Fatalf("receive path not enabled: rxEn=%v rxIRQ=%v enabled=%v", f.rxEn, f.rxIRQ, f.enabled)
	}
	if f.setEnabledCalls != 1 {
		t.Fatalf("channel enabled %d times, want 1", f.setEnabledCalls)
	}
	if f.syncLeft != 0 {
		t.Fatal("enable synchronisation not waited out")
	}
}

func TestReceiveRingOrder(t *testing.T) {
	f := &fakeUARTHw{rxq: []byte("abc")}
	u, _ := newTestUART(f, Baud9600)
	u.EnableReceive()

	u.ServiceRxIRQ()

	for i, want := range []byte("abc") {
		if !u.ByteAvailable() {
			t.Fatalf("byte %d: no data available", i)
		}
		if got := u.ReadByte(); got != want {
			t.Fatalf("byte %d = %q, want %q", i, got, want)
		}
	}
	if u.ByteAvailable() {
		t.Fatal("data reported available on drained channel")
	}
}

func waitIdle(t *testing.T, u *UART) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for u.TxBusy() {
		if time.Now().After(deadline) {
			t.Fatal("busy flag never cleared")
		}
		time.Sleep(time.Millisecond)
	}
}
