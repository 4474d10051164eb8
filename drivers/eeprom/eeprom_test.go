// drivers/eeprom/eeprom_test.go
package eeprom

import (
	"bytes"
	"testing"

	"emonnode-go/drivers/sercom"
	"emonnode-go/errcode"
	"emonnode-go/hw/sim"
)

// fakeChannel models the device protocol: an Activate starts a
// transaction, the first data write after a write-mode Activate sets the
// low address byte, further writes land in memory, reads stream from the
// pointer. High address bits arrive folded into the bus address.
type fakeChannel struct {
	mem  []byte
	ptr  int
	base uint8

	activates []byte
	stops     int

	wrote bool // low address byte consumed for this transaction

	failAddr bool
}

func (f *fakeChannel) Activate(addr byte) sercom.Status {
	if f.failAddr {
		return sercom.StatusNoAck
	}
	f.activates = append(f.activates, addr)
	if addr&1 == 0 {
		f.ptr = int(addr>>1&^f.base) << 8
		f.wrote = false
	}
	return sercom.StatusSuccess
}

func (f *fakeChannel) DataWrite(b byte) sercom.Status {
	if !f.wrote {
		f.ptr = f.ptr&^0xFF | int(b)
		f.wrote = true
		return sercom.StatusSuccess
	}
	f.mem[f.ptr] = b
	f.ptr++
	return sercom.StatusSuccess
}

func (f *fakeChannel) DataRead() (byte, sercom.Status) {
	b := f.mem[f.ptr]
	f.ptr++
	return b, sercom.StatusSuccess
}

func (f *fakeChannel) Ack(ack sercom.Ack, cmd sercom.AckCmd) {
	if cmd == sercom.AckCmdStop {
		f.stops++
	}
}

func newTestEEPROM(size int) (*EEPROM, *fakeChannel, *sim.Clock) {
	ch := &fakeChannel{mem: make([]byte, size), base: 0x50}
	clk := sim.NewClock(0)
	e := New(ch, clk, Config{
		Addr:         0x50,
		SizeBytes:    size,
		PageSize:     16,
		WriteDelayUs: 5000,
	})
	return e, ch, clk
}

func TestWriteChunksOnPageBoundaries(t *testing.T) {
	e, ch, clk := newTestEEPROM(1024)

	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i + 1)
	}
	start := clk.Micros()
	if err := e.WriteBytes(10, data); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	if !bytes.Equal(ch.mem[10:30], data) {
		t.Fatalf("memory = %#v", ch.mem[10:30])
	}
	// Start at 10 with 16-byte pages: a 6-byte chunk to the boundary,
	// then a 14-byte chunk, each its own addressed transaction.
	if len(ch.activates) != 2 {
		t.Fatalf("activations = %#v", ch.activates)
	}
	if ch.stops != 2 {
		t.Fatalf("stops = %d, want 2", ch.stops)
	}
	// One write-cycle delay per chunk.
	if d := clk.Since(start); d != 2*5000 {
		t.Fatalf("write-cycle delay = %d us, want %d", d, 2*5000)
	}
}

func TestWriteFoldsHighAddressBits(t *testing.T) {
	e, ch, _ := newTestEEPROM(1024)

	if err := e.WriteBytes(0x0123, []byte{0xAB}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	// 7-bit device address 0x50 | high bits 0x01, write mode.
	if len(ch.activates) != 1 || ch.activates[0] != 0xA2 {
		t.Fatalf("activations = %#v", ch.activates)
	}
	if ch.mem[0x0123] != 0xAB {
		t.Fatalf("byte landed at wrong address")
	}
}

func TestReadSequential(t *testing.T) {
	e, ch, _ := newTestEEPROM(1024)
	copy(ch.mem[0x0100:], []byte{1, 2, 3, 4, 5})

	// Reads cross page boundaries without re-addressing.
	got := make([]byte, 5)
	if err := e.ReadBytes(0x0100, got); err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("read = %#v", got)
	}
	// Pointer-set transaction, then repeated-start read transaction.
	if len(ch.activates) != 2 || ch.activates[0] != 0xA2 || ch.activates[1] != 0xA3 {
		t.Fatalf("activations = %#v", ch.activates)
	}
}

func TestBoundsChecked(t *testing.T) {
	e, ch, _ := newTestEEPROM(256)

	if err := e.WriteBytes(250, make([]byte, 10)); errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("write past end: %v", err)
	}
	if err := e.ReadBytes(250, make([]byte, 10)); errcode.Of(err) != errcode.OutOfRange {
		t.Fatalf("read past end: %v", err)
	}
	if len(ch.activates) != 0 {
		t.Fatal("out-of-range access touched the bus")
	}
}

func TestDeviceAbsentSurfacesNACK(t *testing.T) {
	e, ch, _ := newTestEEPROM(256)
	ch.failAddr = true

	if err := e.WriteBytes(0, []byte{1}); errcode.Of(err) != errcode.NACK {
		t.Fatalf("write: %v", err)
	}
	if err := e.ReadBytes(0, make([]byte, 1)); errcode.Of(err) != errcode.NACK {
		t.Fatalf("read: %v", err)
	}
}
