// drivers/sercom/adapter_test.go
package sercom

import (
	"testing"

	"emonnode-go/errcode"
)

// scriptI2CPeer wires a fakeI2CHw to behave like a register device at
// one address: writes are absorbed, reads stream the regs slice.
func scriptI2CPeer(f *fakeI2CHw, regs []byte) {
	idx := 0
	load := func() {
		f.intflag |= I2CIntFlagSB
		if idx < len(regs) {
			f.data = regs[idx]
			idx++
		}
	}
	f.onAddr = func(b byte) {
		f.intflag |= I2CIntFlagMB
		if b&1 == 1 {
			load()
		}
	}
	f.onWrite = func(byte) { f.intflag |= I2CIntFlagMB }
	f.onCmd = func(_ Ack, cmd AckCmd) {
		if cmd == AckCmdContinue {
			load()
		}
	}
}

func TestBusTxWriteThenRead(t *testing.T) {
	f := &fakeI2CHw{enabled: true}
	scriptI2CPeer(f, []byte{0xDE, 0xAD})
	c, _, _ := newTestI2C(f)
	bus := NewI2CBus(c)

	r := make([]byte, 2)
	if err := bus.Tx(0x50, []byte{0x12}, r); err != nil {
		t.Fatalf("Tx: %v", err)
	}

	// 7-bit address 0x50 on the wire: 0xA0 for the write phase, 0xA1 for
	// the repeated-start read phase.
	if len(f.addrs) != 2 || f.addrs[0] != 0xA0 || f.addrs[1] != 0xA1 {
		t.Fatalf("address phases = %#v", f.addrs)
	}
	if len(f.writes) != 1 || f.writes[0] != 0x12 {
		t.Fatalf("writes = %#v", f.writes)
	}
	if r[0] != 0xDE || r[1] != 0xAD {
		t.Fatalf("read = %#v", r)
	}

	// All reads but the last acknowledged with continue; the last one
	// not-acknowledged with stop.
	want := []ackCmdPair{
		{AckAck, AckCmdContinue},
		{AckNack, AckCmdStop},
	}
	if len(f.cmds) != len(want) {
		t.Fatalf("commands = %v", f.cmds)
	}
	for i := range want {
		if f.cmds[i] != want[i] {
			t.Fatalf("command %d = %v, want %v", i, f.cmds[i], want[i])
		}
	}
}

func TestBusTxWriteOnlyStops(t *testing.T) {
	f := &fakeI2CHw{enabled: true}
	scriptI2CPeer(f, nil)
	bus := NewI2CBus(mustI2C(f))

	if err := bus.Tx(0x50, []byte{1, 2}, nil); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if len(f.cmds) != 1 || f.cmds[0] != (ackCmdPair{AckAck, AckCmdStop}) {
		t.Fatalf("commands = %v", f.cmds)
	}
}

func TestBusTxNoAckSurfacesNACK(t *testing.T) {
	f := &fakeI2CHw{enabled: true}
	f.onAddr = func(byte) {
		f.intflag |= I2CIntFlagMB
		f.busstatus |= I2CStatusRxNack
	}
	bus := NewI2CBus(mustI2C(f))

	err := bus.Tx(0x50, []byte{0x12}, nil)
	if err == nil {
		t.Fatal("Tx against an absent device succeeded")
	}
	if errcode.Of(err) != errcode.NACK {
		t.Fatalf("error code = %v, want NACK", errcode.Of(err))
	}
}

func mustI2C(f *fakeI2CHw) *I2C {
	c, _, _ := newTestI2C(f)
	return c
}
