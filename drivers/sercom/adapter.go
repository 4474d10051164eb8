// drivers/sercom/adapter.go
package sercom

import "tinygo.org/x/drivers"

// I2CBus adapts an I2C channel to the tinygo.org/x/drivers I2C contract
// (Tx with a 7-bit address), so ecosystem device drivers can sit on the
// channel unchanged. Status outcomes surface as errcode errors.
type I2CBus struct {
	ch *I2C
}

var _ drivers.I2C = (*I2CBus)(nil)

func NewI2CBus(ch *I2C) *I2CBus { return &I2CBus{ch: ch} }

// Tx performs a write and/or read transaction against addr: the write
// phase, then a repeated-start read phase when r is non-empty. Reads are
// acknowledged with continue except the last, which is not-acknowledged
// with stop, releasing the bus.
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	if len(w) > 0 {
		if err := b.ch.Activate(byte(addr << 1)).Err("i2c.activate"); err != nil {
			return err
		}
		for _, x := range w {
			s := b.ch.DataWrite(x)
			if s != StatusSuccess {
				b.ch.Ack(AckAck, AckCmdStop)
				return s.Err("i2c.write")
			}
		}
		if len(r) == 0 {
			b.ch.Ack(AckAck, AckCmdStop)
			return nil
		}
	}

	if len(r) > 0 {
		// Repeated start into the read phase.
		if err := b.ch.Activate(byte(addr<<1) | 1).Err("i2c.activate"); err != nil {
			return err
		}
		for i := range r {
			v, s := b.ch.DataRead()
			if s != StatusSuccess {
				b.ch.Ack(AckNack, AckCmdStop)
				return s.Err("i2c.read")
			}
			r[i] = v
			if i < len(r)-1 {
				b.ch.Ack(AckAck, AckCmdContinue)
			}
		}
		b.ch.Ack(AckNack, AckCmdStop)
	}
	return nil
}
