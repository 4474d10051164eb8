// drivers/sercom/status.go
// Package sercom implements the serial communication channels of the
// energy-monitor node: the DMA-offloaded UART, the dual I2C masters
// (internal and external bus) and the SPI master, together with the
// external-interface gate they share. Protocol and timing logic lives
// here; register access goes through the per-channel hardware interfaces
// so a silicon port or the simulation backend can bind underneath.
package sercom

import "emonnode-go/errcode"

// Status is the per-step outcome of an I2C transaction.
type Status uint8

const (
	StatusSuccess Status = iota
	// StatusNoAck: the addressed device declined. Protocol-level, not a fault.
	StatusNoAck
	// StatusError: bus error or arbitration lost latched by the hardware.
	StatusError
	// StatusTimeout: no master/slave-on-bus condition within the budget.
	StatusTimeout
	// StatusDisabled: channel not enabled; deliberate no-op, not a fault.
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoAck:
		return "noack"
	case StatusError:
		return "buserror"
	case StatusTimeout:
		return "timeout"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Err maps a Status to an error at a module boundary; Success maps to nil.
func (s Status) Err(op string) error {
	var c errcode.Code
	switch s {
	case StatusSuccess:
		return nil
	case StatusNoAck:
		c = errcode.NACK
	case StatusError:
		c = errcode.BusError
	case StatusTimeout:
		c = errcode.Timeout
	case StatusDisabled:
		c = errcode.Disabled
	default:
		c = errcode.Error
	}
	return &errcode.E{C: c, Op: op}
}

// Ack selects the acknowledge action sent after a received byte.
type Ack uint8

const (
	AckAck  Ack = 0
	AckNack Ack = 1
)

// AckCmd is the bus command issued together with the acknowledge action.
type AckCmd uint8

const (
	AckCmdRepeatStart AckCmd = 1
	AckCmdContinue    AckCmd = 2
	AckCmdStop        AckCmd = 3
)
