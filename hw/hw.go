// hw/hw.go
// Package hw defines the narrow contracts the peripheral drivers consume:
// the pin/port abstraction, the monotonic microsecond clock, and the
// interrupt-safe shared flag. Concrete bindings (silicon port or the
// simulation backend in hw/sim) implement these.
package hw

// Pin identifies one physical pin as a {port group, pin number} pair.
// Pin values are defined once in the board table and borrowed by drivers;
// they are never mutated.
type Pin struct {
	Grp uint8
	Pin uint8
}

// Mux selects a peripheral multiplex function for a pin.
type Mux uint8

const (
	MuxA Mux = iota
	MuxB
	MuxC
	MuxD
	MuxE
	MuxF
	MuxG
	MuxH
)

// Dir is a pin direction.
type Dir uint8

const (
	DirIn Dir = iota
	DirOut
)

// Drv is a pin drive action for outputs (and pull selection for inputs
// with pull enabled, as on the real port hardware).
type Drv uint8

const (
	DrvClr Drv = iota
	DrvSet
	DrvTgl
)

// Pin configuration bits, set or cleared through Port.PinCfg.
const (
	CfgInputEnable uint8 = 1 << 1
	CfgPullEnable  uint8 = 1 << 2
)

// Port exposes direction, drive, multiplexing and read-back for
// {group, pin} pairs. All drivers reach pins only through this contract.
type Port interface {
	// PinMux routes the pin to a peripheral function.
	PinMux(grp, pin uint8, mux Mux)
	// PinMuxClear returns the pin to plain digital I/O.
	PinMuxClear(grp, pin uint8)
	PinDir(grp, pin uint8, dir Dir)
	PinDrv(grp, pin uint8, drv Drv)
	// PinCfg sets (set=true) or clears configuration bits on the pin.
	PinCfg(grp, pin uint8, cfg uint8, set bool)
	// PinValue reads the current input level.
	PinValue(grp, pin uint8) bool
}

// Clock is the monotonic microsecond source used for all timeout budgets
// and bit-banging delays. Micros wraps; use Since for deltas.
type Clock interface {
	Micros() uint32
	// Since returns the microseconds elapsed since a previous Micros value,
	// correct across wrap.
	Since(prev uint32) uint32
	DelayMicros(n uint32)
}
