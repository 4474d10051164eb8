// drivers/wdt/wdt.go
// Package wdt supervises the watchdog timer. The watchdog runs from the
// low-power clock so it keeps counting through every sleep mode; the
// mainline feeds it once per cycle and an early-warning interrupt fires
// at half period, giving a debugger a place to halt before the reset.
package wdt

import "runtime"

// Clear key; any other value written to the clear register triggers an
// immediate system reset.
const ClearKey uint8 = 0xA5

// Timeout configuration in low-power clock (1 kHz) cycles: reset after
// 16384 cycles, early warning at 8192.
const (
	PeriodCode       uint8 = 0xB
	EarlyWarningCode uint8 = 0xA
)

// Hw is the register surface of the watchdog peripheral.
type Hw interface {
	UseLowPowerClock()
	SetPeriod(code uint8)
	SetEarlyWarningOffset(code uint8)
	EnableEarlyWarningIRQ()
	ClearEarlyWarning()
	SetEnabled(on bool)
	SyncBusy() bool
	WriteClear(key uint8)
	DebuggerAttached() bool
	Breakpoint()
}

type Supervisor struct {
	hw Hw
}

func NewSupervisor(h Hw) *Supervisor {
	return &Supervisor{hw: h}
}

// Setup configures clocking, timeout and early warning without starting
// the countdown. The period and offset writes must settle before the
// early-warning interrupt is enabled.
func (s *Supervisor) Setup() {
	s.hw.UseLowPowerClock()
	s.hw.SetEarlyWarningOffset(EarlyWarningCode)
	s.hw.SetPeriod(PeriodCode)
	for s.hw.SyncBusy() {
		runtime.Gosched()
	}
	s.hw.EnableEarlyWarningIRQ()
}

// Enable starts the countdown. From here on the mainline must Feed within
// every period or the system resets.
func (s *Supervisor) Enable() {
	s.hw.SetEnabled(true)
	for s.hw.SyncBusy() {
		runtime.Gosched()
	}
}

// Feed restarts the countdown.
func (s *Supervisor) Feed() {
	s.hw.WriteClear(ClearKey)
	for s.hw.SyncBusy() {
		runtime.Gosched()
	}
}

// ServiceIRQ handles the early warning: half the period elapsed without a
// feed. With a debugger attached it halts here, while the state that
// stalled the mainline is still intact; otherwise the reset is allowed to
// arrive and recover the node.
func (s *Supervisor) ServiceIRQ() {
	s.hw.ClearEarlyWarning()
	if s.hw.DebuggerAttached() {
		s.hw.Breakpoint()
	}
}
