// board/board.go
// Package board is the static pin description for the energy-monitor
// node. Drivers borrow these values through their Config structs; nothing
// here is mutated at runtime.
package board

import "emonnode-go/hw"

// Port groups.
const (
	GrpA uint8 = 0
	GrpB uint8 = 1
)

// UARTPins describes the debug/data UART pin routing.
type UARTPins struct {
	TX  hw.Pin
	RX  hw.Pin
	Mux hw.Mux
}

// I2CPins describes one I2C bus segment.
type I2CPins struct {
	SDA hw.Pin
	SCL hw.Pin
	Mux hw.Mux
}

// SPIPins describes the external SPI bus and the radio chip select.
type SPIPins struct {
	MISO  hw.Pin
	MOSI  hw.Pin
	SCK   hw.Pin
	RfmSS hw.Pin
	Mux   hw.Mux
}

var (
	UART = UARTPins{
		TX:  hw.Pin{Grp: GrpA, Pin: 10},
		RX:  hw.Pin{Grp: GrpA, Pin: 11},
		Mux: hw.MuxC,
	}

	// Internal bus: EEPROM and on-board sensors.
	I2CInt = I2CPins{
		SDA: hw.Pin{Grp: GrpA, Pin: 16},
		SCL: hw.Pin{Grp: GrpA, Pin: 17},
		Mux: hw.MuxC,
	}

	// External bus: header peripherals behind the interface gate.
	I2CExt = I2CPins{
		SDA: hw.Pin{Grp: GrpA, Pin: 8},
		SCL: hw.Pin{Grp: GrpA, Pin: 9},
		Mux: hw.MuxD,
	}

	SPI = SPIPins{
		MISO:  hw.Pin{Grp: GrpB, Pin: 16},
		MOSI:  hw.Pin{Grp: GrpB, Pin: 22},
		SCK:   hw.Pin{Grp: GrpB, Pin: 23},
		RfmSS: hw.Pin{Grp: GrpB, Pin: 17},
		Mux:   hw.MuxD,
	}

	// Active-low input gating the whole external interface segment.
	NDisableExtIntf = hw.Pin{Grp: GrpA, Pin: 0}

	// Radio interrupt request input.
	RfmIRQ = hw.Pin{Grp: GrpB, Pin: 14}
)

// External interrupt lines and their pin multiplex function.
const (
	LineDisableExt uint8 = 0
	LineRfmIRQ     uint8 = 14

	ExtIntMux = hw.MuxA
)

// I2C device addresses on the internal bus.
const (
	AddrEEPROM uint8 = 0x50
	AddrOLED   uint8 = 0x3C
)
