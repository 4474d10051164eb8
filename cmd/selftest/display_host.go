// cmd/selftest/display_host.go
//go:build !tinygo

package main

import (
	"tinygo.org/x/drivers"

	"emonnode-go/board"
)

// displayCheck drives the status display over the bus adapter. The
// ecosystem SSD1306 driver only links under TinyGo, so the host path
// issues the same traffic by hand: the init sequence as a command
// stream under control byte 0x00, then a blank frame under 0x40.
func displayCheck(bus drivers.I2C) error {
	addr := uint16(board.AddrOLED)

	init := []byte{
		0x00,       // control: command stream
		0xAE,       // display off
		0xD5, 0x80, // clock divide ratio
		0xA8, 0x3F, // multiplex ratio for 64 rows
		0xD3, 0x00, // display offset
		0x40,       // start line 0
		0x8D, 0x14, // charge pump on
		0x20, 0x00, // horizontal addressing
		0xA1, 0xC8, // segment remap, scan direction
		0xDA, 0x12, // COM pins for 128x64
		0x81, 0xCF, // contrast
		0xD9, 0xF1, // precharge
		0xDB, 0x40, // VCOM deselect level
		0xA4, 0xA6, // resume RAM display, normal polarity
		0xAF, // display on
	}
	if err := bus.Tx(addr, init, nil); err != nil {
		return err
	}

	window := []byte{
		0x00,
		0x21, 0x00, 0x7F, // column window
		0x22, 0x00, 0x07, // page window
	}
	if err := bus.Tx(addr, window, nil); err != nil {
		return err
	}

	frame := make([]byte, 1+128*64/8)
	frame[0] = 0x40 // control: frame data
	return bus.Tx(addr, frame, nil)
}
