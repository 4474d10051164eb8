// cmd/selftest/display_tinygo.go
//go:build tinygo

package main

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"

	"emonnode-go/board"
)

// displayCheck drives the status display through the ecosystem driver.
func displayCheck(bus drivers.I2C) error {
	disp := ssd1306.NewI2C(bus)
	disp.Configure(ssd1306.Config{
		Address: uint16(board.AddrOLED),
		Width:   128,
		Height:  64,
	})
	disp.ClearBuffer()
	return disp.Display()
}
