// main.go
// Node mainline: bring up the communication channels, start the
// watchdog, then loop on the pending-event word. On silicon the hardware
// interfaces bind to the SERCOM/EIC/WDT registers; here the host models
// in hostbind.go stand in (cmd/selftest runs the full bring-up suite).
package main

import (
	"os"
	"time"

	"emonnode-go/board"
	"emonnode-go/drivers/dmac"
	"emonnode-go/drivers/eic"
	"emonnode-go/drivers/sercom"
	"emonnode-go/drivers/wdt"
	"emonnode-go/events"
	"emonnode-go/hw/sim"
	"emonnode-go/x/conv"
)

var pending events.Pending

// notifyGate raises a pending event on every external-interface gate
// transition so the mainline can report it outside interrupt context.
type notifyGate struct {
	*sercom.ExtIntf
}

func (g notifyGate) Enable() {
	g.ExtIntf.Enable()
	pending.Set(events.EventGateChange)
}

func (g notifyGate) Disable() {
	g.ExtIntf.Disable()
	pending.Set(events.EventGateChange)
}

func main() {
	port := sim.NewPort()

	uartHw := &hostUART{}
	debug := sercom.NewUART(uartHw, port, dmac.NewEngine(1))
	debug.Configure(sercom.UARTConfig{
		Baud:       sercom.Baud115200,
		Pins:       sercom.UARTPins{TX: board.UART.TX, RX: board.UART.RX, Mux: board.UART.Mux},
		DMAChannel: 0,
	})
	debug.EnableTransmit()
	debug.EnableReceive()
	debug.WriteStringBlocking("emon node boot\r\n")

	// Standard input stands in for the receive line. Each chunk lands in
	// the model's data register, the receive interrupt drains it into the
	// ring and the pending bit defers the echo to the mainline.
	go func() {
		var b [64]byte
		for {
			n, err := os.Stdin.Read(b[:])
			if n > 0 {
				uartHw.feed(b[:n])
				debug.ServiceRxIRQ()
				pending.Set(events.EventUartRx)
			}
			if err != nil {
				return
			}
		}
	}()

	gate := sercom.NewExtIntf(port, sercom.ExtPins{
		MISO: board.SPI.MISO, MOSI: board.SPI.MOSI,
		SCK: board.SPI.SCK, SS: board.SPI.RfmSS,
		Mux: board.SPI.Mux,
	})
	spi := sercom.NewSPI(&hostSPI{}, gate, port)

	// Gate baseline from the physical line, then edge tracking.
	port.SetInput(board.NDisableExtIntf.Grp, board.NDisableExtIntf.Pin, true)
	spi.ConfigureExternal(board.NDisableExtIntf)

	ctl := eic.NewController(&hostEIC{}, eic.Config{
		Port:        port,
		Gate:        notifyGate{gate},
		DisablePin:  board.NDisableExtIntf,
		DisableLine: board.LineDisableExt,
		DisableMux:  board.ExtIntMux,
		RadioPin:    board.RfmIRQ,
		RadioLine:   board.LineRfmIRQ,
		RadioMux:    board.ExtIntMux,
		OnRadio:     func() { pending.Set(events.EventRadio) },
	})
	ctl.Setup()

	dog := wdt.NewSupervisor(&hostWDT{})
	dog.Setup()
	dog.Enable()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	var beats uint32
	var buf [16]byte
	for range tick.C {
		pending.Set(events.EventTick)

		pending.Drain(func(e events.Event) {
			switch e {
			case events.EventTick:
				beats++
				debug.WriteStringBlocking("heartbeat ")
				debug.WriteStringBlocking(string(conv.Utoa(buf[:], beats)))
				debug.WriteStringBlocking("\r\n")
			case events.EventUartRx:
				for debug.ByteAvailable() {
					debug.WriteByteBlocking(debug.ReadByte())
				}
			case events.EventRadio:
				debug.WriteStringBlocking("radio irq\r\n")
			case events.EventGateChange:
				if gate.Enabled() {
					debug.WriteStringBlocking("external interface on\r\n")
				} else {
					debug.WriteStringBlocking("external interface off\r\n")
				}
			}
		})

		// One feed per mainline cycle; a stall here is what the watchdog
		// exists to catch.
		dog.Feed()
	}
}
