//go:build rp2040

package main

import (
	"machine"
	"time"

	"ledctrl/device"
	"ledctrl/executor"
	"ledctrl/protocol"
	"ledctrl/store"
)

const (
	// Pin assignments
	ledDataPin  = machine.GPIO16
	pyroBasePin = machine.GPIO2 // pyro outputs on GPIO2..GPIO2+numPyroChannels-1
	rcInputPin  = machine.GPIO15

	numLEDs         = 16
	numPyroChannels = 4

	// Maximum program size accepted over the control link
	programCapacity = 4096

	// Drive the strip through the PIO peripheral; fall back to the
	// bit-banged driver on boards where both PIO blocks are taken.
	usePIOStrip = true

	// Take channel values from a PPM receiver on rcInputPin instead of
	// the ADC inputs.
	usePPMInput = false
)

func main() {
	// Disable any watchdog state left over from a previous reset
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Initialize USB CDC
	machine.Serial.Configure(machine.UARTConfig{})

	var strip executor.LEDStrip
	if usePIOStrip {
		pioStrip, err := NewPIOStrip(ledDataPin, numLEDs)
		if err == nil {
			strip = pioStrip
		}
	}
	if strip == nil {
		strip = NewBitBangStrip(ledDataPin, numLEDs)
	}

	exec := executor.NewCommandExecutor(strip)

	var source executor.SignalSource = NewADCSource()
	if usePPMInput {
		if ppm, err := NewPPMInput(rcInputPin); err == nil {
			source = ppm
		}
	}
	exec.SetSignalSource(source)
	exec.SetPyroChannels(NewPyroBank(pyroBasePin, numPyroChannels))

	// Program storage with a validity header so a stored show survives
	// a reset of the interpreter state.
	programStore := store.NewNVStore(store.NewRAMMemory(programCapacity), 0)
	exec.SetBytecodeStore(programStore)
	exec.Rewind()

	dev := device.New(exec, strip)
	parser := protocol.NewParser(dev, machine.Serial)

	for {
		for machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			parser.Feed(b)
		}

		if !exec.Ended() {
			// Execution errors stop the program; nothing to report
			// beyond the strip going dark.
			if _, err := exec.Step(); err != nil {
				strip.SetColor(executor.Black)
			}
		}

		// The bytecode's time unit is a 20 ms frame; a millisecond of
		// polling granularity is plenty.
		time.Sleep(time.Millisecond)
	}
}
