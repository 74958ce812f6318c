//go:build rp2040

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"

	"ledctrl/signal"
)

// RP2040 timer peripheral, a 64-bit microsecond counter at 1 MHz.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08
	timerTIMERAWL = timerBase + 0x0C
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// microseconds reads the hardware timer directly so it is safe to call
// from a pin interrupt handler. Reads high, low, high again to detect a
// rollover during the read.
func microseconds() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

// NewPPMInput decodes a PPM pulse train on the given pin into a signal
// source. Each rising edge is timestamped from the hardware timer inside
// the pin interrupt.
func NewPPMInput(pin machine.Pin) (*signal.PPMSource, error) {
	source := signal.NewPPMSource()

	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	err := pin.SetInterrupt(machine.PinRising, func(machine.Pin) {
		source.FeedRisingEdge(microseconds())
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}
