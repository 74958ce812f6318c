//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"ledctrl/executor"
)

// BitBangStrip drives a WS2812 chain through the bit-banged driver from
// tinygo.org/x/drivers. Every SetColor repaints the whole chain with the
// same color.
type BitBangStrip struct {
	dev     ws2812.Device
	numLEDs int
}

func NewBitBangStrip(pin machine.Pin, numLEDs int) *BitBangStrip {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &BitBangStrip{dev: ws2812.New(pin), numLEDs: numLEDs}
}

func (s *BitBangStrip) SetColor(color executor.Color) {
	// WS2812 wire order is GRB
	for i := 0; i < s.numLEDs; i++ {
		s.dev.WriteByte(color.G)
		s.dev.WriteByte(color.R)
		s.dev.WriteByte(color.B)
	}
}
