//go:build rp2040

package main

import (
	"machine"
)

// PyroBank drives a small bank of GPIO outputs for the pyro commands.
// Channel i maps to basePin+i.
type PyroBank struct {
	pins []machine.Pin
}

func NewPyroBank(basePin machine.Pin, count int) *PyroBank {
	b := &PyroBank{pins: make([]machine.Pin, count)}
	for i := range b.pins {
		pin := basePin + machine.Pin(i)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
		b.pins[i] = pin
	}
	return b
}

func (b *PyroBank) SetChannel(index uint8, on bool) {
	if int(index) >= len(b.pins) {
		return
	}
	b.pins[index].Set(on)
}

func (b *PyroBank) SetAll(values uint8) {
	for i, pin := range b.pins {
		pin.Set(values&(1<<uint(i)) != 0)
	}
}
