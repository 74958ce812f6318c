//go:build rp2040

package main

import (
	"machine"
)

// ADC inputs usable as signal channels on the RP2040 (GPIO26..GPIO28;
// GPIO29 measures VSYS on most boards and ADC4 is the temperature sensor).
var adcPins = []machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2}

// ADCSource exposes the on-chip ADC channels as a signal source for the
// interpreter's trigger and channel-driven color commands.
type ADCSource struct {
	channels []machine.ADC
	filtered []uint16 // exponential moving average, x256
}

func NewADCSource() *ADCSource {
	machine.InitADC()

	s := &ADCSource{
		channels: make([]machine.ADC, len(adcPins)),
		filtered: make([]uint16, len(adcPins)),
	}
	for i, pin := range adcPins {
		s.channels[i] = machine.ADC{Pin: pin}
		s.channels[i].Configure(machine.ADCConfig{})
	}
	return s
}

func (s *ADCSource) NumChannels() uint8 {
	return uint8(len(s.channels))
}

// sample reads a channel and scales the 16-bit conversion to a byte.
func (s *ADCSource) sample(channel uint8) uint8 {
	return uint8(s.channels[channel].Get() >> 8)
}

func (s *ADCSource) ChannelValue(channel uint8) uint8 {
	if int(channel) >= len(s.channels) {
		return 0
	}
	return s.sample(channel)
}

func (s *ADCSource) FilteredChannelValue(channel uint8) uint8 {
	if int(channel) >= len(s.channels) {
		return 0
	}
	value := s.sample(channel)
	avg := s.filtered[channel]
	s.filtered[channel] = avg - avg/4 + uint16(value)<<6
	return uint8(s.filtered[channel] >> 8)
}

func (s *ADCSource) Active() bool {
	return true
}
