// Package signal provides the signal source variants feeding the
// executor's triggers and channel-driven color commands: PPM and PWM
// pulse decoders and a settable dummy source for simulation and tests.
package signal

// DummySource is a signal source with directly settable channel values.
// It is the simulation variant used by tests and offline playback.
type DummySource struct {
	values []uint8
	active bool
}

// NewDummySource creates a dummy source with the given number of
// channels, all reading zero.
func NewDummySource(numChannels uint8) *DummySource {
	return &DummySource{values: make([]uint8, numChannels), active: true}
}

func (s *DummySource) NumChannels() uint8 {
	return uint8(len(s.values))
}

func (s *DummySource) ChannelValue(channel uint8) uint8 {
	if int(channel) >= len(s.values) {
		return 0
	}
	return s.values[channel]
}

func (s *DummySource) FilteredChannelValue(channel uint8) uint8 {
	return s.ChannelValue(channel)
}

func (s *DummySource) Active() bool {
	return s.active
}

// SetChannelValue sets the value reported for a channel.
func (s *DummySource) SetChannelValue(channel uint8, value uint8) {
	if int(channel) < len(s.values) {
		s.values[channel] = value
	}
}

// SetActive sets the value reported by Active.
func (s *DummySource) SetActive(active bool) {
	s.active = active
}
