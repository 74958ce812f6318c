package signal

// PWMSource decodes a single-channel RC PWM signal. The host feeds it
// both edges of the pulse; the width between a rising and the following
// falling edge yields the channel value.
type PWMSource struct {
	value    uint8
	filtered uint16 // exponential moving average, x256
	riseTime uint64
	inPulse  bool
	gotPulse bool
}

func NewPWMSource() *PWMSource {
	return &PWMSource{}
}

// FeedEdge records a signal edge at the given time in microseconds.
// Timestamps must be monotonically increasing.
func (s *PWMSource) FeedEdge(rising bool, timeMicros uint64) {
	if rising {
		s.riseTime = timeMicros
		s.inPulse = true
		return
	}
	if !s.inPulse {
		return
	}
	s.inPulse = false
	s.gotPulse = true

	value := pulseWidthToByte(timeMicros - s.riseTime)
	s.value = value
	avg := s.filtered
	s.filtered = avg - avg/4 + uint16(value)<<6
}

func (s *PWMSource) NumChannels() uint8 {
	return 1
}

func (s *PWMSource) ChannelValue(channel uint8) uint8 {
	if channel != 0 {
		return 0
	}
	return s.value
}

func (s *PWMSource) FilteredChannelValue(channel uint8) uint8 {
	if channel != 0 {
		return 0
	}
	return uint8(s.filtered >> 8)
}

func (s *PWMSource) Active() bool {
	return s.gotPulse
}
