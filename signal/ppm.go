package signal

// Pulse width mapping shared by the PPM and PWM decoders: RC servo pulses
// of 1000-2000 microseconds map linearly to channel values 0-255; widths
// outside the range are clamped.
const (
	minPulseWidthMicros = 1000
	maxPulseWidthMicros = 2000
)

func pulseWidthToByte(widthMicros uint64) uint8 {
	if widthMicros <= minPulseWidthMicros {
		return 0
	}
	if widthMicros >= maxPulseWidthMicros {
		return 255
	}
	return uint8((widthMicros - minPulseWidthMicros) * 255 /
		(maxPulseWidthMicros - minPulseWidthMicros))
}

// MaxPPMChannels is the number of channels a PPM frame may carry.
const MaxPPMChannels = 8

// syncGapMicros is the minimum gap between pulses that marks the start of
// a new PPM frame.
const syncGapMicros = 2500

// PPMSource decodes a PPM pulse train into channel values. The host feeds
// it the timestamp of every rising edge of the composite signal; the time
// between consecutive edges is the pulse width of one channel, and a gap
// longer than the sync threshold starts a new frame.
type PPMSource struct {
	values      [MaxPPMChannels]uint8
	filtered    [MaxPPMChannels]uint16 // exponential moving average, x256
	numChannels uint8
	current     int
	lastEdge    uint64
	gotEdge     bool
}

func NewPPMSource() *PPMSource {
	return &PPMSource{}
}

// FeedRisingEdge records a rising edge of the composite PPM signal at the
// given time in microseconds. Timestamps must be monotonically
// increasing.
func (s *PPMSource) FeedRisingEdge(timeMicros uint64) {
	if !s.gotEdge {
		s.gotEdge = true
		s.lastEdge = timeMicros
		return
	}

	width := timeMicros - s.lastEdge
	s.lastEdge = timeMicros

	if width >= syncGapMicros {
		s.current = 0
		return
	}

	if s.current < MaxPPMChannels {
		value := pulseWidthToByte(width)
		s.values[s.current] = value
		// EMA with 1/4 weight for the new sample
		avg := s.filtered[s.current]
		s.filtered[s.current] = avg - avg/4 + uint16(value)<<6
		s.current++
		if uint8(s.current) > s.numChannels {
			s.numChannels = uint8(s.current)
		}
	}
}

func (s *PPMSource) NumChannels() uint8 {
	return s.numChannels
}

func (s *PPMSource) ChannelValue(channel uint8) uint8 {
	if channel >= s.numChannels {
		return 0
	}
	return s.values[channel]
}

func (s *PPMSource) FilteredChannelValue(channel uint8) uint8 {
	if channel >= s.numChannels {
		return 0
	}
	return uint8(s.filtered[channel] >> 8)
}

func (s *PPMSource) Active() bool {
	return s.numChannels > 0
}
