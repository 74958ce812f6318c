package executor

// LEDStrip is the output capability the executor drives. The implementation
// owns gamma and voltage compensation and the physical output; the executor
// only ever asks for a color.
type LEDStrip interface {
	SetColor(color Color)
}

// SignalSource provides per-channel byte values decoded from an external
// control signal (typically RC). ChannelValue is the instantaneous reading
// used by edge triggers; FilteredChannelValue is a debounced or averaged
// reading used by the channel-driven color commands.
type SignalSource interface {
	NumChannels() uint8
	ChannelValue(channel uint8) uint8
	FilteredChannelValue(channel uint8) uint8
	Active() bool
}

// PyroChannels is the optional output capability behind the SetPyro
// commands: a small bank of relay or pyro outputs addressed by index.
type PyroChannels interface {
	// SetChannel switches a single output on or off.
	SetChannel(index uint8, on bool)

	// SetAll sets every output explicitly from a bitmask, bit i driving
	// channel i.
	SetAll(values uint8)
}
