package protocol

// Durations in the bytecode are varints counting whole frames at a fixed
// frame rate. Earlier wire format revisions used a single-byte dual-mode
// encoding (whole seconds vs 1/32-second units); revision 2 dropped it in
// favor of the units-based encoding, and this implementation supports only
// revision 2.
const (
	// FramesPerSecond is the frame rate the compiler assumes when it
	// converts script timings into frame counts.
	FramesPerSecond = 50

	// MillisPerFrame is the length of a single frame in milliseconds.
	MillisPerFrame = 1000 / FramesPerSecond
)

// FramesToMillis converts a frame count decoded from the bytecode into
// milliseconds on the internal clock.
func FramesToMillis(frames uint32) uint64 {
	return uint64(frames) * MillisPerFrame
}

// MillisToFrames converts milliseconds into a whole number of frames,
// rounding to the nearest frame.
func MillisToFrames(ms uint64) uint32 {
	return uint32((ms + MillisPerFrame/2) / MillisPerFrame)
}
