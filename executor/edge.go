package executor

// Edge is a transition of the underlying digital signal reconstructed by
// an EdgeDetector.
type Edge int8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

type edgeDetectorState uint8

const (
	signalUnknown edgeDetectorState = iota
	signalLow
	signalHigh
)

// EdgeDetector reconstructs a digital signal from noisy analog samples in
// the 0-255 range and reports its transitions.
//
// The analog range is divided into three bands: LOW below midRangeStart,
// HIGH at or above midRangeEnd, and MID in between. A sample in the MID
// band keeps the last definite state. An optional debounce interval
// suppresses further transitions for a number of milliseconds after each
// detected one.
type EdgeDetector struct {
	midRangeStart  uint8
	midRangeEnd    uint8
	debounceMs     uint16
	lastTransition int64
	state          edgeDetectorState
}

// NewEdgeDetector creates an edge detector with the given band boundaries
// and debounce interval; zero disables debouncing. The defaults used
// throughout the executor are 64 and 192 with no debouncing.
func NewEdgeDetector(midRangeStart, midRangeEnd uint8, debounceMs uint16) EdgeDetector {
	return EdgeDetector{
		midRangeStart: midRangeStart,
		midRangeEnd:   midRangeEnd,
		debounceMs:    debounceMs,
	}
}

// defaultEdgeDetector returns a detector with the standard band split.
func defaultEdgeDetector() EdgeDetector {
	return NewEdgeDetector(64, 192, 0)
}

// Feed processes one analog sample taken at the given time (milliseconds,
// monotonically increasing) and returns the edge it completed, if any.
func (d *EdgeDetector) Feed(value uint8, now int64) Edge {
	if d.state == signalUnknown {
		// No edge is reported for the first definite reading.
		if value < d.midRangeStart {
			d.state = signalLow
		} else if value >= d.midRangeEnd {
			d.state = signalHigh
		}
		return EdgeNone
	}

	if d.debounceMs > 0 && now-d.lastTransition < int64(d.debounceMs) {
		return EdgeNone
	}

	switch d.state {
	case signalLow:
		if value >= d.midRangeEnd {
			d.state = signalHigh
			d.lastTransition = now
			return EdgeRising
		}
	case signalHigh:
		if value < d.midRangeStart {
			d.state = signalLow
			d.lastTransition = now
			return EdgeFalling
		}
	}
	return EdgeNone
}

// Reset returns the detector to its ground state.
func (d *EdgeDetector) Reset() {
	d.state = signalUnknown
	d.lastTransition = 0
}

// Value returns the current reconstructed digital state: 0 for LOW, 1 for
// HIGH, -1 while the state is still unknown.
func (d *EdgeDetector) Value() int8 {
	switch d.state {
	case signalLow:
		return 0
	case signalHigh:
		return 1
	default:
		return -1
	}
}
