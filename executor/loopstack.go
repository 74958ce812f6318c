package executor

import "ledctrl/store"

// MaxLoopDepth is the maximum nesting depth of loops in a program.
const MaxLoopDepth = 4

type loopFrame struct {
	start store.Location

	// Iterations left for the loop, or zero for an infinite loop. The
	// first iteration is already running when the frame is pushed, so a
	// finite loop with n iterations stores n and pops when the counter
	// would drop from 1; it never reaches zero by decrementing.
	iterationsLeft uint8
}

// LoopStack holds the return locations of the active loops and the number
// of iterations left for each.
type LoopStack struct {
	frames [MaxLoopDepth]loopFrame
	depth  int
}

// Begin pushes a loop starting at the given location with the given number
// of iterations; zero means an infinite loop. Returns false if the stack
// is already at its maximum depth.
func (s *LoopStack) Begin(location store.Location, iterations uint8) bool {
	if s.depth >= MaxLoopDepth {
		return false
	}
	s.frames[s.depth] = loopFrame{start: location, iterationsLeft: iterations}
	s.depth++
	return true
}

// End handles an end-of-loop marker. It returns the location to jump back
// to if the innermost loop has iterations left (or is infinite), or
// LocationNowhere if the loop is exhausted, in which case the frame is
// popped and execution proceeds past the marker.
func (s *LoopStack) End() store.Location {
	if s.depth == 0 {
		return store.LocationNowhere
	}

	top := &s.frames[s.depth-1]
	switch top.iterationsLeft {
	case 0:
		// infinite loop
		return top.start
	case 1:
		// last iteration done
		s.depth--
		return store.LocationNowhere
	default:
		top.iterationsLeft--
		return top.start
	}
}

// Clear drops all frames. Used on rewind and on unconditional jumps, since
// a jump may leave the loop bodies the frames refer to.
func (s *LoopStack) Clear() {
	s.depth = 0
}

// Size returns the number of active loops.
func (s *LoopStack) Size() int {
	return s.depth
}
