// Package store provides the bytecode store variants the command executor
// reads its program from: a read-only constant buffer, a writable RAM
// buffer and a non-volatile store with a magic-number header.
package store

import "errors"

// Location is an opaque position handle within a bytecode store. The only
// valid use of a Location obtained from Tell is to pass it back to Seek on
// the same store.
type Location int

// LocationNowhere is returned by Tell when the store does not support
// seeking or has no valid position.
const LocationNowhere Location = -1

var ErrInvalidLocation = errors.New("invalid bytecode location")

// BytecodeStore manages access to the bytes of a light show program.
//
// While suspended, Next returns no-op instruction bytes without advancing
// the read position, so the executor idles in place until Resume.
type BytecodeStore interface {
	// Capacity returns the length of the longest program that can be
	// written into the store. Read-only stores report zero.
	Capacity() int

	// Empty returns whether the store holds no program at all. A store
	// whose read position is at the end of the program is not empty.
	Empty() bool

	// Next returns the next program byte and advances the read position.
	Next() byte

	// Rewind moves the read position back to the start of the program.
	Rewind()

	// Seek moves the read position to a location previously obtained
	// from Tell.
	Seek(location Location) error

	// Tell returns the current read position, or LocationNowhere if the
	// store does not support seeking.
	Tell() Location

	// Suspend makes Next return no-op bytes until a balancing Resume.
	// Calls nest.
	Suspend()

	// Resume undoes one Suspend.
	Resume()

	// Suspended returns whether the store is currently suspended.
	Suspended() bool

	// Write stores a byte at the current position, advancing it.
	// Returns false if the store is read-only or full.
	Write(value byte) bool
}

// suspendable implements the nested suspend/resume counter shared by all
// store variants. The counter never goes below zero, so unbalanced Resume
// calls are harmless.
type suspendable struct {
	suspendCount int
}

func (s *suspendable) Suspend() {
	s.suspendCount++
}

func (s *suspendable) Resume() {
	if s.suspendCount > 0 {
		s.suspendCount--
	}
}

func (s *suspendable) Suspended() bool {
	return s.suspendCount > 0
}
