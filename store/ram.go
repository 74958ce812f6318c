package store

import "ledctrl/protocol"

// RAMStore holds a program in a fixed-capacity writable buffer. Uploads
// rewind the store and write the new program over the old one; the length
// tracks the furthest byte ever written.
type RAMStore struct {
	suspendable
	buf    []byte
	length int
	pos    int
}

// NewRAMStore creates an empty writable store with the given capacity.
func NewRAMStore(capacity int) *RAMStore {
	return &RAMStore{buf: make([]byte, capacity)}
}

func (s *RAMStore) Capacity() int {
	return len(s.buf)
}

func (s *RAMStore) Empty() bool {
	return s.length == 0
}

func (s *RAMStore) Next() byte {
	if s.Suspended() {
		return protocol.CmdNop
	}
	if s.pos >= s.length {
		return protocol.CmdEnd
	}
	b := s.buf[s.pos]
	s.pos++
	return b
}

func (s *RAMStore) Rewind() {
	s.pos = 0
}

func (s *RAMStore) Seek(location Location) error {
	if location < 0 || int(location) > s.length {
		return ErrInvalidLocation
	}
	s.pos = int(location)
	return nil
}

func (s *RAMStore) Tell() Location {
	return Location(s.pos)
}

func (s *RAMStore) Write(value byte) bool {
	if s.pos >= len(s.buf) {
		return false
	}
	s.buf[s.pos] = value
	s.pos++
	if s.pos > s.length {
		s.length = s.pos
	}
	return true
}

// Clear drops the stored program.
func (s *RAMStore) Clear() {
	s.length = 0
	s.pos = 0
}
