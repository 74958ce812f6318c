package store

import "ledctrl/protocol"

// ConstantStore provides read-only access to a program held in a byte
// slice. Writes are rejected and the capacity is reported as zero.
type ConstantStore struct {
	suspendable
	data []byte
	pos  int
}

// NewConstantStore creates a read-only store over the given program.
// The slice is not copied; the caller must not mutate it afterwards.
func NewConstantStore(data []byte) *ConstantStore {
	return &ConstantStore{data: data}
}

func (s *ConstantStore) Capacity() int {
	return 0
}

func (s *ConstantStore) Empty() bool {
	return len(s.data) == 0
}

func (s *ConstantStore) Next() byte {
	if s.Suspended() {
		return protocol.CmdNop
	}
	if s.pos >= len(s.data) {
		return protocol.CmdEnd
	}
	b := s.data[s.pos]
	s.pos++
	return b
}

func (s *ConstantStore) Rewind() {
	s.pos = 0
}

func (s *ConstantStore) Seek(location Location) error {
	if location < 0 || int(location) > len(s.data) {
		return ErrInvalidLocation
	}
	s.pos = int(location)
	return nil
}

func (s *ConstantStore) Tell() Location {
	return Location(s.pos)
}

func (s *ConstantStore) Write(value byte) bool {
	return false
}
