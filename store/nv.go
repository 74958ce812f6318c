package store

import "ledctrl/protocol"

// Memory is random-access byte storage backing an NVStore, typically an
// EEPROM or a flash page.
type Memory interface {
	ReadByteAt(offset int) byte
	WriteByteAt(offset int, value byte)
	Size() int
}

// RAMMemory is an in-memory Memory implementation, used on targets without
// persistent storage and in tests.
type RAMMemory struct {
	data []byte
}

func NewRAMMemory(size int) *RAMMemory {
	return &RAMMemory{data: make([]byte, size)}
}

func (m *RAMMemory) ReadByteAt(offset int) byte {
	return m.data[offset]
}

func (m *RAMMemory) WriteByteAt(offset int, value byte) {
	m.data[offset] = value
}

func (m *RAMMemory) Size() int {
	return len(m.data)
}

// nvMagic marks a valid program header in non-volatile memory.
var nvMagic = [4]byte{'L', 'E', 'D', 'C'}

// nvHeaderSize is the magic plus a 16-bit little-endian program length.
const nvHeaderSize = len(nvMagic) + 2

// NVStore holds a program in non-volatile memory behind a magic-number
// header. When the header is missing or invalid, the store reads as an
// endless stream of end-of-program instructions so the executor idles
// safely instead of interpreting garbage.
type NVStore struct {
	suspendable
	mem    Memory
	base   int
	pos    int
	length int
	valid  bool
}

// NewNVStore creates a store over the given memory, with the header at the
// given base offset. The header is validated immediately.
func NewNVStore(mem Memory, base int) *NVStore {
	s := &NVStore{mem: mem, base: base}
	s.loadHeader()
	return s
}

func (s *NVStore) loadHeader() {
	s.valid = false
	s.length = 0
	if s.mem.Size() < s.base+nvHeaderSize {
		return
	}
	for i, b := range nvMagic {
		if s.mem.ReadByteAt(s.base+i) != b {
			return
		}
	}
	length := int(s.mem.ReadByteAt(s.base+4)) | int(s.mem.ReadByteAt(s.base+5))<<8
	if length > s.Capacity() {
		return
	}
	s.length = length
	s.valid = true
}

func (s *NVStore) Capacity() int {
	capacity := s.mem.Size() - s.base - nvHeaderSize
	if capacity < 0 {
		return 0
	}
	return capacity
}

func (s *NVStore) Empty() bool {
	return !s.valid || s.length == 0
}

func (s *NVStore) Next() byte {
	if s.Suspended() {
		return protocol.CmdNop
	}
	if !s.valid || s.pos >= s.length {
		return protocol.CmdEnd
	}
	b := s.mem.ReadByteAt(s.base + nvHeaderSize + s.pos)
	s.pos++
	return b
}

func (s *NVStore) Rewind() {
	s.pos = 0
}

func (s *NVStore) Seek(location Location) error {
	if location < 0 || int(location) > s.length {
		return ErrInvalidLocation
	}
	s.pos = int(location)
	return nil
}

func (s *NVStore) Tell() Location {
	return Location(s.pos)
}

func (s *NVStore) Write(value byte) bool {
	if s.pos >= s.Capacity() {
		return false
	}
	s.mem.WriteByteAt(s.base+nvHeaderSize+s.pos, value)
	s.pos++
	if s.pos > s.length {
		s.length = s.pos
	}
	return true
}

// Clear drops the stored program. The header in memory is untouched
// until the next Commit.
func (s *NVStore) Clear() {
	s.pos = 0
	s.length = 0
}

// Commit writes the header so the program written so far survives a
// restart. Must be called after an upload; Write alone does not touch
// the header.
func (s *NVStore) Commit() {
	for i, b := range nvMagic {
		s.mem.WriteByteAt(s.base+i, b)
	}
	s.mem.WriteByteAt(s.base+4, byte(s.length))
	s.mem.WriteByteAt(s.base+5, byte(s.length>>8))
	s.valid = true
}
