package protocol

import "errors"

var (
	ErrVarintTruncated = errors.New("truncated varint")
	ErrVarintOverflow  = errors.New("varint exceeds 32 bits")
)

// AppendVarint appends the varint encoding of v to dst and returns the
// extended slice. Varints are unsigned, least-significant group first,
// 7 data bits per byte with the continuation bit in the MSB. The encoding
// is length-minimal.
func AppendVarint(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// EncodeVarint returns the varint encoding of v.
func EncodeVarint(v uint32) []byte {
	return AppendVarint(nil, v)
}

// VarintLen returns the number of bytes the varint encoding of v occupies.
func VarintLen(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// DecodeVarint decodes a varint from the data slice.
// The data slice is advanced past the consumed bytes.
func DecodeVarint(data *[]byte) (uint32, error) {
	var result uint32
	var shift uint

	for {
		if len(*data) == 0 {
			return 0, ErrVarintTruncated
		}
		b := (*data)[0]
		*data = (*data)[1:]

		if shift == 28 && b&0x7F > 0x0F {
			return 0, ErrVarintOverflow
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift > 28 {
			return 0, ErrVarintOverflow
		}
	}
}

// ReadVarint decodes a varint from a byte-at-a-time reader. It never
// fails; callers that need validation should decode from a slice instead.
// This is the form used by the command executor, which consumes bytes
// from a bytecode store.
func ReadVarint(next func() byte) uint32 {
	var result uint32
	var shift uint

	for {
		b := next()
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result
		}
		shift += 7
		if shift > 28 {
			return result
		}
	}
}
