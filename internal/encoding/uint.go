package encoding

import (
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// UIntLen returns the minimal number of big-endian bytes holding v.
// Zero needs no bytes.
func UIntLen(v uint64) int {
	return (bits.Len64(v) + 7) / 8
}

// AppendUInt appends the minimal big-endian representation of v.
func AppendUInt(dst []byte, v uint64) []byte {
	for i := UIntLen(v) - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}

// DecodeUInt decodes a big-endian unsigned magnitude spanning all of b.
// Leading zero bytes are accepted.
func DecodeUInt(b []byte) (uint64, error) {
	var v uint64
	for _, c := range b {
		if v>>56 != 0 {
			return 0, errors.Wrapf(ErrEncodingTooLarge, "magnitude of %d bytes", len(b))
		}
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// SignedMagnitude splits v into its sign and unsigned magnitude.
func SignedMagnitude(v int64) (neg bool, mag uint64) {
	return v < 0, magnitude(v)
}

// FromMagnitude rebuilds a signed value from a sign and a magnitude.
func FromMagnitude(neg bool, mag uint64) (int64, error) {
	if !neg {
		if mag > math.MaxInt64 {
			return 0, errors.Wrapf(ErrEncodingTooLarge, "int %d overflows int64", mag)
		}
		return int64(mag), nil
	}

	switch {
	case mag > 1<<63:
		return 0, errors.Wrapf(ErrEncodingTooLarge, "int -%d overflows int64", mag)
	case mag == 1<<63:
		return math.MinInt64, nil
	}
	return -int64(mag), nil
}

// AppendUint32 appends v as 4 big-endian bytes.
func AppendUint32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// DecodeUint32 decodes 4 big-endian bytes.
func DecodeUint32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, malformedf("truncated fixed-width integer: %d bytes", len(b))
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}
