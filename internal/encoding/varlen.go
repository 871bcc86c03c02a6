package encoding

import (
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// VarUInt and VarInt use big-endian base-128 digits.
// The high bit of a byte is set only on the last byte of the number.
// The first byte of a VarInt reserves bit 0x40 for the sign, leaving
// 6 bits of magnitude.

const (
	varEndFlag  = 0x80
	varSignFlag = 0x40
)

// VarUIntLen returns the number of bytes needed to encode v as a VarUInt.
func VarUIntLen(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}

// AppendVarUInt appends the VarUInt encoding of v to dst.
func AppendVarUInt(dst []byte, v uint64) []byte {
	n := VarUIntLen(v)
	for i := n - 1; i >= 0; i-- {
		b := byte(v>>(7*uint(i))) & 0x7F
		if i == 0 {
			b |= varEndFlag
		}
		dst = append(dst, b)
	}
	return dst
}

// DecodeVarUInt decodes a VarUInt from the start of b.
// It returns the value and the number of bytes read.
func DecodeVarUInt(b []byte) (uint64, int, error) {
	var v uint64

	for i, c := range b {
		if v > math.MaxUint64>>7 {
			return 0, 0, errors.Wrapf(ErrEncodingTooLarge, "VarUInt longer than 64 bits")
		}
		v = v<<7 | uint64(c&0x7F)
		if c&varEndFlag != 0 {
			return v, i + 1, nil
		}
	}

	return 0, 0, malformedf("truncated VarUInt after %d bytes", len(b))
}

// AppendLength appends n as a VarUInt.
// Lengths and symbol ids are signed integers in Go, negative ones are rejected.
func AppendLength[T constraints.Integer](dst []byte, n T) ([]byte, error) {
	if n < 0 {
		return dst, errors.Wrapf(ErrInvalidArgument, "negative value %d written as VarUInt", n)
	}

	return AppendVarUInt(dst, uint64(n)), nil
}

// DecodeLength decodes a VarUInt that must fit in an int.
func DecodeLength(b []byte) (int, int, error) {
	v, n, err := DecodeVarUInt(b)
	if err != nil {
		return 0, 0, err
	}
	if v > math.MaxInt32 {
		return 0, 0, errors.Wrapf(ErrEncodingTooLarge, "length %d", v)
	}

	return int(v), n, nil
}

func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// VarIntLen returns the number of bytes needed to encode v as a VarInt.
func VarIntLen(v int64) int {
	m := magnitude(v)
	n := 1
	for m >>= 6; m != 0; m >>= 7 {
		n++
	}
	return n
}

// AppendVarInt appends the VarInt encoding of v to dst.
func AppendVarInt(dst []byte, v int64) []byte {
	m := magnitude(v)
	n := VarIntLen(v)
	for i := n - 1; i >= 0; i-- {
		b := byte(m>>(7*uint(i))) & 0x7F
		if i == n-1 {
			b &= 0x3F
			if v < 0 {
				b |= varSignFlag
			}
		}
		if i == 0 {
			b |= varEndFlag
		}
		dst = append(dst, b)
	}
	return dst
}

// DecodeVarInt decodes a VarInt from the start of b.
// It returns the value and the number of bytes read.
// Negative zero decodes to 0.
func DecodeVarInt(b []byte) (int64, int, error) {
	if len(b) == 0 {
		return 0, 0, malformedf("truncated VarInt")
	}

	neg := b[0]&varSignFlag != 0
	m := uint64(b[0] & 0x3F)
	n := 1
	end := b[0]&varEndFlag != 0

	for ; !end; n++ {
		if n >= len(b) {
			return 0, 0, malformedf("truncated VarInt after %d bytes", n)
		}
		if m > math.MaxUint64>>7 {
			return 0, 0, errors.Wrapf(ErrEncodingTooLarge, "VarInt longer than 64 bits")
		}
		m = m<<7 | uint64(b[n]&0x7F)
		end = b[n]&varEndFlag != 0
	}

	if !neg {
		if m > math.MaxInt64 {
			return 0, 0, errors.Wrapf(ErrEncodingTooLarge, "VarInt %d overflows int64", m)
		}
		return int64(m), n, nil
	}

	switch {
	case m > 1<<63:
		return 0, 0, errors.Wrapf(ErrEncodingTooLarge, "VarInt -%d overflows int64", m)
	case m == 1<<63:
		return math.MinInt64, n, nil
	}

	return -int64(m), n, nil
}
