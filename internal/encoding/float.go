package encoding

import (
	"encoding/binary"
	"math"
)

// FloatLen returns the payload length of f.
// Positive zero has an empty payload, every other value takes 8 bytes.
func FloatLen(f float64) int {
	if f == 0 && !math.Signbit(f) {
		return 0
	}
	return 8
}

// AppendFloat appends the payload of f.
func AppendFloat(dst []byte, f float64) []byte {
	if FloatLen(f) == 0 {
		return dst
	}
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(f))
}

// DecodeFloat decodes a float payload of 0, 4 or 8 bytes.
func DecodeFloat(b []byte) (float64, error) {
	switch len(b) {
	case 0:
		return 0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	}

	return 0, malformedf("float payload of %d bytes", len(b))
}
