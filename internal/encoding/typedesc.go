package encoding

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Header is a decoded type descriptor and its optional length extension.
type Header struct {
	Type   Type
	Nibble byte
	// Length of the payload that follows the header.
	Length int
	// Size of the header itself: the type descriptor and the VarUInt length, if any.
	Size int
}

// IsNull reports whether the header encodes the null value of its type.
func (h Header) IsNull() bool {
	return h.Nibble == NibbleNull
}

func (h Header) String() string {
	return fmt.Sprintf("%s/%x len=%d", h.Type, h.Nibble, h.Length)
}

// DecodeHeader decodes the header found at the start of b.
// The meaning of the low nibble depends on the type, so decoding
// branches on the type first.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) == 0 {
		return Header{}, malformedf("premature end of buffer, expecting type descriptor")
	}

	t, ln := SplitTypeDesc(b[0])
	h := Header{Type: t, Nibble: ln, Size: 1}

	switch t {
	case TypeNull:
		if ln != NibbleNull {
			return h, malformedf("type descriptor %#02x: null with length nibble %d", b[0], ln)
		}
		return h, nil
	case TypeBool:
		switch ln {
		case NibbleFalse, NibbleTrue, NibbleNull:
			return h, nil
		}
		return h, malformedf("type descriptor %#02x: bool with length nibble %d", b[0], ln)
	case TypeNegInt:
		if ln == NibbleZero {
			return h, malformedf("type descriptor %#02x: negative zero int", b[0])
		}
	case TypeAnnotation:
		if ln == NibbleNull {
			return h, malformedf("type descriptor %#02x: null annotation wrapper", b[0])
		}
	case typeReserved:
		return h, malformedf("type descriptor %#02x: reserved type", b[0])
	}

	switch ln {
	case NibbleNull:
		return h, nil
	case NibbleVarLen:
		l, n, err := DecodeLength(b[1:])
		if err != nil {
			return h, err
		}
		h.Length = l
		h.Size += n
	default:
		h.Length = int(ln)
	}

	return h, nil
}

// HeaderLen returns the size of the header needed for a payload of the given length.
func HeaderLen(length int) int {
	if length <= MaxInlineLength {
		return 1
	}
	return 1 + VarUIntLen(uint64(length))
}

// AppendHeader appends the smallest header for a payload of the given length:
// inline in the low nibble when it fits, otherwise followed by a VarUInt.
func AppendHeader(dst []byte, t Type, length int) ([]byte, error) {
	if length < 0 {
		return dst, errors.Wrapf(ErrInvalidArgument, "negative payload length %d", length)
	}
	if length <= MaxInlineLength {
		return append(dst, MakeTypeDesc(t, byte(length))), nil
	}

	dst = append(dst, MakeTypeDesc(t, NibbleVarLen))
	return AppendLength(dst, length)
}

// AppendLiteral appends a header-only value whose low nibble is a sentinel,
// such as null, a boolean or a numeric zero.
func AppendLiteral(dst []byte, t Type, nibble byte) []byte {
	return append(dst, MakeTypeDesc(t, nibble))
}
