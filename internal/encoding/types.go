package encoding

import "strconv"

// Type is the high nibble of a type descriptor byte.
// Each value in the binary form starts with a type descriptor whose
// high nibble is the type and whose low nibble is either an inline
// length or a type specific sentinel.
type Type uint8

const (
	TypeNull      Type = 0
	TypeBool      Type = 1
	TypePosInt    Type = 2
	TypeNegInt    Type = 3
	TypeFloat     Type = 4
	TypeDecimal   Type = 5
	TypeTimestamp Type = 6
	TypeSymbol    Type = 7
	TypeString    Type = 8
	TypeClob      Type = 9
	TypeBlob      Type = 10
	TypeList      Type = 11
	TypeSexp      Type = 12
	TypeStruct    Type = 13

	// TypeAnnotation wraps a value together with its annotations.
	TypeAnnotation Type = 14

	typeReserved Type = 15
)

var typeNames = [...]string{
	TypeNull:       "null",
	TypeBool:       "bool",
	TypePosInt:     "int",
	TypeNegInt:     "int",
	TypeFloat:      "float",
	TypeDecimal:    "decimal",
	TypeTimestamp:  "timestamp",
	TypeSymbol:     "symbol",
	TypeString:     "string",
	TypeClob:       "clob",
	TypeBlob:       "blob",
	TypeList:       "list",
	TypeSexp:       "sexp",
	TypeStruct:     "struct",
	TypeAnnotation: "annotation",
	typeReserved:   "reserved",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}

	return "type(" + strconv.Itoa(int(t)) + ")"
}

// IsContainer reports whether values of this type hold child values.
func (t Type) IsContainer() bool {
	return t == TypeList || t == TypeSexp || t == TypeStruct
}

// Low nibble sentinels.
const (
	NibbleFalse  byte = 0x0
	NibbleTrue   byte = 0x1
	NibbleZero   byte = 0x0
	NibbleVarLen byte = 0x0E
	NibbleNull   byte = 0x0F

	// MaxInlineLength is the largest payload length that fits in the low nibble.
	MaxInlineLength = 13
)

// MakeTypeDesc packs a type and a low nibble into a type descriptor byte.
func MakeTypeDesc(t Type, nibble byte) byte {
	return byte(t)<<4 | nibble&0x0F
}

// SplitTypeDesc is the inverse of MakeTypeDesc.
func SplitTypeDesc(td byte) (Type, byte) {
	return Type(td >> 4), td & 0x0F
}

// Document envelope.
// A document starts with a 4 byte big-endian length field, written as
// EnvelopeUnpatched until the document is finalized, followed by the
// 4 byte magic token. The total length is patched into that leading
// field; nothing follows the last value.
const (
	EnvelopeSize      = 8
	EnvelopeUnpatched = 0xFFFFFFFF
)

// Magic is the token identifying a binary document.
var Magic = [4]byte{0x10, 0x14, 0x01, 0x00}
