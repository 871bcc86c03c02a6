package ion

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/tree"
)

// Value is a handle on a value, inside a datagram or not.
// The zero Value is invalid.
type Value = tree.Value

// Position locates the encoding of a clean value in its datagram.
type Position = tree.Position

// Type is the type of a value.
type Type = encoding.Type

// Value types.
const (
	TypeNull      = encoding.TypeNull
	TypeBool      = encoding.TypeBool
	TypeInt       = encoding.TypePosInt
	TypeFloat     = encoding.TypeFloat
	TypeDecimal   = encoding.TypeDecimal
	TypeTimestamp = encoding.TypeTimestamp
	TypeSymbol    = encoding.TypeSymbol
	TypeString    = encoding.TypeString
	TypeClob      = encoding.TypeClob
	TypeBlob      = encoding.TypeBlob
	TypeList      = encoding.TypeList
	TypeSexp      = encoding.TypeSexp
	TypeStruct    = encoding.TypeStruct
)

// NewNull returns a null value of the given type.
func NewNull(typ Type) (Value, error) { return tree.NewNull(typ) }

// NewBool returns a bool value.
func NewBool(b bool) Value { return tree.NewBool(b) }

// NewInt returns an int value.
func NewInt(i int64) Value { return tree.NewInt(i) }

// NewFloat returns a float value.
func NewFloat(f float64) Value { return tree.NewFloat(f) }

// NewString returns a string value.
func NewString(s string) Value { return tree.NewString(s) }

// NewSymbol returns a symbol value.
func NewSymbol(s string) Value { return tree.NewSymbol(s) }

// NewBlob returns a blob value holding a copy of b.
func NewBlob(b []byte) Value { return tree.NewBlob(b) }

// NewClob returns a clob value holding a copy of b.
func NewClob(b []byte) Value { return tree.NewClob(b) }

// NewList returns an empty list.
func NewList() Value { return tree.NewList() }

// NewSexp returns an empty s-expression.
func NewSexp() Value { return tree.NewSexp() }

// NewStruct returns an empty struct.
func NewStruct() Value { return tree.NewStruct() }
