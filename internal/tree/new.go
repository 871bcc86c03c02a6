package tree

import (
	"slices"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

func fragment(n node) Value {
	return Value{t: newFragment(n)}
}

// NewNull returns the null of the given type.
func NewNull(typ encoding.Type) (Value, error) {
	typ = normalizeType(typ)
	if typ >= encoding.TypeAnnotation {
		return Value{}, errors.Wrapf(encoding.ErrInvalidArgument, "no null for type %s", typ)
	}
	return fragment(node{typ: typ, null: true}), nil
}

// NewBool returns a bool.
func NewBool(b bool) Value {
	return fragment(node{typ: encoding.TypeBool, b: b})
}

// NewInt returns an int.
func NewInt(i int64) Value {
	return fragment(node{typ: encoding.TypePosInt, i: i})
}

// NewFloat returns a float.
func NewFloat(f float64) Value {
	return fragment(node{typ: encoding.TypeFloat, f: f})
}

// NewString returns a string.
func NewString(s string) Value {
	return fragment(node{typ: encoding.TypeString, s: s})
}

// NewSymbol returns a symbol.
func NewSymbol(s string) Value {
	return fragment(node{typ: encoding.TypeSymbol, sym: textRef(s)})
}

// NewBlob returns a blob holding a copy of b.
func NewBlob(b []byte) Value {
	return fragment(node{typ: encoding.TypeBlob, raw: slices.Clone(b)})
}

// NewClob returns a clob holding a copy of b.
func NewClob(b []byte) Value {
	return fragment(node{typ: encoding.TypeClob, raw: slices.Clone(b)})
}

// NewList returns an empty list.
func NewList() Value {
	return fragment(node{typ: encoding.TypeList})
}

// NewSexp returns an empty s-expression.
func NewSexp() Value {
	return fragment(node{typ: encoding.TypeSexp})
}

// NewStruct returns an empty struct.
func NewStruct() Value {
	return fragment(node{typ: encoding.TypeStruct})
}
