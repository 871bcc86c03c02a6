package tree

import (
	"slices"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

// Value is a handle on a node of a tree.
// Handles stay valid when the value they designate is attached to
// another tree, whether its nodes are moved or copied.
type Value struct {
	t  *Tree
	id NodeID
}

func (v Value) resolve() (*Tree, NodeID) {
	t, id := v.t, v.id
	for {
		if t.movedTo != nil {
			id += t.offset
			t = t.movedTo
			continue
		}
		n := &t.nodes[id]
		if n.fwd == nil {
			return t, id
		}
		t, id = n.fwd, n.fwdID
	}
}

func (v Value) get() (*Tree, NodeID, *node) {
	t, id := v.resolve()
	return t, id, t.node(id)
}

// IsValid reports whether v designates a value.
func (v Value) IsValid() bool {
	return v.t != nil
}

// Same reports whether v and other designate the same value.
func (v Value) Same(other Value) bool {
	if !v.IsValid() || !other.IsValid() {
		return false
	}
	t1, id1 := v.resolve()
	t2, id2 := other.resolve()
	return t1 == t2 && id1 == id2
}

// Type returns the type of the value. Both int tags are reported as TypePosInt.
func (v Value) Type() encoding.Type {
	_, _, n := v.get()
	return n.typ
}

// IsNull reports whether the value is the null of its type.
func (v Value) IsNull() bool {
	_, _, n := v.get()
	return n.null
}

// IsDirty reports whether the value was modified since it was last encoded.
func (v Value) IsDirty() bool {
	_, _, n := v.get()
	return n.state == dirty
}

// IsMaterialized reports whether the native value is decoded.
func (v Value) IsMaterialized() bool {
	_, _, n := v.get()
	return n.state != unmaterialized
}

// Materialize decodes the native value. For containers, only the framing
// of the children is decoded.
func (v Value) Materialize() error {
	t, id := v.resolve()
	return t.materialize(id)
}

// Position returns where the value is encoded. It returns false for
// values that were never encoded or were modified since.
func (v Value) Position() (Position, bool) {
	_, _, n := v.get()
	return n.position()
}

// Parent returns the container of the value. Top-level values have none.
func (v Value) Parent() (Value, bool) {
	t, _, n := v.get()
	if n.parent == noNode || (n.parent == Root && t.IsDocument()) {
		return Value{}, false
	}
	return Value{t: t, id: n.parent}, true
}

// scalar returns the materialized node of a non-null scalar of type want.
func (v Value) scalar(want encoding.Type) (*node, error) {
	t, id, n := v.get()
	if n.typ != want {
		return nil, mismatchf(n.typ, want.String())
	}
	if err := t.materialize(id); err != nil {
		return nil, err
	}
	n = t.node(id)
	if n.null {
		return nil, errors.Wrapf(ErrNullValue, "null.%s", n.typ)
	}
	return n, nil
}

// Bool returns the value of a bool.
func (v Value) Bool() (bool, error) {
	n, err := v.scalar(encoding.TypeBool)
	if err != nil {
		return false, err
	}
	return n.b, nil
}

// Int returns the value of an int.
func (v Value) Int() (int64, error) {
	n, err := v.scalar(encoding.TypePosInt)
	if err != nil {
		return 0, err
	}
	return n.i, nil
}

// Float returns the value of a float.
func (v Value) Float() (float64, error) {
	n, err := v.scalar(encoding.TypeFloat)
	if err != nil {
		return 0, err
	}
	return n.f, nil
}

// Text returns the value of a string.
func (v Value) Text() (string, error) {
	n, err := v.scalar(encoding.TypeString)
	if err != nil {
		return "", err
	}
	return n.s, nil
}

// Symbol returns the text of a symbol.
func (v Value) Symbol() (string, error) {
	n, err := v.scalar(encoding.TypeSymbol)
	if err != nil {
		return "", err
	}
	t, id := v.resolve()
	return t.resolve(id, &n.sym)
}

// Bytes returns a copy of the content of a blob or a clob.
func (v Value) Bytes() ([]byte, error) {
	_, _, n := v.get()
	if n.typ != encoding.TypeBlob && n.typ != encoding.TypeClob {
		return nil, mismatchf(n.typ, "blob or clob")
	}
	n, err := v.scalar(n.typ)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.raw), nil
}

// Raw returns a copy of the payload of a decimal or a timestamp.
// These types are carried as opaque bytes.
func (v Value) Raw() ([]byte, error) {
	_, _, n := v.get()
	if n.typ != encoding.TypeDecimal && n.typ != encoding.TypeTimestamp {
		return nil, mismatchf(n.typ, "decimal or timestamp")
	}
	n, err := v.scalar(n.typ)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.raw), nil
}

// set replaces the native value of a scalar of type want.
func (v Value) set(want encoding.Type, fn func(n *node)) error {
	t, id, n := v.get()
	if n.typ != want {
		return mismatchf(n.typ, want.String())
	}

	fn(n)
	n.null = false
	t.markDirty(id)
	return nil
}

// SetBool sets the value of a bool.
func (v Value) SetBool(b bool) error {
	return v.set(encoding.TypeBool, func(n *node) { n.b = b })
}

// SetInt sets the value of an int.
func (v Value) SetInt(i int64) error {
	return v.set(encoding.TypePosInt, func(n *node) { n.i = i })
}

// SetFloat sets the value of a float.
func (v Value) SetFloat(f float64) error {
	return v.set(encoding.TypeFloat, func(n *node) { n.f = f })
}

// SetText sets the value of a string.
func (v Value) SetText(s string) error {
	return v.set(encoding.TypeString, func(n *node) { n.s = s })
}

// SetSymbol sets the text of a symbol.
func (v Value) SetSymbol(s string) error {
	return v.set(encoding.TypeSymbol, func(n *node) { n.sym = textRef(s) })
}

// SetBytes sets the content of a blob or a clob.
func (v Value) SetBytes(b []byte) error {
	_, _, n := v.get()
	if n.typ != encoding.TypeBlob && n.typ != encoding.TypeClob {
		return mismatchf(n.typ, "blob or clob")
	}
	return v.set(n.typ, func(n *node) { n.raw = slices.Clone(b) })
}

// SetNull turns the value into the null of its type.
// The children of a container are detached.
func (v Value) SetNull() error {
	t, id := v.resolve()

	for {
		children := t.node(id).children
		if len(children) == 0 {
			break
		}
		last := len(children) - 1
		if err := t.unbind(children[last]); err != nil {
			return err
		}
		t.removeChild(id, last)
	}

	n := t.node(id)
	n.null = true
	n.b, n.i, n.f, n.s, n.sym, n.raw = false, 0, 0, "", symbolRef{}, nil
	t.markDirty(id)
	return nil
}
