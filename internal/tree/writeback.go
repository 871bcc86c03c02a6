package tree

import (
	"math"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

// wireType returns the type tag written for n.
func wireType(n *node) encoding.Type {
	if n.typ == encoding.TypePosInt && !n.null && n.i < 0 {
		return encoding.TypeNegInt
	}
	return n.typ
}

// literal reports whether the header of n is the whole value.
func literal(n *node) bool {
	return n.null || n.typ == encoding.TypeNull || n.typ == encoding.TypeBool
}

func headerLen(n *node) int {
	if literal(n) {
		return 1
	}
	return encoding.HeaderLen(n.size)
}

func annotationsLen(n *node) (int, error) {
	l := 0
	for _, a := range n.annotations {
		if !a.hasSID {
			return 0, errors.Wrapf(ErrUnbound, "annotation %q", a.text)
		}
		l += encoding.VarUIntLen(uint64(a.sid))
	}
	return l, nil
}

// valueLen returns the encoded length of a measured dirty node.
func valueLen(n *node) (int, error) {
	inner := headerLen(n) + n.size
	if len(n.annotations) == 0 {
		return inner, nil
	}

	ann, err := annotationsLen(n)
	if err != nil {
		return 0, err
	}
	wrapped := encoding.VarUIntLen(uint64(ann)) + ann + inner
	return encoding.HeaderLen(wrapped) + wrapped, nil
}

// scalarLen returns the payload length of a scalar.
func scalarLen(n *node) (int, error) {
	switch n.typ {
	case encoding.TypeNull, encoding.TypeBool:
		return 0, nil
	case encoding.TypePosInt:
		_, mag := encoding.SignedMagnitude(n.i)
		return encoding.UIntLen(mag), nil
	case encoding.TypeFloat:
		return encoding.FloatLen(n.f), nil
	case encoding.TypeString:
		return len(n.s), nil
	case encoding.TypeSymbol:
		if !n.sym.hasSID {
			return 0, errors.Wrapf(ErrUnbound, "symbol %q", n.sym.text)
		}
		return encoding.UIntLen(uint64(n.sym.sid)), nil
	}

	return len(n.raw), nil
}

func appendScalar(dst []byte, n *node) []byte {
	switch n.typ {
	case encoding.TypeNull, encoding.TypeBool:
		return dst
	case encoding.TypePosInt:
		_, mag := encoding.SignedMagnitude(n.i)
		return encoding.AppendUInt(dst, mag)
	case encoding.TypeFloat:
		return encoding.AppendFloat(dst, n.f)
	case encoding.TypeString:
		return append(dst, n.s...)
	case encoding.TypeSymbol:
		return encoding.AppendUInt(dst, uint64(n.sym.sid))
	}

	return append(dst, n.raw...)
}

// measure returns the encoded length of id. The payload length of every
// dirty node of the subtree is cached for emit.
func (t *Tree) measure(id NodeID) (int, error) {
	n := t.node(id)
	if n.state != dirty {
		return n.span.end - n.span.start, nil
	}

	size := 0
	switch {
	case n.null:
	case n.typ.IsContainer():
		for _, c := range n.children {
			l, err := t.measure(c)
			if err != nil {
				return 0, err
			}
			size += l

			if n.typ == encoding.TypeStruct {
				f := t.node(c).field
				if !f.hasSID {
					return 0, errors.Wrapf(ErrUnbound, "field %q", f.text)
				}
				size += encoding.VarUIntLen(uint64(f.sid))
			}
		}
	default:
		l, err := scalarLen(n)
		if err != nil {
			return 0, err
		}
		size = l
	}

	n.size = size
	return valueLen(n)
}

// emit appends the encoding of id to dst, whose first byte will land at
// offset base in the store. Clean subtrees are copied from the store,
// dirty ones are encoded from their native values. Every node of the
// subtree ends up clean with a span matching its new location.
// The subtree must have been measured.
func (t *Tree) emit(dst []byte, id NodeID, base int) ([]byte, error) {
	n := t.node(id)
	start := base + len(dst)

	if n.state != dirty {
		old, err := t.store.ReadAt(n.span.start, n.span.end-n.span.start)
		if err != nil {
			return dst, err
		}
		dst = append(dst, old...)
		t.shift(id, start-n.span.start)
		return dst, nil
	}

	var err error
	if len(n.annotations) > 0 {
		ann, _ := annotationsLen(n)
		inner := headerLen(n) + n.size
		dst, err = encoding.AppendHeader(dst, encoding.TypeAnnotation, encoding.VarUIntLen(uint64(ann))+ann+inner)
		if err != nil {
			return dst, err
		}
		dst = encoding.AppendVarUInt(dst, uint64(ann))
		for _, a := range n.annotations {
			dst = encoding.AppendVarUInt(dst, uint64(a.sid))
		}
	}

	header := base + len(dst)
	switch {
	case n.null, n.typ == encoding.TypeNull:
		dst = encoding.AppendLiteral(dst, n.typ, encoding.NibbleNull)
	case n.typ == encoding.TypeBool:
		nibble := encoding.NibbleFalse
		if n.b {
			nibble = encoding.NibbleTrue
		}
		dst = encoding.AppendLiteral(dst, encoding.TypeBool, nibble)
	default:
		dst, err = encoding.AppendHeader(dst, wireType(n), n.size)
		if err != nil {
			return dst, err
		}
	}
	payload := base + len(dst)

	if !n.null {
		if n.typ.IsContainer() {
			isStruct := n.typ == encoding.TypeStruct
			for _, c := range n.children {
				if isStruct {
					dst = encoding.AppendVarUInt(dst, uint64(t.node(c).field.sid))
				}
				dst, err = t.emit(dst, c, base)
				if err != nil {
					return dst, err
				}
			}
		} else {
			dst = appendScalar(dst, n)
		}
	}

	n.span = span{start: start, header: header, payload: payload, end: base + len(dst)}
	n.hasSpan = true
	n.state = clean
	return dst, nil
}

// WriteBack brings the store up to date with the top-level sequence and
// patches the envelope length. Every name used by a dirty value must be
// bound beforehand. It returns the change in length of the document.
func (t *Tree) WriteBack() (int, error) {
	pos := encoding.EnvelopeSize
	delta := 0

	for _, c := range t.node(Root).children {
		n := t.node(c)

		// spans are contiguous: whatever moved before c moved c by the same amount
		if n.hasSpan {
			t.shift(c, pos-n.span.start)
		}
		if n.state != dirty {
			pos = n.span.end
			continue
		}

		oldLen := 0
		if n.hasSpan {
			oldLen = n.span.end - n.span.start
		}

		total, err := t.measure(c)
		if err != nil {
			return delta, err
		}
		buf, err := t.emit(make([]byte, 0, total), c, pos)
		if err != nil {
			return delta, err
		}
		if len(buf) != total {
			return delta, errors.AssertionFailedf("value measured %d bytes, emitted %d", total, len(buf))
		}

		err = t.store.Replace(pos, oldLen, buf)
		if err != nil {
			return delta, err
		}
		delta += len(buf) - oldLen
		pos += len(buf)
	}

	if pos > math.MaxUint32 {
		return delta, errors.Wrapf(encoding.ErrEncodingTooLarge, "document of %d bytes", pos)
	}
	err := t.store.Truncate(pos)
	if err != nil {
		return delta, err
	}
	err = t.store.WriteAt(0, encoding.AppendUint32(nil, uint32(pos)))
	if err != nil {
		return delta, err
	}

	t.node(Root).state = clean
	return delta, nil
}

// Bytes returns the store. The slice is only valid until the next mutation.
func (t *Tree) Bytes() []byte {
	return t.store.Bytes()
}
