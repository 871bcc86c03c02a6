package tree

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/chaisql/ion/internal/buffer"
	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

func malformedAt(off int, format string, args ...interface{}) error {
	return errors.Wrapf(encoding.ErrMalformedEncoding, "at offset %d: "+format, append([]interface{}{off}, args...)...)
}

func readSID(r *buffer.Reader) (int, error) {
	v, err := r.ReadVarUInt()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, errors.Wrapf(encoding.ErrEncodingTooLarge, "symbol id %d", v)
	}
	return int(v), nil
}

// decodeValue decodes the framing of the value starting at pos, which must
// end at or before limit: its annotations, its type and its span.
// The payload is left untouched. The returned node is unmaterialized and detached.
func (t *Tree) decodeValue(pos, limit int) (node, error) {
	n := node{parent: noNode, hasSpan: true}
	n.span.start = pos

	r := t.store.Reader()
	if err := r.SetPosition(pos); err != nil {
		return n, malformedAt(pos, "premature end of buffer")
	}

	h, err := r.ReadHeader()
	if err != nil {
		return n, err
	}

	if h.Type == encoding.TypeAnnotation {
		wrapperEnd := r.Position() + h.Length
		if wrapperEnd > limit {
			return n, malformedAt(pos, "annotation wrapper of %d bytes overruns its container", h.Length)
		}

		annLen, err := r.ReadLength()
		if err != nil {
			return n, err
		}
		annEnd := r.Position() + annLen
		if annLen == 0 || annEnd >= wrapperEnd {
			return n, malformedAt(pos, "annotation list of %d bytes in a wrapper of %d bytes", annLen, h.Length)
		}

		for r.Position() < annEnd {
			sid, err := readSID(r)
			if err != nil {
				return n, err
			}
			n.annotations = append(n.annotations, sidRef(sid))
		}
		if r.Position() != annEnd {
			return n, malformedAt(pos, "annotation list overruns its length")
		}

		n.span.header = annEnd
		h, err = r.ReadHeader()
		if err != nil {
			return n, err
		}
		if h.Type == encoding.TypeAnnotation {
			return n, malformedAt(annEnd, "nested annotation wrapper")
		}
		n.span.payload = r.Position()
		n.span.end = n.span.payload + h.Length
		if n.span.end != wrapperEnd {
			return n, malformedAt(pos, "annotation wrapper ends at %d, its value at %d", wrapperEnd, n.span.end)
		}
	} else {
		n.span.header = pos
		n.span.payload = r.Position()
		n.span.end = n.span.payload + h.Length
	}

	if n.span.end > limit {
		return n, malformedAt(pos, "%s value of %d bytes overruns its container", h.Type, h.Length)
	}

	n.typ = normalizeType(h.Type)
	n.null = h.IsNull()
	return n, nil
}

// materialize decodes the native value of id.
// The children of a container are decoded as unmaterialized nodes.
func (t *Tree) materialize(id NodeID) error {
	n := t.node(id)
	if n.state != unmaterialized {
		return nil
	}

	if !n.null {
		var err error
		if n.typ.IsContainer() {
			err = t.decodeChildren(id)
		} else {
			err = t.decodeScalar(n)
		}
		if err != nil {
			return err
		}
	}

	t.node(id).state = clean
	return nil
}

// materializeDeep materializes id and all of its descendants.
func (t *Tree) materializeDeep(id NodeID) error {
	err := t.materialize(id)
	if err != nil {
		return err
	}

	for i := 0; i < len(t.node(id).children); i++ {
		err = t.materializeDeep(t.node(id).children[i])
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Tree) decodeScalar(n *node) error {
	payload, err := t.store.ReadAt(n.span.payload, n.span.end-n.span.payload)
	if err != nil {
		return malformedAt(n.span.payload, "premature end of buffer")
	}

	switch n.typ {
	case encoding.TypeNull:
		// a null header is the whole value
	case encoding.TypeBool:
		td, err := t.typeDesc(n)
		if err != nil {
			return err
		}
		_, nibble := encoding.SplitTypeDesc(td)
		n.b = nibble == encoding.NibbleTrue
	case encoding.TypePosInt:
		td, err := t.typeDesc(n)
		if err != nil {
			return err
		}
		typ, _ := encoding.SplitTypeDesc(td)
		mag, err := t.magnitude(n)
		if err != nil {
			return err
		}
		n.i, err = encoding.FromMagnitude(typ == encoding.TypeNegInt, mag)
		if err != nil {
			return errors.Wrapf(err, "at offset %d", n.span.payload)
		}
	case encoding.TypeFloat:
		n.f, err = encoding.DecodeFloat(payload)
		if err != nil {
			return errors.Wrapf(err, "at offset %d", n.span.payload)
		}
	case encoding.TypeString:
		if !utf8.Valid(payload) {
			return malformedAt(n.span.payload, "invalid UTF-8 in string")
		}
		n.s = string(payload)
	case encoding.TypeSymbol:
		sid, err := t.magnitude(n)
		if err != nil {
			return err
		}
		if sid > math.MaxInt32 {
			return errors.Wrapf(encoding.ErrEncodingTooLarge, "symbol id %d at offset %d", sid, n.span.payload)
		}
		n.sym = sidRef(int(sid))
	default:
		n.raw = slices.Clone(payload)
	}

	return nil
}

// typeDesc returns the type descriptor byte of n.
func (t *Tree) typeDesc(n *node) (byte, error) {
	r := t.store.Reader()
	if err := r.SetPosition(n.span.header); err != nil {
		return 0, malformedAt(n.span.header, "premature end of buffer")
	}
	td, err := r.ReadByte()
	if err != nil {
		return 0, malformedAt(n.span.header, "premature end of buffer")
	}
	return td, nil
}

// magnitude decodes the unsigned payload of an int or a symbol.
func (t *Tree) magnitude(n *node) (uint64, error) {
	r := t.store.Reader()
	if err := r.SetPosition(n.span.payload); err != nil {
		return 0, malformedAt(n.span.payload, "premature end of buffer")
	}
	v, err := r.ReadUInt(n.span.end - n.span.payload)
	if err != nil {
		return 0, errors.Wrapf(err, "at offset %d", n.span.payload)
	}
	return v, nil
}

// decodeChildren decodes the framing of the children of a container.
// On failure the container is left untouched.
func (t *Tree) decodeChildren(id NodeID) error {
	n := t.node(id)
	pos, end := n.span.payload, n.span.end
	isStruct := n.typ == encoding.TypeStruct
	r := t.store.Reader()

	var children []node
	for pos < end {
		var field symbolRef
		if isStruct {
			if err := r.SetPosition(pos); err != nil {
				return malformedAt(pos, "premature end of buffer")
			}
			sid, err := readSID(r)
			if err != nil {
				return err
			}
			if r.Position() >= end {
				return malformedAt(pos, "struct field $%d without a value", sid)
			}
			field = sidRef(sid)
			pos = r.Position()
		}

		c, err := t.decodeValue(pos, end)
		if err != nil {
			return err
		}
		if isStruct {
			c.field = field
			c.hasField = true
		}
		pos = c.span.end
		children = append(children, c)
	}

	for _, c := range children {
		t.appendChild(id, t.add(c))
	}
	return nil
}
