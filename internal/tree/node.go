package tree

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/symtab"
)

// NodeID identifies a node in the arena of a Tree.
type NodeID int32

// Root is the id of the root node of every tree.
// In a document it is the top-level sequence, in a fragment the value itself.
const Root NodeID = 0

const noNode NodeID = -1

// state of the dual representation of a node.
type state uint8

const (
	// the node only knows where its bytes are.
	unmaterialized state = iota
	// the native value is decoded and matches the bytes.
	clean
	// the native value is authoritative, the bytes, if any, are stale.
	dirty
)

func (s state) String() string {
	switch s {
	case unmaterialized:
		return "unmaterialized"
	case clean:
		return "clean"
	}
	return "dirty"
}

// span locates the encoding of a node in the store.
// All offsets are absolute.
type span struct {
	// first byte of the value, the annotation wrapper if any.
	start int
	// type descriptor of the value itself.
	header int
	// first payload byte.
	payload int
	// one past the last byte.
	end int
}

// Position describes where a value is encoded.
type Position struct {
	// Offset of the first byte of the value, including its annotations.
	Offset int
	// HeaderOffset is the offset of the type descriptor of the value.
	HeaderOffset int
	// ValueLength is the length of the payload.
	ValueLength int
	// NextOffset is the offset following the value.
	NextOffset int
}

// symbolRef is a field name, an annotation or the value of a symbol.
// Decoded references start with an id only, references set through the
// API start with text only. Both are filled on demand.
type symbolRef struct {
	text    string
	sid     int
	hasText bool
	hasSID  bool
}

func textRef(s string) symbolRef {
	return symbolRef{text: s, hasText: true}
}

func sidRef(sid int) symbolRef {
	return symbolRef{sid: sid, hasSID: true}
}

type node struct {
	typ  encoding.Type
	null bool

	state   state
	hasSpan bool
	span    span

	parent NodeID
	// index of the node in the children of its parent.
	slot int
	// set on top-level values that are part of the system sequence only.
	system bool

	field       symbolRef
	hasField    bool
	annotations []symbolRef

	b        bool
	i        int64
	f        float64
	s        string
	sym      symbolRef
	raw      []byte
	children []NodeID

	// binding of a top-level value.
	binding *symtab.Table

	// set once a detached node has been copied into another tree:
	// handles on it follow to fwdID in fwd.
	fwd   *Tree
	fwdID NodeID

	// payload length computed by the last measure.
	size int
}

func (n *node) position() (Position, bool) {
	if !n.hasSpan || n.state == dirty {
		return Position{}, false
	}

	return Position{
		Offset:       n.span.start,
		HeaderOffset: n.span.header,
		ValueLength:  n.span.end - n.span.payload,
		NextOffset:   n.span.end,
	}, true
}

// normalizeType maps the two int tags to a single type.
func normalizeType(t encoding.Type) encoding.Type {
	if t == encoding.TypeNegInt {
		return encoding.TypePosInt
	}
	return t
}
