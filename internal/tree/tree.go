// Package tree implements the in-memory form of a document.
//
// A Tree is an arena of nodes backed by a single buffer.Store. Every node
// is either unmaterialized (it only knows the span of its bytes), clean
// (its native value is decoded and matches its bytes) or dirty (its native
// value is authoritative and its bytes, if any, are stale). Mutations mark
// a node and all of its ancestors dirty. WriteBack reconciles dirty nodes
// with the store: untouched subtrees are copied byte for byte, dirty ones
// are re-encoded, and the spans of everything that moved are repaired.
//
// The root of a document tree is the top-level sequence. Values that are
// built before being attached to a document live in fragment trees, which
// have no store; attaching a fragment moves its nodes into the target tree
// and existing handles keep working.
//
// A Tree is not safe for concurrent use.
package tree

import (
	"github.com/chaisql/ion/internal/buffer"
	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

// Tree is an arena of nodes.
type Tree struct {
	// nil for fragments.
	store *buffer.Store
	nodes []node

	// set once a fragment has been moved into another tree:
	// node id of this tree + offset is its id in movedTo.
	movedTo *Tree
	offset  NodeID
}

// New returns a document tree whose store only holds the envelope.
func New(capacity int) *Tree {
	if capacity < encoding.EnvelopeSize {
		capacity = encoding.EnvelopeSize
	}

	t := Tree{store: buffer.New(capacity)}
	w := t.store.Writer()
	// writes at the logical end never fail
	_ = w.WriteUint32(encoding.EnvelopeUnpatched)
	_, _ = w.Write(encoding.Magic[:])

	t.nodes = append(t.nodes, node{
		typ:    encoding.TypeList,
		state:  clean,
		parent: noNode,
	})
	return &t
}

// Load returns a document tree reading b. Only the envelope and the
// boundaries of the top-level values are decoded, everything else is
// decoded on demand. b is copied.
func Load(b []byte) (*Tree, error) {
	if len(b) < encoding.EnvelopeSize {
		return nil, errors.Wrapf(encoding.ErrMalformedEncoding, "document of %d bytes is shorter than its envelope", len(b))
	}

	t := Tree{store: buffer.FromBytes(b)}
	r := t.store.Reader()

	total, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if total != encoding.EnvelopeUnpatched && int64(total) != int64(len(b)) {
		return nil, errors.Wrapf(encoding.ErrMalformedEncoding, "envelope length %d, document is %d bytes", total, len(b))
	}

	magic, err := r.Next(len(encoding.Magic))
	if err != nil {
		return nil, err
	}
	if [4]byte(magic) != encoding.Magic {
		return nil, errors.Wrapf(encoding.ErrMalformedEncoding, "bad magic % x", magic)
	}

	t.nodes = append(t.nodes, node{
		typ:    encoding.TypeList,
		state:  clean,
		parent: noNode,
	})

	for pos := encoding.EnvelopeSize; pos < len(b); {
		n, err := t.decodeValue(pos, len(b))
		if err != nil {
			return nil, err
		}
		pos = n.span.end

		t.appendChild(Root, t.add(n))
	}

	return &t, nil
}

// newFragment returns a tree holding a single detached value.
func newFragment(n node) *Tree {
	n.parent = noNode
	n.state = dirty
	return &Tree{nodes: []node{n}}
}

// IsDocument reports whether the tree is backed by a store.
func (t *Tree) IsDocument() bool {
	return t.store != nil
}

// Len returns the length in bytes of the document as of the last write-back.
func (t *Tree) Len() int {
	return t.store.Len()
}

func (t *Tree) node(id NodeID) *node {
	return &t.nodes[id]
}

func (t *Tree) add(n node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) appendChild(parent, child NodeID) {
	p := t.node(parent)
	c := t.node(child)
	c.parent = parent
	c.slot = len(p.children)
	p.children = append(p.children, child)
}

func (t *Tree) insertChild(parent NodeID, i int, child NodeID) {
	p := t.node(parent)
	p.children = append(p.children, noNode)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = child
	t.node(child).parent = parent
	t.reslot(parent, i)
}

func (t *Tree) removeChild(parent NodeID, i int) NodeID {
	p := t.node(parent)
	child := p.children[i]
	p.children = append(p.children[:i], p.children[i+1:]...)
	c := t.node(child)
	c.parent = noNode
	c.slot = 0
	t.reslot(parent, i)
	return child
}

// reslot refreshes the slot of the children of parent starting at i.
func (t *Tree) reslot(parent NodeID, i int) {
	children := t.node(parent).children
	for ; i < len(children); i++ {
		t.node(children[i]).slot = i
	}
}

// isDetached reports whether the node can be attached to a container.
func (t *Tree) isDetached(id NodeID) bool {
	if id == Root && t.IsDocument() {
		return false
	}
	return t.node(id).parent == noNode
}

// topLevel returns the top-level ancestor of id in a document tree,
// or noNode if the node is not part of the top-level sequence.
func (t *Tree) topLevel(id NodeID) NodeID {
	if !t.IsDocument() {
		return noNode
	}

	for id != noNode {
		n := t.node(id)
		if n.parent == Root {
			return id
		}
		id = n.parent
	}

	return noNode
}

// markDirty marks id and its ancestors dirty, stopping at the first
// ancestor that already is. Every ancestor of a dirty node is dirty.
func (t *Tree) markDirty(id NodeID) {
	first := true
	for id != noNode {
		n := t.node(id)
		if n.state == dirty && !first {
			return
		}
		n.state = dirty
		first = false
		id = n.parent
	}
}

// walk calls fn on id and its materialized descendants, depth first.
// Returning false from fn skips the descendants of that node.
func (t *Tree) walk(id NodeID, fn func(id NodeID, n *node) bool) {
	if !fn(id, t.node(id)) {
		return
	}
	// children may be appended to the arena during the walk
	for i := 0; i < len(t.node(id).children); i++ {
		t.walk(t.node(id).children[i], fn)
	}
}

// shift moves the spans of id and of its descendants by delta.
func (t *Tree) shift(id NodeID, delta int) {
	if delta == 0 {
		return
	}

	t.walk(id, func(_ NodeID, n *node) bool {
		if n.hasSpan {
			n.span.start += delta
			n.span.header += delta
			n.span.payload += delta
			n.span.end += delta
		}
		return true
	})
}
