package tree

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// attachable checks that v can be linked under parent.
func (t *Tree) attachable(v Value, parent NodeID) error {
	if !v.IsValid() {
		return errors.New("invalid value")
	}

	src, id := v.resolve()
	if !src.isDetached(id) {
		return ErrAttached
	}

	if src == t {
		for cur := parent; cur != noNode; cur = t.node(cur).parent {
			if cur == id {
				return ErrCycle
			}
		}
	}
	return nil
}

// adopt returns the id in t of the detached value v, ready to be linked
// under parent. Fragments are moved into t, values detached from another
// tree are copied.
func (t *Tree) adopt(v Value, parent NodeID) (NodeID, error) {
	if err := t.attachable(v, parent); err != nil {
		return noNode, err
	}

	src, id := v.resolve()
	switch {
	case src == t:
		return id, nil
	case !src.IsDocument() && id == Root:
		return t.move(src), nil
	}

	return t.copyFrom(src, id, true), nil
}

// move transfers every node of the fragment src to t.
func (t *Tree) move(src *Tree) NodeID {
	offset := NodeID(len(t.nodes))

	for _, n := range src.nodes {
		if n.parent != noNode {
			n.parent += offset
		}
		children := make([]NodeID, len(n.children))
		for i, c := range n.children {
			children[i] = c + offset
		}
		n.children = children
		t.nodes = append(t.nodes, n)
	}

	src.nodes = nil
	src.movedTo = t
	src.offset = offset
	return offset
}

// copyFrom copies the fully materialized subtree rooted at id in src.
// The copy is detached, dirty and unbound. With forward set, the copied
// nodes forward their handles to the copy.
func (t *Tree) copyFrom(src *Tree, id NodeID, forward bool) NodeID {
	n := *src.node(id)
	n.fwd = nil
	n.parent = noNode
	n.slot = 0
	n.system = false
	n.binding = nil
	n.hasSpan = false
	n.state = dirty
	n.raw = slices.Clone(n.raw)
	n.annotations = slices.Clone(n.annotations)
	n.children = nil

	n.field.hasSID = false
	n.sym.hasSID = false
	for i := range n.annotations {
		n.annotations[i].hasSID = false
	}

	cid := t.add(n)
	for _, c := range src.node(id).children {
		t.appendChild(cid, t.copyFrom(src, c, forward))
	}

	if forward {
		sn := src.node(id)
		sn.fwd, sn.fwdID = t, cid
		sn.children = nil
	}
	return cid
}

// Clone returns a detached deep copy of the value. Names are resolved
// so the copy can be attached to any document.
func (v Value) Clone() (Value, error) {
	t, id := v.resolve()

	err := t.materializeDeep(id)
	if err != nil {
		return Value{}, err
	}
	err = t.resolveAll(id, false)
	if err != nil {
		return Value{}, err
	}

	f := &Tree{}
	root := f.copyFrom(t, id, false)
	n := f.node(root)
	n.field = symbolRef{}
	n.hasField = false
	return Value{t: f, id: root}, nil
}
