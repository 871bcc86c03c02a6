package tree

import (
	"github.com/chaisql/ion/internal/symtab"
	"github.com/cockroachdb/errors"
)

// Count returns the number of top-level values, system values included.
func (t *Tree) Count() int {
	return len(t.node(Root).children)
}

func (t *Tree) top(i int) NodeID {
	return t.node(Root).children[i]
}

// At returns the i-th top-level value.
func (t *Tree) At(i int) Value {
	return Value{t: t, id: t.top(i)}
}

// IndexOf returns the index of the top-level value v.
func (t *Tree) IndexOf(v Value) (int, bool) {
	if !v.IsValid() {
		return -1, false
	}

	vt, id := v.resolve()
	if vt != t {
		return -1, false
	}
	n := t.node(id)
	if n.parent != Root || id == Root {
		return -1, false
	}
	return n.slot, true
}

// IsSystem reports whether the i-th top-level value belongs to the system sequence only.
func (t *Tree) IsSystem(i int) bool {
	return t.node(t.top(i)).system
}

// MarkSystem flags the i-th top-level value as a system value.
func (t *Tree) MarkSystem(i int) {
	t.node(t.top(i)).system = true
}

// Binding returns the symbol table of the i-th top-level value.
func (t *Tree) Binding(i int) *symtab.Table {
	return t.node(t.top(i)).binding
}

// SetBinding sets the symbol table of the i-th top-level value.
// Names already bound keep their ids, so tbl must define them identically.
func (t *Tree) SetBinding(i int, tbl *symtab.Table) {
	t.node(t.top(i)).binding = tbl
}

// MissingNamesAt returns the names of the i-th top-level value that tbl does not define.
func (t *Tree) MissingNamesAt(i int, tbl *symtab.Table) []string {
	return t.MissingNames(t.top(i), tbl)
}

// BindNamesAt binds the names of the i-th top-level value to tbl.
func (t *Tree) BindNamesAt(i int, tbl *symtab.Table) error {
	return t.BindNames(t.top(i), tbl)
}

// Insert attaches v as the i-th top-level value.
func (t *Tree) Insert(i int, v Value, system bool) error {
	if !t.IsDocument() {
		return errors.New("top-level values need a document")
	}

	err := t.link(Root, i, v, symbolRef{}, false)
	if err != nil {
		return err
	}
	t.node(t.top(i)).system = system
	return nil
}

// Remove detaches the i-th top-level value and returns it.
// Its bytes are removed from the store right away and the values that
// follow it are shifted accordingly.
func (t *Tree) Remove(i int) (Value, error) {
	if i < 0 || i >= t.Count() {
		return Value{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, t.Count())
	}

	id := t.top(i)
	n := t.node(id)
	sp, hadSpan := n.span, n.hasSpan

	// names are resolved while the binding is still reachable
	err := t.unbind(id)
	if err != nil {
		return Value{}, err
	}

	if hadSpan {
		l := sp.end - sp.start
		err = t.store.Splice(sp.start, l, 0)
		if err != nil {
			return Value{}, err
		}
		for _, c := range t.node(Root).children[i+1:] {
			t.shift(c, -l)
		}
	}

	t.removeChild(Root, i)
	n = t.node(id)
	n.binding = nil
	n.system = false
	t.markDirty(Root)
	return Value{t: t, id: id}, nil
}
