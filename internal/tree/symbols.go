package tree

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/symtab"
	"github.com/cockroachdb/errors"
)

// binding returns the symbol table in effect for id, if any.
func (t *Tree) binding(id NodeID) *symtab.Table {
	top := t.topLevel(id)
	if top == noNode {
		return nil
	}
	return t.node(top).binding
}

// resolve returns the text of a reference held by id.
// It does not modify the tree, so readers may call it concurrently.
func (t *Tree) resolve(id NodeID, ref *symbolRef) (string, error) {
	if ref.hasText {
		return ref.text, nil
	}

	tbl := t.binding(id)
	if tbl == nil {
		return "", errors.Wrapf(symtab.ErrUnknownSymbol, "$%d outside of a document", ref.sid)
	}

	return tbl.Resolve(ref.sid)
}

// refs calls fn on every symbol reference owned by the encoding of n,
// that is everything but its field name.
func (n *node) refs(fn func(ref *symbolRef) error) error {
	for i := range n.annotations {
		if err := fn(&n.annotations[i]); err != nil {
			return err
		}
	}
	if n.typ == encoding.TypeSymbol && !n.null && n.state != unmaterialized {
		return fn(&n.sym)
	}
	return nil
}

// resolveAll stores the text of every reference of the materialized
// part of the subtree rooted at id. With lenient set, references that
// cannot be resolved are left as they are.
func (t *Tree) resolveAll(id NodeID, lenient bool) error {
	var err error
	t.walk(id, func(cur NodeID, n *node) bool {
		resolve := func(ref *symbolRef) error {
			s, rerr := t.resolve(cur, ref)
			if rerr != nil {
				if lenient {
					return nil
				}
				return rerr
			}
			ref.text, ref.hasText = s, true
			return nil
		}

		if n.hasField {
			err = resolve(&n.field)
		}
		if err == nil {
			err = n.refs(resolve)
		}
		return err == nil
	})
	return err
}

// MissingNames returns the names used by the dirty part of the subtree
// rooted at id that tbl does not define, in order of first use.
func (t *Tree) MissingNames(id NodeID, tbl *symtab.Table) []string {
	var missing []string
	seen := make(map[string]struct{})

	check := func(ref *symbolRef) error {
		if ref.hasSID || !ref.hasText {
			return nil
		}
		if _, ok := tbl.Find(ref.text); ok {
			return nil
		}
		if _, ok := seen[ref.text]; !ok {
			seen[ref.text] = struct{}{}
			missing = append(missing, ref.text)
		}
		return nil
	}

	t.walk(id, func(_ NodeID, n *node) bool {
		if n.hasField {
			_ = check(&n.field)
		}
		if n.state != dirty {
			return false
		}
		_ = n.refs(check)
		return true
	})

	return missing
}

// BindNames assigns the ids of tbl to every unbound reference of the
// dirty part of the subtree rooted at id.
func (t *Tree) BindNames(id NodeID, tbl *symtab.Table) error {
	bind := func(ref *symbolRef) error {
		if ref.hasSID {
			return nil
		}
		if !ref.hasText {
			return errors.Wrapf(symtab.ErrUnknownSymbol, "$%d has no text", ref.sid)
		}
		sid, ok := tbl.Find(ref.text)
		if !ok {
			return errors.Wrapf(symtab.ErrUnknownSymbol, "%q is not defined", ref.text)
		}
		ref.sid, ref.hasSID = sid, true
		return nil
	}

	var err error
	t.walk(id, func(_ NodeID, n *node) bool {
		if n.hasField {
			err = bind(&n.field)
		}
		if err != nil || n.state != dirty {
			return false
		}
		err = n.refs(bind)
		return err == nil
	})
	return err
}

// unbind makes the subtree rooted at id independent from the store and
// from the symbol table of its top-level value, so that it can be moved.
// Names that cannot be resolved keep their id but can no longer be bound.
func (t *Tree) unbind(id NodeID) error {
	err := t.materializeDeep(id)
	if err != nil {
		return err
	}
	_ = t.resolveAll(id, true)

	drop := func(ref *symbolRef) error {
		ref.hasSID = false
		return nil
	}
	t.walk(id, func(_ NodeID, n *node) bool {
		_ = drop(&n.field)
		_ = n.refs(drop)
		n.hasSpan = false
		n.state = dirty
		return true
	})
	return nil
}
