package tree

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

// container returns the materialized container designated by v.
func (v Value) container() (*Tree, NodeID, error) {
	t, id, n := v.get()
	if !n.typ.IsContainer() {
		return nil, noNode, errors.Wrapf(ErrNotContainer, "%s", n.typ)
	}
	if err := t.materialize(id); err != nil {
		return nil, noNode, err
	}
	return t, id, nil
}

// Len returns the number of children of a container. Null containers have none.
func (v Value) Len() (int, error) {
	t, id, err := v.container()
	if err != nil {
		return 0, err
	}
	return len(t.node(id).children), nil
}

// Index returns the i-th child of a container.
func (v Value) Index(i int) (Value, error) {
	t, id, err := v.container()
	if err != nil {
		return Value{}, err
	}

	children := t.node(id).children
	if i < 0 || i >= len(children) {
		return Value{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, len(children))
	}
	return Value{t: t, id: children[i]}, nil
}

// Iterate calls fn on every child of a container, in order.
func (v Value) Iterate(fn func(i int, c Value) error) error {
	t, id, err := v.container()
	if err != nil {
		return err
	}

	for i := 0; i < len(t.node(id).children); i++ {
		err = fn(i, Value{t: t, id: t.node(id).children[i]})
		if err != nil {
			return err
		}
	}
	return nil
}

// Append adds c at the end of a list or an s-expression.
func (v Value) Append(c Value) error {
	n, err := v.Len()
	if err != nil {
		return err
	}
	return v.Insert(n, c)
}

// Insert adds c at index i of a list or an s-expression.
// Inserting in a null container makes it empty first.
func (v Value) Insert(i int, c Value) error {
	t, id, err := v.container()
	if err != nil {
		return err
	}
	if t.node(id).typ == encoding.TypeStruct {
		return errors.Wrap(ErrTypeMismatch, "struct fields need a name")
	}

	return t.link(id, i, c, symbolRef{}, false)
}

// link attaches c at index i of the container id.
func (t *Tree) link(id NodeID, i int, c Value, field symbolRef, hasField bool) error {
	if l := len(t.node(id).children); i < 0 || i > l {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, l)
	}

	cid, err := t.adopt(c, id)
	if err != nil {
		return err
	}

	cn := t.node(cid)
	cn.field = field
	cn.hasField = hasField

	t.node(id).null = false
	t.insertChild(id, i, cid)
	t.markDirty(cid)
	return nil
}

// Remove detaches the i-th child of a container and returns it.
// The child keeps its value and can be attached elsewhere.
func (v Value) Remove(i int) (Value, error) {
	t, id, err := v.container()
	if err != nil {
		return Value{}, err
	}

	children := t.node(id).children
	if i < 0 || i >= len(children) {
		return Value{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, len(children))
	}

	c := children[i]
	err = t.unbind(c)
	if err != nil {
		return Value{}, err
	}
	t.removeChild(id, i)
	n := t.node(c)
	n.field = symbolRef{}
	n.hasField = false

	t.markDirty(id)
	return Value{t: t, id: c}, nil
}

// FieldName returns the name of a struct field, or an empty string for
// values that are not struct fields.
func (v Value) FieldName() (string, error) {
	t, id, n := v.get()
	if !n.hasField {
		return "", nil
	}
	return t.resolve(id, &n.field)
}

// fieldIndex returns the index of the first field named name.
func (t *Tree) fieldIndex(id NodeID, name string) (int, error) {
	for i := 0; i < len(t.node(id).children); i++ {
		c := t.node(id).children[i]
		s, err := t.resolve(c, &t.node(c).field)
		if err != nil {
			return -1, err
		}
		if s == name {
			return i, nil
		}
	}
	return -1, nil
}

func (v Value) structure() (*Tree, NodeID, error) {
	t, id, err := v.container()
	if err != nil {
		return nil, noNode, err
	}
	if typ := t.node(id).typ; typ != encoding.TypeStruct {
		return nil, noNode, mismatchf(typ, "struct")
	}
	return t, id, nil
}

// Field returns the first field of a struct named name.
func (v Value) Field(name string) (Value, bool, error) {
	t, id, err := v.structure()
	if err != nil {
		return Value{}, false, err
	}

	i, err := t.fieldIndex(id, name)
	if err != nil || i < 0 {
		return Value{}, false, err
	}
	return Value{t: t, id: t.node(id).children[i]}, true, nil
}

// Put sets the field name of a struct to c, replacing the first field with
// that name if any. Putting into a null struct makes it empty first.
func (v Value) Put(name string, c Value) error {
	t, id, err := v.structure()
	if err != nil {
		return err
	}

	i, err := t.fieldIndex(id, name)
	if err != nil {
		return err
	}
	if i < 0 {
		return t.link(id, len(t.node(id).children), c, textRef(name), true)
	}

	old := t.node(id).children[i]
	if c.IsValid() && c.Same(Value{t: t, id: old}) {
		return nil
	}

	// the replacement must be attachable before the old field goes away
	err = t.attachable(c, id)
	if err != nil {
		return err
	}

	err = t.unbind(old)
	if err != nil {
		return err
	}
	t.removeChild(id, i)
	return t.link(id, i, c, textRef(name), true)
}

// Add appends a field to a struct, even if another field has the same name.
func (v Value) Add(name string, c Value) error {
	t, id, err := v.structure()
	if err != nil {
		return err
	}
	return t.link(id, len(t.node(id).children), c, textRef(name), true)
}

// Delete removes the first field of a struct named name and reports
// whether there was one.
func (v Value) Delete(name string) (bool, error) {
	t, id, err := v.structure()
	if err != nil {
		return false, err
	}

	i, err := t.fieldIndex(id, name)
	if err != nil || i < 0 {
		return false, err
	}

	_, err = v.Remove(i)
	return err == nil, err
}

// Annotations returns the annotations of the value.
func (v Value) Annotations() ([]string, error) {
	t, id, n := v.get()
	if len(n.annotations) == 0 {
		return nil, nil
	}

	names := make([]string, len(n.annotations))
	for i := range names {
		s, err := t.resolve(id, &t.node(id).annotations[i])
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	return names, nil
}

// HasAnnotation reports whether the value is annotated with name.
func (v Value) HasAnnotation(name string) (bool, error) {
	names, err := v.Annotations()
	if err != nil {
		return false, err
	}
	for _, s := range names {
		if s == name {
			return true, nil
		}
	}
	return false, nil
}

// SetAnnotations replaces the annotations of the value.
func (v Value) SetAnnotations(names ...string) error {
	t, id := v.resolve()

	// a dirty node must hold its native value
	if err := t.materialize(id); err != nil {
		return err
	}

	refs := make([]symbolRef, len(names))
	for i, s := range names {
		refs[i] = textRef(s)
	}
	t.node(id).annotations = refs
	t.markDirty(id)
	return nil
}

// AddAnnotation appends an annotation to the value.
func (v Value) AddAnnotation(name string) error {
	t, id := v.resolve()

	if err := t.materialize(id); err != nil {
		return err
	}

	n := t.node(id)
	n.annotations = append(n.annotations, textRef(name))
	t.markDirty(id)
	return nil
}
