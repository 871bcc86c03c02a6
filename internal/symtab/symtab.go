// Package symtab maps symbol text to small integer ids.
//
// A Table is the binding in effect for a run of top-level values of a
// document. Its id space is laid out as the system symbols, followed by
// the symbols of every imported shared table (each occupying exactly its
// declared max id), followed by the locally defined symbols. Local symbols
// are append only: an id, once assigned, is never reused or renumbered.
package symtab

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownSymbol is returned when an id has no text in a table.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrFrozen is returned when interning a new symbol into a table
	// that is already associated with encoded values.
	ErrFrozen = errors.New("symbol table is frozen")

	// ErrNoSuchTable is returned by catalogs that cannot resolve an import.
	ErrNoSuchTable = errors.New("no such shared symbol table")
)

// Import declares the use of a shared table by a local table.
type Import struct {
	Table *Shared
	// MaxID is the number of ids reserved for the import.
	// Ids past the symbols of the shared table have no text.
	MaxID int
}

// Table is a symbol table binding.
type Table struct {
	imports []Import
	// first id of each import
	bases []int
	// first local id
	localBase int

	locals []string
	ids    map[string]int
	// local ids whose persisted entry was not a string.
	textless map[int]bool

	frozen bool
	dirty  bool
}

// New returns a table importing the given shared tables after the system table.
func New(imports ...Import) *Table {
	t := Table{
		imports: imports,
		ids:     make(map[string]int),
	}

	next := systemMaxID + 1
	for _, imp := range imports {
		t.bases = append(t.bases, next)
		next += imp.MaxID
	}
	t.localBase = next

	return &t
}

// SystemOnly returns a frozen table holding nothing but the system symbols.
// It is the binding of values that precede any symbol table in a document.
func SystemOnly() *Table {
	t := New()
	t.frozen = true
	return t
}

// Imports returns the imports of the table.
func (t *Table) Imports() []Import {
	return t.imports
}

// LocalSymbols returns the locally defined symbols, in id order.
// Symbols without text are empty strings.
func (t *Table) LocalSymbols() []string {
	return t.locals
}

// MaxID returns the largest id of the table.
func (t *Table) MaxID() int {
	return t.localBase + len(t.locals) - 1
}

// Frozen reports whether the table refuses new symbols.
func (t *Table) Frozen() bool {
	return t.frozen
}

// Freeze makes the table immutable.
func (t *Table) Freeze() {
	t.frozen = true
}

// NeedsPersist reports whether local symbols were added since the
// last call to MarkPersisted.
func (t *Table) NeedsPersist() bool {
	return t.dirty
}

// MarkPersisted clears the flag returned by NeedsPersist.
func (t *Table) MarkPersisted() {
	t.dirty = false
}

// Find returns the id of text, looking at the system symbols, the imports
// and the local symbols, in that order.
func (t *Table) Find(text string) (int, bool) {
	if id, ok := systemIDs[text]; ok {
		return id, true
	}

	for i, imp := range t.imports {
		if id, ok := imp.Table.find(text); ok && id <= imp.MaxID {
			return t.bases[i] + id - 1, true
		}
	}

	id, ok := t.ids[text]
	return id, ok
}

// Intern returns the id of text, defining a new local symbol if needed.
func (t *Table) Intern(text string) (int, error) {
	if id, ok := t.Find(text); ok {
		return id, nil
	}

	if t.frozen {
		return 0, errors.Wrapf(ErrFrozen, "cannot intern %q", text)
	}

	id := t.MaxID() + 1
	t.locals = append(t.locals, text)
	t.ids[text] = id
	t.dirty = true
	return id, nil
}

// Resolve returns the text of id.
func (t *Table) Resolve(id int) (string, error) {
	if id >= 1 && id <= systemMaxID {
		return systemSymbols[id-1], nil
	}

	if id >= t.localBase && id <= t.MaxID() {
		if t.textless[id] {
			return "", errors.Wrapf(ErrUnknownSymbol, "$%d has no text", id)
		}
		return t.locals[id-t.localBase], nil
	}

	for i, imp := range t.imports {
		base := t.bases[i]
		if id >= base && id < base+imp.MaxID {
			if s, ok := imp.Table.text(id - base + 1); ok {
				return s, nil
			}
			return "", errors.Wrapf(ErrUnknownSymbol, "$%d in import %s version %d has no text", id, imp.Table.Name, imp.Table.Version)
		}
	}

	return "", errors.Wrapf(ErrUnknownSymbol, "$%d, max id is %d", id, t.MaxID())
}

// Extend returns an unfrozen copy of the table.
// Every id of t keeps its meaning in the copy.
func (t *Table) Extend() *Table {
	c := New(t.imports...)
	c.locals = append(c.locals, t.locals...)
	for k, v := range t.ids {
		c.ids[k] = v
	}
	if len(t.textless) > 0 {
		c.textless = make(map[int]bool, len(t.textless))
		for k, v := range t.textless {
			c.textless[k] = v
		}
	}
	return c
}
