package symtab

import (
	"github.com/cockroachdb/errors"
)

// ImportDecl is the persisted declaration of an import.
type ImportDecl struct {
	Name    string
	Version int
	MaxID   int
}

// PersistedForm is the content of the symbol table struct written in
// front of the first value using a table:
//
//	$ion_symbol_table::{ imports:[{name:"n", version:1, max_id:10}], symbols:["a", "b"] }
type PersistedForm struct {
	Imports []ImportDecl
	Symbols []string
	// Textless holds the indexes of the entries of Symbols that have no
	// text. They still take an id.
	Textless []int
}

// PersistedForm returns the struct representation of the table.
func (t *Table) PersistedForm() PersistedForm {
	var pf PersistedForm

	for _, imp := range t.imports {
		pf.Imports = append(pf.Imports, ImportDecl{
			Name:    imp.Table.Name,
			Version: imp.Table.Version,
			MaxID:   imp.MaxID,
		})
	}
	pf.Symbols = append(pf.Symbols, t.locals...)
	for i := range t.locals {
		if t.textless[t.localBase+i] {
			pf.Textless = append(pf.Textless, i)
		}
	}

	return pf
}

// FromPersistedForm rebuilds a table from its struct representation.
// Imports are resolved through the catalog. An import the catalog cannot
// resolve still reserves its ids, which then resolve to ErrUnknownSymbol.
// The returned table is frozen.
func FromPersistedForm(pf PersistedForm, cat Catalog) (*Table, error) {
	imports := make([]Import, 0, len(pf.Imports))

	for _, decl := range pf.Imports {
		if decl.Name == SystemSymbolTableName {
			continue
		}
		if decl.Name == "" {
			return nil, errors.Newf("symbol table import without a name")
		}

		version := decl.Version
		if version < 1 {
			version = 1
		}

		var shared *Shared
		if cat != nil {
			found, err := cat.Find(decl.Name, version)
			if err != nil && !errors.Is(err, ErrNoSuchTable) {
				return nil, err
			}
			shared = found
		}

		maxID := decl.MaxID
		switch {
		case shared == nil:
			shared = NewShared(decl.Name, version)
		case maxID <= 0:
			maxID = shared.MaxID()
		}
		if maxID < 0 {
			return nil, errors.Newf("import %s version %d: negative max_id %d", decl.Name, version, maxID)
		}

		imports = append(imports, Import{Table: shared, MaxID: maxID})
	}

	textless := make(map[int]bool, len(pf.Textless))
	for _, i := range pf.Textless {
		textless[i] = true
	}

	t := New(imports...)
	for i, sym := range pf.Symbols {
		// duplicates and symbols already provided by imports still take an id
		t.locals = append(t.locals, sym)
		if textless[i] {
			if t.textless == nil {
				t.textless = make(map[int]bool)
			}
			t.textless[t.MaxID()] = true
			continue
		}
		if _, ok := t.Find(sym); !ok {
			t.ids[sym] = t.MaxID()
		}
	}
	t.frozen = true

	return t, nil
}
