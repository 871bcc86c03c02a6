package tree

import (
	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/symtab"
	"github.com/cockroachdb/errors"
)

// IsSymbolTable reports whether the i-th top-level value is a local
// symbol table: a struct whose first annotation is $ion_symbol_table.
func (t *Tree) IsSymbolTable(i int) bool {
	n := t.node(t.top(i))
	if n.typ != encoding.TypeStruct || len(n.annotations) == 0 {
		return false
	}

	a := n.annotations[0]
	if a.hasSID {
		return a.sid == symtab.SIDSymbolTable
	}
	return a.hasText && a.text == "$ion_symbol_table"
}

// IsVersionMarker reports whether the i-th top-level value is the
// $ion_1_0 symbol, which resets the symbol table of the values after it.
func (t *Tree) IsVersionMarker(i int) (bool, error) {
	id := t.top(i)
	n := t.node(id)
	if n.typ != encoding.TypeSymbol || n.null || len(n.annotations) > 0 {
		return false, nil
	}

	err := t.materialize(id)
	if err != nil {
		return false, err
	}
	n = t.node(id)
	return n.sym.hasSID && n.sym.sid == symtab.SIDIon10, nil
}

// SymbolTableAt decodes the i-th top-level value, which must be a local
// symbol table. Field names are matched by id: they are system symbols,
// whatever the table in effect.
func (t *Tree) SymbolTableAt(i int) (symtab.PersistedForm, error) {
	var pf symtab.PersistedForm

	id := t.top(i)
	err := t.materializeDeep(id)
	if err != nil {
		return pf, err
	}

	for _, c := range t.node(id).children {
		n := t.node(c)
		if n.null {
			continue
		}

		switch fieldSID(n) {
		case symtab.SIDImports:
			if n.typ != encoding.TypeList {
				// appending to the previous table is not supported, treat as no import
				continue
			}
			for _, ic := range n.children {
				decl, err := t.importDecl(ic)
				if err != nil {
					return pf, err
				}
				pf.Imports = append(pf.Imports, decl)
			}
		case symtab.SIDSymbols:
			if n.typ != encoding.TypeList {
				continue
			}
			for _, sc := range n.children {
				// entries that are not strings still take an id
				s := t.node(sc)
				if s.typ != encoding.TypeString || s.null {
					pf.Textless = append(pf.Textless, len(pf.Symbols))
				}
				pf.Symbols = append(pf.Symbols, s.s)
			}
		}
	}

	return pf, nil
}

func fieldSID(n *node) int {
	if n.field.hasSID {
		return n.field.sid
	}
	switch n.field.text {
	case "imports":
		return symtab.SIDImports
	case "symbols":
		return symtab.SIDSymbols
	case "name":
		return symtab.SIDName
	case "version":
		return symtab.SIDVersion
	case "max_id":
		return symtab.SIDMaxID
	}
	return 0
}

func (t *Tree) importDecl(id NodeID) (symtab.ImportDecl, error) {
	var decl symtab.ImportDecl

	n := t.node(id)
	if n.typ != encoding.TypeStruct || n.null {
		return decl, errors.Wrapf(encoding.ErrMalformedEncoding, "symbol table import is a %s", n.typ)
	}

	for _, c := range n.children {
		f := t.node(c)
		if f.null {
			continue
		}
		switch fieldSID(f) {
		case symtab.SIDName:
			if f.typ == encoding.TypeString {
				decl.Name = f.s
			}
		case symtab.SIDVersion:
			if f.typ == encoding.TypePosInt {
				decl.Version = int(f.i)
			}
		case symtab.SIDMaxID:
			if f.typ == encoding.TypePosInt {
				decl.MaxID = int(f.i)
			}
		}
	}

	return decl, nil
}

// SymbolTableValue returns the struct persisting a local symbol table.
func SymbolTableValue(pf symtab.PersistedForm) (Value, error) {
	st := NewStruct()
	err := st.SetAnnotations("$ion_symbol_table")
	if err != nil {
		return Value{}, err
	}

	if len(pf.Imports) > 0 {
		imports := NewList()
		for _, decl := range pf.Imports {
			imp := NewStruct()
			if err := imp.Put("name", NewString(decl.Name)); err != nil {
				return Value{}, err
			}
			if err := imp.Put("version", NewInt(int64(decl.Version))); err != nil {
				return Value{}, err
			}
			if err := imp.Put("max_id", NewInt(int64(decl.MaxID))); err != nil {
				return Value{}, err
			}
			if err := imports.Append(imp); err != nil {
				return Value{}, err
			}
		}
		if err := st.Put("imports", imports); err != nil {
			return Value{}, err
		}
	}

	if len(pf.Symbols) > 0 {
		textless := make(map[int]bool, len(pf.Textless))
		for _, i := range pf.Textless {
			textless[i] = true
		}

		symbols := NewList()
		for i, s := range pf.Symbols {
			v := NewString(s)
			if textless[i] {
				v, err = NewNull(encoding.TypeString)
				if err != nil {
					return Value{}, err
				}
			}
			if err := symbols.Append(v); err != nil {
				return Value{}, err
			}
		}
		if err := st.Put("symbols", symbols); err != nil {
			return Value{}, err
		}
	}

	return st, nil
}
