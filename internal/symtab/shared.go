package symtab

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Ids of the system symbols.
const (
	SIDIon               = 1
	SIDIon10             = 2
	SIDSymbolTable       = 3
	SIDName              = 4
	SIDVersion           = 5
	SIDImports           = 6
	SIDSymbols           = 7
	SIDMaxID             = 8
	SIDSharedSymbolTable = 9

	systemMaxID = SIDSharedSymbolTable
)

// SystemSymbolTableName is the name of the system symbol table.
const SystemSymbolTableName = "$ion"

const systemSymbolTableVersion = 1

var systemSymbols = []string{
	"$ion",
	"$ion_1_0",
	"$ion_symbol_table",
	"name",
	"version",
	"imports",
	"symbols",
	"max_id",
	"$ion_shared_symbol_table",
}

var systemIDs = func() map[string]int {
	m := make(map[string]int, len(systemSymbols))
	for i, s := range systemSymbols {
		m[s] = i + 1
	}
	return m
}()

// Shared is a named, versioned, read-only symbol table that local tables
// may import.
type Shared struct {
	Name    string
	Version int
	Symbols []string

	ids map[string]int
}

// NewShared returns a shared table. The first occurrence of a duplicated
// symbol wins.
func NewShared(name string, version int, symbols ...string) *Shared {
	s := Shared{
		Name:    name,
		Version: version,
		Symbols: symbols,
		ids:     make(map[string]int, len(symbols)),
	}

	for i, sym := range symbols {
		if _, ok := s.ids[sym]; !ok {
			s.ids[sym] = i + 1
		}
	}

	return &s
}

// System returns the system symbol table.
func System() *Shared {
	return NewShared(SystemSymbolTableName, systemSymbolTableVersion, systemSymbols...)
}

// MaxID returns the number of symbols in the table.
func (s *Shared) MaxID() int {
	return len(s.Symbols)
}

func (s *Shared) find(text string) (int, bool) {
	id, ok := s.ids[text]
	return id, ok
}

func (s *Shared) text(id int) (string, bool) {
	if id < 1 || id > len(s.Symbols) {
		return "", false
	}
	return s.Symbols[id-1], true
}

// Catalog resolves shared tables by name and version.
type Catalog interface {
	// Find returns the table with the given name and version.
	// Implementations may return the closest version when the exact one
	// is missing, or an error wrapping ErrNoSuchTable.
	Find(name string, version int) (*Shared, error)
}

// MemCatalog is a Catalog held in memory.
type MemCatalog struct {
	tables map[string][]*Shared
}

// NewMemCatalog returns a catalog holding the given tables.
func NewMemCatalog(tables ...*Shared) *MemCatalog {
	c := MemCatalog{tables: make(map[string][]*Shared)}
	for _, t := range tables {
		c.Add(t)
	}
	return &c
}

// Add registers a table, replacing any table with the same name and version.
func (c *MemCatalog) Add(t *Shared) {
	versions := c.tables[t.Name]
	for i, v := range versions {
		if v.Version == t.Version {
			versions[i] = t
			return
		}
	}

	versions = append(versions, t)
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	c.tables[t.Name] = versions
}

// Find returns the exact version if present, otherwise the highest version.
func (c *MemCatalog) Find(name string, version int) (*Shared, error) {
	versions := c.tables[name]
	if len(versions) == 0 {
		return nil, errors.Wrapf(ErrNoSuchTable, "%s version %d", name, version)
	}

	for _, v := range versions {
		if v.Version == version {
			return v, nil
		}
	}

	return versions[len(versions)-1], nil
}
