// Package catalog stores shared symbol tables in YAML files.
//
// A catalog file lists tables by name and version:
//
//	tables:
//	  - name: colors
//	    version: 1
//	    symbols: [red, green, blue]
package catalog

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/chaisql/ion/internal/symtab"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrAlreadyExists is returned when adding a table whose name and version
// are already in the catalog.
var ErrAlreadyExists = errors.New("shared symbol table already exists")

type file struct {
	Tables []table `yaml:"tables"`
}

type table struct {
	Name    string   `yaml:"name"`
	Version int      `yaml:"version,omitempty"`
	Symbols []string `yaml:"symbols"`
}

// Catalog is a set of shared symbol tables. It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	mem    *symtab.MemCatalog
	tables map[string]map[int]*symtab.Shared
}

var _ symtab.Catalog = (*Catalog)(nil)

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		mem:    symtab.NewMemCatalog(),
		tables: make(map[string]map[int]*symtab.Shared),
	}
}

// Load reads a catalog file.
func Load(r io.Reader) (*Catalog, error) {
	var f file

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to decode catalog")
	}

	c := New()
	for i, t := range f.Tables {
		if t.Version == 0 {
			t.Version = 1
		}
		err = c.Add(symtab.NewShared(t.Name, t.Version, t.Symbols...))
		if err != nil {
			return nil, errors.Wrapf(err, "table %d", i)
		}
	}

	return c, nil
}

// LoadFile reads the catalog file at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	return Load(f)
}

// Add registers a shared table.
func (c *Catalog) Add(t *symtab.Shared) error {
	switch {
	case t.Name == "":
		return errors.New("shared symbol table without a name")
	case t.Name == symtab.SystemSymbolTableName:
		return errors.Newf("%s is the name of the system symbol table", t.Name)
	case t.Version < 1:
		return errors.Newf("table %s: invalid version %d", t.Name, t.Version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	versions, ok := c.tables[t.Name]
	if !ok {
		versions = make(map[int]*symtab.Shared)
		c.tables[t.Name] = versions
	}
	if _, ok := versions[t.Version]; ok {
		return errors.Wrapf(ErrAlreadyExists, "%s version %d", t.Name, t.Version)
	}

	versions[t.Version] = t
	c.mem.Add(t)
	return nil
}

// Find returns the table with the given name and version, or the highest
// version of that table when the exact one is missing.
func (c *Catalog) Find(name string, version int) (*symtab.Shared, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.mem.Find(name, version)
}

// Tables returns every table, sorted by name and version.
func (c *Catalog) Tables() []*symtab.Shared {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var list []*symtab.Shared
	for _, versions := range c.tables {
		for _, t := range versions {
			list = append(list, t)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].Version < list[j].Version
	})
	return list
}

// WriteTo writes the catalog file to w.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	var f file
	for _, t := range c.Tables() {
		f.Tables = append(f.Tables, table{Name: t.Name, Version: t.Version, Symbols: t.Symbols})
	}

	cw := countWriter{w: w}
	enc := yaml.NewEncoder(&cw)
	enc.SetIndent(2)
	err := enc.Encode(&f)
	if err != nil {
		return cw.n, errors.WithStack(err)
	}
	return cw.n, errors.WithStack(enc.Close())
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
