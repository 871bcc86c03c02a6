package ion

import (
	"io"
	"log/slog"

	"github.com/chaisql/ion/internal/symtab"
)

// Options configures a Datagram. The zero value is usable.
type Options struct {
	// Logger receives debug logs about symbol tables and write-backs.
	// Defaults to a logger that discards everything.
	Logger *slog.Logger

	// Catalog resolves the shared symbol tables imported by loaded documents.
	// Imports it cannot resolve reserve their ids, which then have no text.
	Catalog Catalog

	// Imports are the shared tables imported by the symbol tables created
	// for new values.
	Imports []Import

	// InitialCapacity is the initial size of the buffer of new datagrams.
	InitialCapacity int
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SharedTable is a named, versioned, read-only symbol table.
type SharedTable = symtab.Shared

// Import declares the use of a shared table by the symbol tables of a datagram.
type Import = symtab.Import

// Catalog resolves shared tables by name and version.
type Catalog = symtab.Catalog

// NewSharedTable returns a shared table.
func NewSharedTable(name string, version int, symbols ...string) *SharedTable {
	return symtab.NewShared(name, version, symbols...)
}

// MemCatalog is a Catalog held in memory.
type MemCatalog = symtab.MemCatalog

// NewCatalog returns an in-memory catalog holding the given tables.
func NewCatalog(tables ...*SharedTable) *MemCatalog {
	return symtab.NewMemCatalog(tables...)
}
