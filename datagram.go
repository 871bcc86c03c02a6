package ion

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/symtab"
	"github.com/chaisql/ion/internal/tree"
	"github.com/cockroachdb/errors"
)

// Datagram is a sequence of top-level values.
//
// The system view of a datagram holds every top-level value. The user view
// skips the symbol tables and version markers, which only describe how to
// read the values that follow them.
type Datagram struct {
	tree   *tree.Tree
	opts   Options
	logger *slog.Logger

	// table of the next appended value. nil until the first
	// append to a new datagram.
	active *symtab.Table
}

func newDatagram(opts *Options) *Datagram {
	var d Datagram
	if opts != nil {
		d.opts = *opts
	}
	d.logger = d.opts.logger()
	return &d
}

// New returns an empty datagram. opts may be nil.
func New(opts *Options) *Datagram {
	d := newDatagram(opts)
	d.tree = tree.New(d.opts.InitialCapacity)
	return d
}

// Load returns a datagram reading b, which is copied. opts may be nil.
// Only the envelope, the boundaries of the top-level values and the
// symbol tables are decoded.
func Load(b []byte, opts *Options) (*Datagram, error) {
	d := newDatagram(opts)

	t, err := tree.Load(b)
	if err != nil {
		return nil, err
	}
	d.tree = t

	current := symtab.SystemOnly()
	tables := 0
	for i := 0; i < t.Count(); i++ {
		marker, err := t.IsVersionMarker(i)
		if err != nil {
			return nil, err
		}

		t.SetBinding(i, current)
		switch {
		case marker:
			t.MarkSystem(i)
			current = symtab.SystemOnly()
		case t.IsSymbolTable(i):
			t.MarkSystem(i)
			pf, err := t.SymbolTableAt(i)
			if err != nil {
				return nil, errors.Wrapf(err, "symbol table at index %d", i)
			}
			current, err = symtab.FromPersistedForm(pf, d.opts.Catalog)
			if err != nil {
				return nil, errors.Wrapf(err, "symbol table at index %d", i)
			}
			tables++
		}
	}
	d.active = current

	d.logger.Debug("datagram loaded",
		slog.Int("bytes", len(b)),
		slog.Int("values", d.Size()),
		slog.Int("system_values", d.SystemSize()),
		slog.Int("symbol_tables", tables))

	return d, nil
}

// Size returns the number of user values.
func (d *Datagram) Size() int {
	n := 0
	for i := 0; i < d.tree.Count(); i++ {
		if !d.tree.IsSystem(i) {
			n++
		}
	}
	return n
}

// SystemSize returns the number of values, symbol tables included.
func (d *Datagram) SystemSize() int {
	return d.tree.Count()
}

// systemIndex returns the index in the system view of the i-th user value.
func (d *Datagram) systemIndex(i int) (int, error) {
	if i >= 0 {
		n := i
		for j := 0; j < d.tree.Count(); j++ {
			if d.tree.IsSystem(j) {
				continue
			}
			if n == 0 {
				return j, nil
			}
			n--
		}
	}

	return -1, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", i, d.Size())
}

// Get returns the i-th user value.
func (d *Datagram) Get(i int) (Value, error) {
	j, err := d.systemIndex(i)
	if err != nil {
		return Value{}, err
	}
	return d.tree.At(j), nil
}

// SystemGet returns the i-th value of the system view.
func (d *Datagram) SystemGet(i int) (Value, error) {
	if i < 0 || i >= d.tree.Count() {
		return Value{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, system size %d", i, d.tree.Count())
	}
	return d.tree.At(i), nil
}

// IsSystem reports whether the i-th value of the system view is a symbol
// table or a version marker.
func (d *Datagram) IsSystem(i int) bool {
	return i >= 0 && i < d.tree.Count() && d.tree.IsSystem(i)
}

// Iterate calls fn on every user value, in order, and stops at the first error.
func (d *Datagram) Iterate(fn func(i int, v Value) error) error {
	i := 0
	for j := 0; j < d.tree.Count(); j++ {
		if d.tree.IsSystem(j) {
			continue
		}
		if err := fn(i, d.tree.At(j)); err != nil {
			return err
		}
		i++
	}
	return nil
}

// SystemIterate calls fn on every value of the system view.
func (d *Datagram) SystemIterate(fn func(i int, v Value) error) error {
	for j := 0; j < d.tree.Count(); j++ {
		if err := fn(j, d.tree.At(j)); err != nil {
			return err
		}
	}
	return nil
}

// Append adds v at the end of the datagram. v must not be attached to a
// container. Its names are bound to the symbol table in effect, which is
// extended first if it lacks some of them.
func (d *Datagram) Append(v Value) error {
	i := d.tree.Count()
	err := d.tree.Insert(i, v, false)
	if err != nil {
		return err
	}

	if d.active == nil {
		err = d.startTable(i)
	} else {
		_, err = d.bind(i, d.active)
	}
	if err != nil {
		// the value is dirty and has no span, removing it leaves the store untouched
		_, _ = d.tree.Remove(d.tree.Count() - 1)
		return err
	}
	return nil
}

// startTable creates the first symbol table of a new datagram, in front
// of the i-th value, and binds that value to it.
func (d *Datagram) startTable(i int) error {
	tbl := symtab.New(d.opts.Imports...)
	for _, name := range d.tree.MissingNamesAt(i, tbl) {
		if _, err := tbl.Intern(name); err != nil {
			return err
		}
	}

	err := d.insertTable(i, tbl, symtab.SystemOnly())
	if err != nil {
		return err
	}
	d.active = tbl
	_, err = d.bind(i+1, tbl)
	return err
}

// bind binds the names of the i-th value to tbl. When tbl lacks some of
// them, a new table extending tbl is inserted in front of the value, and
// every later value bound to tbl is bound to the new table instead.
// It returns the number of values inserted.
func (d *Datagram) bind(i int, tbl *symtab.Table) (int, error) {
	inserted := 0

	missing := d.tree.MissingNamesAt(i, tbl)
	if len(missing) > 0 {
		next := tbl.Extend()
		for _, name := range missing {
			if _, err := next.Intern(name); err != nil {
				return 0, err
			}
		}

		err := d.insertTable(i, next, tbl)
		if err != nil {
			return 0, err
		}
		inserted++
		i++

		for j := i + 1; j < d.tree.Count(); j++ {
			if d.tree.Binding(j) == tbl {
				d.tree.SetBinding(j, next)
			}
		}
		if d.active == tbl {
			d.active = next
		}

		d.logger.Debug("symbol table extended",
			slog.Int("index", i-1),
			slog.Any("symbols", missing),
			slog.Int("max_id", next.MaxID()))
		tbl = next
	}

	d.tree.SetBinding(i, tbl)
	err := d.tree.BindNamesAt(i, tbl)
	if err != nil {
		return inserted, err
	}
	tbl.Freeze()
	return inserted, nil
}

// insertTable inserts the symbol table struct of tbl as the i-th value.
// prev is the table in effect before it.
func (d *Datagram) insertTable(i int, tbl, prev *symtab.Table) error {
	v, err := tree.SymbolTableValue(tbl.PersistedForm())
	if err != nil {
		return err
	}

	err = d.tree.Insert(i, v, true)
	if err != nil {
		return err
	}
	d.tree.SetBinding(i, prev)
	err = d.tree.BindNamesAt(i, prev)
	if err != nil {
		return err
	}
	tbl.MarkPersisted()
	return nil
}

// Remove removes the user value v from the datagram. The symbol tables are
// left as they are, including symbols only v was using.
func (d *Datagram) Remove(v Value) error {
	i, ok := d.tree.IndexOf(v)
	if !ok || d.tree.IsSystem(i) {
		return ErrNotInDatagram
	}

	_, err := d.tree.Remove(i)
	return err
}

// RemoveAt removes the i-th user value and returns it.
// The returned value can be appended to any datagram.
func (d *Datagram) RemoveAt(i int) (Value, error) {
	j, err := d.systemIndex(i)
	if err != nil {
		return Value{}, err
	}
	return d.tree.Remove(j)
}

// ToBytes encodes the dirty values and returns a copy of the document.
func (d *Datagram) ToBytes() ([]byte, error) {
	oldLen := d.tree.Len()

	// names added since a value was appended may need a new table
	for i := 0; i < d.tree.Count(); i++ {
		if d.tree.IsSystem(i) || !d.tree.At(i).IsDirty() {
			continue
		}

		tbl := d.tree.Binding(i)
		if tbl == nil {
			return nil, errors.AssertionFailedf("user value %d has no symbol table", i)
		}
		n, err := d.bind(i, tbl)
		if err != nil {
			return nil, err
		}
		i += n
	}

	delta, err := d.tree.WriteBack()
	if err != nil {
		return nil, err
	}

	d.logger.Debug("datagram written",
		slog.Int("old_length", oldLen),
		slog.Int("length", d.tree.Len()),
		slog.Int("delta", delta))

	return bytes.Clone(d.tree.Bytes()), nil
}

// WriteTo writes the encoded document to w.
func (d *Datagram) WriteTo(w io.Writer) (int64, error) {
	b, err := d.ToBytes()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(b)
	return int64(n), err
}

// Dump writes the text form of the values to w, one per line.
// With system set, symbol tables and version markers are written too.
func (d *Datagram) Dump(w io.Writer, system bool) error {
	bw := bufio.NewWriter(w)

	fn := func(_ int, v Value) error {
		if err := v.Dump(bw); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	}

	var err error
	if system {
		err = d.SystemIterate(fn)
	} else {
		err = d.Iterate(fn)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// IsDatagram reports whether b starts with a datagram envelope.
func IsDatagram(b []byte) bool {
	return len(b) >= encoding.EnvelopeSize && bytes.Equal(b[4:encoding.EnvelopeSize], encoding.Magic[:])
}
