// Package docstore persists encoded datagrams by name on pebble or bbolt.
//
// Each document is stored as a record holding its compression, the
// xxhash of the document and the compressed document.
package docstore

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/chaisql/ion"
	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound is returned when no document has the given name.
	ErrNotFound = errors.New("document not found")

	// ErrChecksum is returned when a document does not match its checksum.
	ErrChecksum = errors.New("document checksum mismatch")

	// ErrCorrupted is returned when a record cannot be decoded.
	ErrCorrupted = errors.New("corrupted record")
)

// Engine names.
const (
	EnginePebble = "pebble"
	EngineBolt   = "bolt"
	EngineMemory = "memory"
)

// Options configures a Store.
type Options struct {
	// Engine is one of pebble, bolt or memory. Defaults to pebble.
	Engine string
	// Path of the database. Ignored by the memory engine.
	Path string
	// Compression of the documents written by the store.
	Compression Compression
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// backend is a key-value engine.
type backend interface {
	get(key []byte) ([]byte, error)
	put(key, value []byte) error
	delete(key []byte) error
	// iterate calls fn with every key starting with prefix, in order.
	iterate(prefix []byte, fn func(key []byte) error) error
	close() error
}

// Store holds documents by name.
type Store struct {
	b           backend
	compression Compression
	logger      *slog.Logger
}

// Open opens a store.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var b backend
	var err error
	switch opts.Engine {
	case "", EnginePebble:
		if opts.Path == "" {
			return nil, errors.New("engine pebble needs a path")
		}
		b, err = openPebble(opts.Path, false, logger)
	case EngineMemory:
		b, err = openPebble("", true, logger)
	case EngineBolt:
		if opts.Path == "" {
			return nil, errors.New("engine bolt needs a path")
		}
		b, err = openBolt(opts.Path)
	default:
		return nil, errors.Newf("unknown engine %q", opts.Engine)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("document store opened",
		slog.String("engine", opts.Engine),
		slog.String("path", opts.Path),
		slog.String("compression", opts.Compression.String()))

	return &Store{b: b, compression: opts.Compression, logger: logger}, nil
}

const separator byte = 0x1F

// documents are stored under d<sep>name.
func docKey(name string) []byte {
	key := make([]byte, 0, len(name)+2)
	key = append(key, 'd', separator)
	return append(key, name...)
}

func validName(name string) error {
	if name == "" {
		return errors.New("cannot store a document without a name")
	}
	return nil
}

// Put stores the encoded datagram doc under name, replacing any
// document with that name.
func (s *Store) Put(name string, doc []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if !ion.IsDatagram(doc) {
		return errors.Wrap(ion.ErrMalformedEncoding, "not a datagram")
	}

	rec, err := encodeRecord(doc, s.compression)
	if err != nil {
		return err
	}

	s.logger.Debug("put document",
		slog.String("name", name),
		slog.Int("size", len(doc)),
		slog.Int("stored", len(rec)))
	return s.b.put(docKey(name), rec)
}

// Get returns the encoded datagram stored under name.
func (s *Store) Get(name string) ([]byte, error) {
	rec, err := s.b.get(docKey(name))
	if err != nil {
		return nil, errors.Wrapf(err, "document %q", name)
	}

	doc, err := decodeRecord(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "document %q", name)
	}
	return doc, nil
}

// PutDatagram encodes dg and stores it under name.
func (s *Store) PutDatagram(name string, dg *ion.Datagram) error {
	b, err := dg.ToBytes()
	if err != nil {
		return err
	}
	return s.Put(name, b)
}

// GetDatagram loads the datagram stored under name.
func (s *Store) GetDatagram(name string, opts *ion.Options) (*ion.Datagram, error) {
	b, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return ion.Load(b, opts)
}

// Delete removes the document stored under name.
func (s *Store) Delete(name string) error {
	return s.b.delete(docKey(name))
}

// Names returns the names of the documents starting with prefix, sorted.
func (s *Store) Names(prefix string) ([]string, error) {
	var names []string

	p := docKey(prefix)
	err := s.b.iterate(p, func(key []byte) error {
		names = append(names, string(key[2:]))
		return nil
	})
	return names, err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.b.close()
}

// successor returns the smallest key greater than every key starting with prefix.
func successor(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
