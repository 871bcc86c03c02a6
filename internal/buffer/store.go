// Package buffer implements the growable byte region backing a document.
//
// A Store holds a single contiguous region with a logical length and
// exposes one read cursor and one write cursor, each an independent
// absolute offset. Besides plain reads and writes it supports splicing,
// which removes and inserts bytes at an offset and shifts everything after.
// Offsets obtained before a splice at or before them are stale and must be
// re-resolved by the caller.
//
// A Store is not safe for concurrent use.
package buffer

import (
	"github.com/cockroachdb/errors"
)

// ErrOutOfRange is returned when an offset or length falls outside the
// logical region.
var ErrOutOfRange = errors.New("offset out of range")

// Store is a growable, randomly writable byte region.
type Store struct {
	buf []byte
	len int

	reader Reader
	writer Writer
}

// New returns an empty Store with at least the given capacity.
func New(capacity int) *Store {
	s := Store{}
	s.ensure(capacity)
	s.reader.s = &s
	s.writer.s = &s
	return &s
}

// FromBytes returns a Store holding a copy of b.
func FromBytes(b []byte) *Store {
	s := New(len(b))
	s.len = copy(s.buf, b)
	return s
}

// Len returns the logical length of the region.
func (s *Store) Len() int { return s.len }

// Bytes returns the region. The slice aliases the store and is only valid
// until the next mutation.
func (s *Store) Bytes() []byte { return s.buf[:s.len] }

// Reader returns the read cursor of the store.
func (s *Store) Reader() *Reader { return &s.reader }

// Writer returns the write cursor of the store.
func (s *Store) Writer() *Writer { return &s.writer }

// ensures there are at least n free bytes after the logical end.
func (s *Store) ensure(n int) {
	if len(s.buf)-s.len >= n {
		return
	}

	newlen := len(s.buf)*2 + n
	if newlen < 64 {
		newlen = 64
	}
	newbuf := make([]byte, newlen)
	copy(newbuf, s.buf[:s.len])
	s.buf = newbuf
}

// ReadAt returns n bytes starting at off. The returned slice aliases the store.
func (s *Store) ReadAt(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > s.len {
		return nil, errors.Wrapf(ErrOutOfRange, "read of %d bytes at %d, length is %d", n, off, s.len)
	}

	return s.buf[off : off+n], nil
}

// WriteAt overwrites bytes in place starting at off.
// The region only grows when the write runs past the logical end;
// writing at an offset beyond the logical end is an error.
func (s *Store) WriteAt(off int, p []byte) error {
	if off < 0 || off > s.len {
		return errors.Wrapf(ErrOutOfRange, "write at %d, length is %d", off, s.len)
	}

	if end := off + len(p); end > s.len {
		s.ensure(end - s.len)
		s.len = end
	}
	copy(s.buf[off:], p)
	return nil
}

// Splice removes removeLen bytes at off and opens a gap of insertLen bytes
// in their place. Bytes after the removed range are shifted by
// insertLen - removeLen. The content of the gap is unspecified until written.
func (s *Store) Splice(off, removeLen, insertLen int) error {
	if off < 0 || removeLen < 0 || insertLen < 0 || off+removeLen > s.len {
		return errors.Wrapf(ErrOutOfRange, "splice of %d bytes at %d, length is %d", removeLen, off, s.len)
	}

	delta := insertLen - removeLen
	if delta > 0 {
		s.ensure(delta)
	}

	tail := off + removeLen
	copy(s.buf[tail+delta:s.len+delta], s.buf[tail:s.len])
	s.len += delta

	if s.reader.pos > s.len {
		s.reader.pos = s.len
	}
	if s.writer.pos > s.len {
		s.writer.pos = s.len
	}
	return nil
}

// Replace splices p in place of the removeLen bytes at off.
func (s *Store) Replace(off, removeLen int, p []byte) error {
	err := s.Splice(off, removeLen, len(p))
	if err != nil {
		return err
	}

	copy(s.buf[off:], p)
	return nil
}

// Truncate drops everything after n.
func (s *Store) Truncate(n int) error {
	if n < 0 || n > s.len {
		return errors.Wrapf(ErrOutOfRange, "truncate to %d, length is %d", n, s.len)
	}

	s.len = n
	if s.reader.pos > n {
		s.reader.pos = n
	}
	if s.writer.pos > n {
		s.writer.pos = n
	}
	return nil
}

// Compact releases unused capacity past the logical end.
func (s *Store) Compact() {
	if cap(s.buf) == s.len {
		return
	}

	buf := make([]byte, s.len)
	copy(buf, s.buf[:s.len])
	s.buf = buf
}
