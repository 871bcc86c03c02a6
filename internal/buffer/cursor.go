package buffer

import (
	"io"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
)

// Reader is the read cursor of a Store.
type Reader struct {
	s   *Store
	pos int
}

// Position returns the absolute offset of the cursor.
func (r *Reader) Position() int { return r.pos }

// SetPosition moves the cursor to an absolute offset.
func (r *Reader) SetPosition(pos int) error {
	if pos < 0 || pos > r.s.len {
		return errors.Wrapf(ErrOutOfRange, "reader position %d, length is %d", pos, r.s.len)
	}
	r.pos = pos
	return nil
}

// Remaining returns the unread bytes up to the logical end.
func (r *Reader) Remaining() []byte { return r.s.buf[r.pos:r.s.len] }

// ReadByte reads one byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= r.s.len {
		return 0, io.EOF
	}
	c := r.s.buf[r.pos]
	r.pos++
	return c, nil
}

// Next returns the next n bytes and advances the cursor.
// The returned slice aliases the store.
func (r *Reader) Next(n int) ([]byte, error) {
	b, err := r.s.ReadAt(r.pos, n)
	if err != nil {
		return nil, errors.Wrap(encoding.ErrMalformedEncoding, "premature end of buffer")
	}
	r.pos += n
	return b, nil
}

// ReadHeader decodes the type descriptor under the cursor.
func (r *Reader) ReadHeader() (encoding.Header, error) {
	h, err := encoding.DecodeHeader(r.Remaining())
	if err != nil {
		return h, errors.Wrapf(err, "at offset %d", r.pos)
	}
	r.pos += h.Size
	return h, nil
}

// ReadVarUInt decodes the VarUInt under the cursor.
func (r *Reader) ReadVarUInt() (uint64, error) {
	v, n, err := encoding.DecodeVarUInt(r.Remaining())
	if err != nil {
		return 0, errors.Wrapf(err, "at offset %d", r.pos)
	}
	r.pos += n
	return v, nil
}

// ReadLength decodes a VarUInt that fits in an int.
func (r *Reader) ReadLength() (int, error) {
	v, n, err := encoding.DecodeLength(r.Remaining())
	if err != nil {
		return 0, errors.Wrapf(err, "at offset %d", r.pos)
	}
	r.pos += n
	return v, nil
}

// ReadUInt decodes an n byte unsigned magnitude.
func (r *Reader) ReadUInt(n int) (uint64, error) {
	b, err := r.Next(n)
	if err != nil {
		return 0, err
	}
	return encoding.DecodeUInt(b)
}

// ReadUint32 decodes a fixed 4 byte big-endian integer.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return encoding.DecodeUint32(b)
}

// Writer is the write cursor of a Store.
// Writes overwrite existing bytes and grow the store past its logical end.
type Writer struct {
	s   *Store
	pos int
	tmp [16]byte
}

// Position returns the absolute offset of the cursor.
func (w *Writer) Position() int { return w.pos }

// SetPosition moves the cursor to an absolute offset.
func (w *Writer) SetPosition(pos int) error {
	if pos < 0 || pos > w.s.len {
		return errors.Wrapf(ErrOutOfRange, "writer position %d, length is %d", pos, w.s.len)
	}
	w.pos = pos
	return nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	err := w.s.WriteAt(w.pos, p)
	if err != nil {
		return 0, err
	}
	w.pos += len(p)
	return len(p), nil
}

// WriteByte writes one byte.
func (w *Writer) WriteByte(c byte) error {
	w.tmp[0] = c
	_, err := w.Write(w.tmp[:1])
	return err
}

// WriteUint32 writes v as 4 big-endian bytes.
func (w *Writer) WriteUint32(v uint32) error {
	_, err := w.Write(encoding.AppendUint32(w.tmp[:0], v))
	return err
}

// Truncate drops everything after the cursor.
func (w *Writer) Truncate() error {
	return w.s.Truncate(w.pos)
}
