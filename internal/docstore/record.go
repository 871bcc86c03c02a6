package docstore

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the compression of stored documents.
type Compression byte

const (
	NoCompression Compression = iota
	LZ4
	Zstd
)

var compressionNames = [...]string{
	NoCompression: "none",
	LZ4:           "lz4",
	Zstd:          "zstd",
}

func (c Compression) String() string {
	if int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return "unknown"
}

// ParseCompression returns the compression with the given name.
func ParseCompression(s string) (Compression, error) {
	for i, name := range compressionNames {
		if name == s {
			return Compression(i), nil
		}
	}
	return 0, errors.Newf("unknown compression %q", s)
}

// record layout:
//
//	compression (1) | xxhash64 of the document (8) | document length (uvarint) | payload
const recordHeaderSize = 1 + 8

// documents carry their length on 4 bytes.
const maxDocumentSize = math.MaxUint32

// lz4 blocks expand at most 255 times.
const lz4MaxRatio = 255

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("docstore: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDocumentSize))
	if err != nil {
		panic("docstore: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeRecord returns the record storing doc. Documents that do not
// shrink are stored uncompressed.
func encodeRecord(doc []byte, c Compression) ([]byte, error) {
	payload, c, err := compress(doc, c)
	if err != nil {
		return nil, err
	}

	rec := make([]byte, recordHeaderSize, recordHeaderSize+binary.MaxVarintLen64+len(payload))
	rec[0] = byte(c)
	binary.BigEndian.PutUint64(rec[1:], xxhash.Sum64(doc))
	rec = binary.AppendUvarint(rec, uint64(len(doc)))
	return append(rec, payload...), nil
}

func compress(doc []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case NoCompression:
		return doc, c, nil
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(doc)))
		n, err := lz4.CompressBlock(doc, dst, nil)
		if err != nil {
			return nil, c, errors.Wrap(err, "lz4 compress")
		}
		// 0 means incompressible
		if n == 0 || n >= len(doc) {
			return doc, NoCompression, nil
		}
		return dst[:n], c, nil
	case Zstd:
		dst := zstdEncoder.EncodeAll(doc, nil)
		if len(dst) >= len(doc) {
			return doc, NoCompression, nil
		}
		return dst, c, nil
	}

	return nil, c, errors.Newf("unsupported compression %d", c)
}

// decodeRecord returns the document stored in rec.
func decodeRecord(rec []byte) ([]byte, error) {
	if len(rec) < recordHeaderSize {
		return nil, errors.Wrapf(ErrCorrupted, "record of %d bytes", len(rec))
	}

	c := Compression(rec[0])
	sum := binary.BigEndian.Uint64(rec[1:])
	size, n := binary.Uvarint(rec[recordHeaderSize:])
	if n <= 0 {
		return nil, errors.Wrap(ErrCorrupted, "bad document length")
	}
	if size > maxDocumentSize {
		return nil, errors.Wrapf(ErrCorrupted, "document length %d", size)
	}
	payload := rec[recordHeaderSize+n:]

	var doc []byte
	switch c {
	case NoCompression:
		doc = payload
	case LZ4:
		if size > uint64(len(payload))*lz4MaxRatio {
			return nil, errors.Wrapf(ErrCorrupted, "document length %d for %d compressed bytes", size, len(payload))
		}
		doc = make([]byte, size)
		read, err := lz4.UncompressBlock(payload, doc)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lz4 decompress"), ErrCorrupted)
		}
		doc = doc[:read]
	case Zstd:
		var err error
		// the length is only a capacity hint here, the frame bounds the output
		doc, err = zstdDecoder.DecodeAll(payload, make([]byte, 0, min(size, uint64(len(payload))*lz4MaxRatio)))
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "zstd decompress"), ErrCorrupted)
		}
	default:
		return nil, errors.Wrapf(ErrCorrupted, "unknown compression %d", c)
	}

	if uint64(len(doc)) != size {
		return nil, errors.Wrapf(ErrCorrupted, "document of %d bytes, expected %d", len(doc), size)
	}
	if xxhash.Sum64(doc) != sum {
		return nil, errors.Wrap(ErrChecksum, "document checksum mismatch")
	}
	return doc, nil
}
