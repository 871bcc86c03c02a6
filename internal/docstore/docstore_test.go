package docstore_test

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/chaisql/ion"
	"github.com/chaisql/ion/internal/docstore"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, engine string, c docstore.Compression) *docstore.Store {
	t.Helper()

	opts := docstore.Options{
		Engine:      engine,
		Compression: c,
	}
	switch engine {
	case docstore.EnginePebble:
		opts.Path = filepath.Join(t.TempDir(), "pebble")
	case docstore.EngineBolt:
		opts.Path = filepath.Join(t.TempDir(), "bolt.db")
	}

	s, err := docstore.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func sampleDatagram(t testing.TB, n int) []byte {
	t.Helper()

	dg := ion.New(nil)
	for i := 0; i < n; i++ {
		st := ion.NewStruct()
		require.NoError(t, st.Put("name", ion.NewString("gopher")))
		require.NoError(t, st.Put("age", ion.NewInt(int64(i))))
		require.NoError(t, dg.Append(st))
	}

	b, err := dg.ToBytes()
	require.NoError(t, err)
	return b
}

func TestStore(t *testing.T) {
	engines := []string{docstore.EngineMemory, docstore.EnginePebble, docstore.EngineBolt}
	compressions := []docstore.Compression{docstore.NoCompression, docstore.LZ4, docstore.Zstd}

	for _, engine := range engines {
		for _, c := range compressions {
			t.Run(engine+"/"+c.String(), func(t *testing.T) {
				s := openStore(t, engine, c)

				small := sampleDatagram(t, 1)
				large := sampleDatagram(t, 200)

				require.NoError(t, s.Put("a", small))
				require.NoError(t, s.Put("b/1", large))
				require.NoError(t, s.Put("b/2", small))

				got, err := s.Get("a")
				require.NoError(t, err)
				require.Equal(t, small, got)

				got, err = s.Get("b/1")
				require.NoError(t, err)
				require.Equal(t, large, got)

				names, err := s.Names("")
				require.NoError(t, err)
				require.Equal(t, []string{"a", "b/1", "b/2"}, names)

				names, err = s.Names("b/")
				require.NoError(t, err)
				require.Equal(t, []string{"b/1", "b/2"}, names)

				// overwrite
				require.NoError(t, s.Put("a", large))
				got, err = s.Get("a")
				require.NoError(t, err)
				require.Equal(t, large, got)

				require.NoError(t, s.Delete("a"))
				_, err = s.Get("a")
				require.True(t, errors.Is(err, docstore.ErrNotFound))

				err = s.Delete("a")
				require.True(t, errors.Is(err, docstore.ErrNotFound))
			})
		}
	}
}

func TestPutErrors(t *testing.T) {
	s := openStore(t, docstore.EngineMemory, docstore.NoCompression)

	err := s.Put("", sampleDatagram(t, 1))
	require.Error(t, err)

	err = s.Put("x", []byte{1, 2, 3})
	require.True(t, errors.Is(err, ion.ErrMalformedEncoding))

	_, err = s.Get("missing")
	require.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestDatagram(t *testing.T) {
	s := openStore(t, docstore.EngineMemory, docstore.Zstd)

	dg := ion.New(nil)
	st := ion.NewStruct()
	require.NoError(t, st.Put("color", ion.NewString("red")))
	require.NoError(t, dg.Append(st))
	require.NoError(t, dg.Append(ion.NewInt(42)))

	require.NoError(t, s.PutDatagram("colors", dg))

	res, err := s.GetDatagram("colors", nil)
	require.NoError(t, err)
	require.Equal(t, 2, res.Size())

	var buf bytes.Buffer
	require.NoError(t, res.Dump(&buf, false))
	require.Equal(t, "{color:\"red\"}\n42\n", buf.String())
}

func TestCorruptedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolt.db")

	s, err := docstore.Open(docstore.Options{Engine: docstore.EngineBolt, Path: path})
	require.NoError(t, err)
	doc := sampleDatagram(t, 3)
	require.NoError(t, s.Put("doc", doc))
	require.NoError(t, s.Close())

	// flip the last byte of the stored document
	require.NoError(t, docstore.CorruptForTest(path, "doc"))

	s, err = docstore.Open(docstore.Options{Engine: docstore.EngineBolt, Path: path})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get("doc")
	require.True(t, errors.Is(err, docstore.ErrChecksum))
}

func TestRecordLength(t *testing.T) {
	doc := sampleDatagram(t, 3)

	record := func(c docstore.Compression, size uint64, payload ...byte) []byte {
		rec := make([]byte, 9)
		rec[0] = byte(c)
		rec = binary.AppendUvarint(rec, size)
		return append(rec, payload...)
	}

	tests := []struct {
		name string
		rec  []byte
	}{
		{"lz4 oversized", record(docstore.LZ4, 1<<62, 0x10, 0x00)},
		{"zstd oversized", record(docstore.Zstd, 1<<62, 0x10, 0x00)},
		{"lz4 above ratio", record(docstore.LZ4, 1<<20, 0x10, 0x00)},
		{"uncompressed mismatch", record(docstore.NoCompression, uint64(len(doc))+1, doc...)},
		{"truncated length", append(make([]byte, 9), 0x80)},
		{"short", []byte{0x01, 0x02}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bolt.db")
			require.NoError(t, docstore.PutRecordForTest(path, "doc", test.rec))

			s, err := docstore.Open(docstore.Options{Engine: docstore.EngineBolt, Path: path})
			require.NoError(t, err)
			defer s.Close()

			_, err = s.Get("doc")
			require.True(t, errors.Is(err, docstore.ErrCorrupted), "got %v", err)
		})
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name    string
		want    docstore.Compression
		wantErr bool
	}{
		{"none", docstore.NoCompression, false},
		{"lz4", docstore.LZ4, false},
		{"zstd", docstore.Zstd, false},
		{"gzip", 0, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, err := docstore.ParseCompression(test.name)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, c)
			require.Equal(t, test.name, c.String())
		})
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := docstore.Open(docstore.Options{Engine: docstore.EnginePebble})
	require.Error(t, err)

	_, err = docstore.Open(docstore.Options{Engine: docstore.EngineBolt})
	require.Error(t, err)

	_, err = docstore.Open(docstore.Options{Engine: "sqlite"})
	require.Error(t, err)
}
