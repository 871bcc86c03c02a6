package ion_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/chaisql/ion"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func reload(t testing.TB, dg *ion.Datagram, opts *ion.Options) *ion.Datagram {
	t.Helper()

	b, err := dg.ToBytes()
	require.NoError(t, err)
	require.True(t, ion.IsDatagram(b))

	res, err := ion.Load(b, opts)
	require.NoError(t, err)
	return res
}

func object(t testing.TB, kv ...interface{}) ion.Value {
	t.Helper()

	st := ion.NewStruct()
	for i := 0; i < len(kv); i += 2 {
		var v ion.Value
		switch x := kv[i+1].(type) {
		case int:
			v = ion.NewInt(int64(x))
		case string:
			v = ion.NewString(x)
		case ion.Value:
			v = x
		}
		require.NoError(t, st.Put(kv[i].(string), v))
	}
	return st
}

func dump(t testing.TB, dg *ion.Datagram, system bool) []string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, dg.Dump(&buf, system))
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestAppend(t *testing.T) {
	dg := ion.New(nil)
	require.NoError(t, dg.Append(ion.NewInt(1)))
	require.NoError(t, dg.Append(object(t, "color", "red")))
	require.NoError(t, dg.Append(ion.NewBool(true)))

	require.Equal(t, 3, dg.Size())
	require.Equal(t, 5, dg.SystemSize())
	require.True(t, dg.IsSystem(0))
	require.True(t, dg.IsSystem(2))
	require.False(t, dg.IsSystem(1))

	require.Equal(t, []string{
		"$ion_symbol_table::{}",
		"1",
		`$ion_symbol_table::{symbols:["color"]}`,
		`{color:"red"}`,
		"true",
	}, dump(t, dg, true))

	res := reload(t, dg, nil)
	require.Equal(t, 3, res.Size())
	require.Equal(t, 5, res.SystemSize())
	require.Equal(t, []string{"1", `{color:"red"}`, "true"}, dump(t, res, false))

	v, err := res.Get(1)
	require.NoError(t, err)
	f, ok, err := v.Field("color")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := f.Text()
	require.NoError(t, err)
	require.Equal(t, "red", s)

	_, err = res.Get(3)
	require.True(t, errors.Is(err, ion.ErrIndexOutOfRange))
	_, err = res.SystemGet(-1)
	require.True(t, errors.Is(err, ion.ErrIndexOutOfRange))
}

func TestSymbolStability(t *testing.T) {
	dg := ion.New(nil)
	first := object(t, "a", 1)
	require.NoError(t, dg.Append(first))
	_, err := dg.ToBytes()
	require.NoError(t, err)

	require.NoError(t, dg.Append(object(t, "b", 2)))
	// c is added to a value bound to a table that is already in use
	require.NoError(t, first.Put("c", ion.NewInt(3)))

	res := reload(t, dg, nil)
	require.Equal(t, []string{
		`$ion_symbol_table::{symbols:["a"]}`,
		`$ion_symbol_table::{symbols:["a", "c"]}`,
		"{a:1, c:3}",
		`$ion_symbol_table::{symbols:["a", "b"]}`,
		"{b:2}",
	}, dump(t, res, true))

	// and the loaded tables are extended the same way
	v, err := res.Get(1)
	require.NoError(t, err)
	require.NoError(t, v.Put("d", ion.NewInt(4)))
	require.NoError(t, res.Append(object(t, "a", 5)))

	res = reload(t, res, nil)
	require.Equal(t, []string{"{a:1, c:3}", "{b:2, d:4}", "{a:5}"}, dump(t, res, false))
	require.Equal(t, 7, res.SystemSize())
}

func TestImports(t *testing.T) {
	colors := ion.NewSharedTable("colors", 1, "red", "green")
	opts := ion.Options{
		Imports: []ion.Import{{Table: colors, MaxID: 2}},
	}

	dg := ion.New(&opts)
	require.NoError(t, dg.Append(object(t, "red", "x", "blue", 1)))

	res := reload(t, dg, &ion.Options{Catalog: ion.NewCatalog(colors)})
	require.Equal(t, []string{
		`$ion_symbol_table::{imports:[{name:"colors", version:1, max_id:2}], symbols:["blue"]}`,
		`{red:"x", blue:1}`,
	}, dump(t, res, true))

	// without the shared table, its ids have no text
	res = reload(t, dg, nil)
	require.Equal(t, []string{`{$10:"x", blue:1}`}, dump(t, res, false))
	v, err := res.Get(0)
	require.NoError(t, err)
	_, _, err = v.Field("red")
	require.True(t, errors.Is(err, ion.ErrUnknownSymbol))
}

func TestRemove(t *testing.T) {
	dg := ion.New(nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, dg.Append(object(t, "n", i)))
	}
	dg = reload(t, dg, nil)

	v, err := dg.Get(1)
	require.NoError(t, err)
	require.NoError(t, dg.Remove(v))
	require.Equal(t, 2, dg.Size())
	require.True(t, errors.Is(dg.Remove(v), ion.ErrNotInDatagram))

	sys, err := dg.SystemGet(0)
	require.NoError(t, err)
	require.True(t, errors.Is(dg.Remove(sys), ion.ErrNotInDatagram))

	_, err = dg.RemoveAt(5)
	require.True(t, errors.Is(err, ion.ErrIndexOutOfRange))

	last, err := dg.RemoveAt(1)
	require.NoError(t, err)
	require.Equal(t, "{n:2}", last.String())

	// symbols are not pruned
	dg = reload(t, dg, nil)
	require.Equal(t, []string{`$ion_symbol_table::{symbols:["n"]}`, "{n:0}"}, dump(t, dg, true))

	// removed values can go to another datagram
	other := ion.New(nil)
	require.NoError(t, other.Append(v))
	other = reload(t, other, nil)
	require.Equal(t, []string{"{n:1}"}, dump(t, other, false))
}

func TestModifyLoaded(t *testing.T) {
	dg := ion.New(nil)
	require.NoError(t, dg.Append(object(t, "name", "alice", "tags", ion.NewList())))
	require.NoError(t, dg.Append(ion.NewString("untouched")))
	b, err := dg.ToBytes()
	require.NoError(t, err)

	dg, err = ion.Load(b, nil)
	require.NoError(t, err)

	// nothing changed
	same, err := dg.ToBytes()
	require.NoError(t, err)
	require.Equal(t, b, same)

	v, err := dg.Get(0)
	require.NoError(t, err)
	tags, ok, err := v.Field("tags")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, tags.Append(ion.NewSymbol("admin")))
	name, _, err := v.Field("name")
	require.NoError(t, err)
	require.NoError(t, name.SetText("bob"))

	dg = reload(t, dg, nil)
	require.Equal(t, []string{`{name:"bob", tags:[admin]}`, `"untouched"`}, dump(t, dg, false))
}

func TestMoveBetweenDatagrams(t *testing.T) {
	src := ion.New(nil)
	require.NoError(t, src.Append(object(t, "x", object(t, "y", "z"))))
	src = reload(t, src, nil)

	v, err := src.Get(0)
	require.NoError(t, err)

	dst := ion.New(nil)
	require.NoError(t, dst.Append(object(t, "other", 1)))
	require.True(t, errors.Is(dst.Append(v), ion.ErrAttached))

	c, err := v.Clone()
	require.NoError(t, err)
	require.NoError(t, dst.Append(c))

	dst = reload(t, dst, nil)
	require.Equal(t, []string{"{other:1}", `{x:{y:"z"}}`}, dump(t, dst, false))
}

func TestReattach(t *testing.T) {
	src := ion.New(nil)
	require.NoError(t, src.Append(object(t, "k", 1)))
	src = reload(t, src, nil)

	v, err := src.RemoveAt(0)
	require.NoError(t, err)
	require.Equal(t, 0, src.Size())
	k, ok, err := v.Field("k")
	require.NoError(t, err)
	require.True(t, ok)

	dst := ion.New(nil)
	require.NoError(t, dst.Append(ion.NewInt(0)))
	require.NoError(t, dst.Append(v))

	// handles taken before the move follow the value
	require.NoError(t, k.SetInt(99))
	require.Equal(t, []string{"0", "{k:99}"}, dump(t, reload(t, dst, nil), false))

	require.NoError(t, dst.Remove(v))
	require.Equal(t, 1, dst.Size())
	require.Equal(t, []string{"0"}, dump(t, reload(t, dst, nil), false))

	t.Run("child of a fragment", func(t *testing.T) {
		outer := ion.NewList()
		require.NoError(t, outer.Append(ion.NewInt(1)))
		r, err := outer.Remove(0)
		require.NoError(t, err)

		dg := ion.New(nil)
		require.NoError(t, dg.Append(r))
		require.NoError(t, r.SetInt(42))
		require.Equal(t, []string{"42"}, dump(t, reload(t, dg, nil), false))

		require.True(t, errors.Is(outer.Append(r), ion.ErrAttached))
		require.NoError(t, dg.Remove(r))
		require.Equal(t, 0, dg.Size())
	})
}

func TestVersionMarker(t *testing.T) {
	dg := ion.New(nil)
	require.NoError(t, dg.Append(object(t, "a", 1)))
	require.NoError(t, dg.Append(ion.NewSymbol("$ion_1_0")))
	require.NoError(t, dg.Append(ion.NewInt(5)))

	res := reload(t, dg, nil)
	require.Equal(t, 2, res.Size())
	require.True(t, res.IsSystem(2))

	// values after the marker start over from the system symbols
	require.NoError(t, res.Append(object(t, "a", 2)))
	res = reload(t, res, nil)
	require.Equal(t, []string{"{a:1}", "5", "{a:2}"}, dump(t, res, false))
	require.Equal(t, 6, res.SystemSize())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"short", []byte{0xFF, 0xFF}},
		{"magic", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10, 0x14, 0x02, 0x00}},
		{"length", []byte{0x00, 0x00, 0x00, 0x20, 0x10, 0x14, 0x01, 0x00}},
		{"trailing bytes", []byte{0x00, 0x00, 0x00, 0x09, 0x10, 0x14, 0x01, 0x00, 0x20, 0x20}},
		{"truncated value", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10, 0x14, 0x01, 0x00, 0x82, 'a'}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ion.Load(test.b, nil)
			require.True(t, errors.Is(err, ion.ErrMalformedEncoding), "got %v", err)
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dg := ion.New(&ion.Options{Logger: logger})
	require.NoError(t, dg.Append(object(t, "a", 1)))
	require.NoError(t, dg.Append(object(t, "b", 1)))
	_, err := dg.ToBytes()
	require.NoError(t, err)

	require.Contains(t, buf.String(), "symbol table extended")
	require.Contains(t, buf.String(), "datagram written")
}
