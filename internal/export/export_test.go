package export_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/chaisql/ion/internal/export"
	"github.com/chaisql/ion/internal/tree"
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// sample returns {a:1, b:[true, "x", sym, null], c:{{AQI=}}, a:2}.
func sample(t testing.TB) tree.Value {
	t.Helper()

	list := tree.NewList()
	require.NoError(t, list.Append(tree.NewBool(true)))
	require.NoError(t, list.Append(tree.NewString("x")))
	require.NoError(t, list.Append(tree.NewSymbol("sym")))
	null, err := tree.NewNull(0)
	require.NoError(t, err)
	require.NoError(t, list.Append(null))

	st := tree.NewStruct()
	require.NoError(t, st.Put("a", tree.NewInt(1)))
	require.NoError(t, st.Put("b", list))
	require.NoError(t, st.Put("c", tree.NewBlob([]byte{1, 2})))
	require.NoError(t, st.Add("a", tree.NewInt(2)))
	require.NoError(t, st.AddAnnotation("dropped"))
	return st
}

type record struct {
	A int64  `cbor:"a" msgpack:"a"`
	B []any  `cbor:"b" msgpack:"b"`
	C []byte `cbor:"c" msgpack:"c"`
}

func TestToNative(t *testing.T) {
	got, err := export.ToNative(sample(t))
	require.NoError(t, err)

	want := map[string]any{
		"a": int64(1),
		"b": []any{true, "x", "sym", nil},
		"c": []byte{1, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("native mismatch (-want +got):\n%s", diff)
	}

	// decimals and timestamps stay opaque
	doc, err := tree.Load([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x10, 0x14, 0x01, 0x00, 0x50, 0x61, 0x80})
	require.NoError(t, err)
	for i := 0; i < doc.Count(); i++ {
		_, err = export.ToNative(doc.At(i))
		require.True(t, errors.Is(err, tree.ErrUnsupportedType))
	}
}

func TestJSON(t *testing.T) {
	b, err := export.Marshal(export.JSON, sample(t))
	require.NoError(t, err)
	require.Equal(t, `{"a": 1, "b": [true, "x", "sym", null], "c": "AQI=", "a": 2}`, string(b))

	var buf bytes.Buffer
	enc := export.NewEncoder(&buf, export.JSON)
	require.NoError(t, enc.Encode(tree.NewFloat(0.5)))
	require.NoError(t, enc.Encode(tree.NewClob([]byte("a\"b"))))
	require.NoError(t, enc.Flush())
	require.Equal(t, "0.5\n\"a\\\"b\"\n", buf.String())

	_, err = export.Marshal(export.JSON, tree.NewFloat(math.NaN()))
	require.True(t, errors.Is(err, tree.ErrUnsupportedType))
}

func TestBinaryFormats(t *testing.T) {
	tests := []struct {
		format    export.Format
		unmarshal func([]byte, any) error
	}{
		{export.CBOR, cbor.Unmarshal},
		{export.MsgPack, msgpack.Unmarshal},
	}

	for _, test := range tests {
		t.Run(test.format.String(), func(t *testing.T) {
			b, err := export.Marshal(test.format, sample(t))
			require.NoError(t, err)

			// deterministic
			again, err := export.Marshal(test.format, sample(t))
			require.NoError(t, err)
			require.Equal(t, b, again)

			var r record
			require.NoError(t, test.unmarshal(b, &r))
			require.EqualValues(t, 1, r.A)
			require.Equal(t, []byte{1, 2}, r.C)
			require.Len(t, r.B, 4)
			require.Equal(t, true, r.B[0])
			require.Equal(t, "x", r.B[1])
			require.Equal(t, "sym", r.B[2])
			require.Nil(t, r.B[3])
		})
	}

	_, err := export.Marshal(export.CBOR, tree.NewFloat(math.Inf(1)))
	require.True(t, errors.Is(err, tree.ErrUnsupportedType))
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "cbor", "msgpack"} {
		f, err := export.ParseFormat(name)
		require.NoError(t, err)
		require.Equal(t, name, f.String())
	}

	_, err := export.ParseFormat("xml")
	require.Error(t, err)
}
