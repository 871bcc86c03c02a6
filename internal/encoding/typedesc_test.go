package encoding_test

import (
	"fmt"
	"testing"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		input []byte
		want  encoding.Header
	}{
		{[]byte{0x0F}, encoding.Header{Type: encoding.TypeNull, Nibble: 0xF, Size: 1}},
		{[]byte{0x10}, encoding.Header{Type: encoding.TypeBool, Nibble: 0, Size: 1}},
		{[]byte{0x11}, encoding.Header{Type: encoding.TypeBool, Nibble: 1, Size: 1}},
		{[]byte{0x1F}, encoding.Header{Type: encoding.TypeBool, Nibble: 0xF, Size: 1}},
		{[]byte{0x20}, encoding.Header{Type: encoding.TypePosInt, Nibble: 0, Size: 1}},
		{[]byte{0x22}, encoding.Header{Type: encoding.TypePosInt, Nibble: 2, Length: 2, Size: 1}},
		{[]byte{0x2F}, encoding.Header{Type: encoding.TypePosInt, Nibble: 0xF, Size: 1}},
		{[]byte{0x35}, encoding.Header{Type: encoding.TypeNegInt, Nibble: 5, Length: 5, Size: 1}},
		{[]byte{0x8E, 0x8E}, encoding.Header{Type: encoding.TypeString, Nibble: 0xE, Length: 14, Size: 2}},
		{[]byte{0xBE, 0x02, 0xAC}, encoding.Header{Type: encoding.TypeList, Nibble: 0xE, Length: 300, Size: 3}},
		{[]byte{0xD0}, encoding.Header{Type: encoding.TypeStruct, Nibble: 0, Size: 1}},
		{[]byte{0xE4}, encoding.Header{Type: encoding.TypeAnnotation, Nibble: 4, Length: 4, Size: 1}},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%x", test.input), func(t *testing.T) {
			h, err := encoding.DecodeHeader(test.input)
			require.NoError(t, err)
			require.Equal(t, test.want, h)
		})
	}
}

func TestDecodeHeaderMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"null with length", []byte{0x03}},
		{"bool with undefined nibble", []byte{0x12}},
		{"bool with varlen nibble", []byte{0x1E}},
		{"negative zero", []byte{0x30}},
		{"null annotation", []byte{0xEF}},
		{"reserved type", []byte{0xF0}},
		{"truncated length", []byte{0x8E, 0x01}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := encoding.DecodeHeader(test.input)
			require.Error(t, err)
			require.True(t, errors.Is(err, encoding.ErrMalformedEncoding), "got %v", err)
		})
	}
}

func TestAppendHeaderMinimal(t *testing.T) {
	tests := []struct {
		length int
		want   []byte
	}{
		{0, []byte{0x20}},
		{5, []byte{0x25}},
		{13, []byte{0x2D}},
		{14, []byte{0x2E, 0x8E}},
		{300, []byte{0x2E, 0x02, 0xAC}},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.length), func(t *testing.T) {
			got, err := encoding.AppendHeader(nil, encoding.TypePosInt, test.length)
			require.NoError(t, err)
			require.Equal(t, test.want, got)
			require.Equal(t, len(got), encoding.HeaderLen(test.length))

			h, err := encoding.DecodeHeader(got)
			require.NoError(t, err)
			require.Equal(t, test.length, h.Length)
			require.Equal(t, len(got), h.Size)
		})
	}

	_, err := encoding.AppendHeader(nil, encoding.TypeString, -1)
	require.True(t, errors.Is(err, encoding.ErrInvalidArgument))
}

func TestTypeDesc(t *testing.T) {
	td := encoding.MakeTypeDesc(encoding.TypeBool, encoding.NibbleTrue)
	require.Equal(t, byte(0x11), td)

	typ, ln := encoding.SplitTypeDesc(td)
	require.Equal(t, encoding.TypeBool, typ)
	require.Equal(t, encoding.NibbleTrue, ln)

	require.Equal(t, "struct", encoding.TypeStruct.String())
	require.True(t, encoding.TypeSexp.IsContainer())
	require.False(t, encoding.TypeAnnotation.IsContainer())
}
