package jsonload_test

import (
	"strings"
	"testing"

	"github.com/chaisql/ion/internal/jsonload"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"null", "null", "null"},
		{"bool", "true", "true"},
		{"int", "-42", "-42"},
		{"float", "1.5", "1.5e0"},
		{"big", "18446744073709551616", "1.8446744073709552e+19"},
		{"string", `"a\nb"`, `"a\nb"`},
		{"array", `[1, "two", [3]]`, `[1, "two", [3]]`},
		{"object", `{"a": 1, "b c": {"d": null}}`, `{a:1, 'b c':{d:null}}`},
		{"duplicated keys", `{"a": 1, "a": 2}`, `{a:1, a:2}`},
		{"comments", "{\n// first\n\"a\": 1, /* second */ \"b\": [true,],\n}", `{a:1, b:[true]}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := jsonload.Parse([]byte(test.data))
			require.NoError(t, err)
			require.Equal(t, test.want, v.String())
		})
	}
}

func TestParseStream(t *testing.T) {
	values, err := jsonload.ParseStream([]byte("{\"a\": 1}\n[2]\n\n\"three\" 4\n"))
	require.NoError(t, err)

	var got []string
	for _, v := range values {
		got = append(got, v.String())
	}
	require.Equal(t, []string{"{a:1}", "[2]", `"three"`, "4"}, got)

	values, err = jsonload.ParseStream([]byte("  \n"))
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestParseErrors(t *testing.T) {
	_, err := jsonload.Parse([]byte(`{"a": }`))
	require.Error(t, err)

	_, err = jsonload.Parse([]byte(`1 2`))
	require.Error(t, err)

	_, err = jsonload.Parse(nil)
	require.Error(t, err)

	deep := strings.Repeat("[", jsonload.MaxDepth+1) + strings.Repeat("]", jsonload.MaxDepth+1)
	_, err = jsonload.Parse([]byte(deep))
	require.True(t, errors.Is(err, jsonload.ErrTooDeep))
}
