// Package jsonload builds values from JSON text.
//
// Comments and trailing commas are accepted. Objects become structs,
// keeping duplicated keys, arrays become lists, and numbers become ints
// when they fit in 64 bits and floats otherwise.
package jsonload

import (
	"github.com/buger/jsonparser"
	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/tree"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/jsonc"
)

// MaxDepth is the maximum nesting of arrays and objects.
const MaxDepth = 512

// ErrTooDeep is returned when the input nests deeper than MaxDepth.
var ErrTooDeep = errors.New("json nesting too deep")

// Parse returns the value of a JSON document holding exactly one value.
func Parse(data []byte) (tree.Value, error) {
	values, err := ParseStream(data)
	if err != nil {
		return tree.Value{}, err
	}
	if len(values) != 1 {
		return tree.Value{}, errors.Newf("expected one JSON value, got %d", len(values))
	}
	return values[0], nil
}

// ParseStream returns the values of a sequence of JSON values, such as
// JSON lines.
func ParseStream(data []byte) ([]tree.Value, error) {
	data = jsonc.ToJSON(data)

	var values []tree.Value
	for off := skipSpace(data, 0); off < len(data); off = skipSpace(data, off) {
		raw, dataType, end, err := jsonparser.Get(data[off:])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid JSON at offset %d", off)
		}

		v, err := parseValue(dataType, raw, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", len(values))
		}
		values = append(values, v)
		off += end
	}

	return values, nil
}

func skipSpace(data []byte, off int) int {
	for off < len(data) {
		switch data[off] {
		case ' ', '\t', '\n', '\r':
			off++
		default:
			return off
		}
	}
	return off
}

func parseValue(dataType jsonparser.ValueType, data []byte, depth int) (tree.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return tree.NewNull(encoding.TypeNull)
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return tree.Value{}, err
		}
		return tree.NewBool(b), nil
	case jsonparser.Number:
		i, err := jsonparser.ParseInt(data)
		if err != nil {
			// too big for an int64 or not an integer
			f, err := jsonparser.ParseFloat(data)
			if err != nil {
				return tree.Value{}, err
			}
			return tree.NewFloat(f), nil
		}
		return tree.NewInt(i), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return tree.Value{}, err
		}
		return tree.NewString(s), nil
	case jsonparser.Array:
		if depth >= MaxDepth {
			return tree.Value{}, ErrTooDeep
		}
		return parseArray(data, depth+1)
	case jsonparser.Object:
		if depth >= MaxDepth {
			return tree.Value{}, ErrTooDeep
		}
		return parseObject(data, depth+1)
	}

	return tree.Value{}, errors.Errorf("unsupported JSON type: %v", dataType)
}

func parseArray(data []byte, depth int) (tree.Value, error) {
	list := tree.NewList()

	var err error
	_, perr := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if err != nil {
			return
		}

		var v tree.Value
		v, err = parseValue(dataType, value, depth)
		if err == nil {
			err = list.Append(v)
		}
	})
	if err != nil {
		return tree.Value{}, err
	}
	if perr != nil {
		return tree.Value{}, perr
	}

	return list, nil
}

func parseObject(data []byte, depth int) (tree.Value, error) {
	st := tree.NewStruct()

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := parseValue(dataType, value, depth)
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return st.Add(string(key), v)
	})
	if err != nil {
		return tree.Value{}, err
	}

	return st, nil
}
