// Package export converts values to plain Go values and to other formats.
//
// Annotations are dropped. Symbols become strings, blobs and clobs become
// byte slices, lists and s-expressions become slices, and structs become
// maps in which the first field of a given name wins. Decimals and
// timestamps have no native representation and are refused.
package export

import (
	"math"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/tree"
	"github.com/cockroachdb/errors"
)

// ToNative returns the Go representation of v:
// nil, bool, int64, float64, string, []byte, []any or map[string]any.
func ToNative(v tree.Value) (any, error) {
	err := v.Materialize()
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, nil
	}

	switch typ := v.Type(); typ {
	case encoding.TypeBool:
		return v.Bool()
	case encoding.TypePosInt:
		return v.Int()
	case encoding.TypeFloat:
		return v.Float()
	case encoding.TypeString:
		return v.Text()
	case encoding.TypeSymbol:
		return v.Symbol()
	case encoding.TypeBlob, encoding.TypeClob:
		return v.Bytes()
	case encoding.TypeList, encoding.TypeSexp:
		n, err := v.Len()
		if err != nil {
			return nil, err
		}
		list := make([]any, 0, n)
		err = v.Iterate(func(_ int, c tree.Value) error {
			x, err := ToNative(c)
			if err != nil {
				return err
			}
			list = append(list, x)
			return nil
		})
		return list, err
	case encoding.TypeStruct:
		n, err := v.Len()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, n)
		err = v.Iterate(func(_ int, c tree.Value) error {
			name, err := c.FieldName()
			if err != nil {
				return err
			}
			if _, ok := m[name]; ok {
				return nil
			}
			x, err := ToNative(c)
			if err != nil {
				return errors.Wrapf(err, "field %q", name)
			}
			m[name] = x
			return nil
		})
		return m, err
	default:
		return nil, errors.Wrapf(tree.ErrUnsupportedType, "cannot export %s values", typ)
	}
}

func checkFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Wrapf(tree.ErrUnsupportedType, "cannot export float %v", f)
	}
	return nil
}
