package export

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"io"
	"strconv"

	"github.com/chaisql/ion/internal/encoding"
	"github.com/chaisql/ion/internal/tree"
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is an output format.
type Format int

const (
	// JSON writes one JSON document per line, fields in order.
	JSON Format = iota
	// CBOR writes a sequence of CBOR items in core deterministic encoding.
	CBOR
	// MsgPack writes a sequence of MessagePack items with sorted map keys.
	MsgPack
)

var formatNames = map[string]Format{
	"json":    JSON,
	"cbor":    CBOR,
	"msgpack": MsgPack,
}

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	f, ok := formatNames[s]
	if !ok {
		return 0, errors.Newf("unknown format %q", s)
	}
	return f, nil
}

func (f Format) String() string {
	for k, v := range formatNames {
		if v == f {
			return k
		}
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

var cborMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
	return mode
}()

// Encoder writes values to a stream.
type Encoder struct {
	w      *bufio.Writer
	format Format
}

// NewEncoder returns an encoder writing to w.
// Flush must be called once every value is encoded.
func NewEncoder(w io.Writer, f Format) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), format: f}
}

// Encode writes v.
func (e *Encoder) Encode(v tree.Value) error {
	switch e.format {
	case JSON:
		err := writeJSON(e.w, v)
		if err != nil {
			return err
		}
		return e.w.WriteByte('\n')
	case CBOR:
		x, err := ToNative(v)
		if err != nil {
			return err
		}
		if err := checkNative(x); err != nil {
			return err
		}
		b, err := cborMode.Marshal(x)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = e.w.Write(b)
		return err
	case MsgPack:
		x, err := ToNative(v)
		if err != nil {
			return err
		}
		enc := msgpack.GetEncoder()
		enc.Reset(e.w)
		enc.SetSortMapKeys(true)
		err = enc.Encode(x)
		msgpack.PutEncoder(enc)
		return errors.WithStack(err)
	}

	return errors.Newf("unknown format %d", e.format)
}

// Flush writes any buffered data.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Marshal returns the encoding of v in format f.
func Marshal(f Format, v tree.Value) ([]byte, error) {
	var sb bytesWriter
	enc := NewEncoder(&sb, f)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	err = enc.Flush()
	if err != nil {
		return nil, err
	}
	if f == JSON {
		sb.b = sb.b[:len(sb.b)-1]
	}
	return sb.b, nil
}

type bytesWriter struct {
	b []byte
}

func (w *bytesWriter) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// checkNative rejects the floats CBOR core deterministic encoding would
// silently turn into a canonical NaN.
func checkNative(x any) error {
	switch x := x.(type) {
	case float64:
		return checkFloat(x)
	case []any:
		for _, c := range x {
			if err := checkNative(c); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, c := range x {
			if err := checkNative(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeJSON writes v keeping the order and the duplicates of struct fields.
func writeJSON(w *bufio.Writer, v tree.Value) error {
	err := v.Materialize()
	if err != nil {
		return err
	}
	if v.IsNull() {
		_, err = w.WriteString("null")
		return err
	}

	switch typ := v.Type(); typ {
	case encoding.TypeBool:
		b, _ := v.Bool()
		w.WriteString(strconv.FormatBool(b))
	case encoding.TypePosInt:
		i, _ := v.Int()
		w.WriteString(strconv.FormatInt(i, 10))
	case encoding.TypeFloat:
		f, _ := v.Float()
		if err := checkFloat(f); err != nil {
			return err
		}
		w.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case encoding.TypeString, encoding.TypeSymbol:
		s, err := v.Text()
		if typ == encoding.TypeSymbol {
			s, err = v.Symbol()
		}
		if err != nil {
			return err
		}
		return writeJSONString(w, s)
	case encoding.TypeBlob:
		b, _ := v.Bytes()
		return writeJSONString(w, base64.StdEncoding.EncodeToString(b))
	case encoding.TypeClob:
		b, _ := v.Bytes()
		return writeJSONString(w, string(b))
	case encoding.TypeList, encoding.TypeSexp:
		w.WriteByte('[')
		err := v.Iterate(func(i int, c tree.Value) error {
			if i > 0 {
				w.WriteString(", ")
			}
			return writeJSON(w, c)
		})
		if err != nil {
			return err
		}
		w.WriteByte(']')
	case encoding.TypeStruct:
		w.WriteByte('{')
		err := v.Iterate(func(i int, c tree.Value) error {
			if i > 0 {
				w.WriteString(", ")
			}
			name, err := c.FieldName()
			if err != nil {
				return err
			}
			if err := writeJSONString(w, name); err != nil {
				return err
			}
			w.WriteString(": ")
			return writeJSON(w, c)
		})
		if err != nil {
			return err
		}
		w.WriteByte('}')
	default:
		return errors.Wrapf(tree.ErrUnsupportedType, "cannot export %s values", typ)
	}

	return nil
}

func writeJSONString(w *bufio.Writer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = w.Write(b)
	return err
}
