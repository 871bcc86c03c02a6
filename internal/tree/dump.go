package tree

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chaisql/ion/internal/encoding"
)

// Dump writes a text rendering of the value to w.
// Containers are materialized on the way; values are not modified.
func (v Value) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	t, id := v.resolve()

	err := t.dump(bw, id)
	if err != nil {
		return err
	}
	return bw.Flush()
}

func (v Value) String() string {
	var sb strings.Builder
	err := v.Dump(&sb)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return sb.String()
}

func (t *Tree) dump(w *bufio.Writer, id NodeID) error {
	err := t.materialize(id)
	if err != nil {
		return err
	}

	for i := range t.node(id).annotations {
		s, err := t.refText(id, &t.node(id).annotations[i])
		if err != nil {
			return err
		}
		writeSymbol(w, s)
		w.WriteString("::")
	}

	n := t.node(id)
	if n.null {
		if n.typ == encoding.TypeNull {
			w.WriteString("null")
		} else {
			w.WriteString("null.")
			w.WriteString(n.typ.String())
		}
		return nil
	}

	switch n.typ {
	case encoding.TypeBool:
		w.WriteString(strconv.FormatBool(n.b))
	case encoding.TypePosInt:
		w.WriteString(strconv.FormatInt(n.i, 10))
	case encoding.TypeFloat:
		w.WriteString(formatFloat(n.f))
	case encoding.TypeString:
		w.WriteString(strconv.Quote(n.s))
	case encoding.TypeSymbol:
		s, err := t.refText(id, &n.sym)
		if err != nil {
			return err
		}
		writeSymbol(w, s)
	case encoding.TypeBlob:
		w.WriteString("{{")
		w.WriteString(base64.StdEncoding.EncodeToString(n.raw))
		w.WriteString("}}")
	case encoding.TypeClob:
		w.WriteString("{{")
		w.WriteString(strconv.Quote(string(n.raw)))
		w.WriteString("}}")
	case encoding.TypeDecimal, encoding.TypeTimestamp:
		w.WriteString("#")
		w.WriteString(n.typ.String())
		w.WriteString(":")
		w.WriteString(hex.EncodeToString(n.raw))
	case encoding.TypeList, encoding.TypeSexp, encoding.TypeStruct:
		return t.dumpContainer(w, id)
	}

	return nil
}

func (t *Tree) dumpContainer(w *bufio.Writer, id NodeID) error {
	open, sep, end := "[", ", ", "]"
	switch t.node(id).typ {
	case encoding.TypeSexp:
		open, sep, end = "(", " ", ")"
	case encoding.TypeStruct:
		open, end = "{", "}"
	}

	w.WriteString(open)
	for i := 0; i < len(t.node(id).children); i++ {
		if i > 0 {
			w.WriteString(sep)
		}

		c := t.node(id).children[i]
		if cn := t.node(c); cn.hasField {
			s, err := t.refText(c, &cn.field)
			if err != nil {
				return err
			}
			writeSymbol(w, s)
			w.WriteString(":")
		}

		err := t.dump(w, c)
		if err != nil {
			return err
		}
	}
	w.WriteString(end)
	return nil
}

// refText returns the text of ref, or its $id form when it has none.
func (t *Tree) refText(id NodeID, ref *symbolRef) (string, error) {
	s, err := t.resolve(id, ref)
	if err != nil {
		if ref.hasSID {
			return "$" + strconv.Itoa(ref.sid), nil
		}
		return "", err
	}
	return s, nil
}

func writeSymbol(w *bufio.Writer, s string) {
	if isIdentifier(s) {
		w.WriteString(s)
		return
	}

	w.WriteByte('\'')
	q := strconv.Quote(s)
	q = strings.ReplaceAll(q[1:len(q)-1], `\"`, `"`)
	w.WriteString(strings.ReplaceAll(q, "'", `\'`))
	w.WriteByte('\'')
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	switch s {
	case "null", "true", "false", "nan":
		return false
	}

	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, "e") {
		s += "e0"
	}
	return s
}
