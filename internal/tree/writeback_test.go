package tree_test

import (
	"bytes"
	"testing"

	"github.com/chaisql/ion/internal/symtab"
	"github.com/chaisql/ion/internal/tree"
	"github.com/stretchr/testify/require"
)

// sample returns {a:{b:1, c:"x"}}, [1, 2, 3], true.
func sample(t testing.TB) []tree.Value {
	inner := tree.NewStruct()
	require.NoError(t, inner.Put("b", tree.NewInt(1)))
	require.NoError(t, inner.Put("c", tree.NewString("x")))
	outer := tree.NewStruct()
	require.NoError(t, outer.Put("a", inner))

	list := tree.NewList()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, list.Append(tree.NewInt(i)))
	}

	return []tree.Value{outer, list, tree.NewBool(true)}
}

func index(t testing.TB, v tree.Value, path ...interface{}) tree.Value {
	t.Helper()

	for _, p := range path {
		var err error
		switch p := p.(type) {
		case int:
			v, err = v.Index(p)
		case string:
			var ok bool
			v, ok, err = v.Field(p)
			require.True(t, ok, "no field %q", p)
		}
		require.NoError(t, err)
	}
	return v
}

func encoded(t testing.TB, doc *tree.Tree, v tree.Value) []byte {
	t.Helper()

	pos, ok := v.Position()
	require.True(t, ok)
	return bytes.Clone(doc.Bytes()[pos.Offset:pos.NextOffset])
}

func TestIdempotentWriteBack(t *testing.T) {
	tbl := symtab.New()
	b := encode(t, tbl, sample(t)...)

	doc := load(t, b, tbl)

	// materialize part of the tree
	require.NoError(t, index(t, doc.At(0), "a", "b").Materialize())
	require.NoError(t, index(t, doc.At(1), 2).Materialize())

	delta, err := doc.WriteBack()
	require.NoError(t, err)
	require.Zero(t, delta)
	require.Equal(t, b, doc.Bytes())

	// same with nothing materialized
	doc = load(t, b, tbl)
	_, err = doc.WriteBack()
	require.NoError(t, err)
	require.Equal(t, b, doc.Bytes())
}

func TestDirtyPropagation(t *testing.T) {
	tbl := symtab.New()
	b := encode(t, tbl, sample(t)...)
	doc := load(t, b, tbl)

	outer := doc.At(0)
	inner := index(t, outer, "a")
	leaf := index(t, inner, "b")
	sibling := index(t, inner, "c")
	list := doc.At(1)
	listBytes := encoded(t, doc, list)
	siblingBytes := encoded(t, doc, sibling)

	require.NoError(t, leaf.SetInt(1000))

	require.True(t, leaf.IsDirty())
	require.True(t, inner.IsDirty())
	require.True(t, outer.IsDirty())
	require.False(t, sibling.IsDirty())
	require.False(t, list.IsDirty())
	_, ok := leaf.Position()
	require.False(t, ok)

	delta, err := doc.WriteBack()
	require.NoError(t, err)
	// 1 takes one byte, 1000 two
	require.Equal(t, 1, delta)

	require.False(t, outer.IsDirty())
	require.False(t, leaf.IsDirty())
	require.Equal(t, listBytes, encoded(t, doc, list))
	require.Equal(t, siblingBytes, encoded(t, doc, sibling))

	doc = load(t, bytes.Clone(doc.Bytes()), tbl)
	i, err := index(t, doc.At(0), "a", "b").Int()
	require.NoError(t, err)
	require.EqualValues(t, 1000, i)
	require.Equal(t, `{a:{b:1000, c:"x"}}`, doc.At(0).String())
	require.Equal(t, "[1, 2, 3]", doc.At(1).String())
}

func TestOffsetRepair(t *testing.T) {
	tbl := symtab.New()
	b := encode(t, tbl, sample(t)...)
	doc := load(t, b, tbl)

	list := doc.At(1)
	first := index(t, list, 0)
	second := index(t, list, 1)
	third := index(t, list, 2)
	last := doc.At(2)

	var before []int
	var content [][]byte
	for _, v := range []tree.Value{second, third, last} {
		pos, ok := v.Position()
		require.True(t, ok)
		before = append(before, pos.Offset)
		content = append(content, encoded(t, doc, v))
	}
	outerPos, ok := doc.At(0).Position()
	require.True(t, ok)

	// 1 is encoded in 2 bytes, 1<<40 in 7
	require.NoError(t, first.SetInt(1<<40))
	delta, err := doc.WriteBack()
	require.NoError(t, err)
	require.Equal(t, 5, delta)

	for i, v := range []tree.Value{second, third, last} {
		pos, ok := v.Position()
		require.True(t, ok)
		require.Equal(t, before[i]+delta, pos.Offset)
		require.Equal(t, content[i], encoded(t, doc, v))
	}

	// values before the change do not move
	pos, ok := doc.At(0).Position()
	require.True(t, ok)
	require.Equal(t, outerPos, pos)

	require.Len(t, doc.Bytes(), len(b)+delta)
}

func TestGrowingHeader(t *testing.T) {
	tbl := symtab.New()
	b := encode(t, tbl, tree.NewString("short"), tree.NewInt(42))
	doc := load(t, b, tbl)

	// 13 bytes fit in the nibble, 20 do not
	require.NoError(t, doc.At(0).SetText("twenty bytes of text"))
	delta, err := doc.WriteBack()
	require.NoError(t, err)
	require.Equal(t, 16, delta)

	doc = load(t, bytes.Clone(doc.Bytes()), tbl)
	s, err := doc.At(0).Text()
	require.NoError(t, err)
	require.Equal(t, "twenty bytes of text", s)
	i, err := doc.At(1).Int()
	require.NoError(t, err)
	require.EqualValues(t, 42, i)
}

func TestRemoveTopLevel(t *testing.T) {
	tbl := symtab.New()
	b := encode(t, tbl, sample(t)...)
	doc := load(t, b, tbl)

	last := doc.At(2)
	lastBefore, ok := last.Position()
	require.True(t, ok)
	listLen := len(encoded(t, doc, doc.At(1)))

	removed, err := doc.Remove(1)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Count())

	// the bytes are gone right away
	lastAfter, ok := last.Position()
	require.True(t, ok)
	require.Equal(t, lastBefore.Offset-listLen, lastAfter.Offset)
	require.Len(t, doc.Bytes(), len(b)-listLen)

	// the removed value is still usable
	require.Equal(t, "[1, 2, 3]", removed.String())
	_, ok = removed.Position()
	require.False(t, ok)

	_, err = doc.WriteBack()
	require.NoError(t, err)
	doc = load(t, bytes.Clone(doc.Bytes()), tbl)
	require.Equal(t, 2, doc.Count())
	require.Equal(t, "true", doc.At(1).String())

	// and can be attached again
	require.NoError(t, doc.Insert(0, removed, false))
	bind(t, doc, 0, tbl)
	_, err = doc.WriteBack()
	require.NoError(t, err)
	doc = load(t, bytes.Clone(doc.Bytes()), tbl)
	require.Equal(t, "[1, 2, 3]", doc.At(0).String())
}

func TestNestedMoves(t *testing.T) {
	tbl := symtab.New()
	b := encode(t, tbl, sample(t)...)
	doc := load(t, b, tbl)

	// move c from the first value to the end of the list
	inner := index(t, doc.At(0), "a")
	c, err := inner.Remove(1)
	require.NoError(t, err)
	list := doc.At(1)
	require.NoError(t, list.Append(c))

	// and the whole inner struct in front of the list
	outer := doc.At(0)
	removed, err := outer.Remove(0)
	require.NoError(t, err)
	require.NoError(t, list.Insert(0, removed))

	bind(t, doc, 1, tbl)
	_, err = doc.WriteBack()
	require.NoError(t, err)

	doc = load(t, bytes.Clone(doc.Bytes()), tbl)
	require.Equal(t, "{}", doc.At(0).String())
	require.Equal(t, `[{b:1}, 1, 2, 3, "x"]`, doc.At(1).String())
	require.Equal(t, "true", doc.At(2).String())
}
