package grunt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowIsImmutable(t *testing.T) {
	base := NewRow().With("a/k", 1).With("a/v", "x")
	next := base.With("a/v", "y").With("a/w", true)
	v, ok := base.Get("a/v")
	require.True(t, ok)
	require.Equal(t, "x", v)
	require.Equal(t, 2, base.Len())
	require.Equal(t, 3, next.Len())

	stripped := next.Without("a/k")
	require.Equal(t, 3, next.Len())
	require.Equal(t, []string{"a/v", "a/w"}, stripped.Fields())
}

func TestRowFieldOrder(t *testing.T) {
	row := NewRow().With("a/c", 3).With("a/a", 1).With("a/b", 2)
	require.Equal(t, []string{"a/c", "a/a", "a/b"}, row.Fields())
	// replacing a value keeps the field's position
	row = row.With("a/a", 10)
	require.Equal(t, []string{"a/c", "a/a", "a/b"}, row.Fields())
}

func TestRowEqualIgnoresFieldOrder(t *testing.T) {
	a := NewRow().With("x", 1).With("y", []interface{}{"p", "q"})
	b := NewRow().With("y", []interface{}{"p", "q"}).With("x", 1)
	require.True(t, a.Equal(b))
	require.Equal(t, a.CanonicalString(), b.CanonicalString())
	require.False(t, a.Equal(b.With("z", nil)))
}

func TestRowMerge(t *testing.T) {
	a := NewRow().With("a/k", 1)
	b := NewRow().With("b/k", 1).With("b/v", "x")
	merged := a.Merge(b)
	require.Equal(t, []string{"a/k", "b/k", "b/v"}, merged.Fields())
}

func TestQualifyAndRelabel(t *testing.T) {
	require.Equal(t, "n1/value", Qualify("n1", "value"))
	require.Equal(t, "value", BaseName("n1/value"))
	require.Equal(t, "value", BaseName("value"))

	row := NewRow().With("a/k", 1).With("v", "x")
	relabeled := RelabelRow(row, "b")
	require.Equal(t, []string{"b/k", "b/v"}, relabeled.Fields())
	v, ok := relabeled.Get("b/k")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestGroupKeyNullsAreRelationScoped(t *testing.T) {
	aNull := KeyOf("a", nil)
	aNull2 := KeyOf("a", nil)
	bNull := KeyOf("b", nil)
	require.True(t, aNull.Equal(aNull2))
	require.Equal(t, aNull.Hash(), aNull2.Hash())
	require.False(t, aNull.Equal(bNull))
	require.Nil(t, aNull.Unwrap())
}

func TestGroupKeyValuesCrossRelations(t *testing.T) {
	a := KeyOf("a", 7)
	b := KeyOf("b", 7)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, 7, a.Unwrap())
	require.False(t, a.Equal(KeyOf("a", 8)))
	require.False(t, a.Equal(KeyOf("a", nil)))
}

func TestGroupKeyCompositeValuesNeverSplitBuckets(t *testing.T) {
	// equal composite keys must agree on Hash as well as Equal, or one key
	// would surface as two groups
	left := make(map[string]int)
	left["a"] = 1
	left["b"] = 2
	right := make(map[string]int)
	right["b"] = 2
	right["a"] = 1
	require.True(t, KeyOf("r", left).Equal(KeyOf("s", right)))
	require.Equal(t, KeyOf("r", left).Hash(), KeyOf("s", right).Hash())

	x := KeyOf("r", []interface{}{1, "x"})
	y := KeyOf("r", []interface{}{1, "x"})
	require.True(t, x.Equal(y))
	require.Equal(t, x.Hash(), y.Hash())

	// values of different concrete types never partition together
	require.False(t, KeyOf("r", 1).Equal(KeyOf("r", int64(1))))
}

func TestComparators(t *testing.T) {
	require.True(t, CompareValues(1, 2) < 0)
	require.True(t, CompareValues(2.5, 2) > 0)
	require.Equal(t, 0, CompareValues(3, 3.0))
	require.True(t, CompareValues(nil, 0) < 0)
	require.True(t, CompareValues("a", "b") < 0)

	desc := Descending(CompareValues)
	require.True(t, desc(1, 2) > 0)

	multi := Composed(CompareValues, Descending(CompareValues))
	a := []interface{}{1, "x"}
	b := []interface{}{1, "y"}
	require.True(t, multi(a, b) > 0) // second key descends
	require.True(t, multi([]interface{}{0, "x"}, b) < 0)
}
