package operations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/operations"
	"github.com/go-grunt/grunt/stream"
	gtesting "github.com/go-grunt/grunt/testing"
	"github.com/stretchr/testify/require"
)

func TestSortAscending(t *testing.T) {
	up := stream.FromRows(
		gtesting.Row("a/v", "c", "a/key", 3),
		gtesting.Row("a/v", "a", "a/key", 1),
		gtesting.Row("a/v", "b", "a/key", 2),
	)
	rows, err := stream.Collect(context.Background(), operations.Sort("s", up, "a/key", grunt.CompareValues))
	require.Nil(t, err)
	require.Equal(t, []interface{}{"a", "b", "c"}, fieldValues(t, rows, "s/v"))
	// the sort key field is stripped
	for _, row := range rows {
		require.Equal(t, []string{"s/v"}, row.Fields())
	}
}

func TestSortDescending(t *testing.T) {
	up := stream.FromRows(
		gtesting.Row("a/v", "c", "a/key", 3),
		gtesting.Row("a/v", "a", "a/key", 1),
		gtesting.Row("a/v", "b", "a/key", 2),
	)
	rows, err := stream.Collect(context.Background(), operations.Sort("s", up, "a/key", grunt.Descending(grunt.CompareValues)))
	require.Nil(t, err)
	require.Equal(t, []interface{}{"c", "b", "a"}, fieldValues(t, rows, "s/v"))
}

func TestSortIsStableAndAPermutation(t *testing.T) {
	up := stream.FromRows(
		gtesting.Row("a/v", "first", "a/key", 1),
		gtesting.Row("a/v", "second", "a/key", 1),
		gtesting.Row("a/v", "zeroth", "a/key", 0),
		gtesting.Row("a/v", "third", "a/key", 1),
	)
	rows, err := stream.Collect(context.Background(), operations.Sort("s", up, "a/key", grunt.CompareValues))
	require.Nil(t, err)
	require.Equal(t, []interface{}{"zeroth", "first", "second", "third"}, fieldValues(t, rows, "s/v"))
}

func TestSortMultiKey(t *testing.T) {
	cmp := grunt.Composed(grunt.CompareValues, grunt.Descending(grunt.CompareValues))
	up := stream.FromRows(
		gtesting.Row("a/v", 1, "a/key", []interface{}{"x", 1}),
		gtesting.Row("a/v", 2, "a/key", []interface{}{"x", 2}),
		gtesting.Row("a/v", 3, "a/key", []interface{}{"w", 0}),
	)
	rows, err := stream.Collect(context.Background(), operations.Sort("s", up, "a/key", cmp))
	require.Nil(t, err)
	require.Equal(t, []interface{}{3, 2, 1}, fieldValues(t, rows, "s/v"))
}

func TestSortSurfacesComparatorPanics(t *testing.T) {
	cmp := grunt.Comparator(func(a, b interface{}) int {
		panic("incomparable sort keys")
	})
	up := stream.FromRows(
		gtesting.Row("a/v", 1, "a/key", 1),
		gtesting.Row("a/v", 2, "a/key", "two"),
	)
	_, err := stream.Collect(context.Background(), operations.Sort("s", up, "a/key", cmp))
	var te gerrors.TransformError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "sort", te.Op)
}
