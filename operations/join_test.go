package operations_test

import (
	"context"
	"testing"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/operations"
	"github.com/go-grunt/grunt/stream"
	gtesting "github.com/go-grunt/grunt/testing"
	"github.com/stretchr/testify/require"
)

func joinRelations(bRows []*grunt.Row, bRequired bool) []operations.Relation {
	return []operations.Relation{
		{
			Ancestor: "a",
			Source:   stream.FromRows(gtesting.Row("a/k", 1, "a/v", "a")),
			KeyField: "a/k",
			Required: true,
		},
		{
			Ancestor: "b",
			Source:   stream.FromRows(bRows...),
			KeyField: "b/k",
			Required: bRequired,
		},
	}
}

func pairs(t *testing.T, rows []*grunt.Row) map[[2]interface{}]int {
	out := make(map[[2]interface{}]int)
	for _, row := range rows {
		av, _ := row.Get("a/v")
		bv, _ := row.Get("b/v")
		out[[2]interface{}{av, bv}]++
	}
	return out
}

func TestJoinEmitsCrossProduct(t *testing.T) {
	bRows := []*grunt.Row{
		gtesting.Row("b/k", 1, "b/v", "x"),
		gtesting.Row("b/k", 1, "b/v", "y"),
	}
	rows, err := stream.Collect(context.Background(), operations.Join("j", joinRelations(bRows, true)))
	require.Nil(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, map[[2]interface{}]int{
		{"a", "x"}: 1,
		{"a", "y"}: 1,
	}, pairs(t, rows))
}

func TestJoinRequiredMissRemovesKey(t *testing.T) {
	bRows := []*grunt.Row{gtesting.Row("b/k", 9, "b/v", "x")}
	rows, err := stream.Collect(context.Background(), operations.Join("j", joinRelations(bRows, true)))
	require.Nil(t, err)
	require.Len(t, rows, 0)
}

func TestJoinOptionalMissEmitsRowWithFieldsAbsent(t *testing.T) {
	bRows := []*grunt.Row{gtesting.Row("b/k", 9, "b/v", "x")}
	rows, err := stream.Collect(context.Background(), operations.Join("j", joinRelations(bRows, false)))
	require.Nil(t, err)
	// key 1 appears with the b side absent; key 9 is dropped because a is required
	require.Len(t, rows, 1)
	av, ok := rows[0].Get("a/v")
	require.True(t, ok)
	require.Equal(t, "a", av)
	_, ok = rows[0].Get("b/v")
	require.False(t, ok)
	_, ok = rows[0].Get("b/k")
	require.False(t, ok)
}

func TestJoinCrossProductOverThreeRelations(t *testing.T) {
	relations := []operations.Relation{
		{
			Ancestor: "a",
			Source: stream.FromRows(
				gtesting.Row("a/k", 1, "a/v", "a1"),
				gtesting.Row("a/k", 1, "a/v", "a2"),
			),
			KeyField: "a/k",
			Required: true,
		},
		{
			Ancestor: "b",
			Source: stream.FromRows(
				gtesting.Row("b/k", 1, "b/v", "b1"),
				gtesting.Row("b/k", 1, "b/v", "b2"),
			),
			KeyField: "b/k",
			Required: true,
		},
		{
			Ancestor: "c",
			Source: stream.FromRows(
				gtesting.Row("c/k", 1, "c/v", "c1"),
			),
			KeyField: "c/k",
			Required: true,
		},
	}
	rows, err := stream.Collect(context.Background(), operations.Join("j", relations))
	require.Nil(t, err)
	require.Len(t, rows, 4) // 2 x 2 x 1 combinations
	for _, row := range rows {
		require.Equal(t, 6, row.Len())
	}
}

func TestJoinNullKeysNeverMatch(t *testing.T) {
	relations := []operations.Relation{
		{
			Ancestor: "a",
			Source:   stream.FromRows(gtesting.Row("a/k", nil, "a/v", "a")),
			KeyField: "a/k",
			Required: true,
		},
		{
			Ancestor: "b",
			Source:   stream.FromRows(gtesting.Row("b/k", nil, "b/v", "x")),
			KeyField: "b/k",
			Required: true,
		},
	}
	rows, err := stream.Collect(context.Background(), operations.Join("j", relations))
	require.Nil(t, err)
	require.Len(t, rows, 0)
}
