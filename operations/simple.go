package operations

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/stream"
)

// Filter retains the Rows the predicate accepts
func Filter(up stream.Source, fn grunt.FilterOperation) stream.Source {
	return stream.Filter(up, SafeFilterOperation(fn))
}

// Generate maps each input Row to 0..n output Rows
func Generate(up stream.Source, fn grunt.FlatMapOperation) stream.Source {
	return stream.FlatMap(up, SafeFlatMapOperation(fn))
}

// Distinct suppresses duplicate Rows by full equality, preserving the
// first-seen instance and the arrival order of non-duplicates, and
// requalifies the surviving Rows to the distinct node's schema
func Distinct(id string, up stream.Source) stream.Source {
	return relabel(id, stream.Distinct(up))
}

// Union interleaves N ancestors with no deterministic cross-branch
// ordering, propagating the first error from any source, and requalifies
// the merged Rows to the union node's schema
func Union(id string, ups ...stream.Source) stream.Source {
	return relabel(id, stream.Merge(ups...))
}

// Limit emits at most the first n Rows in arrival order; n <= 0 yields an
// empty stream
func Limit(up stream.Source, n int) stream.Source {
	return stream.Take(up, n)
}

// Sample includes each Row independently with probability p. A non-nil seed
// makes the draw reproducible; otherwise each run draws from a fresh
// time-seeded source.
func Sample(up stream.Source, p float64, seed *int64) stream.Source {
	return func(ctx context.Context, emit stream.EmitFunc) error {
		var rng *rand.Rand
		if seed != nil {
			rng = rand.New(rand.NewSource(*seed))
		} else {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return up(ctx, func(row *grunt.Row) error {
			if rng.Float64() >= p {
				return nil
			}
			return emit(row)
		})
	}
}

// Rank assigns a zero-based sequential index to each Row in arrival order,
// stored under the rank node's reserved "index" field
func Rank(id string, up stream.Source) stream.Source {
	return func(ctx context.Context, emit stream.EmitFunc) error {
		next := 0
		return up(ctx, func(row *grunt.Row) error {
			out := grunt.RelabelRow(row, id).With(grunt.Qualify(id, "index"), next)
			next++
			return emit(out)
		})
	}
}

// Script merges the rows of a composite node's children, so a multi-sink
// script can be driven through a single terminal node
func Script(ups ...stream.Source) stream.Source {
	return stream.Merge(ups...)
}

func relabel(id string, up stream.Source) stream.Source {
	return stream.Map(up, func(row *grunt.Row) (*grunt.Row, error) {
		return grunt.RelabelRow(row, id), nil
	})
}
