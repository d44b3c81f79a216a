package operations

import (
	"context"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/stream"
	"golang.org/x/sync/errgroup"
)

// foldSubdivisions is how many chunks a fold's buffered sequence is split
// into for parallel reduction
const foldSubdivisions = 4

// Reduce applies the extraction to every Row and, if the input was
// non-empty, emits exactly one Row holding the full value sequence in
// arrival order under the reduce node's output field. An empty input emits
// nothing, not a row with an empty sequence.
func Reduce(id string, up stream.Source, extract grunt.ExtractOperation, field string) stream.Source {
	safe := SafeExtractOperation("reduce", extract)
	return stream.Into(up, func(rows []*grunt.Row) ([]*grunt.Row, error) {
		if len(rows) == 0 {
			return nil, nil
		}
		seq := make([]interface{}, 0, len(rows))
		for _, row := range rows {
			v, err := safe(row)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return []*grunt.Row{grunt.NewRow().With(grunt.Qualify(id, field), seq)}, nil
	})
}

// Fold buffers the upstream, extracts one value per Row, and folds the
// sequence through the three-stage Fold: Pre over the full sequence, a
// parallel Init/Reduce pass over subdivisions of it, Combine over the
// per-subdivision results and Post over the combined value. Exactly one
// Row is emitted, holding the result under the fold node's output field.
func Fold(id string, up stream.Source, extract grunt.ExtractOperation, fold grunt.Fold, field string) stream.Source {
	safe := SafeExtractOperation("fold", extract)
	return func(ctx context.Context, emit stream.EmitFunc) error {
		var values []interface{}
		if err := up(ctx, func(row *grunt.Row) error {
			v, err := safe(row)
			if err != nil {
				return err
			}
			values = append(values, v)
			return nil
		}); err != nil {
			return err
		}
		result, err := foldStages(ctx, fold, values)
		if err != nil {
			return err
		}
		return emit(grunt.NewRow().With(grunt.Qualify(id, field), result))
	}
}

// foldStages runs Pre, the subdivided combine and Post over the buffered
// sequence, recovering panics from any stage into a TransformError. The
// per-subdivision Reduce goroutines recover on their own.
func foldStages(ctx context.Context, fold grunt.Fold, values []interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, gerrors.TransformError{Op: "fold", Cause: recovered(r)}
		}
	}()
	if fold.Pre != nil {
		values = fold.Pre(values)
	}
	result, err = combine(ctx, fold, values)
	if err != nil {
		return nil, err
	}
	if fold.Post != nil {
		result = fold.Post(result)
	}
	return result, nil
}

// combine reduces each subdivision of values on its own goroutine, then
// merges the partial results with the fold's combining function. Combine
// must be associative and order-independent for the result to be stable
// across subdivisions.
func combine(ctx context.Context, fold grunt.Fold, values []interface{}) (interface{}, error) {
	n := foldSubdivisions
	if len(values) < n {
		n = len(values)
	}
	if n == 0 {
		return fold.Init(), nil
	}
	size := (len(values) + n - 1) / n
	partials := make([]interface{}, n)
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		lo, hi := i*size, (i+1)*size
		if lo > len(values) {
			lo = len(values)
		}
		if hi > len(values) {
			hi = len(values)
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = gerrors.TransformError{Op: "fold", Cause: recovered(r)}
				}
			}()
			acc := fold.Init()
			for _, v := range values[lo:hi] {
				acc, err = fold.Reduce(acc, v)
				if err != nil {
					return gerrors.TransformError{Op: "fold", Cause: err}
				}
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result := partials[0]
	for _, p := range partials[1:] {
		merged, err := fold.Combine(result, p)
		if err != nil {
			return nil, gerrors.TransformError{Op: "fold", Cause: err}
		}
		result = merged
	}
	return result, nil
}
