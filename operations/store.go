package operations

import (
	"context"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/stream"
	"github.com/hashicorp/go-multierror"
)

// Store writes the upstream's Rows to the Storer while mirroring them
// downstream, so a store node chains like any other node. The writer is
// realized lazily on the first row, so a sink with zero input rows emits no
// open/close side effects, and is closed exactly once on upstream
// completion, error or cancellation.
func Store(up stream.Source, storer grunt.Storer) stream.Source {
	return func(ctx context.Context, emit stream.EmitFunc) error {
		var writer grunt.RowWriter
		err := up(ctx, func(row *grunt.Row) error {
			if writer == nil {
				w, werr := storer.InitWriter()
				if werr != nil {
					return gerrors.SinkIOError{Cause: werr}
				}
				writer = w
			}
			if werr := writer.Write(row); werr != nil {
				return gerrors.SinkIOError{Cause: werr}
			}
			return emit(row)
		})
		if writer != nil {
			if cerr := writer.Close(); cerr != nil {
				err = multierror.Append(err, gerrors.SinkIOError{Cause: cerr}).ErrorOrNil()
			}
		}
		return err
	}
}
