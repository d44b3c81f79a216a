package operations

import (
	"context"
	"io"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/stream"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadBuffer is the capacity of the channel bridging a load node's
// worker into the pipeline; it is the backpressure bound on the reader
const DefaultLoadBuffer = 64

// Load produces the Rows of a load node. The Loader's locations are
// iterated in order on a dedicated worker goroutine, each reader opened and
// fully drained before the next, with cancellation checked before every
// location and every row. Rows cross back into the pipeline through a
// bounded channel, so a slow consumer throttles the worker instead of
// growing memory. Output fields are requalified to the load node's id.
func Load(id string, loader grunt.Loader, buffer int) stream.Source {
	if buffer <= 0 {
		buffer = DefaultLoadBuffer
	}
	return func(ctx context.Context, emit stream.EmitFunc) error {
		rows := make(chan *grunt.Row, buffer)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer close(rows)
			locations, err := loader.Locations()
			if err != nil {
				return gerrors.SourceIOError{Cause: err}
			}
			for _, loc := range locations {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := drainLocation(gctx, loader, loc, rows); err != nil {
					return err
				}
			}
			return nil
		})
		g.Go(func() error {
			for row := range rows {
				if err := emit(grunt.RelabelRow(row, id)); err != nil {
					return err
				}
			}
			return nil
		})
		return g.Wait()
	}
}

func drainLocation(ctx context.Context, loader grunt.Loader, loc string, rows chan<- *grunt.Row) (err error) {
	reader, err := loader.InitReader(loc)
	if err != nil {
		return gerrors.SourceIOError{Location: loc, Cause: err}
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			err = multierror.Append(err, gerrors.SourceIOError{Location: loc, Cause: cerr}).ErrorOrNil()
		}
	}()
	for {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		row, rerr := reader.Read()
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return gerrors.SourceIOError{Location: loc, Cause: rerr}
		}
		select {
		case rows <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
