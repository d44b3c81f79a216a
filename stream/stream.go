// Package stream implements the push-based, cancellable Row streams which
// carry data between the nodes of a grunt plan, along with the multicast
// Publish handle that shares one stream's output across several consumers.
package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/go-grunt/grunt"
	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by an EmitFunc to tell a producer that its consumer
// has unsubscribed. Producers must stop delivering rows and unwind; the
// operator that initiated the stop (e.g. Take) converts it back into clean
// completion.
var ErrStopped = errors.New("stream consumer stopped")

// EmitFunc delivers one Row to a Source's consumer. A non-nil return stops
// the producer: ErrStopped means the consumer unsubscribed, anything else is
// a downstream failure to propagate.
type EmitFunc func(row *grunt.Row) error

// Source is a push-based stream of Rows: invoking it drives the stream,
// calling emit once per row, and returns nil on completion or the first
// error encountered. Sources must honor ctx cancellation between rows and
// around I/O, and must stop promptly when emit returns a non-nil error.
type Source func(ctx context.Context, emit EmitFunc) error

// Empty returns a Source which completes immediately
func Empty() Source {
	return func(ctx context.Context, emit EmitFunc) error {
		return ctx.Err()
	}
}

// FromRows returns a Source over a fixed set of Rows
func FromRows(rows ...*grunt.Row) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	}
}

// Map transforms each Row of up with fn
func Map(up Source, fn func(row *grunt.Row) (*grunt.Row, error)) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		return up(ctx, func(row *grunt.Row) error {
			next, err := fn(row)
			if err != nil {
				return err
			}
			return emit(next)
		})
	}
}

// Filter retains the Rows of up accepted by fn
func Filter(up Source, fn grunt.FilterOperation) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		return up(ctx, func(row *grunt.Row) error {
			keep, err := fn(row)
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
			return emit(row)
		})
	}
}

// FlatMap expands each Row of up into 0..n Rows with fn
func FlatMap(up Source, fn grunt.FlatMapOperation) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		return up(ctx, func(row *grunt.Row) error {
			out, err := fn(row)
			if err != nil {
				return err
			}
			for _, next := range out {
				if err := emit(next); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// Take passes through at most the first n Rows of up, then completes. The
// upstream is stopped cooperatively once the quota is reached. n <= 0 yields
// an empty stream but still subscribes and stops on the first row, so a
// shared upstream counting expected consumers observes the subscription.
func Take(up Source, n int) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		seen := 0
		err := up(ctx, func(row *grunt.Row) error {
			if seen >= n {
				return ErrStopped
			}
			if err := emit(row); err != nil {
				return err
			}
			seen++
			if seen >= n {
				return ErrStopped
			}
			return nil
		})
		if errors.Is(err, ErrStopped) {
			return nil
		}
		return err
	}
}

// Drain consumes up to completion while emitting nothing, so a branch can
// be driven for its side effects without contributing rows downstream
func Drain(up Source) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		return up(ctx, func(*grunt.Row) error { return nil })
	}
}

// Distinct suppresses duplicate Rows, keeping the first-seen instance and
// preserving the arrival order of non-duplicates
func Distinct(up Source) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		seen := make(map[string]struct{})
		return up(ctx, func(row *grunt.Row) error {
			key := row.CanonicalString()
			if _, ok := seen[key]; ok {
				return nil
			}
			seen[key] = struct{}{}
			return emit(row)
		})
	}
}

// Merge interleaves N Sources with no deterministic ordering across
// branches. The first error from any branch cancels the others and is
// returned.
func Merge(ups ...Source) Source {
	if len(ups) == 0 {
		return Empty()
	}
	if len(ups) == 1 {
		return ups[0]
	}
	return func(ctx context.Context, emit EmitFunc) error {
		g, gctx := errgroup.WithContext(ctx)
		var mu sync.Mutex
		for _, up := range ups {
			up := up
			g.Go(func() error {
				return up(gctx, func(row *grunt.Row) error {
					mu.Lock()
					defer mu.Unlock()
					if err := gctx.Err(); err != nil {
						return err
					}
					return emit(row)
				})
			})
		}
		return g.Wait()
	}
}

// Into buffers up until completion, then emits whatever Rows agg derives
// from the full buffered sequence
func Into(up Source, agg func(rows []*grunt.Row) ([]*grunt.Row, error)) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		var buf []*grunt.Row
		if err := up(ctx, func(row *grunt.Row) error {
			buf = append(buf, row)
			return nil
		}); err != nil {
			return err
		}
		out, err := agg(buf)
		if err != nil {
			return err
		}
		for _, row := range out {
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	}
}

// Collect drives a Source to completion, buffering every Row in arrival
// order. This is the terminal operation the evaluate driver blocks on.
func Collect(ctx context.Context, up Source) ([]*grunt.Row, error) {
	var out []*grunt.Row
	err := up(ctx, func(row *grunt.Row) error {
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
