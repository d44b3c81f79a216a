package operations

import (
	"context"

	"github.com/go-grunt/grunt"
	gerrors "github.com/go-grunt/grunt/errors"
	"github.com/go-grunt/grunt/stream"
	"github.com/tidwall/btree"
)

type sortItem struct {
	seq int
	key interface{}
	row *grunt.Row
}

// Sort buffers the entire upstream, orders it by the value of the
// precomputed sort key field under cmp, then emits the rows in order with
// the key field stripped and the schema requalified to the sort node.
// Ties preserve arrival order. The whole relation is held in memory, so
// Sort is unsuitable for unbounded streams.
func Sort(id string, up stream.Source, keyField string, cmp grunt.Comparator) stream.Source {
	return func(ctx context.Context, emit stream.EmitFunc) (err error) {
		// the comparator runs inside tree inserts and scans, so panics are
		// recovered around those rather than at the comparator call site
		defer func() {
			if r := recover(); r != nil {
				err = gerrors.TransformError{Op: "sort", Cause: recovered(r)}
			}
		}()
		less := func(a, b sortItem) bool {
			if c := cmp(a.key, b.key); c != 0 {
				return c < 0
			}
			return a.seq < b.seq
		}
		tr := btree.NewBTreeG[sortItem](less)
		insert := func(it sortItem) (err error) {
			// recovered here so the panic never unwinds through the
			// upstream's frames, which would skip its unsubscribe path
			defer func() {
				if r := recover(); r != nil {
					err = gerrors.TransformError{Op: "sort", Row: it.row.String(), Cause: recovered(r)}
				}
			}()
			tr.Set(it)
			return nil
		}
		seq := 0
		if err := up(ctx, func(row *grunt.Row) error {
			key, _ := row.Get(keyField)
			if err := insert(sortItem{seq: seq, key: key, row: row}); err != nil {
				return err
			}
			seq++
			return nil
		}); err != nil {
			return err
		}
		var scanErr error
		tr.Scan(func(it sortItem) bool {
			if err := ctx.Err(); err != nil {
				scanErr = err
				return false
			}
			if err := emit(grunt.RelabelRow(it.row.Without(keyField), id)); err != nil {
				scanErr = err
				return false
			}
			return true
		})
		return scanErr
	}
}
