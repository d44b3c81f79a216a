package stream

import (
	"context"

	"github.com/go-grunt/grunt"
)

// KeyFunc extracts the grouping key from a Row
type KeyFunc func(row *grunt.Row) (grunt.GroupKey, error)

// GroupedSource presents the key partitions of a stream: each is invoked
// once per distinct key, in first-seen order, with a replayable sub-Source
// over that key's Rows in arrival order
type GroupedSource func(ctx context.Context, each func(key grunt.GroupKey, rows Source) error) error

type bucket struct {
	key  grunt.GroupKey
	rows []*grunt.Row
}

// GroupBy partitions up by the key extracted from each Row. The whole
// upstream is buffered before the first partition is observed; partitions
// themselves are handed out lazily. Keys are bucketed by hash, with
// collisions resolved by key equality.
func GroupBy(up Source, keyfn KeyFunc) GroupedSource {
	return func(ctx context.Context, each func(key grunt.GroupKey, rows Source) error) error {
		buckets := make(map[uint64][]*bucket)
		var order []*bucket
		err := up(ctx, func(row *grunt.Row) error {
			key, err := keyfn(row)
			if err != nil {
				return err
			}
			h := key.Hash()
			for _, b := range buckets[h] {
				if b.key.Equal(key) {
					b.rows = append(b.rows, row)
					return nil
				}
			}
			b := &bucket{key: key, rows: []*grunt.Row{row}}
			buckets[h] = append(buckets[h], b)
			order = append(order, b)
			return nil
		})
		if err != nil {
			return err
		}
		for _, b := range order {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := each(b.key, FromRows(b.rows...)); err != nil {
				return err
			}
		}
		return nil
	}
}
