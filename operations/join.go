package operations

import (
	"context"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/stream"
)

// Join joins N ancestors by their declared keys using the same three-phase
// shuffle as CoGroup, but assembles a flat cross product instead of nested
// sequences. The map phase tags each full row with {relation, key}; the
// shuffle phase merges and partitions by key; the reduce phase collects
// each relation's matching rows per key and emits every combination formed
// by picking exactly one row from each relation's set. A key missed by a
// required relation is dropped (the cross product over an empty set is
// empty); a key missed by an optional relation contributes a single row
// with that relation's fields absent, the outer-join miss. Ordering of
// cross-product combinations is unspecified.
func Join(id string, relations []Relation) stream.Source {
	return func(ctx context.Context, emit stream.EmitFunc) error {
		mapped := make([]stream.Source, len(relations))
		tags := make([]string, len(relations))
		for i, rel := range relations {
			rel := rel
			tag := relationTag(i, rel.Ancestor)
			tags[i] = tag
			mapped[i] = stream.Map(rel.Source, func(row *grunt.Row) (*grunt.Row, error) {
				keyVal, _ := row.Get(rel.KeyField)
				return grunt.NewRow().
					With(tagRelation, tag).
					With(tagKey, grunt.KeyOf(tag, keyVal)).
					With(tagRow, row), nil
			})
		}
		grouped := stream.GroupBy(stream.Merge(mapped...), tupleKey)
		missRow := grunt.NewRow()
		return grouped(ctx, func(key grunt.GroupKey, tuples stream.Source) error {
			matches := make(map[string][]*grunt.Row)
			if err := tuples(ctx, func(t *grunt.Row) error {
				rel, _ := t.Get(tagRelation)
				row, _ := t.Get(tagRow)
				tag := rel.(string)
				matches[tag] = append(matches[tag], row.(*grunt.Row))
				return nil
			}); err != nil {
				return err
			}
			sets := make([][]*grunt.Row, len(relations))
			for i, rel := range relations {
				rows := matches[tags[i]]
				if len(rows) == 0 {
					if rel.Required {
						return nil // the key is removed entirely
					}
					rows = []*grunt.Row{missRow}
				}
				sets[i] = rows
			}
			picks := make([]*grunt.Row, len(sets))
			var product func(i int) error
			product = func(i int) error {
				if i == len(sets) {
					out := grunt.NewRow()
					for _, p := range picks {
						out = out.Merge(p)
					}
					return emit(out)
				}
				for _, row := range sets[i] {
					picks[i] = row
					if err := product(i + 1); err != nil {
						return err
					}
				}
				return nil
			}
			return product(0)
		})
	}
}
