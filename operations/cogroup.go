package operations

import (
	"context"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/stream"
)

// CoGroup groups N ancestors by their declared keys in three phases. The
// map phase extracts each row's key (null keys are tagged with the
// relation so different relations' nulls never collide) and flattens the
// row's non-key fields into tagged {relation, key, field, value} tuples.
// The shuffle phase merges every relation's tuples into one stream and
// partitions it by key. The reduce phase assembles one output row per key:
// the key (nulls reversed back to nil) under the node's "group" field plus
// one sequence-valued field, in arrival order, per distinct contributing
// field. A key missed by a required relation is dropped; an optional
// relation contributes empty sequences for its fields.
func CoGroup(id string, relations []Relation) stream.Source {
	return func(ctx context.Context, emit stream.EmitFunc) error {
		registry := newFieldRegistry()
		mapped := make([]stream.Source, len(relations))
		tags := make([]string, len(relations))
		for i, rel := range relations {
			rel := rel
			tag := relationTag(i, rel.Ancestor)
			tags[i] = tag
			mapped[i] = stream.FlatMap(rel.Source, func(row *grunt.Row) ([]*grunt.Row, error) {
				keyVal, _ := row.Get(rel.KeyField)
				key := grunt.KeyOf(tag, keyVal)
				var out []*grunt.Row
				for _, f := range row.Fields() {
					if f == rel.KeyField {
						continue
					}
					v, _ := row.Get(f)
					registry.record(tag, f)
					out = append(out, grunt.NewRow().
						With(tagRelation, tag).
						With(tagKey, key).
						With(tagField, f).
						With(tagValue, v))
				}
				return out, nil
			})
		}
		grouped := stream.GroupBy(stream.Merge(mapped...), tupleKey)
		return grouped(ctx, func(key grunt.GroupKey, tuples stream.Source) error {
			seqs := make(map[string][]interface{})
			present := make(map[string]bool)
			if err := tuples(ctx, func(t *grunt.Row) error {
				rel, _ := t.Get(tagRelation)
				field, _ := t.Get(tagField)
				value, _ := t.Get(tagValue)
				present[rel.(string)] = true
				f := field.(string)
				seqs[f] = append(seqs[f], value)
				return nil
			}); err != nil {
				return err
			}
			for i, rel := range relations {
				if rel.Required && !present[tags[i]] {
					return nil // inner semantics: the key is dropped
				}
			}
			out := grunt.NewRow().With(grunt.Qualify(id, "group"), key.Unwrap())
			for i := range relations {
				for _, f := range registry.fields(tags[i]) {
					seq := seqs[f]
					if seq == nil {
						seq = []interface{}{}
					}
					out = out.With(f, seq)
				}
			}
			return emit(out)
		})
	}
}
