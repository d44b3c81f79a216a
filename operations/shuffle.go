package operations

import (
	"fmt"
	"sync"

	"github.com/go-grunt/grunt"
	"github.com/go-grunt/grunt/stream"
)

// Relation binds one ancestor stream into a group or join: the field its
// grouping key was projected into by the planner, and whether the relation
// participates as required (inner) or optional (outer)
type Relation struct {
	Ancestor string
	Source   stream.Source
	KeyField string
	Required bool
}

// Reserved fields of the tagged tuples flowing through the internal shuffle
// stream. The NUL prefix keeps them out of any user schema.
const (
	tagRelation = "\x00relation"
	tagKey      = "\x00key"
	tagField    = "\x00field"
	tagValue    = "\x00value"
	tagRow      = "\x00row"
)

// relationTag identifies one relation instance within a group or join. The
// positional index keeps two instances of the same ancestor (a self-join)
// distinct, including their null grouping keys.
func relationTag(position int, ancestor string) string {
	return fmt.Sprintf("%d:%s", position, ancestor)
}

// tupleKey reads the shuffle partitioning key off a tagged tuple
func tupleKey(row *grunt.Row) (grunt.GroupKey, error) {
	v, ok := row.Get(tagKey)
	if !ok {
		return grunt.GroupKey{}, fmt.Errorf("shuffle tuple missing key tag: %s", row)
	}
	key, ok := v.(grunt.GroupKey)
	if !ok {
		return grunt.GroupKey{}, fmt.Errorf("shuffle tuple key tag is not a GroupKey: %s", row)
	}
	return key, nil
}

// fieldRegistry records, per relation instance, the fields observed during
// the map phase, in first-seen order. The map phase runs on the merged
// relations' goroutines, so access is serialized. By the time the reduce
// phase runs the upstream has completed and the registry is final.
type fieldRegistry struct {
	mu    sync.Mutex
	order map[string][]string
	seen  map[string]map[string]struct{}
}

func newFieldRegistry() *fieldRegistry {
	return &fieldRegistry{
		order: make(map[string][]string),
		seen:  make(map[string]map[string]struct{}),
	}
}

func (r *fieldRegistry) record(relation string, field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fields, ok := r.seen[relation]
	if !ok {
		fields = make(map[string]struct{})
		r.seen[relation] = fields
	}
	if _, ok := fields[field]; ok {
		return
	}
	fields[field] = struct{}{}
	r.order[relation] = append(r.order[relation], field)
}

func (r *fieldRegistry) fields(relation string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order[relation]
}
