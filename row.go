package grunt

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Row is an ordered mapping from field identifiers to values. Values are
// arbitrary scalars or nested collections ([]interface{}). Rows are
// immutable by convention: every mutator returns a fresh Row, so operators
// downstream of a shared stream never observe each other's changes.
type Row struct {
	fields []string
	values map[string]interface{}
}

// NewRow produces an empty Row
func NewRow() *Row {
	return &Row{values: make(map[string]interface{})}
}

// Fields returns the field identifiers of this Row, in insertion order
func (r *Row) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields in this Row
func (r *Row) Len() int {
	return len(r.fields)
}

// Get returns the value of the given field, if it exists
func (r *Row) Get(field string) (interface{}, bool) {
	v, ok := r.values[field]
	return v, ok
}

// With returns a copy of this Row with the given field set. Setting an
// existing field replaces its value without changing its position.
func (r *Row) With(field string, value interface{}) *Row {
	next := r.clone()
	if _, ok := next.values[field]; !ok {
		next.fields = append(next.fields, field)
	}
	next.values[field] = value
	return next
}

// Without returns a copy of this Row with the given field removed. Removing
// an absent field is a no-op.
func (r *Row) Without(field string) *Row {
	if _, ok := r.values[field]; !ok {
		return r
	}
	next := NewRow()
	for _, f := range r.fields {
		if f == field {
			continue
		}
		next.fields = append(next.fields, f)
		next.values[f] = r.values[f]
	}
	return next
}

// Merge returns a copy of this Row extended with every field of other.
// Fields present in both take other's value.
func (r *Row) Merge(other *Row) *Row {
	next := r.clone()
	for _, f := range other.fields {
		if _, ok := next.values[f]; !ok {
			next.fields = append(next.fields, f)
		}
		next.values[f] = other.values[f]
	}
	return next
}

// Equal returns true iff both Rows contain the same fields with deeply-equal
// values. Field order does not participate in equality.
func (r *Row) Equal(other *Row) bool {
	if other == nil || len(r.fields) != len(other.fields) {
		return false
	}
	for f, v := range r.values {
		ov, ok := other.values[f]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// CanonicalString returns a deterministic string form of this Row, with
// fields in sorted order. Two Rows are Equal iff their canonical strings
// match, which makes it usable as a set key for distinct.
func (r *Row) CanonicalString() string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	sort.Strings(fields)
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%#v", f, r.values[f])
	}
	b.WriteByte('}')
	return b.String()
}

// String returns a string representation of this Row in field order
func (r *Row) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", f, r.values[f])
	}
	b.WriteByte('}')
	return b.String()
}

func (r *Row) clone() *Row {
	next := &Row{
		fields: make([]string, len(r.fields)),
		values: make(map[string]interface{}, len(r.values)),
	}
	copy(next.fields, r.fields)
	for f, v := range r.values {
		next.values[f] = v
	}
	return next
}

// Qualify returns the field identifier for name scoped to the output schema
// of the node with the given id
func Qualify(id string, name string) string {
	return id + "/" + name
}

// BaseName strips the node qualifier from a field identifier, if present
func BaseName(field string) string {
	if i := strings.LastIndexByte(field, '/'); i >= 0 {
		return field[i+1:]
	}
	return field
}

// RelabelRow requalifies every field of row to the output schema of the node
// with the given id, so downstream consumers see a fresh schema version
// whenever an operator reshapes its output
func RelabelRow(row *Row, id string) *Row {
	next := NewRow()
	for _, f := range row.fields {
		nf := Qualify(id, BaseName(f))
		if _, ok := next.values[nf]; !ok {
			next.fields = append(next.fields, nf)
		}
		next.values[nf] = row.values[f]
	}
	return next
}
