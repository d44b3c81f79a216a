package grunt

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// GroupKey is a grouping key extracted from a Row during the shuffle phase
// of group and join. A null key is tagged with the id of the relation it
// came from, so that null keys from the same relation group together while
// never colliding with another relation's nulls or with a real value.
type GroupKey struct {
	Null     bool
	Relation string
	Value    interface{}
}

// KeyOf produces the GroupKey for a key value extracted from a row of the
// given relation. A nil value yields a relation-tagged null key.
func KeyOf(relation string, value interface{}) GroupKey {
	if value == nil {
		return GroupKey{Null: true, Relation: relation}
	}
	return GroupKey{Value: value}
}

// Unwrap returns the underlying key value, mapping a null key back to nil
// for emission downstream
func (k GroupKey) Unwrap() interface{} {
	if k.Null {
		return nil
	}
	return k.Value
}

// Hash returns a partitioning hash for this key. Equal keys hash equally;
// colliding buckets are resolved with Equal.
func (k GroupKey) Hash() uint64 {
	var d xxhash.Digest
	d.Reset()
	if k.Null {
		d.WriteString("\x00null\x00")
		d.WriteString(k.Relation)
		return d.Sum64()
	}
	d.WriteString(k.canonical())
	return d.Sum64()
}

// Equal returns true iff both keys partition together. Values compare by
// the same canonical form Hash digests, so equal keys can never split
// across hash buckets.
func (k GroupKey) Equal(other GroupKey) bool {
	if k.Null != other.Null {
		return false
	}
	if k.Null {
		return k.Relation == other.Relation
	}
	return k.canonical() == other.canonical()
}

// canonical is the type-tagged printed form a key value hashes and compares
// by. fmt prints map keys in sorted order, so composite values canonicalize
// independently of construction order.
func (k GroupKey) canonical() string {
	return fmt.Sprintf("%T\x00%#v", k.Value, k.Value)
}

// String returns a string representation of this key
func (k GroupKey) String() string {
	if k.Null {
		return fmt.Sprintf("null(%s)", k.Relation)
	}
	return fmt.Sprintf("%v", k.Value)
}
