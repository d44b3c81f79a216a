package grunt

import "fmt"

// FilterOperation - A generic function for determining whether or not a Row should be retained
type FilterOperation func(row *Row) (bool, error)

// FlatMapOperation - A generic function for turning a Row into 0..n Rows
type FlatMapOperation func(row *Row) ([]*Row, error)

// ExtractOperation - A generic function for deriving a single value from a Row
type ExtractOperation func(row *Row) (interface{}, error)

// Comparator - A generic ordering over key values, returning a negative
// number, zero, or a positive number when a sorts before, with, or after b
type Comparator func(a interface{}, b interface{}) int

// Descending inverts a Comparator
func Descending(cmp Comparator) Comparator {
	return func(a interface{}, b interface{}) int {
		return -cmp(a, b)
	}
}

// Composed combines Comparators for multi-key sorting: both values must be
// []interface{} key tuples, compared element-wise by the matching Comparator
func Composed(cmps ...Comparator) Comparator {
	return func(a interface{}, b interface{}) int {
		as, _ := a.([]interface{})
		bs, _ := b.([]interface{})
		for i, cmp := range cmps {
			if i >= len(as) || i >= len(bs) {
				break
			}
			if c := cmp(as[i], bs[i]); c != 0 {
				return c
			}
		}
		return 0
	}
}

// CompareValues is the natural Comparator: nils sort first, then numbers,
// then strings, then everything else by string form
func CompareValues(a interface{}, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok {
		as = stringify(a)
	}
	if !bok {
		bs = stringify(b)
	}
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Fold is a three-stage aggregation: Pre transforms the full buffered value
// sequence, Init/Reduce fold each subdivision of it, Combine merges the
// per-subdivision results, and Post transforms the combined value. Combine
// must be associative and order-independent for the result to be
// deterministic under parallel subdivision; this is a documented contract,
// not an enforced one.
type Fold struct {
	Pre     func(values []interface{}) []interface{}
	Init    func() interface{}
	Reduce  func(acc interface{}, value interface{}) (interface{}, error)
	Combine func(left interface{}, right interface{}) (interface{}, error)
	Post    func(value interface{}) interface{}
}
