package bptree

import "cmp"

// Pair is one key-value entry, used as the input shape for BulkLoad and
// as the value yielded while draining a Cursor into a slice.
type Pair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// Collect drains a Cursor into a slice of Pairs, in increasing key order.
// It stops early and returns the cursor's error if one occurs mid-scan.
func Collect[K cmp.Ordered, V any](c *Cursor[K, V]) ([]Pair[K, V], error) {
	var out []Pair[K, V]
	for c.Next() {
		out = append(out, Pair[K, V]{Key: c.Key(), Value: c.Value()})
	}
	return out, c.Err()
}
