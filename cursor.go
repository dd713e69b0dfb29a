package bptree

import "cmp"

// Cursor is a forward-only iterator over a half-open key range [lo, hi).
// It is finite and not restartable — construct a new one to replay a
// range. It never takes ownership of the leaves it walks, and it is
// invalidated by any mutation of the tree that produced it.
type Cursor[K cmp.Ordered, V any] struct {
	tree       *Tree[K, V]
	generation uint64

	leaf *leafNode[K, V]
	idx  int

	hasHi bool
	hi    K

	curKey   K
	curValue V

	done bool
	err  error
}

// Range returns a Cursor over [lo, hi).
func (t *Tree[K, V]) Range(lo, hi K) *Cursor[K, V] {
	return t.newCursor(&lo, true, hi)
}

// RangeFrom returns a Cursor over [lo, +inf).
func (t *Tree[K, V]) RangeFrom(lo K) *Cursor[K, V] {
	var zero K
	return t.newCursor(&lo, false, zero)
}

// RangeTo returns a Cursor over (-inf, hi).
func (t *Tree[K, V]) RangeTo(hi K) *Cursor[K, V] {
	return t.newCursor(nil, true, hi)
}

// IterAll returns a Cursor over every entry in the tree, in increasing
// key order.
func (t *Tree[K, V]) IterAll() *Cursor[K, V] {
	var zero K
	return t.newCursor(nil, false, zero)
}

func (t *Tree[K, V]) newCursor(lo *K, hasHi bool, hi K) *Cursor[K, V] {
	c := &Cursor[K, V]{tree: t, generation: t.generation, hasHi: hasHi, hi: hi}
	if t.root == nil {
		c.done = true
		return c
	}
	if lo == nil {
		c.leaf = t.firstLeaf()
		c.idx = 0
	} else {
		_, leaf := t.descend(*lo)
		c.leaf = leaf
		c.idx = lowerBound(leaf.keys, *lo)
	}
	return c
}

func (c *Cursor[K, V]) skipEmptyLeaves() {
	for c.leaf != nil && c.idx >= len(c.leaf.keys) {
		c.leaf = c.leaf.next
		c.idx = 0
	}
}

// Next advances the cursor and reports whether a (key, value) pair is
// available via Key/Value. It returns false once the range is exhausted
// or the underlying tree has been mutated since construction; in the
// latter case Err returns ErrConcurrentMutation and the cursor stays
// poisoned for all further calls.
func (c *Cursor[K, V]) Next() bool {
	if c.err != nil || c.done {
		return false
	}
	if c.tree.generation != c.generation {
		c.err = ErrConcurrentMutation
		c.done = true
		return false
	}

	c.skipEmptyLeaves()
	if c.leaf == nil {
		c.done = true
		return false
	}

	key := c.leaf.keys[c.idx]
	if c.hasHi && !(key < c.hi) {
		c.done = true
		return false
	}

	c.curKey = key
	c.curValue = c.leaf.values[c.idx]
	c.idx++
	return true
}

// Key returns the key most recently produced by Next.
func (c *Cursor[K, V]) Key() K { return c.curKey }

// Value returns the value most recently produced by Next.
func (c *Cursor[K, V]) Value() V { return c.curValue }

// Err returns ErrConcurrentMutation if the tree was mutated during
// iteration, and nil otherwise (including on ordinary exhaustion).
func (c *Cursor[K, V]) Err() error { return c.err }
