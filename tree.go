package bptree

import "cmp"

// Tree is an ordered in-memory key-value map implemented as a B+ tree.
// It is single-writer, single-reader: Tree performs no internal
// synchronization, and a caller sharing one across goroutines must
// provide its own mutual exclusion.
type Tree[K cmp.Ordered, V any] struct {
	cfg  Config
	root *node[K, V]
	size int
	pool *NodePool[K, V]

	// generation is bumped by every mutation and checked by outstanding
	// Cursors; see DESIGN.md's Open Question decision on cursor
	// invalidation.
	generation uint64
}

// New constructs an empty Tree. It fails only if the configured branching
// factor is below 4.
func New[K cmp.Ordered, V any](opts ...Option) (*Tree[K, V], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	t := &Tree[K, V]{cfg: cfg}
	if cfg.UsePool {
		t.pool = newNodePool[K, V](cfg.PoolCap)
	}
	return t, nil
}

// Len returns the number of key-value pairs in the tree.
func (t *Tree[K, V]) Len() int { return t.size }

// PoolStats returns the node pool's cumulative hit/miss counters and
// current free-list sizes. If the pool is disabled, it returns the zero
// value.
func (t *Tree[K, V]) PoolStats() PoolStats {
	if t.pool == nil {
		return PoolStats{}
	}
	return t.pool.Stats()
}

func (t *Tree[K, V]) newLeafNode() *leafNode[K, V] {
	if t.pool != nil {
		return t.pool.acquireLeaf(t.cfg.BranchingFactor)
	}
	return newLeaf[K, V](t.cfg.BranchingFactor)
}

func (t *Tree[K, V]) newBranchNode() *branchNode[K, V] {
	if t.pool != nil {
		return t.pool.acquireBranch(t.cfg.BranchingFactor)
	}
	return newBranch[K, V](t.cfg.BranchingFactor)
}

func (t *Tree[K, V]) freeLeafNode(l *leafNode[K, V]) {
	if t.pool != nil {
		t.pool.releaseLeaf(l)
	}
}

func (t *Tree[K, V]) freeBranchNode(b *branchNode[K, V]) {
	if t.pool != nil {
		t.pool.releaseBranch(b)
	}
}

// pathEntry records a branch visited during descent and the index of the
// child taken from it, so a split or underflow can walk back up without
// the nodes themselves carrying parent pointers (which would need
// clearing on every pool release).
type pathEntry[K cmp.Ordered, V any] struct {
	branch *branchNode[K, V]
	idx    int
}

// descend walks from the root to the leaf that would hold key, recording
// the branch path taken.
func (t *Tree[K, V]) descend(key K) ([]pathEntry[K, V], *leafNode[K, V]) {
	var path []pathEntry[K, V]
	cur := t.root
	for !cur.isLeaf() {
		br := cur.branch
		idx := routeIndex(br.separators, key)
		path = append(path, pathEntry[K, V]{branch: br, idx: idx})
		cur = br.children[idx]
	}
	return path, cur.leaf
}

// firstLeaf descends the leftmost spine of the tree to find the leaf with
// the smallest keys, in O(log_B N) time.
func (t *Tree[K, V]) firstLeaf() *leafNode[K, V] {
	if t.root == nil {
		return nil
	}
	cur := t.root
	for !cur.isLeaf() {
		cur = cur.branch.children[0]
	}
	return cur.leaf
}

// Lookup returns the value stored for key, if any.
func (t *Tree[K, V]) Lookup(key K) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}
	_, leaf := t.descend(key)
	idx := lowerBound(leaf.keys, key)
	if idx < len(leaf.keys) && leaf.keys[idx] == key {
		return leaf.values[idx], true
	}
	return zero, false
}

// Insert adds key with value, or, if key is already present, overwrites
// its value and returns the previous one with updated = true.
func (t *Tree[K, V]) Insert(key K, value V) (oldValue V, updated bool) {
	if t.root == nil {
		l := t.newLeafNode()
		l.keys = append(l.keys, key)
		l.values = append(l.values, value)
		t.root = wrapLeaf(l)
		t.size++
		t.generation++
		var zero V
		return zero, false
	}

	path, leaf := t.descend(key)

	idx := lowerBound(leaf.keys, key)
	if idx < len(leaf.keys) && leaf.keys[idx] == key {
		old := leaf.values[idx]
		leaf.values[idx] = value
		t.generation++
		return old, true
	}

	if len(leaf.keys) < t.cfg.BranchingFactor {
		leaf.keys = insertSliceAt(leaf.keys, idx, key)
		leaf.values = insertSliceAt(leaf.values, idx, value)
		t.size++
		t.generation++
		var zero V
		return zero, false
	}

	sep, newLeaf := t.splitLeaf(leaf, key, value)
	t.size++
	t.generation++
	t.bubbleSplit(path, sep, wrapLeaf(newLeaf))
	var zero V
	return zero, false
}

// splitLeaf inserts (key, value) into the conceptual union of l's entries
// and the new pair, then divides that union so l keeps the lower
// ceil(B/2) entries and a new right leaf takes the rest.
// It wires the leaf chain (R.next = L.next; L.next = R) and returns the
// separator (the smallest key in the new leaf) and the new leaf itself.
func (t *Tree[K, V]) splitLeaf(l *leafNode[K, V], key K, value V) (K, *leafNode[K, V]) {
	total := len(l.keys) + 1
	keys := make([]K, 0, total)
	values := make([]V, 0, total)

	idx := lowerBound(l.keys, key)
	keys = append(keys, l.keys[:idx]...)
	keys = append(keys, key)
	keys = append(keys, l.keys[idx:]...)
	values = append(values, l.values[:idx]...)
	values = append(values, value)
	values = append(values, l.values[idx:]...)

	leftCount := t.cfg.minKeys()

	right := t.newLeafNode()
	right.keys = append(right.keys, keys[leftCount:]...)
	right.values = append(right.values, values[leftCount:]...)
	right.next = l.next

	l.keys = append(l.keys[:0], keys[:leftCount]...)
	l.values = append(l.values[:0], values[:leftCount]...)
	l.next = right

	return right.keys[0], right
}

// bubbleSplit propagates a split result up the recorded descent path,
// inserting the separator and new child into each ancestor branch and
// splitting that branch in turn if it overflows. If the split reaches
// past the root, a new two-child root branch is created and depth
// increases by one.
func (t *Tree[K, V]) bubbleSplit(path []pathEntry[K, V], sep K, newChild *node[K, V]) {
	for i := len(path) - 1; i >= 0; i-- {
		entry := path[i]
		s, nc, split := t.branchInsertAfterSplit(entry.branch, entry.idx, sep, newChild)
		if !split {
			return
		}
		sep, newChild = s, nc
	}

	newRoot := t.newBranchNode()
	newRoot.separators = append(newRoot.separators, sep)
	newRoot.children = append(newRoot.children, t.root, newChild)
	t.root = wrapBranch(newRoot)
}

// branchInsertAfterSplit inserts sep at position idx (shifting right) and
// newChild at idx+1. If br now holds more than B separators, it splits:
// the key at position floor(B/2) is promoted to the caller rather than
// kept in either half, leaving the left half with exactly floor(B/2)
// separators — branchMinSeparators, not the leaf's ceil(B/2) minKeys.
func (t *Tree[K, V]) branchInsertAfterSplit(br *branchNode[K, V], idx int, sep K, newChild *node[K, V]) (promoted K, right *node[K, V], split bool) {
	br.separators = insertSliceAt(br.separators, idx, sep)
	br.children = insertSliceAt(br.children, idx+1, newChild)

	if len(br.separators) <= t.cfg.BranchingFactor {
		var zero K
		return zero, nil, false
	}

	mid := t.cfg.BranchingFactor / 2
	promoted = br.separators[mid]

	rb := t.newBranchNode()
	rb.separators = append(rb.separators, br.separators[mid+1:]...)
	rb.children = append(rb.children, br.children[mid+1:]...)

	var zeroK K
	for i := mid; i < len(br.separators); i++ {
		br.separators[i] = zeroK
	}
	for i := mid + 1; i < len(br.children); i++ {
		br.children[i] = nil
	}
	br.separators = br.separators[:mid]
	br.children = br.children[:mid+1]

	return promoted, wrapBranch(rb), true
}

// Delete removes key, returning its value with ok = true if it was
// present.
func (t *Tree[K, V]) Delete(key K) (oldValue V, ok bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}

	path, leaf := t.descend(key)
	idx := lowerBound(leaf.keys, key)
	if idx >= len(leaf.keys) || leaf.keys[idx] != key {
		return zero, false
	}

	old := leaf.values[idx]
	leaf.keys = removeSliceAt(leaf.keys, idx)
	leaf.values = removeSliceAt(leaf.values, idx)
	t.size--
	t.generation++

	if len(path) == 0 {
		if len(leaf.keys) == 0 {
			t.freeLeafNode(leaf)
			t.root = nil
		}
		return old, true
	}

	// Removing a leaf's smallest key raises the smallest key of the subtree
	// the leaf begins, so the separator bounding that subtree follows it.
	if idx == 0 && len(leaf.keys) > 0 {
		for i := len(path) - 1; i >= 0; i-- {
			if path[i].idx > 0 {
				path[i].branch.separators[path[i].idx-1] = leaf.keys[0]
				break
			}
		}
	}

	if len(leaf.keys) >= t.cfg.minKeys() {
		return old, true
	}

	t.fixLeafUnderflow(path, leaf)
	return old, true
}

// fixLeafUnderflow repairs a leaf that has dropped below min_leaf,
// preferring redistribution from a sibling over merging (left sibling
// tried first).
func (t *Tree[K, V]) fixLeafUnderflow(path []pathEntry[K, V], leaf *leafNode[K, V]) {
	last := len(path) - 1
	parent := path[last].branch
	idx := path[last].idx
	minKeys := t.cfg.minKeys()

	if idx > 0 {
		leftSibling := parent.children[idx-1].leaf
		if len(leftSibling.keys) > minKeys {
			n := len(leftSibling.keys)
			borrowedKey := leftSibling.keys[n-1]
			borrowedValue := leftSibling.values[n-1]
			leftSibling.keys = leftSibling.keys[:n-1]
			leftSibling.values = leftSibling.values[:n-1]

			leaf.keys = insertSliceAt(leaf.keys, 0, borrowedKey)
			leaf.values = insertSliceAt(leaf.values, 0, borrowedValue)
			parent.separators[idx-1] = leaf.keys[0]
			return
		}
	}

	if idx < len(parent.children)-1 {
		rightSibling := parent.children[idx+1].leaf
		if len(rightSibling.keys) > minKeys {
			borrowedKey := rightSibling.keys[0]
			borrowedValue := rightSibling.values[0]
			rightSibling.keys = removeSliceAt(rightSibling.keys, 0)
			rightSibling.values = removeSliceAt(rightSibling.values, 0)

			leaf.keys = append(leaf.keys, borrowedKey)
			leaf.values = append(leaf.values, borrowedValue)
			parent.separators[idx] = rightSibling.keys[0]
			return
		}
	}

	if idx > 0 {
		leftSibling := parent.children[idx-1].leaf
		leftSibling.keys = append(leftSibling.keys, leaf.keys...)
		leftSibling.values = append(leftSibling.values, leaf.values...)
		leftSibling.next = leaf.next
		t.freeLeafNode(leaf)
		t.removeChildFromBranch(path, idx-1)
		return
	}

	rightSibling := parent.children[idx+1].leaf
	leaf.keys = append(leaf.keys, rightSibling.keys...)
	leaf.values = append(leaf.values, rightSibling.values...)
	leaf.next = rightSibling.next
	t.freeLeafNode(rightSibling)
	t.removeChildFromBranch(path, idx)
}

// removeChildFromBranch removes separator keyIdx and the child at
// keyIdx+1 from the branch at the tail of path, then repairs the
// resulting underflow in that branch (recursively) or collapses the root
// if it has dropped to a single child.
func (t *Tree[K, V]) removeChildFromBranch(path []pathEntry[K, V], keyIdx int) {
	last := len(path) - 1
	parent := path[last].branch

	parent.separators = removeSliceAt(parent.separators, keyIdx)
	parent.children = removeSliceAt(parent.children, keyIdx+1)

	if last == 0 {
		if len(parent.separators) == 0 {
			t.root = parent.children[0]
			t.freeBranchNode(parent)
		}
		return
	}

	if len(parent.separators) >= t.cfg.branchMinSeparators() {
		return
	}

	t.fixBranchUnderflow(path[:last], parent)
}

// fixBranchUnderflow repairs a branch that has dropped below min
// separators, preferring a rotation (parent separator moves down, a
// sibling's adjacent key moves up) over a merge.
func (t *Tree[K, V]) fixBranchUnderflow(path []pathEntry[K, V], branch *branchNode[K, V]) {
	last := len(path) - 1
	parent := path[last].branch
	idx := path[last].idx
	minSeparators := t.cfg.branchMinSeparators()

	if idx > 0 {
		leftSibling := parent.children[idx-1].branch
		if len(leftSibling.separators) > minSeparators {
			n := len(leftSibling.separators)
			borrowedSep := leftSibling.separators[n-1]
			borrowedChild := leftSibling.children[len(leftSibling.children)-1]
			leftSibling.separators = leftSibling.separators[:n-1]
			leftSibling.children = leftSibling.children[:len(leftSibling.children)-1]

			branch.separators = insertSliceAt(branch.separators, 0, parent.separators[idx-1])
			branch.children = insertSliceAt(branch.children, 0, borrowedChild)
			parent.separators[idx-1] = borrowedSep
			return
		}
	}

	if idx < len(parent.children)-1 {
		rightSibling := parent.children[idx+1].branch
		if len(rightSibling.separators) > minSeparators {
			borrowedSep := rightSibling.separators[0]
			borrowedChild := rightSibling.children[0]
			rightSibling.separators = removeSliceAt(rightSibling.separators, 0)
			rightSibling.children = removeSliceAt(rightSibling.children, 0)

			branch.separators = append(branch.separators, parent.separators[idx])
			branch.children = append(branch.children, borrowedChild)
			parent.separators[idx] = borrowedSep
			return
		}
	}

	if idx > 0 {
		leftSibling := parent.children[idx-1].branch
		leftSibling.separators = append(leftSibling.separators, parent.separators[idx-1])
		leftSibling.separators = append(leftSibling.separators, branch.separators...)
		leftSibling.children = append(leftSibling.children, branch.children...)
		t.freeBranchNode(branch)
		t.removeChildFromBranch(path, idx-1)
		return
	}

	rightSibling := parent.children[idx+1].branch
	branch.separators = append(branch.separators, parent.separators[idx])
	branch.separators = append(branch.separators, rightSibling.separators...)
	branch.children = append(branch.children, rightSibling.children...)
	t.freeBranchNode(rightSibling)
	t.removeChildFromBranch(path, idx)
}
