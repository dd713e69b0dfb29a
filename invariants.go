package bptree

import (
	"cmp"
	"fmt"
)

// CheckInvariants walks the whole tree and returns ErrInvariantViolation
// (wrapped with detail) if any structural invariant is violated:
// occupancy bounds, strictly increasing keys within a node and across
// the leaf chain, separator/child-count agreement, uniform leaf depth,
// and separator correctness against actual subtree contents. It is a
// debugging and test aid, not called on any production path.
func (t *Tree[K, V]) CheckInvariants() error {
	if t.root == nil {
		if t.size != 0 {
			return fmt.Errorf("%w: empty root but size=%d", ErrInvariantViolation, t.size)
		}
		return nil
	}

	s, err := t.checkNode(t.root, true)
	if err != nil {
		return err
	}
	if s.count != t.size {
		return fmt.Errorf("%w: reachable entry count %d != size %d", ErrInvariantViolation, s.count, t.size)
	}
	return t.checkLeafChain()
}

// subtreeSummary carries the facts about a subtree that its parent needs
// to validate the edge between them.
type subtreeSummary[K cmp.Ordered] struct {
	minKey, maxKey K
	depth          int
	count          int
}

// checkNode recursively validates n and summarizes it for its caller.
func (t *Tree[K, V]) checkNode(n *node[K, V], isRoot bool) (subtreeSummary[K], error) {
	if n.isLeaf() {
		l := n.leaf
		if !isRoot && len(l.keys) < t.cfg.minKeys() {
			return subtreeSummary[K]{}, fmt.Errorf("%w: leaf underflow, have %d want >= %d", ErrInvariantViolation, len(l.keys), t.cfg.minKeys())
		}
		if len(l.keys) > t.cfg.BranchingFactor {
			return subtreeSummary[K]{}, fmt.Errorf("%w: leaf overflow, have %d want <= %d", ErrInvariantViolation, len(l.keys), t.cfg.BranchingFactor)
		}
		if isRoot && len(l.keys) == 0 {
			return subtreeSummary[K]{depth: 1}, nil
		}
		for i := 1; i < len(l.keys); i++ {
			if !(l.keys[i-1] < l.keys[i]) {
				return subtreeSummary[K]{}, fmt.Errorf("%w: leaf keys not strictly increasing at %d", ErrInvariantViolation, i)
			}
		}
		return subtreeSummary[K]{
			minKey: l.keys[0],
			maxKey: l.keys[len(l.keys)-1],
			depth:  1,
			count:  len(l.keys),
		}, nil
	}

	br := n.branch
	if !isRoot && len(br.separators) < t.cfg.branchMinSeparators() {
		return subtreeSummary[K]{}, fmt.Errorf("%w: branch underflow, have %d want >= %d", ErrInvariantViolation, len(br.separators), t.cfg.branchMinSeparators())
	}
	if len(br.separators) > t.cfg.BranchingFactor {
		return subtreeSummary[K]{}, fmt.Errorf("%w: branch overflow, have %d want <= %d", ErrInvariantViolation, len(br.separators), t.cfg.BranchingFactor)
	}
	if len(br.children) < 2 {
		return subtreeSummary[K]{}, fmt.Errorf("%w: branch with single child", ErrInvariantViolation)
	}
	if len(br.children) != len(br.separators)+1 {
		return subtreeSummary[K]{}, fmt.Errorf("%w: branch has %d children but %d separators", ErrInvariantViolation, len(br.children), len(br.separators))
	}
	for i := 1; i < len(br.separators); i++ {
		if !(br.separators[i-1] < br.separators[i]) {
			return subtreeSummary[K]{}, fmt.Errorf("%w: branch separators not strictly increasing at %d", ErrInvariantViolation, i)
		}
	}

	children := make([]subtreeSummary[K], len(br.children))
	for i, child := range br.children {
		s, err := t.checkNode(child, false)
		if err != nil {
			return subtreeSummary[K]{}, err
		}
		children[i] = s
	}

	for i := 1; i < len(children); i++ {
		if children[i].depth != children[0].depth {
			return subtreeSummary[K]{}, fmt.Errorf("%w: uneven leaf depth, child %d has depth %d want %d", ErrInvariantViolation, i, children[i].depth, children[0].depth)
		}
		sep := br.separators[i-1]
		if !(children[i-1].maxKey < sep) {
			return subtreeSummary[K]{}, fmt.Errorf("%w: child %d max key not below separator %d", ErrInvariantViolation, i-1, i-1)
		}
		if !(children[i].minKey >= sep) {
			return subtreeSummary[K]{}, fmt.Errorf("%w: child %d min key below its separator", ErrInvariantViolation, i)
		}
	}

	total := 0
	for _, s := range children {
		total += s.count
	}

	return subtreeSummary[K]{
		minKey: children[0].minKey,
		maxKey: children[len(children)-1].maxKey,
		depth:  children[0].depth + 1,
		count:  total,
	}, nil
}

// checkLeafChain walks the leaf linked list from firstLeaf and verifies
// strictly increasing keys across leaf boundaries and that the total
// entry count matches t.size.
func (t *Tree[K, V]) checkLeafChain() error {
	l := t.firstLeaf()
	count := 0
	var prevSet bool
	var prev K
	for l != nil {
		for _, k := range l.keys {
			if prevSet && !(prev < k) {
				return fmt.Errorf("%w: leaf chain keys not strictly increasing", ErrInvariantViolation)
			}
			prev = k
			prevSet = true
		}
		count += len(l.keys)
		l = l.next
	}
	if count != t.size {
		return fmt.Errorf("%w: leaf chain count %d != size %d", ErrInvariantViolation, count, t.size)
	}
	return nil
}
