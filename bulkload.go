package bptree

import "cmp"

// bulkLoadFillRatio is the default leaf occupancy target for BulkLoad:
// leaves are filled to ceil(fillRatio * B), except the last, which takes
// the remainder and rebalances against its predecessor if that would
// leave it under min_leaf.
const bulkLoadFillRatio = 0.75

// BulkLoad replaces the tree's entire contents with pairs, which must
// already be in strictly increasing key order. It builds the tree
// bottom-up in one pass: Θ(N) time, Θ(N/B) node allocations. On an empty
// input it produces a valid empty tree, not an error. On invalid
// (non-monotonic or duplicate-key) input, it returns
// ErrInvalidBulkLoadInput and leaves the tree exactly as it was before
// the call.
func (t *Tree[K, V]) BulkLoad(pairs []Pair[K, V]) error {
	for i := 1; i < len(pairs); i++ {
		if !(pairs[i-1].Key < pairs[i].Key) {
			return ErrInvalidBulkLoadInput
		}
	}

	if len(pairs) == 0 {
		t.root = nil
		t.size = 0
		t.generation++
		return nil
	}

	leaves := t.buildLeaves(pairs)
	for i := 0; i < len(leaves)-1; i++ {
		leaves[i].next = leaves[i+1]
	}

	level := make([]*node[K, V], len(leaves))
	for i, l := range leaves {
		level[i] = wrapLeaf(l)
	}
	for len(level) > 1 {
		level = t.buildLevel(level)
	}

	t.root = level[0]
	t.size = len(pairs)
	t.generation++
	return nil
}

func (t *Tree[K, V]) buildLeaves(pairs []Pair[K, V]) []*leafNode[K, V] {
	b := t.cfg.BranchingFactor
	fill := int(float64(b)*bulkLoadFillRatio + 0.9999999)
	if fill < t.cfg.minKeys() {
		fill = t.cfg.minKeys()
	}
	if fill > b {
		fill = b
	}

	var leaves []*leafNode[K, V]
	i := 0
	for i < len(pairs) {
		end := i + fill
		if end > len(pairs) {
			end = len(pairs)
		}
		l := t.newLeafNode()
		for _, p := range pairs[i:end] {
			l.keys = append(l.keys, p.Key)
			l.values = append(l.values, p.Value)
		}
		leaves = append(leaves, l)
		i = end
	}

	if len(leaves) >= 2 {
		last := leaves[len(leaves)-1]
		minKeys := t.cfg.minKeys()
		if len(last.keys) < minKeys {
			prev := leaves[len(leaves)-2]
			total := len(prev.keys) + len(last.keys)

			if total < 2*minKeys {
				// Not enough combined entries to give both leaves min_leaf;
				// merging the last two into one is the only valid shape.
				prev.keys = append(prev.keys, last.keys...)
				prev.values = append(prev.values, last.values...)
				t.freeLeafNode(last)
				leaves = leaves[:len(leaves)-1]
			} else {
				combinedKeys := append(append([]K(nil), prev.keys...), last.keys...)
				combinedValues := append(append([]V(nil), prev.values...), last.values...)

				lastCount := total / 2
				if lastCount < minKeys {
					lastCount = minKeys
				}
				prevCount := total - lastCount

				prev.keys = append(prev.keys[:0], combinedKeys[:prevCount]...)
				prev.values = append(prev.values[:0], combinedValues[:prevCount]...)
				last.keys = append(last.keys[:0], combinedKeys[prevCount:]...)
				last.values = append(last.values[:0], combinedValues[prevCount:]...)
			}
		}
	}

	return leaves
}

// buildLevel groups children into branches of up to B+1 consecutive
// nodes, splitting the input into as-even-as-possible groups so that no
// branch (including the last) ever ends up with fewer than 2 children.
// The separator for each non-first child in a group is the smallest key
// reachable through it.
func (t *Tree[K, V]) buildLevel(children []*node[K, V]) []*node[K, V] {
	maxGroup := t.cfg.BranchingFactor + 1
	sizes := balancedGroupSizes(len(children), maxGroup)

	result := make([]*node[K, V], 0, len(sizes))
	i := 0
	for _, size := range sizes {
		group := children[i : i+size]
		i += size

		br := t.newBranchNode()
		br.children = append(br.children, group...)
		for _, child := range group[1:] {
			br.separators = append(br.separators, smallestKey(child))
		}
		result = append(result, wrapBranch(br))
	}
	return result
}

// balancedGroupSizes splits n items into ceil(n/maxGroup) groups whose
// sizes differ by at most 1, so that (for maxGroup >= 3, true whenever
// B >= 2) no group ever has fewer than 2 items as long as n >= 2.
func balancedGroupSizes(n, maxGroup int) []int {
	numGroups := (n + maxGroup - 1) / maxGroup
	if numGroups < 1 {
		numGroups = 1
	}
	base := n / numGroups
	rem := n % numGroups
	sizes := make([]int, numGroups)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

func smallestKey[K cmp.Ordered, V any](n *node[K, V]) K {
	for !n.isLeaf() {
		n = n.branch.children[0]
	}
	return n.leaf.keys[0]
}
