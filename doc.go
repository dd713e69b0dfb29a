// Package bptree implements a generic, in-memory B+ tree: an ordered
// key-value map backed by a linked list of leaf nodes, with interior
// branch nodes used purely as a routing index.
//
// Unlike a classic B-tree, values never live in an interior node. Every
// key-value pair sits in a leaf, and leaves are linked left to right, so a
// full ordered traversal or a half-open range scan never has to visit a
// branch node or re-sort anything.
//
// This implementation provides:
//   - Generic keys (any cmp.Ordered type) and values (any type)
//   - A configurable branching factor fixed at construction
//   - Insert, Lookup, Delete, Len, Range and IterAll, and a one-pass BulkLoad
//   - A per-tree node pool that recycles detached leaves and branches
//
// Example usage:
//
//	tree, err := bptree.New[int, string](bptree.WithBranchingFactor(8))
//	tree.Insert(10, "ten")
//	tree.Insert(5, "five")
//
//	if value, found := tree.Lookup(10); found {
//	    fmt.Println(value)
//	}
//
//	cur := tree.Range(5, 20)
//	for cur.Next() {
//	    fmt.Println(cur.Key(), cur.Value())
//	}
//
// The tree is single-writer, single-reader: it performs no internal
// locking, and an embedder sharing one across goroutines must provide its
// own mutual exclusion. Any mutation invalidates every outstanding Cursor;
// see Cursor.Next for the generation-check rule that detects that case.
package bptree
