package bptree

import (
	"errors"
	"testing"
)

func seedTree(t *testing.T, b int, n int) *Tree[int, int] {
	t.Helper()
	tree := mustNew[int](t, WithBranchingFactor(b))
	for i := 0; i < n; i++ {
		tree.Insert(i, i*10)
	}
	return tree
}

func drain(t *testing.T, cur *Cursor[int, int]) []Pair[int, int] {
	t.Helper()
	pairs, err := Collect(cur)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return pairs
}

func TestIterAllYieldsEverythingInOrder(t *testing.T) {
	tree := seedTree(t, 4, 50)

	pairs := drain(t, tree.IterAll())
	if len(pairs) != 50 {
		t.Fatalf("got %d pairs, want 50", len(pairs))
	}
	for i, p := range pairs {
		if p.Key != i || p.Value != i*10 {
			t.Fatalf("pairs[%d] = %+v, want Key=%d Value=%d", i, p, i, i*10)
		}
	}
}

func TestRangeHalfOpenBounds(t *testing.T) {
	tree := seedTree(t, 4, 50)

	pairs := drain(t, tree.Range(10, 20))
	if len(pairs) != 10 {
		t.Fatalf("got %d pairs, want 10", len(pairs))
	}
	if pairs[0].Key != 10 || pairs[len(pairs)-1].Key != 19 {
		t.Errorf("range [10,20): got first=%d last=%d, want 10, 19", pairs[0].Key, pairs[len(pairs)-1].Key)
	}
}

func TestRangeFromAndRangeTo(t *testing.T) {
	tree := seedTree(t, 4, 30)

	from := drain(t, tree.RangeFrom(25))
	if len(from) != 5 || from[0].Key != 25 {
		t.Errorf("RangeFrom(25): got %d pairs starting at %d, want 5 starting at 25", len(from), from[0].Key)
	}

	to := drain(t, tree.RangeTo(5))
	if len(to) != 5 || to[len(to)-1].Key != 4 {
		t.Errorf("RangeTo(5): got %d pairs ending at %d, want 5 ending at 4", len(to), to[len(to)-1].Key)
	}
}

func TestRangeOnEmptyAndOutOfBoundSpans(t *testing.T) {
	tree := seedTree(t, 4, 10)

	if pairs := drain(t, tree.Range(100, 200)); len(pairs) != 0 {
		t.Errorf("Range(100,200): got %d pairs, want 0", len(pairs))
	}
	if pairs := drain(t, tree.Range(3, 3)); len(pairs) != 0 {
		t.Errorf("Range(3,3): got %d pairs, want 0 (empty span)", len(pairs))
	}
}

func TestCursorInvalidatedByMutation(t *testing.T) {
	tree := seedTree(t, 4, 20)

	cur := tree.IterAll()
	if !cur.Next() {
		t.Fatal("expected at least one entry before mutation")
	}

	tree.Insert(1000, 1000)

	if cur.Next() {
		t.Fatal("Next() succeeded after concurrent mutation")
	}
	if !errors.Is(cur.Err(), ErrConcurrentMutation) {
		t.Errorf("Err(): got %v, want ErrConcurrentMutation", cur.Err())
	}
	// Poisoned cursor stays poisoned.
	if cur.Next() {
		t.Error("poisoned cursor produced another value")
	}
}

func TestCursorNotInvalidatedByUnrelatedReads(t *testing.T) {
	tree := seedTree(t, 4, 20)

	cur := tree.Range(0, 20)
	count := 0
	for cur.Next() {
		tree.Lookup(count) // reads don't bump generation
		count++
	}
	if cur.Err() != nil {
		t.Errorf("Err(): got %v, want nil", cur.Err())
	}
	if count != 20 {
		t.Errorf("got %d entries, want 20", count)
	}
}
