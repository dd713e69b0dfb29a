package bptree

import "testing"

func TestLowerBound(t *testing.T) {
	keys := []int{2, 4, 6, 8, 10}
	tests := []struct {
		key  int
		want int
	}{
		{1, 0},
		{2, 0},
		{3, 1},
		{8, 3},
		{9, 4},
		{10, 4},
		{11, 5},
	}
	for _, tc := range tests {
		if got := lowerBound(keys, tc.key); got != tc.want {
			t.Errorf("lowerBound(%v, %d) = %d, want %d", keys, tc.key, got, tc.want)
		}
	}
}

func TestRouteIndex(t *testing.T) {
	separators := []int{5, 10, 15}
	tests := []struct {
		key  int
		want int
	}{
		{1, 0},
		{5, 1},
		{7, 1},
		{10, 2},
		{14, 2},
		{15, 3},
		{20, 3},
	}
	for _, tc := range tests {
		if got := routeIndex(separators, tc.key); got != tc.want {
			t.Errorf("routeIndex(%v, %d) = %d, want %d", separators, tc.key, got, tc.want)
		}
	}
}

func TestInsertSliceAt(t *testing.T) {
	s := []int{1, 2, 4, 5}
	s = insertSliceAt(s, 2, 3)
	want := []int{1, 2, 3, 4, 5}
	if len(s) != len(want) {
		t.Fatalf("got %v, want %v", s, want)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("got %v, want %v", s, want)
		}
	}
}

func TestRemoveSliceAt(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}
	s = removeSliceAt(s, 2)
	want := []int{1, 2, 4, 5}
	if len(s) != len(want) {
		t.Fatalf("got %v, want %v", s, want)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("got %v, want %v", s, want)
		}
	}
}
