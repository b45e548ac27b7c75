package progress

import (
	"slices"
	"testing"
)

func TestStringSet(t *testing.T) {
	s := NewStringSet("b", "a", "b")
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}
	if s.Add("a") {
		t.Error("Add(existing) = true")
	}
	if !s.Add("c") {
		t.Error("Add(new) = false")
	}
	if got := s.Sorted(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Sorted() = %v", got)
	}

	c := s.Clone()
	c.Add("d")
	if s.Contains("d") {
		t.Error("Clone() shares storage")
	}
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet(3, 1, 3, 2)
	if got := s.Items(); !slices.Equal(got, []int{3, 1, 2}) {
		t.Fatalf("Items() = %v, want [3 1 2]", got)
	}
	if s.Toggle(1) {
		t.Error("Toggle(present) = true")
	}
	if !s.Toggle(9) {
		t.Error("Toggle(absent) = false")
	}
	if got := s.Items(); !slices.Equal(got, []int{3, 2, 9}) {
		t.Errorf("Items() = %v, want [3 2 9]", got)
	}

	c := s.Clone()
	c.Toggle(3)
	if !s.Contains(3) || s.Len() != 3 {
		t.Error("Clone() shares storage")
	}

	items := s.Items()
	items[0] = 42
	if s.Contains(42) {
		t.Error("Items() exposes internal slice")
	}
}
