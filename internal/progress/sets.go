package progress

import (
	"slices"
	"sort"
)

// StringSet is an unordered set of ids.
type StringSet map[string]struct{}

// NewStringSet builds a set from items, dropping duplicates.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s StringSet) Add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Contains reports membership.
func (s StringSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// OrderedSet is a sequence of unique items kept in insertion order.
type OrderedSet[T comparable] struct {
	items []T
}

// NewOrderedSet builds a set from items, keeping the first occurrence of each.
func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{items: make([]T, 0, len(items))}
	for _, it := range items {
		if !s.Contains(it) {
			s.items = append(s.items, it)
		}
	}
	return s
}

// Contains reports membership.
func (s *OrderedSet[T]) Contains(item T) bool {
	return slices.Contains(s.items, item)
}

// Toggle removes item if present, otherwise appends it. It reports whether
// item is present afterwards.
func (s *OrderedSet[T]) Toggle(item T) bool {
	if i := slices.Index(s.items, item); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		return false
	}
	s.items = append(s.items, item)
	return true
}

// Len returns the number of items.
func (s *OrderedSet[T]) Len() int { return len(s.items) }

// Items returns a copy of the items in insertion order.
func (s *OrderedSet[T]) Items() []T {
	return append(make([]T, 0, len(s.items)), s.items...)
}

// Clone returns an independent copy.
func (s *OrderedSet[T]) Clone() *OrderedSet[T] {
	return &OrderedSet[T]{items: s.Items()}
}
