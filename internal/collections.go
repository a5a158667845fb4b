package internal

// Set is a generic data structure that represents a collection of unique items.
// It uses a map internally for O(1) operations.
type Set[T comparable] struct {
	items map[T]struct{}
}

// NewSet creates and returns a new empty Set.
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{
		items: make(map[T]struct{}),
	}
}

// Add inserts an item into the set and reports whether it was new.
func (s *Set[T]) Add(item T) bool {
	if _, exists := s.items[item]; exists {
		return false
	}
	s.items[item] = struct{}{}
	return true
}

// Contains checks if an item exists in the set.
func (s *Set[T]) Contains(item T) bool {
	_, exists := s.items[item]
	return exists
}

// Size returns the number of items in the set.
func (s *Set[T]) Size() int {
	return len(s.items)
}

// OrderedSet keeps the first occurrence of each key in insertion order.
type OrderedSet[K comparable, V any] struct {
	seen  *Set[K]
	items []V
	key   func(V) K
}

// NewOrderedSet creates an OrderedSet deduplicating by key.
func NewOrderedSet[K comparable, V any](key func(V) K) *OrderedSet[K, V] {
	return &OrderedSet[K, V]{seen: NewSet[K](), key: key}
}

// Add appends item unless an item with the same key was added before.
func (o *OrderedSet[K, V]) Add(items ...V) {
	for _, item := range items {
		if o.seen.Add(o.key(item)) {
			o.items = append(o.items, item)
		}
	}
}

// Items returns the retained items in first-seen order.
func (o *OrderedSet[K, V]) Items() []V {
	return o.items
}

// Len returns the number of retained items.
func (o *OrderedSet[K, V]) Len() int {
	return len(o.items)
}

// MapKeys extracts all keys from a map and returns them as a slice.
// The order of keys is non-deterministic due to map iteration.
func MapKeys[K comparable, V any](m map[K]V) []K {
	if m == nil {
		return []K{}
	}
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}
