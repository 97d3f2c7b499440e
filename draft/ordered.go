package draft

import "slices"

// Positioned is satisfied by pointers to list items that carry a 1-based
// priority. Sections and questions share the editing functions below through
// it.
type Positioned[T any] interface {
	*T
	Priority() int
	SetPriority(int)
}

// Add returns a copy of items with item appended at priority len+1.
func Add[T any, P Positioned[T]](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	P(&item).SetPriority(len(items) + 1)
	return append(out, item)
}

// RemoveAt returns a copy of items without the i-th element, renumbered.
// An index out of range returns items untouched.
func RemoveAt[T any, P Positioned[T]](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	out = append(out, items[i+1:]...)
	renumber[T, P](out)
	return out
}

// MoveTo returns a copy of items where the element at from has been reinserted
// at to, every priority recomputed. If either index falls outside the list the
// very same slice is returned: moving the first item up or the last item down
// does nothing.
func MoveTo[T any, P Positioned[T]](items []T, from, to int) []T {
	if !inRange(items, from) || !inRange(items, to) {
		return items
	}
	moved := items[from]
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = slices.Insert(out, to, moved)
	renumber[T, P](out)
	return out
}

// Update returns a copy of items where fn has been applied to the i-th element
// only.
func Update[T any](items []T, i int, fn func(*T)) []T {
	if !inRange(items, i) {
		return items
	}
	out := slices.Clone(items)
	fn(&out[i])
	return out
}

func renumber[T any, P Positioned[T]](items []T) {
	for i := range items {
		P(&items[i]).SetPriority(i + 1)
	}
}

func inRange[T any](items []T, i int) bool {
	return i >= 0 && i < len(items)
}
