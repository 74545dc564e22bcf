// Package ranking holds the dense-ranking maths behind per-status priorities.
// Nothing here touches storage: callers load a bucket, compute, and persist the diff.
package ranking

import (
	"sort"

	"questlog/internal/models"
)

// Item is one bucket member with its stored priority.
type Item struct {
	ID       int64
	Priority *int
}

// Sorted returns a copy ordered by priority ascending. Nil priorities sort last,
// ties keep game id order so the result is deterministic.
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Priority, out[j].Priority
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// Without returns items minus the member with the given id, preserving order.
func Without(items []Item, id int64) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Rank assigns 1..N following the slice order and returns updates only for
// members whose stored priority differs from the new one.
func Rank(items []Item) []models.PriorityUpdate {
	var changed []models.PriorityUpdate
	for i, it := range items {
		rank := i + 1
		if it.Priority != nil && *it.Priority == rank {
			continue
		}
		p := rank
		changed = append(changed, models.PriorityUpdate{GameID: it.ID, Priority: &p})
	}
	return changed
}

// Splice removes the element at from and reinserts it at to, with array splice
// semantics over the already-sorted view. Indices do not wrap.
func Splice(items []Item, from, to int) ([]Item, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, models.ErrIndexOutOfRange
	}
	out := make([]Item, 0, n)
	moved := items[from]
	for i, it := range items {
		if i != from {
			out = append(out, it)
		}
	}
	out = append(out, Item{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, nil
}

// AppendTo places the mover at the end of dest (the mover is dropped from dest
// first if present) and returns the ranking diff for the whole destination.
func AppendTo(dest []Item, mover Item) []models.PriorityUpdate {
	ordered := append(Sorted(Without(dest, mover.ID)), mover)
	return Rank(ordered)
}

// Dense reports whether the non-nil priorities of items are exactly 1..N.
func Dense(items []Item) bool {
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if it.Priority == nil {
			return false
		}
		p := *it.Priority
		if p < 1 || p > len(items) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}
