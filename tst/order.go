package tst

import (
	"math/rand"
	"sort"

	"github.com/aglyzov/go-lookup/lookup"
	"github.com/aglyzov/go-lookup/normalize"
)

// The helpers below reorder build input to control the tree shape. None of
// them modifies its argument, and a nil input stays nil so that building
// from the result still reports lookup.ErrNilInput.

// SortedOrder returns the pairs ordered by normalized key. Building from it
// yields the most skewed tree.
func SortedOrder[V any](pairs []lookup.Pair[string, V], n normalize.Normalizer) []lookup.Pair[string, V] {
	if pairs == nil {
		return nil
	}

	type entry struct {
		norm string
		pair lookup.Pair[string, V]
	}

	entries := make([]entry, len(pairs))
	for i, pair := range pairs {
		entries[i] = entry{n.Normalize(pair.Key), pair}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].norm < entries[j].norm
	})

	sorted := make([]lookup.Pair[string, V], len(entries))
	for i := range entries {
		sorted[i] = entries[i].pair
	}
	return sorted
}

// MedianOrder returns the pairs in an order that builds a near-balanced
// tree: the keys are sorted, the median of the whole range comes first, then
// the medians of the halves to its left and right, then the medians of the
// quarters, and so on level by level until every key is taken.
func MedianOrder[V any](pairs []lookup.Pair[string, V], n normalize.Normalizer) []lookup.Pair[string, V] {
	sorted := SortedOrder(pairs, n)
	if len(sorted) == 0 {
		return sorted
	}

	var (
		ordered = make([]lookup.Pair[string, V], 0, len(sorted))
		level   = [][]lookup.Pair[string, V]{sorted}
	)
	for len(level) > 0 {
		var below [][]lookup.Pair[string, V]
		for _, span := range level {
			mid := len(span) / 2
			ordered = append(ordered, span[mid])
			if left := span[:mid]; len(left) > 0 {
				below = append(below, left)
			}
			if right := span[mid+1:]; len(right) > 0 {
				below = append(below, right)
			}
		}
		level = below
	}
	return ordered
}

// ShuffledOrder returns the pairs in a pseudo-random order determined by
// the seed.
func ShuffledOrder[V any](pairs []lookup.Pair[string, V], seed int64) []lookup.Pair[string, V] {
	if pairs == nil {
		return nil
	}

	shuffled := make([]lookup.Pair[string, V], len(pairs))
	copy(shuffled, pairs)

	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
