// Package tst implements read-only dictionaries shaped as ternary search
// trees over the characters of normalized keys.
//
// Every node holds one character and three children: lesser characters at
// the same position go left, greater ones go right and the next character
// of a matching key goes down the middle. A node is terminal when a stored
// key ends there, so a key that is only a prefix of stored keys is not
// found unless it was stored itself.
//
// The trees never rebalance: their shape is fixed by insertion order. Feed
// keys through MedianOrder for a near-balanced tree; SortedOrder gives the
// most skewed one. BalanceFactor measures the result.
//
// Two layouts are provided: Tree links heap-allocated nodes by pointer,
// FlatTree keeps all nodes in a single slice addressed by index.
package tst

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/aglyzov/go-lookup/internal/keyset"
	"github.com/aglyzov/go-lookup/lookup"
	"github.com/aglyzov/go-lookup/normalize"
)

// next decodes the first character of s. Bytes that are not valid UTF-8
// decode to distinct values above unicode.MaxRune so they never collide
// with each other or with U+FFFD.
func next(s string) (rune, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 1 {
		return unicode.MaxRune + 1 + rune(s[0]), 1
	}
	return r, size
}

// keyChecker normalizes incoming keys and rejects ineligible and
// duplicate ones.
type keyChecker struct {
	norm normalize.Normalizer
	seen keyset.Set
}

func checkInput[V any](pairs []lookup.Pair[string, V], n normalize.Normalizer) error {
	if pairs == nil {
		return fmt.Errorf("tst: %w", lookup.ErrNilInput)
	}
	if n == nil {
		return fmt.Errorf("tst: %w", lookup.ErrNilNormalizer)
	}
	return nil
}

func (c *keyChecker) check(raw string) (string, error) {
	key := c.norm.Normalize(raw)
	if key == "" {
		return "", fmt.Errorf("tst: %w: %q", lookup.ErrEmptyKey, raw)
	}
	if !c.seen.Add(key) {
		return "", fmt.Errorf("tst: %w: %q", lookup.ErrDuplicateKey, raw)
	}
	return key, nil
}

// ratio accumulates depth-to-length ratios of terminal nodes.
type ratio struct {
	sum   float64
	count int
}

func (r *ratio) add(depth int, length int32) {
	r.sum += float64(depth) / float64(length)
	r.count++
}

func (r *ratio) mean() float64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / float64(r.count)
}

func notFound(key string) error {
	return fmt.Errorf("%w: %q", lookup.ErrNotFound, key)
}
