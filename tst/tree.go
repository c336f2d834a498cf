package tst

import (
	"github.com/aglyzov/go-lookup/lookup"
	"github.com/aglyzov/go-lookup/normalize"
)

type node[V any] struct {
	ch         rune
	lo, eq, hi *node[V]
	isKey      bool
	keyLen     int32 // characters in the key ending here, for BalanceFactor
	val        V
}

// Tree is the pointer-linked ternary search tree.
type Tree[V any] struct {
	root *node[V]
	keys []string
	norm normalize.Normalizer
}

var (
	_ lookup.Lookup[string, any] = (*Tree[any])(nil)
	_ lookup.Balanced            = (*Tree[any])(nil)
)

// New builds a Tree inserting the pairs in the given order. Keys are
// normalized with n; a key without a normalized form or sharing one with
// an earlier key fails the whole build.
func New[V any](pairs []lookup.Pair[string, V], n normalize.Normalizer) (*Tree[V], error) {
	if err := checkInput(pairs, n); err != nil {
		return nil, err
	}

	var (
		t = &Tree[V]{
			keys: make([]string, 0, len(pairs)),
			norm: n,
		}
		checker = keyChecker{norm: n}
	)

	for _, pair := range pairs {
		key, err := checker.check(pair.Key)
		if err != nil {
			return nil, err
		}
		t.insert(key, pair.Val)
		t.keys = append(t.keys, pair.Key)
	}

	return t, nil
}

func (t *Tree[V]) insert(key string, val V) {
	r, size := next(key)
	if t.root == nil {
		t.root = &node[V]{ch: r}
	}

	var (
		n      = t.root
		length int32
	)
	for {
		switch {
		case r == n.ch:
			key = key[size:]
			length++
			if key == "" {
				n.isKey = true
				n.keyLen = length
				n.val = val
				return
			}
			r, size = next(key)
			if n.eq == nil {
				n.eq = &node[V]{ch: r}
			}
			n = n.eq
		case r < n.ch:
			if n.lo == nil {
				n.lo = &node[V]{ch: r}
			}
			n = n.lo
		default:
			if n.hi == nil {
				n.hi = &node[V]{ch: r}
			}
			n = n.hi
		}
	}
}

// TryGet returns the value associated with the key.
func (t *Tree[V]) TryGet(key string) (V, bool) {
	var zero V

	key = t.norm.Normalize(key)
	if key == "" {
		return zero, false
	}

	var (
		n       = t.root
		r, size = next(key)
	)
	for n != nil {
		switch {
		case r == n.ch:
			key = key[size:]
			if key == "" {
				if n.isKey {
					return n.val, true
				}
				return zero, false
			}
			r, size = next(key)
			n = n.eq
		case r < n.ch:
			n = n.lo
		default:
			n = n.hi
		}
	}

	return zero, false
}

// Get returns the value associated with the key or lookup.ErrNotFound.
func (t *Tree[V]) Get(key string) (V, error) {
	val, ok := t.TryGet(key)
	if !ok {
		return val, notFound(key)
	}
	return val, nil
}

// Keys returns the original keys in insertion order.
func (t *Tree[V]) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Count returns the number of stored keys.
func (t *Tree[V]) Count() int {
	return len(t.keys)
}

// BalanceFactor returns the mean ratio of node depth (the root being at
// depth 1) to key length over all stored keys, or 0 for an empty tree.
// It is 1 when every key is reached along middle links only.
func (t *Tree[V]) BalanceFactor() float64 {
	if t.root == nil {
		return 0
	}

	type visit struct {
		n     *node[V]
		depth int
	}

	var (
		acc   ratio
		stack = []visit{{t.root, 1}}
	)

	// walk the tree without function recursion
	for l := len(stack); l > 0; l = len(stack) {
		v := stack[l-1]
		stack = stack[:l-1]

		if v.n.isKey {
			acc.add(v.depth, v.n.keyLen)
		}
		for _, child := range [...]*node[V]{v.n.lo, v.n.eq, v.n.hi} {
			if child != nil {
				stack = append(stack, visit{child, v.depth + 1})
			}
		}
	}

	return acc.mean()
}
