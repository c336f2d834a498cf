package tst

import (
	"github.com/aglyzov/go-lookup/lookup"
	"github.com/aglyzov/go-lookup/normalize"
)

// none marks an absent child or value index
const none int32 = -1

type flatNode struct {
	ch         rune
	lo, eq, hi int32
	val        int32 // index into values and lengths, none unless terminal
}

func newFlatNode(r rune) flatNode {
	return flatNode{ch: r, lo: none, eq: none, hi: none, val: none}
}

// FlatTree is the ternary search tree with all nodes stored in one slice;
// the root lives at index 0. Terminal nodes refer to their value by index
// into a parallel slice instead of holding it inline.
type FlatTree[V any] struct {
	nodes   []flatNode
	values  []V
	lengths []int32 // key lengths in characters, for BalanceFactor
	keys    []string
	norm    normalize.Normalizer
}

var (
	_ lookup.Lookup[string, any] = (*FlatTree[any])(nil)
	_ lookup.Balanced            = (*FlatTree[any])(nil)
)

// NewFlat builds a FlatTree inserting the pairs in the given order. See New.
func NewFlat[V any](pairs []lookup.Pair[string, V], n normalize.Normalizer) (*FlatTree[V], error) {
	if err := checkInput(pairs, n); err != nil {
		return nil, err
	}

	var (
		t = &FlatTree[V]{
			values:  make([]V, 0, len(pairs)),
			lengths: make([]int32, 0, len(pairs)),
			keys:    make([]string, 0, len(pairs)),
			norm:    n,
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

// add appends a node and returns its index.
func (t *FlatTree[V]) add(r rune) int32 {
	t.nodes = append(t.nodes, newFlatNode(r))
	return int32(len(t.nodes) - 1)
}

// insert places the key, updating node slots in place: no reader can see
// the tree before the build completes.
func (t *FlatTree[V]) insert(key string, val V) {
	r, size := next(key)
	if len(t.nodes) == 0 {
		t.add(r)
	}

	var (
		idx    int32
		length int32
	)
	for {
		switch ch := t.nodes[idx].ch; {
		case r == ch:
			key = key[size:]
			length++
			if key == "" {
				t.nodes[idx].val = int32(len(t.values))
				t.values = append(t.values, val)
				t.lengths = append(t.lengths, length)
				return
			}
			r, size = next(key)
			if t.nodes[idx].eq == none {
				eq := t.add(r)
				t.nodes[idx].eq = eq
			}
			idx = t.nodes[idx].eq
		case r < ch:
			if t.nodes[idx].lo == none {
				lo := t.add(r)
				t.nodes[idx].lo = lo
			}
			idx = t.nodes[idx].lo
		default:
			if t.nodes[idx].hi == none {
				hi := t.add(r)
				t.nodes[idx].hi = hi
			}
			idx = t.nodes[idx].hi
		}
	}
}

// TryGet returns the value associated with the key.
func (t *FlatTree[V]) TryGet(key string) (V, bool) {
	var zero V

	key = t.norm.Normalize(key)
	if key == "" || len(t.nodes) == 0 {
		return zero, false
	}

	var (
		idx     int32
		r, size = next(key)
	)
	for idx != none {
		n := &t.nodes[idx]
		switch {
		case r == n.ch:
			key = key[size:]
			if key == "" {
				if n.val != none {
					return t.values[n.val], true
				}
				return zero, false
			}
			r, size = next(key)
			idx = n.eq
		case r < n.ch:
			idx = n.lo
		default:
			idx = n.hi
		}
	}

	return zero, false
}

// Get returns the value associated with the key or lookup.ErrNotFound.
func (t *FlatTree[V]) Get(key string) (V, error) {
	val, ok := t.TryGet(key)
	if !ok {
		return val, notFound(key)
	}
	return val, nil
}

// Keys returns the original keys in insertion order.
func (t *FlatTree[V]) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Count returns the number of stored keys.
func (t *FlatTree[V]) Count() int {
	return len(t.keys)
}

// BalanceFactor returns the mean ratio of node depth to key length. See
// Tree.BalanceFactor.
func (t *FlatTree[V]) BalanceFactor() float64 {
	var acc ratio

	// children are always appended after their parent, so one forward
	// pass sees every parent depth before its children
	depth := make([]int, len(t.nodes))
	if len(depth) > 0 {
		depth[0] = 1
	}
	for i, n := range t.nodes {
		if n.val != none {
			acc.add(depth[i], t.lengths[n.val])
		}
		for _, child := range [...]int32{n.lo, n.eq, n.hi} {
			if child != none {
				depth[child] = depth[i] + 1
			}
		}
	}

	return acc.mean()
}
