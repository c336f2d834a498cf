package hashtrie

import "github.com/aglyzov/go-lookup/lookup"

type node struct {
	// child[0] follows a zero (even) bit, child[1] a one (odd) bit
	child  [2]*node
	bucket []int32
}

// Trie is the pointer-linked hash-bit trie.
type Trie[K comparable, V any] struct {
	root   *node
	values []lookup.Pair[K, V]
	cmp    Comparer[K]
}

var _ lookup.Lookup[string, any] = (*Trie[string, any])(nil)

// New builds a Trie from a map. Entries are inserted in map iteration
// order, which only affects the order of Keys and of bucket scans.
func New[K comparable, V any](data map[K]V, cmp Comparer[K]) (*Trie[K, V], error) {
	if err := checkInput(data == nil, cmp); err != nil {
		return nil, err
	}
	return FromPairs(lookup.Pairs(data), cmp)
}

// FromPairs builds a Trie inserting the pairs in the given order.
func FromPairs[K comparable, V any](pairs []lookup.Pair[K, V], cmp Comparer[K]) (*Trie[K, V], error) {
	if err := checkInput(pairs == nil, cmp); err != nil {
		return nil, err
	}

	t := &Trie[K, V]{
		root:   &node{},
		values: make([]lookup.Pair[K, V], 0, len(pairs)),
		cmp:    cmp,
	}

	for _, pair := range pairs {
		if err := checkKey(cmp, pair.Key); err != nil {
			return nil, err
		}

		n := t.root
		for hash := cmp.Hash(pair.Key) & hashMask; hash > 0; hash >>= 1 {
			bit := hash & 1
			if n.child[bit] == nil {
				n.child[bit] = &node{}
			}
			n = n.child[bit]
		}

		if scan(t.values, n.bucket, cmp, pair.Key) >= 0 {
			return nil, duplicate(pair.Key)
		}

		t.values = append(t.values, pair)
		n.bucket = append(n.bucket, int32(len(t.values)-1))
	}

	return t, nil
}

// TryGet returns the value associated with the key.
func (t *Trie[K, V]) TryGet(key K) (V, bool) {
	n := t.root
	for hash := t.cmp.Hash(key) & hashMask; hash > 0; hash >>= 1 {
		if n = n.child[hash&1]; n == nil {
			var zero V
			return zero, false
		}
	}

	if idx := scan(t.values, n.bucket, t.cmp, key); idx >= 0 {
		return t.values[idx].Val, true
	}

	var zero V
	return zero, false
}

// Get returns the value associated with the key or lookup.ErrNotFound.
func (t *Trie[K, V]) Get(key K) (V, error) {
	val, ok := t.TryGet(key)
	if !ok {
		return val, notFound(key)
	}
	return val, nil
}

// Keys returns the original keys in insertion order.
func (t *Trie[K, V]) Keys() []K {
	return keysOf(t.values)
}

// Count returns the number of stored keys.
func (t *Trie[K, V]) Count() int {
	return len(t.values)
}

// Stats walks the trie and reports its shape.
func (t *Trie[K, V]) Stats() Stats {
	type visit struct {
		n     *node
		depth int
	}

	var (
		stats Stats
		stack = []visit{{t.root, 0}}
	)

	// walk the trie without function recursion
	for l := len(stack); l > 0; l = len(stack) {
		v := stack[l-1]
		stack = stack[:l-1]

		stats.Nodes++
		stats.MaxDepth = max(stats.MaxDepth, v.depth)
		if size := len(v.n.bucket); size > 0 {
			stats.Buckets++
			stats.MaxBucket = max(stats.MaxBucket, size)
		}

		for _, child := range v.n.child {
			if child != nil {
				stack = append(stack, visit{child, v.depth + 1})
			}
		}
	}

	return stats
}
