package hashtrie

import "github.com/aglyzov/go-lookup/lookup"

// none marks an absent child index
const none int32 = -1

type flatNode struct {
	child  [2]int32
	bucket []int32
}

func newFlatNode() flatNode {
	return flatNode{child: [2]int32{none, none}}
}

// FlatTrie is the hash-bit trie with all nodes stored in one slice; the
// root lives at index 0 and children are referenced by index.
type FlatTrie[K comparable, V any] struct {
	nodes  []flatNode
	values []lookup.Pair[K, V]
	cmp    Comparer[K]
}

var _ lookup.Lookup[string, any] = (*FlatTrie[string, any])(nil)

// NewFlat builds a FlatTrie from a map. See New.
func NewFlat[K comparable, V any](data map[K]V, cmp Comparer[K]) (*FlatTrie[K, V], error) {
	if err := checkInput(data == nil, cmp); err != nil {
		return nil, err
	}
	return FlatFromPairs(lookup.Pairs(data), cmp)
}

// FlatFromPairs builds a FlatTrie inserting the pairs in the given order.
func FlatFromPairs[K comparable, V any](pairs []lookup.Pair[K, V], cmp Comparer[K]) (*FlatTrie[K, V], error) {
	if err := checkInput(pairs == nil, cmp); err != nil {
		return nil, err
	}

	var (
		nodes  = []flatNode{newFlatNode()}
		values = make([]lookup.Pair[K, V], 0, len(pairs))
	)

	for _, pair := range pairs {
		if err := checkKey(cmp, pair.Key); err != nil {
			return nil, err
		}

		idx := int32(0)
		for hash := cmp.Hash(pair.Key) & hashMask; hash > 0; hash >>= 1 {
			bit := hash & 1
			next := nodes[idx].child[bit]
			if next == none {
				nodes = append(nodes, newFlatNode())
				next = int32(len(nodes) - 1)
				// no reader exists yet, update the parent in place
				nodes[idx].child[bit] = next
			}
			idx = next
		}

		if scan(values, nodes[idx].bucket, cmp, pair.Key) >= 0 {
			return nil, duplicate(pair.Key)
		}

		values = append(values, pair)
		nodes[idx].bucket = append(nodes[idx].bucket, int32(len(values)-1))
	}

	return &FlatTrie[K, V]{
		nodes:  nodes,
		values: values,
		cmp:    cmp,
	}, nil
}

// TryGet returns the value associated with the key.
func (t *FlatTrie[K, V]) TryGet(key K) (V, bool) {
	idx := int32(0)
	for hash := t.cmp.Hash(key) & hashMask; hash > 0; hash >>= 1 {
		if idx = t.nodes[idx].child[hash&1]; idx == none {
			var zero V
			return zero, false
		}
	}

	if vi := scan(t.values, t.nodes[idx].bucket, t.cmp, key); vi >= 0 {
		return t.values[vi].Val, true
	}

	var zero V
	return zero, false
}

// Get returns the value associated with the key or lookup.ErrNotFound.
func (t *FlatTrie[K, V]) Get(key K) (V, error) {
	val, ok := t.TryGet(key)
	if !ok {
		return val, notFound(key)
	}
	return val, nil
}

// Keys returns the original keys in insertion order.
func (t *FlatTrie[K, V]) Keys() []K {
	return keysOf(t.values)
}

// Count returns the number of stored keys.
func (t *FlatTrie[K, V]) Count() int {
	return len(t.values)
}

// Stats reports the shape of the trie.
func (t *FlatTrie[K, V]) Stats() Stats {
	stats := Stats{Nodes: len(t.nodes)}

	for _, n := range t.nodes {
		if size := len(n.bucket); size > 0 {
			stats.Buckets++
			stats.MaxBucket = max(stats.MaxBucket, size)
		}
	}

	// children are always appended after their parent, so one forward
	// pass sees every parent depth before its children
	depth := make([]int, len(t.nodes))
	for i, n := range t.nodes {
		for _, child := range n.child {
			if child != none {
				depth[child] = depth[i] + 1
				stats.MaxDepth = max(stats.MaxDepth, depth[child])
			}
		}
	}

	return stats
}
