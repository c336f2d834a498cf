// Package hashtrie implements a read-only dictionary shaped as a binary trie
// over the bits of each key's hash code.
//
// Building walks the hash from its least significant bit upwards, taking the
// even branch for a zero bit and the odd branch for a one bit, until no set
// bits remain. The node reached holds a bucket of entries. Keys whose hashes
// coincide share a bucket and are told apart with Comparer.Equal, so a
// lookup costs at most 31 steps plus a short bucket scan.
//
// Two layouts are provided: Trie links heap-allocated nodes by pointer,
// FlatTrie keeps all nodes in a single slice addressed by index. Both answer
// identically for the same input.
package hashtrie

import (
	"fmt"
	"math"

	"github.com/aglyzov/go-lookup/lookup"
)

// hashMask clears the sign bit of a 32-bit hash code.
const hashMask uint32 = math.MaxInt32

// Comparer supplies the equality and hash code used to place and find keys.
// Equal keys must have equal hashes. Every normalize.Normalizer satisfies
// Comparer[string].
//
// If a Comparer also implements Eligible(K) bool, keys it reports as
// ineligible are rejected at construction time. Otherwise the zero K (""
// for strings) is rejected.
type Comparer[K any] interface {
	Equal(a, b K) bool
	Hash(key K) uint32
}

// Stats describes the shape of a built trie.
type Stats struct {
	Nodes     int // all nodes including the root
	Buckets   int // nodes holding at least one entry
	MaxBucket int // entries in the largest bucket
	MaxDepth  int // longest path from the root, in edges
}

func checkInput[K any](isNil bool, cmp Comparer[K]) error {
	if isNil {
		return fmt.Errorf("hashtrie: %w", lookup.ErrNilInput)
	}
	if cmp == nil {
		return fmt.Errorf("hashtrie: %w", lookup.ErrNilNormalizer)
	}
	return nil
}

func checkKey[K comparable](cmp Comparer[K], key K) error {
	var eligible bool
	if e, ok := cmp.(interface{ Eligible(K) bool }); ok {
		eligible = e.Eligible(key)
	} else {
		var zero K
		eligible = key != zero
	}
	if !eligible {
		return fmt.Errorf("hashtrie: %w: %#v", lookup.ErrEmptyKey, key)
	}
	return nil
}

// scan returns the index of the bucket entry equal to key, or -1.
func scan[K comparable, V any](values []lookup.Pair[K, V], bucket []int32, cmp Comparer[K], key K) int32 {
	for _, idx := range bucket {
		if cmp.Equal(key, values[idx].Key) {
			return idx
		}
	}
	return -1
}

func keysOf[K comparable, V any](values []lookup.Pair[K, V]) []K {
	keys := make([]K, len(values))
	for i := range values {
		keys[i] = values[i].Key
	}
	return keys
}

func notFound[K any](key K) error {
	return fmt.Errorf("%w: %#v", lookup.ErrNotFound, key)
}

func duplicate[K any](key K) error {
	return fmt.Errorf("hashtrie: %w: %#v", lookup.ErrDuplicateKey, key)
}
