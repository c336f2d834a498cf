// Package lookup defines the capability shared by every read-only dictionary
// in this module: exact-match retrieval of a value by key.
//
// Structures implementing Lookup are built once from their input and never
// change afterwards, so any number of goroutines may query them at the same
// time without locking.
package lookup

import "errors"

var (
	// ErrNilInput is returned when a constructor receives a nil collection.
	ErrNilInput = errors.New("nil input")
	// ErrNilNormalizer is returned when a constructor receives no normalizer or comparer.
	ErrNilNormalizer = errors.New("nil normalizer")
	// ErrEmptyKey is returned when a key has no eligible normalized form.
	ErrEmptyKey = errors.New("key normalizes to an empty string")
	// ErrDuplicateKey is returned when two keys share a normalized form.
	ErrDuplicateKey = errors.New("duplicate normalized key")
	// ErrNotFound is returned by Get for an absent key.
	ErrNotFound = errors.New("key not found")
)

// Pair is a key with its associated value.
type Pair[K comparable, V any] struct {
	Key K
	Val V
}

// Lookup is a read-only key-value dictionary.
type Lookup[K comparable, V any] interface {
	// TryGet returns the value stored for the key and whether it was found.
	// An absent key yields the zero value and false, never an error.
	TryGet(key K) (V, bool)
	// Get is the strict form of TryGet: an absent key yields ErrNotFound.
	Get(key K) (V, error)
	// Keys returns the original keys in insertion order.
	Keys() []K
	// Count returns the number of stored keys.
	Count() int
}

// Balanced is implemented by structures whose shape depends on insertion
// order. Values close to 1 mean near-optimal lookup paths.
type Balanced interface {
	BalanceFactor() float64
}

// Pairs converts a map into a slice of pairs. The order follows map
// iteration and is therefore unspecified.
func Pairs[K comparable, V any](data map[K]V) []Pair[K, V] {
	if data == nil {
		return nil
	}
	pairs := make([]Pair[K, V], 0, len(data))
	for key, val := range data {
		pairs = append(pairs, Pair[K, V]{Key: key, Val: val})
	}
	return pairs
}
