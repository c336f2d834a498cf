package normalize

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// HashString returns the 32-bit FNV-1a hash of s. It matches hash/fnv's
// New32a but does not allocate.
func HashString(s string) uint32 {
	h := uint32(fnvOffset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}
