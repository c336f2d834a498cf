// Package keyset implements a crit-bit tree holding a set of strings.
//
// Builders use it to track the normalized keys seen so far and to reject
// duplicates. Keys come back out in byte order, which makes the set a cheap
// source of sorted input as well.
package keyset

// ref holds either a key (leaf) or a pointer to an inner node.
type ref struct {
	key  string
	node *node
}

type node struct {
	child [2]ref
	// off is the offset of the differing byte
	off int
	// bit is the single critical bit of the differing unit
	bit uint16
}

// unit returns the byte at off tagged with a presence bit, so a key that
// ends before off differs from one holding a zero byte there.
func unit(key string, off int) uint16 {
	if off < len(key) {
		return 0x100 | uint16(key[off])
	}
	return 0
}

// dir calculates the direction for the given key.
func (n *node) dir(key string) byte {
	if unit(key, n.off)&n.bit != 0 {
		return 1
	}
	return 0
}

// Set is a crit-bit set of strings. The zero value is an empty set.
//
// The empty string is never a member.
type Set struct {
	size int
	root ref
}

// New returns a set holding the given keys.
func New(keys ...string) *Set {
	set := &Set{}
	for _, key := range keys {
		set.Add(key)
	}
	return set
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	return s.size
}

func (s *Set) empty() bool {
	return s.root.node == nil && s.root.key == ""
}

// Has reports whether the key is a member.
func (s *Set) Has(key string) bool {
	if key == "" || s.empty() {
		return false
	}
	// walk for best member
	p := s.root
	for p.node != nil {
		p = p.node.child[p.node.dir(key)]
	}
	return p.key == key
}

// Add inserts the key. It returns false if the key was already present or
// is empty.
func (s *Set) Add(key string) bool {
	if key == "" {
		return false
	}
	if s.empty() {
		s.root.key = key
		s.size++
		return true
	}
	// walk for best member
	p := &s.root
	for p.node != nil {
		p = &p.node.child[p.node.dir(key)]
	}

	// find the differing unit
	var off int
	var ch, bit uint16
	for off = 0; ; off++ {
		ch = unit(p.key, off)
		kch := unit(key, off)
		if ch != kch {
			bit = ch ^ kch
			break
		}
		if ch == 0 {
			// key exists
			return false
		}
	}

	// keep only the most significant differing bit
	bit |= bit >> 1
	bit |= bit >> 2
	bit |= bit >> 4
	bit |= bit >> 8
	bit = bit &^ (bit >> 1)

	var ndir byte
	if ch&bit != 0 {
		ndir = 1
	}

	nn := &node{off: off, bit: bit}
	nn.child[1-ndir].key = key

	// walk for the insertion point
	wp := &s.root
	for wp.node != nil {
		n := wp.node
		if n.off > off || n.off == off && n.bit < bit {
			break
		}
		wp = &n.child[n.dir(key)]
	}
	nn.child[ndir] = *wp
	wp.node = nn
	wp.key = ""
	s.size++

	return true
}

// Keys returns all members in byte order.
func (s *Set) Keys() []string {
	keys := make([]string, 0, s.size)
	if s.empty() {
		return keys
	}

	// walk the tree without function recursion
	stack := []*ref{&s.root}
	for l := len(stack); l > 0; l = len(stack) {
		p := stack[l-1]
		stack = stack[:l-1]

		if p.node == nil {
			keys = append(keys, p.key)
		} else {
			stack = append(stack, &p.node.child[1], &p.node.child[0])
		}
	}
	return keys
}
