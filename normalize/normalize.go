// Package normalize maps raw keys to the canonical strings the lookup
// structures store and compare.
//
// A Normalizer must be deterministic and its Equal and Hash must agree with
// each other: two strings that are Equal always have the same Hash. The
// structures consuming it cannot detect a violation; they simply return
// wrong answers.
//
// An empty normalized form means the raw key is not eligible to be stored.
package normalize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/aglyzov/go-lookup/lookup"
)

// Normalizer converts raw keys into canonical form and compares them.
type Normalizer interface {
	// Normalize returns the canonical form of s, or "" if s is not eligible.
	Normalize(s string) string
	// Equal reports whether a and b share a canonical form.
	Equal(a, b string) bool
	// Hash returns a hash code of the canonical form of s.
	Hash(s string) uint32
}

// Func turns a pure string transform into a Normalizer.
type Func func(string) string

// Normalize returns f(s).
func (f Func) Normalize(s string) string {
	return f(s)
}

// Equal reports whether a and b are identical or share a canonical form.
func (f Func) Equal(a, b string) bool {
	return a == b || f(a) == f(b)
}

// Hash returns the FNV-1a hash of the canonical form of s.
func (f Func) Hash(s string) uint32 {
	return HashString(f(s))
}

// Eligible reports whether s has a non-empty canonical form.
func (f Func) Eligible(s string) bool {
	return f(s) != ""
}

// Identity leaves keys untouched; only "" is ineligible.
var Identity = Func(func(s string) string { return s })

// Default trims surrounding white space, strips diacritics and folds case,
// so "  Café" and "CAFE" share the canonical form "cafe".
var Default = Func(defaultForm)

func defaultForm(s string) string {
	s = strings.TrimSpace(s)

	// ascii fast path: decomposition is a no-op, folding is lowering
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(s)
	}

	// transformers keep state, build a fresh chain per call
	strip := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(strip, s); err == nil {
		s = stripped
	}

	return strings.TrimSpace(cases.Fold().String(s))
}

// Chain applies the given normalizers in order, each one receiving the
// output of the previous.
func Chain(ns ...Normalizer) (Func, error) {
	if len(ns) == 0 {
		return nil, fmt.Errorf("%w: empty chain", lookup.ErrNilNormalizer)
	}
	for i, n := range ns {
		if n == nil {
			return nil, fmt.Errorf("%w: chain member %d", lookup.ErrNilNormalizer, i)
		}
	}

	chain := make([]Normalizer, len(ns))
	copy(chain, ns)

	return func(s string) string {
		for _, n := range chain {
			s = n.Normalize(s)
		}
		return s
	}, nil
}
