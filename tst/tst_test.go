package tst

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/aglyzov/go-lookup/lookup"
	"github.com/aglyzov/go-lookup/normalize"
)

type tree interface {
	lookup.Lookup[string, int]
	lookup.Balanced
}

type builder func([]lookup.Pair[string, int], normalize.Normalizer) (tree, error)

var builders = []struct {
	Name  string
	Build builder
}{
	{"Tree", func(pairs []lookup.Pair[string, int], n normalize.Normalizer) (tree, error) {
		t, err := New(pairs, n)
		if err != nil {
			return nil, err
		}
		return t, nil
	}},
	{"FlatTree", func(pairs []lookup.Pair[string, int], n normalize.Normalizer) (tree, error) {
		t, err := NewFlat(pairs, n)
		if err != nil {
			return nil, err
		}
		return t, nil
	}},
}

func pairsOf(keys ...string) []lookup.Pair[string, int] {
	pairs := make([]lookup.Pair[string, int], len(keys))
	for i, key := range keys {
		pairs[i] = lookup.Pair[string, int]{Key: key, Val: i + 1}
	}
	return pairs
}

// fakePairs returns pairs with distinct non-empty normalized keys.
func fakePairs(total int, seed int64, gen func(*gofakeit.Faker) string) []lookup.Pair[string, int] {
	var (
		fake  = gofakeit.New(seed)
		seen  = map[string]bool{}
		pairs = make([]lookup.Pair[string, int], 0, total)
	)
	for len(pairs) < total {
		key := gen(fake)
		if norm := normalize.Default.Normalize(key); norm != "" && !seen[norm] {
			seen[norm] = true
			pairs = append(pairs, lookup.Pair[string, int]{Key: key, Val: len(pairs)})
		}
	}
	return pairs
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			_, err := b.Build(nil, normalize.Default)
			assert.ErrorIs(t, err, lookup.ErrNilInput)

			_, err = b.Build(pairsOf("a"), nil)
			assert.ErrorIs(t, err, lookup.ErrNilNormalizer)

			_, err = b.Build(pairsOf("a", ""), normalize.Identity)
			assert.ErrorIs(t, err, lookup.ErrEmptyKey)

			_, err = b.Build(pairsOf("a", " \t "), normalize.Default)
			assert.ErrorIs(t, err, lookup.ErrEmptyKey)

			_, err = b.Build(pairsOf("cat", "dog", "cat"), normalize.Identity)
			assert.ErrorIs(t, err, lookup.ErrDuplicateKey)

			_, err = b.Build(pairsOf("Naïve", "cat", "NAIVE "), normalize.Default)
			assert.ErrorIs(t, err, lookup.ErrDuplicateKey)
			assert.ErrorContains(t, err, "NAIVE ")
		})
	}
}

func TestTryGet(t *testing.T) {
	t.Parallel()

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			l, err := b.Build(pairsOf("cats", "cat", "cup", "Bat", "Straße", "café", "ab"), normalize.Default)
			require.NoError(t, err)

			for _, tcase := range []*struct {
				Key    string
				ExpVal int
				ExpOK  bool
			}{
				{"cats", 1, true},
				{"cat", 2, true},
				{"CAT", 2, true},
				{"cup", 3, true},
				{"bat", 4, true},
				{" BAT ", 4, true},
				{"straße", 5, true},
				{"cafe", 6, true},
				{"Café", 6, true},
				{"ab", 7, true},
				{"", 0, false},
				{"   ", 0, false},
				{"c", 0, false},   // prefix, not a key
				{"ca", 0, false},  // prefix, not a key
				{"cu", 0, false},  // prefix, not a key
				{"catss", 0, false},
				{"a", 0, false},
				{"abc", 0, false},
				{"bar", 0, false},
				{"dog", 0, false},
				{"\xff", 0, false},
			} {
				var (
					tcase = tcase
					name  = fmt.Sprintf("%#v", tcase.Key)
				)

				t.Run(name, func(t *testing.T) {
					val, ok := l.TryGet(tcase.Key)
					assert.Equal(t, tcase.ExpOK, ok)
					assert.Equal(t, tcase.ExpVal, val)

					val, err := l.Get(tcase.Key)
					if tcase.ExpOK {
						assert.NoError(t, err)
						assert.Equal(t, tcase.ExpVal, val)
					} else {
						assert.ErrorIs(t, err, lookup.ErrNotFound)
					}
				})
			}

			assert.Equal(t, 7, l.Count())
			assert.Equal(t, []string{"cats", "cat", "cup", "Bat", "Straße", "café", "ab"}, l.Keys())
		})
	}
}

func TestTryGet_InvalidUTF8(t *testing.T) {
	t.Parallel()

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			l, err := b.Build(pairsOf("a\xff", "a\xfe", "a�"), normalize.Identity)
			require.NoError(t, err)

			for i, key := range []string{"a\xff", "a\xfe", "a�"} {
				val, ok := l.TryGet(key)
				assert.True(t, ok, key)
				assert.Equal(t, i+1, val, key)
			}

			_, ok := l.TryGet("a\xfd")
			assert.False(t, ok)
		})
	}
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			l, err := b.Build([]lookup.Pair[string, int]{}, normalize.Default)
			require.NoError(t, err)

			assert.Equal(t, 0, l.Count())
			assert.NotNil(t, l.Keys())
			assert.Empty(t, l.Keys())
			assert.Equal(t, 0.0, l.BalanceFactor())

			_, ok := l.TryGet("a")
			assert.False(t, ok)
			_, err = l.Get("a")
			assert.ErrorIs(t, err, lookup.ErrNotFound)
		})
	}
}

func TestKeys_Copy(t *testing.T) {
	t.Parallel()

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			l, err := b.Build(pairsOf("a", "b"), normalize.Identity)
			require.NoError(t, err)

			keys := l.Keys()
			keys[0] = "mutated"

			assert.Equal(t, []string{"a", "b"}, l.Keys())
		})
	}
}

func TestBalanceFactor(t *testing.T) {
	t.Parallel()

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			for _, tcase := range []*struct {
				Keys []string
				Exp  float64
			}{
				{[]string{"x"}, 1},
				{[]string{"hello"}, 1},
				{[]string{"Привет"}, 1},
				{[]string{"a", "b", "c"}, 2},       // (1+2+3)/3
				{[]string{"b", "a", "c"}, 5.0 / 3}, // (1+2+2)/3
				{[]string{"ab", "a"}, 1},           // (2/2+1/1)/2
				{[]string{"a", "ab", "b"}, 4.0 / 3},
			} {
				var (
					tcase = tcase
					name  = fmt.Sprintf("%q", tcase.Keys)
				)

				t.Run(name, func(t *testing.T) {
					l, err := b.Build(pairsOf(tcase.Keys...), normalize.Identity)
					require.NoError(t, err)

					assert.InDelta(t, tcase.Exp, l.BalanceFactor(), 1e-9)
				})
			}
		})
	}
}

func TestBalanceFactor_MedianOrder(t *testing.T) {
	t.Parallel()

	sets := map[string][]lookup.Pair[string, int]{
		"letters": pairsOf("h", "c", "a", "e", "g", "b", "f", "d"),
		"words":   pairsOf("apple", "banana", "cherry", "date", "elder", "fig", "grape", "honeydew", "kiwi"),
		"prefixes": pairsOf(
			"a", "ab", "abc", "abd", "abe", "b", "ba", "bab", "bac", "c", "ca", "cab",
		),
	}
	for i, size := range []int{8, 16, 64, 500, 5_000} {
		sets[fmt.Sprintf("fake-%d", size)] = fakePairs(size, int64(i), func(f *gofakeit.Faker) string {
			return f.Word() + " " + f.Word()
		})
	}

	for name, pairs := range sets {
		var (
			name  = name
			pairs = pairs
		)

		t.Run(name, func(t *testing.T) {
			for _, b := range builders {
				sorted, err := b.Build(SortedOrder(pairs, normalize.Default), normalize.Default)
				require.NoError(t, err)
				median, err := b.Build(MedianOrder(pairs, normalize.Default), normalize.Default)
				require.NoError(t, err)

				assert.LessOrEqual(t, median.BalanceFactor(), sorted.BalanceFactor(), b.Name)
				assert.GreaterOrEqual(t, median.BalanceFactor(), 1.0, b.Name)
			}
		})
	}
}

func TestLayoutParity(t *testing.T) {
	t.Parallel()

	pairs := fakePairs(5_000, 42, func(f *gofakeit.Faker) string {
		return f.HipsterSentence(2)
	})

	var probes []string
	for _, pair := range pairs {
		probes = append(probes, pair.Key, reverse(pair.Key), pair.Key[:len(pair.Key)/2])
	}

	for _, order := range []struct {
		Name  string
		Pairs []lookup.Pair[string, int]
	}{
		{"input", pairs},
		{"sorted", SortedOrder(pairs, normalize.Default)},
		{"median", MedianOrder(pairs, normalize.Default)},
		{"shuffled", ShuffledOrder(pairs, 7)},
	} {
		t.Run(order.Name, func(t *testing.T) {
			tr, err := New(order.Pairs, normalize.Default)
			require.NoError(t, err)
			ft, err := NewFlat(order.Pairs, normalize.Default)
			require.NoError(t, err)

			type result struct {
				Val int
				OK  bool
			}
			var exp, got []result

			for _, key := range probes {
				val, ok := tr.TryGet(key)
				exp = append(exp, result{val, ok})

				val, ok = ft.TryGet(key)
				got = append(got, result{val, ok})
			}

			if diff := cmp.Diff(exp, got); diff != "" {
				t.Errorf("FlatTree disagrees with Tree (-Tree +FlatTree):\n%s", diff)
			}
			assert.Equal(t, tr.Keys(), ft.Keys())
			assert.InDelta(t, tr.BalanceFactor(), ft.BalanceFactor(), 1e-9)

			for _, pair := range order.Pairs {
				val, ok := ft.TryGet(pair.Key)
				require.True(t, ok, pair.Key)
				require.Equal(t, pair.Val, val, pair.Key)
			}
		})
	}
}

func TestConcurrentReaders(t *testing.T) {
	t.Parallel()

	const readers = 8

	var (
		pairs = fakePairs(2_000, 7, func(f *gofakeit.Faker) string { return f.Word() + f.Word() })
		words []string
	)
	for _, pair := range pairs {
		words = append(words, pair.Key, reverse(pair.Key))
	}

	for _, b := range builders {
		t.Run(b.Name, func(t *testing.T) {
			t.Parallel()

			l, err := b.Build(MedianOrder(pairs, normalize.Default), normalize.Default)
			require.NoError(t, err)

			type result struct {
				val int
				ok  bool
			}
			exp := make(map[string]result, len(words))
			for _, word := range words {
				val, ok := l.TryGet(word)
				exp[word] = result{val, ok}
			}

			var g errgroup.Group
			for r := 0; r < readers; r++ {
				rnd := rand.New(rand.NewSource(int64(r)))
				g.Go(func() error {
					for i := 0; i < 10_000; i++ {
						word := words[rnd.Intn(len(words))]
						if val, ok := l.TryGet(word); (result{val, ok}) != exp[word] {
							return fmt.Errorf("%q: got (%v, %v), expected %+v", word, val, ok, exp[word])
						}
					}
					return nil
				})
			}
			assert.NoError(t, g.Wait())
		})
	}
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
