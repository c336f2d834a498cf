package normalize

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglyzov/go-lookup/lookup"
)

func TestDefault_Normalize(t *testing.T) {
	t.Parallel()

	for _, tcase := range []*struct {
		Raw string
		Exp string
	}{
		{"", ""},
		{"   ", ""},
		{"\t\n", ""},
		{"abc", "abc"},
		{"ABC", "abc"},
		{"  Hello World  ", "hello world"},
		{"Café", "cafe"},
		{"  ÉCOLE ", "ecole"},
		{"Ärger", "arger"},
		{"ﬁle", "file"},
		{"naïve", "naive"},
		{"Абвгд", "абвгд"},
	} {
		var (
			tcase = tcase
			name  = fmt.Sprintf("%#v", tcase.Raw)
		)

		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tcase.Exp, Default.Normalize(tcase.Raw))
			assert.Equal(t, tcase.Exp != "", Default.Eligible(tcase.Raw))
		})
	}
}

func TestDefault_EqualHash(t *testing.T) {
	t.Parallel()

	for _, tcase := range []*struct {
		A, B string
		Exp  bool
	}{
		{"abc", "abc", true},
		{"abc", "ABC", true},
		{"Café", "cafe", true},
		{" x ", "X", true},
		{"abc", "abd", false},
		{"abc", "ab", false},
	} {
		var (
			tcase = tcase
			name  = fmt.Sprintf("%#v,%#v", tcase.A, tcase.B)
		)

		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tcase.Exp, Default.Equal(tcase.A, tcase.B))
			if tcase.Exp {
				assert.Equal(t, Default.Hash(tcase.A), Default.Hash(tcase.B))
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, " Abc ", Identity.Normalize(" Abc "))
	assert.False(t, Identity.Equal("abc", "ABC"))
	assert.True(t, Identity.Eligible(" "))
	assert.False(t, Identity.Eligible(""))
	assert.Equal(t, HashString("abc"), Identity.Hash("abc"))
}

func TestHashString_MatchesFNV(t *testing.T) {
	t.Parallel()

	fake := gofakeit.New(1234567890)

	for i := 0; i < 1000; i++ {
		s := fake.HipsterSentence(3)

		h := fnv.New32a()
		_, _ = h.Write([]byte(s))

		require.Equal(t, h.Sum32(), HashString(s), s)
	}

	assert.Equal(t, uint32(fnvOffset32), HashString(""))
}

func TestChain(t *testing.T) {
	t.Parallel()

	_, err := Chain()
	assert.ErrorIs(t, err, lookup.ErrNilNormalizer)

	_, err = Chain(Default, nil)
	assert.ErrorIs(t, err, lookup.ErrNilNormalizer)

	var (
		dashes = Func(func(s string) string { return strings.ReplaceAll(s, "-", "") })
		chain  Func
	)

	chain, err = Chain(Default, dashes)
	require.NoError(t, err)

	assert.Equal(t, "rockandroll", chain.Normalize(" Rock-and-Roll "))
	assert.True(t, chain.Equal("e-mail", "EMAIL"))
	assert.Equal(t, chain.Hash("e-mail"), chain.Hash("EMAIL"))
	assert.False(t, chain.Eligible(" - "))
}

func TestDefault_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		wg   sync.WaitGroup
		keys = []string{"Café", "naïve", "Ärger", "ABC", "ﬁle"}
		exp  = make([]string, len(keys))
	)

	for i, key := range keys {
		exp[i] = Default.Normalize(key)
	}

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				for i, key := range keys {
					assert.Equal(t, exp[i], Default.Normalize(key))
				}
			}
		}()
	}
	wg.Wait()
}
