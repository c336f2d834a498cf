// Package bench measures lookup structures against each other: it loads
// token lists, samples probe keys and times repeated lookups, sequentially
// or from several goroutines at once.
package bench

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aglyzov/go-lookup/lookup"
)

// ErrMismatch is returned when a concurrent reader sees a different result
// than a sequential lookup of the same key.
var ErrMismatch = errors.New("concurrent lookup mismatch")

// Getter reports whether a key is present.
type Getter func(key string) bool

// Of adapts a Lookup into a Getter.
func Of[V any](l lookup.Lookup[string, V]) Getter {
	return func(key string) bool {
		_, ok := l.TryGet(key)
		return ok
	}
}

// OfMap adapts a Go map into a Getter; the key is passed through fn first.
func OfMap[V any](m map[string]V, fn func(string) string) Getter {
	return func(key string) bool {
		_, ok := m[fn(key)]
		return ok
	}
}

// LoadTokens reads one token per line, trimming white space and skipping
// blank lines.
func LoadTokens(r io.Reader) ([]string, error) {
	var (
		tokens []string
		s      = bufio.NewScanner(r)
	)
	for s.Scan() {
		if token := strings.TrimSpace(s.Text()); token != "" {
			tokens = append(tokens, token)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	return tokens, nil
}

// Probes picks count keys at random (with repetition). Each one is reversed
// with probability reverse, so that a share of the probes is likely absent.
func Probes(keys []string, count int, seed int64, reverse float64) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("probe count must be positive, got %d", count)
	}
	if reverse < 0 || reverse > 1 {
		return nil, fmt.Errorf("reverse chance must be within [0, 1], got %v", reverse)
	}
	if len(keys) == 0 {
		return []string{}, nil
	}

	var (
		rnd    = rand.New(rand.NewSource(seed))
		probes = make([]string, count)
	)
	for i := range probes {
		key := keys[rnd.Intn(len(keys))]
		if rnd.Float64() < reverse {
			key = Reverse(key)
		}
		probes[i] = key
	}
	return probes, nil
}

// Reverse returns s with its characters in reverse order.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// Result is the outcome of a timed run.
type Result struct {
	Lookups int
	Found   int
	Elapsed time.Duration
}

// Add accumulates another run into r.
func (r *Result) Add(other Result) {
	r.Lookups += other.Lookups
	r.Found += other.Found
	r.Elapsed += other.Elapsed
}

// Time looks every probe up loops times and measures the elapsed time.
func Time(get Getter, probes []string, loops int) Result {
	var (
		found int
		start = time.Now()
	)
	for l := 0; l < loops; l++ {
		for _, key := range probes {
			if get(key) {
				found++
			}
		}
	}
	return Result{
		Lookups: loops * len(probes),
		Found:   found,
		Elapsed: time.Since(start),
	}
}

// Concurrent runs Time from the given number of goroutines at once and
// checks every answer against a sequential pass over the probes. It returns
// the combined result and the wall-clock time of the whole run.
func Concurrent(ctx context.Context, get Getter, probes []string, loops, readers int) (Result, time.Duration, error) {
	if readers <= 0 {
		return Result{}, 0, fmt.Errorf("reader count must be positive, got %d", readers)
	}

	expected := make([]bool, len(probes))
	for i, key := range probes {
		expected[i] = get(key)
	}

	var (
		results = make([]Result, readers)
		start   = time.Now()
	)

	g, ctx := errgroup.WithContext(ctx)
	for r := 0; r < readers; r++ {
		g.Go(func() error {
			res := &results[r]
			began := time.Now()
			for l := 0; l < loops; l++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for i, key := range probes {
					ok := get(key)
					if ok != expected[i] {
						return fmt.Errorf("%w: reader %d, key %q", ErrMismatch, r, key)
					}
					if ok {
						res.Found++
					}
					res.Lookups++
				}
			}
			res.Elapsed = time.Since(began)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, 0, err
	}

	var total Result
	for _, res := range results {
		total.Add(res)
	}
	return total, time.Since(start), nil
}
