package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/aglyzov/go-lookup/hashtrie"
	"github.com/aglyzov/go-lookup/internal/bench"
	"github.com/aglyzov/go-lookup/lookup"
	"github.com/aglyzov/go-lookup/normalize"
	"github.com/aglyzov/go-lookup/tst"
)

const baseline = "go map"

// subject is one structure under measurement.
type subject struct {
	name    string
	get     bench.Getter
	balance float64 // 0 when not applicable
	build   time.Duration
}

// Command returns the lookupbench command. The report goes to stdout, logs
// go to stderr.
func Command(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "lookupbench",
		Usage:     "compares lookup speed of hash-bit tries and ternary search trees with a Go map",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "tokens",
				Aliases:   []string{"t"},
				Usage:     "file with one key per line; fake words are generated when omitted",
				TakesFile: true,
				Sources:   cli.EnvVars("LOOKUPBENCH_TOKENS"),
			},
			&cli.IntFlag{
				Name:    "fake",
				Usage:   "number of fake keys to generate without --tokens",
				Value:   50_000,
				Sources: cli.EnvVars("LOOKUPBENCH_FAKE"),
			},
			&cli.IntFlag{
				Name:    "probes",
				Usage:   "number of keys sampled for lookups",
				Value:   100,
				Sources: cli.EnvVars("LOOKUPBENCH_PROBES"),
			},
			&cli.IntFlag{
				Name:    "loops",
				Usage:   "lookups of every probe per round",
				Value:   1000,
				Sources: cli.EnvVars("LOOKUPBENCH_LOOPS"),
			},
			&cli.IntFlag{
				Name:    "rounds",
				Usage:   "number of timed rounds per structure",
				Value:   5,
				Sources: cli.EnvVars("LOOKUPBENCH_ROUNDS"),
			},
			&cli.Float64Flag{
				Name:    "reverse",
				Usage:   "chance that a probe is reversed (and so most likely absent)",
				Value:   0.5,
				Sources: cli.EnvVars("LOOKUPBENCH_REVERSE"),
			},
			&cli.IntFlag{
				Name:    "seed",
				Usage:   "seed for fake keys, probe sampling and shuffling",
				Sources: cli.EnvVars("LOOKUPBENCH_SEED"),
			},
			&cli.IntFlag{
				Name:    "readers",
				Usage:   "also time this many concurrent readers per structure (0 disables)",
				Sources: cli.EnvVars("LOOKUPBENCH_READERS"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "log every timed round",
				Sources: cli.EnvVars("LOOKUPBENCH_VERBOSE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			noColor := true
			if f, ok := stderr.(*os.File); ok {
				noColor = !isatty.IsTerminal(f.Fd())
			}
			level := zerolog.InfoLevel
			if cmd.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: noColor}).
				Level(level).
				With().Timestamp().Logger()
			return action(ctx, cmd, stdout, logger)
		},
	}
}

func action(ctx context.Context, cmd *cli.Command, stdout io.Writer, logger zerolog.Logger) error {
	var (
		seed   = int64(cmd.Int("seed"))
		loops  = cmd.Int("loops")
		rounds = cmd.Int("rounds")
	)
	if loops <= 0 || rounds <= 0 {
		return fmt.Errorf("--loops and --rounds must be positive")
	}

	tokens, err := loadTokens(cmd.String("tokens"), cmd.Int("fake"), seed)
	if err != nil {
		return err
	}

	data, pairs := dedupe(tokens)
	logger.Info().Int("tokens", len(tokens)).Int("keys", len(pairs)).Msg("loaded keys")

	subjects, err := buildSubjects(data, pairs, seed, logger)
	if err != nil {
		return err
	}

	keys := make([]string, len(pairs))
	for i, pair := range pairs {
		keys[i] = pair.Key
	}
	probes, err := bench.Probes(keys, cmd.Int("probes"), seed, cmd.Float64("reverse"))
	if err != nil {
		return err
	}

	totals := make([]bench.Result, len(subjects))
	for round := 0; round < rounds; round++ {
		// run in reverse so no structure always goes first
		for i := len(subjects) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return err
			}
			totals[i].Add(bench.Time(subjects[i].get, probes, loops))
		}
		logger.Debug().Int("round", round+1).Int("of", rounds).Msg("round complete")
	}

	report(stdout, subjects, totals, cmd.Float64("reverse"))

	if readers := cmd.Int("readers"); readers > 0 {
		for _, s := range subjects {
			res, wall, err := bench.Concurrent(ctx, s.get, probes, loops, readers)
			if err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			logger.Info().
				Str("structure", s.name).
				Int("readers", readers).
				Int("lookups", res.Lookups).
				Dur("wall", wall).
				Msg("concurrent readers agree with sequential lookups")
		}
	}

	return nil
}

func loadTokens(path string, fake int, seed int64) ([]string, error) {
	if path == "" {
		if fake <= 0 {
			return nil, fmt.Errorf("--fake must be positive without --tokens")
		}
		var (
			faker  = gofakeit.New(seed)
			tokens = make([]string, fake)
		)
		for i := range tokens {
			tokens[i] = faker.Word()
			if i%2 == 1 {
				tokens[i] += faker.Word()
			}
		}
		return tokens, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return bench.LoadTokens(f)
}

// dedupe normalizes the tokens and keeps the first occurrence of every
// eligible normalized form, numbering them in order.
func dedupe(tokens []string) (map[string]int, []lookup.Pair[string, int]) {
	var (
		data  = make(map[string]int, len(tokens))
		pairs = make([]lookup.Pair[string, int], 0, len(tokens))
	)
	for _, token := range tokens {
		key := normalize.Default.Normalize(token)
		if _, dup := data[key]; key == "" || dup {
			continue
		}
		data[key] = len(pairs)
		pairs = append(pairs, lookup.Pair[string, int]{Key: key, Val: len(pairs)})
	}
	return data, pairs
}

func buildSubjects(data map[string]int, pairs []lookup.Pair[string, int], seed int64, logger zerolog.Logger) ([]subject, error) {
	var (
		n        = normalize.Default
		subjects = []subject{{name: baseline, get: bench.OfMap(data, n.Normalize)}}
	)

	for _, b := range []struct {
		name  string
		build func() (lookup.Lookup[string, int], error)
	}{
		{"hash trie", func() (lookup.Lookup[string, int], error) { return wrap(hashtrie.FromPairs(pairs, n)) }},
		{"hash trie, flat", func() (lookup.Lookup[string, int], error) { return wrap(hashtrie.FlatFromPairs(pairs, n)) }},
		{"tst, input order", func() (lookup.Lookup[string, int], error) { return wrap(tst.New(pairs, n)) }},
		{"tst, sorted", func() (lookup.Lookup[string, int], error) { return wrap(tst.New(tst.SortedOrder(pairs, n), n)) }},
		{"tst, shuffled", func() (lookup.Lookup[string, int], error) { return wrap(tst.New(tst.ShuffledOrder(pairs, seed), n)) }},
		{"tst, median", func() (lookup.Lookup[string, int], error) { return wrap(tst.New(tst.MedianOrder(pairs, n), n)) }},
		{"tst, median, flat", func() (lookup.Lookup[string, int], error) { return wrap(tst.NewFlat(tst.MedianOrder(pairs, n), n)) }},
	} {
		start := time.Now()
		l, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", b.name, err)
		}

		s := subject{name: b.name, get: bench.Of(l), build: time.Since(start)}
		event := logger.Info().Str("structure", s.name).Int("keys", l.Count()).Dur("build", s.build)
		if bl, ok := l.(lookup.Balanced); ok {
			s.balance = bl.BalanceFactor()
			event = event.Float64("balance", s.balance)
		}
		event.Msg("built")

		subjects = append(subjects, s)
	}

	return subjects, nil
}

// wrap hides the concrete pointer type so that a failed build yields a nil
// interface rather than a typed nil.
func wrap[L lookup.Lookup[string, int]](l L, err error) (lookup.Lookup[string, int], error) {
	if err != nil {
		return nil, err
	}
	return l, nil
}

func report(w io.Writer, subjects []subject, totals []bench.Result, reverse float64) {
	out := table.NewWriter()
	out.SetOutputMirror(w)
	out.SetTitle(fmt.Sprintf("reverse chance %.2f", reverse))
	out.AppendHeader(table.Row{"Structure", "Build", "Balance", "Lookups", "Found", "Elapsed", "Speed-up"})

	base := totals[0].Elapsed
	for i, s := range subjects {
		var (
			balance = "-"
			speedup = "-"
		)
		if s.balance > 0 {
			balance = fmt.Sprintf("%.3f", s.balance)
		}
		if elapsed := totals[i].Elapsed; elapsed > 0 {
			speedup = fmt.Sprintf("%.2fx", float64(base)/float64(elapsed))
		}
		out.AppendRow(table.Row{
			s.name, s.build.Round(time.Microsecond), balance,
			totals[i].Lookups, totals[i].Found, totals[i].Elapsed.Round(time.Microsecond), speedup,
		})
	}
	out.Render()
}
