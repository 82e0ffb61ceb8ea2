// cmd/suggest/main.go
//
// Command-line front end for the solver.
//   - suggest --guess crane=xxgyx ... ranks the next guesses for a game.
//   - suggest import-words seeds a SQLite word database (see import.go).
//
// Word pools come from --db (or WORDS_DB) when set, otherwise from the
// WORDS_*_FILE overrides or the embedded lists.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/ranker"
	"github.com/robalobadob/wordle/apps/solver/internal/tracker"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
	"github.com/robalobadob/wordle/apps/solver/internal/wordsdb"
)

// listLimit is the largest answer set printed in full.
const listLimit = 30

type suggestFlags struct {
	guesses    []string
	pool       string
	guessPool  string
	hard       string
	count      int
	best       bool
	dist       bool
	threshold  int
	workers    int
	standard   bool
	noProgress bool
	logLevel   string
	db         string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("suggest failed")
	}
}

func newRootCmd() *cobra.Command {
	f := &suggestFlags{}
	cmd := &cobra.Command{
		Use:           "suggest",
		Short:         "Rank Wordle guesses by expected information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd.ErrOrStderr(), f.logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuggest(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVarP(&f.guesses, "guess", "g", nil, "guess with feedback as word=gyx.. (repeatable, in order)")
	fl.StringVar(&f.pool, "pool", words.PoolSource.String(), "pool possible answers are drawn from")
	fl.StringVar(&f.guessPool, "guess-pool", words.PoolValid.String(), "pool guesses are drawn from outside hard mode")
	fl.StringVar(&f.hard, "hard", "auto", "hard mode: auto, on or off")
	fl.IntVarP(&f.count, "count", "n", 10, "number of ranked guesses to print")
	fl.BoolVar(&f.best, "best", false, "print a single best guess, preferring possible answers")
	fl.BoolVar(&f.dist, "dist", false, "print the feedback distribution of each guess")
	fl.IntVar(&f.threshold, "threshold", ranker.DefaultHardThreshold, "answer count at or below which auto hard mode applies")
	fl.IntVar(&f.workers, "workers", runtime.NumCPU(), "parallel scoring workers")
	fl.BoolVar(&f.standard, "standard", false, "score feedback with repeated-letter accounting")
	fl.BoolVar(&f.noProgress, "no-progress", false, "hide the progress bar")

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.logLevel, "log-level", "warn", "log level")
	pf.StringVar(&f.db, "db", os.Getenv("WORDS_DB"), "SQLite word database")

	cmd.AddCommand(newImportCmd(f))
	return cmd
}

func setupLogger(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
	return nil
}

func runSuggest(cmd *cobra.Command, f *suggestFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts, answerPool, err := f.options()
	if err != nil {
		return err
	}
	entries, err := parseGuesses(f.guesses)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, f.db)
	if err != nil {
		return err
	}

	ts := tracker.New(tracker.WithLogger(log.Logger))
	if err := ts.RecordGuesses(entries, false); err != nil {
		return err
	}
	pool, err := cat.Words(answerPool)
	if err != nil {
		return err
	}
	answers := ts.PossibleAnswers(pool)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d possible answers\n", len(answers))
	if len(answers) > 0 && len(answers) <= listLimit {
		fmt.Fprintf(out, "  %s\n", strings.Join(answers, " "))
	}
	if len(answers) == 0 {
		return ranker.ErrNoAnswers
	}

	if !f.noProgress {
		opts.Progress = newProgress(cmd.ErrOrStderr())
	}
	res, err := ranker.Rank(answers, cat, opts)
	if err != nil {
		return err
	}
	printResult(out, res, f.count, f.dist)
	return nil
}

// options translates the flags into ranker options and the answer pool.
func (f *suggestFlags) options() (ranker.Options, words.Pool, error) {
	opts := ranker.DefaultOptions()
	opts.HardThreshold = f.threshold
	opts.Workers = f.workers
	opts.IncludeDistribution = f.dist
	opts.Logger = log.Logger
	if f.best {
		opts.Selection = ranker.SelectBest
	}
	if f.standard {
		opts.Rule = ranker.RuleStandard
	}

	var err error
	if opts.HardMode, err = ranker.ParseHardMode(f.hard); err != nil {
		return opts, 0, err
	}
	if opts.GuessPool, err = words.ParsePool(f.guessPool); err != nil {
		return opts, 0, err
	}
	pool, err := words.ParsePool(f.pool)
	if err != nil {
		return opts, 0, err
	}
	return opts, pool, opts.Validate()
}

// parseGuesses reads word=feedback pairs.
func parseGuesses(raw []string) ([]tracker.Entry, error) {
	entries := make([]tracker.Entry, 0, len(raw))
	for _, g := range raw {
		word, fb, ok := strings.Cut(g, "=")
		if !ok {
			return nil, fmt.Errorf("guess %q: want word=feedback", g)
		}
		word = strings.ToLower(strings.TrimSpace(word))
		if err := words.Validate(word); err != nil {
			return nil, fmt.Errorf("guess %q: %w", g, err)
		}
		p, err := feedback.Parse(fb)
		if err != nil {
			return nil, fmt.Errorf("guess %q: %w", g, err)
		}
		entries = append(entries, tracker.Entry{Guess: word, Feedback: p})
	}
	return entries, nil
}

func loadCatalog(ctx context.Context, dsn string) (*words.Catalog, error) {
	cfg := words.ConfigFromEnv()
	cfg.Logger = log.Logger
	if dsn != "" {
		db, err := wordsdb.Open(dsn)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := wordsdb.Migrate(ctx, db, log.Logger); err != nil {
			return nil, err
		}
		cfg.Reader = wordsdb.NewStore(db)
	}
	return words.Load(ctx, cfg)
}

// newProgress renders ranking progress. The bar is sized on the first
// report since the guess count depends on the resolved hard mode.
func newProgress(w io.Writer) ranker.Progress {
	var (
		once sync.Once
		bar  *progressbar.ProgressBar
	)
	return ranker.ProgressFunc(func(done, total int) {
		once.Do(func() {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("scoring guesses"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		})
		_ = bar.Add(1)
	})
}

func printResult(w io.Writer, res *ranker.Result, count int, dist bool) {
	mode := "off"
	if res.HardMode {
		mode = "on"
	}
	fmt.Fprintf(w, "best guesses by %s (hard mode %s, %d guesses scored):\n", res.Metric, mode, res.PoolSize)
	for i, s := range res.Best {
		if count > 0 && i == count {
			fmt.Fprintf(w, "  ... %d more tied\n", len(res.Best)-count)
			break
		}
		mark := ""
		if s.Candidate {
			mark = "  *"
		}
		fmt.Fprintf(w, "  %-5s  %6.3f bits  %4d patterns%s\n", s.Guess, s.Entropy, s.Patterns, mark)
		if dist {
			for _, k := range sortedKeys(s.Distribution) {
				fmt.Fprintf(w, "      %s %d\n", k, s.Distribution[k])
			}
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
