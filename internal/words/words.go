// internal/words/words.go
//
// Provides word pool management for the solver.
//
// Responsibilities:
//   - Load the three word pools from a PoolReader (SQLite), from
//     environment-provided files, or fall back to embedded defaults.
//   - Normalize lists: trim, lowercase, drop comments, blanks, malformed
//     and duplicate entries, keeping first-occurrence order.
//   - Serve pools read-only through a Catalog with set lookups.
//
// Initialization behavior (Load):
//   1. If cfg.Reader is set (WORDS_DB), every pool is read from it.
//   2. Otherwise each pool is read from its file when configured
//      (WORDS_VALID_FILE, WORDS_SOURCE_FILE, WORDS_NLTK_FILE),
//      else from the embedded list in the assets package.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z).
//   • valid_words always includes every source_words entry.
//   • No pool may end up empty.

package words

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/solver/assets"
	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
)

var (
	ErrInvalidWord = errors.New("words: word must be 5 letters a-z")
	ErrEmptyPool   = errors.New("words: pool is empty")
)

// PoolReader supplies pools from external storage. wordsdb.Store
// implements it.
type PoolReader interface {
	LoadPool(ctx context.Context, p Pool) ([]string, error)
}

// LoadConfig selects where each pool comes from.
type LoadConfig struct {
	Files  map[Pool]string // per-pool override file, ignored when Reader is set
	Reader PoolReader
	Logger zerolog.Logger
}

// ConfigFromEnv reads the per-pool file overrides from the environment.
func ConfigFromEnv() LoadConfig {
	return LoadConfig{
		Files: map[Pool]string{
			PoolValid:      os.Getenv("WORDS_VALID_FILE"),
			PoolSource:     os.Getenv("WORDS_SOURCE_FILE"),
			PoolDictionary: os.Getenv("WORDS_NLTK_FILE"),
		},
		Logger: zerolog.Nop(),
	}
}

// Load builds a Catalog according to cfg.
func Load(ctx context.Context, cfg LoadConfig) (*Catalog, error) {
	raw := make(map[Pool][]string, len(poolNames))
	for _, p := range Pools() {
		var (
			list []string
			src  string
			err  error
		)
		switch {
		case cfg.Reader != nil:
			src = "db"
			list, err = cfg.Reader.LoadPool(ctx, p)
		case cfg.Files[p] != "":
			src = cfg.Files[p]
			list, err = ReadFile(src)
		default:
			src = "embedded"
			list, err = embedded(p)
		}
		if err != nil {
			return nil, fmt.Errorf("load %s from %s: %w", p, src, err)
		}

		words, dropped := Normalize(list)
		if dropped > 0 {
			cfg.Logger.Warn().Str("pool", p.String()).Int("dropped", dropped).Msg("skipped malformed or duplicate words")
		}
		cfg.Logger.Info().Str("pool", p.String()).Str("source", src).Int("words", len(words)).Msg("loaded word pool")
		raw[p] = words
	}
	return NewCatalog(raw)
}

// embedded returns the default list for p from the assets package.
func embedded(p Pool) ([]string, error) {
	switch p {
	case PoolValid:
		return assets.AllowedList()
	case PoolSource:
		return assets.AnswersList()
	case PoolDictionary:
		return assets.DictionaryList()
	}
	return nil, fmt.Errorf("%w %d", ErrUnknownPool, int(p))
}

// ReadFile loads one word per line from a file without normalizing it.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// Normalize lowercases and trims lines, skipping blanks and '#' comments.
// Entries that are not valid words, and repeats, are dropped and counted.
func Normalize(lines []string) ([]string, int) {
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	dropped := 0
	for _, line := range lines {
		w := strings.ToLower(strings.TrimSpace(line))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, dup := seen[w]; dup || Validate(w) != nil {
			dropped++
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out, dropped
}

// Validate reports whether w is exactly five lowercase ASCII letters.
func Validate(w string) error {
	if len(w) != feedback.Length {
		return fmt.Errorf("%w: %q", ErrInvalidWord, w)
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
	}
	return nil
}

// Catalog holds the loaded pools. Slices handed out by Words are shared
// and must be treated as read-only.
type Catalog struct {
	pools map[Pool][]string
	sets  map[Pool]map[string]struct{}
}

// NewCatalog normalizes lists and builds a Catalog. Every pool must be
// present and non-empty; source_words entries missing from valid_words are
// appended to it.
func NewCatalog(lists map[Pool][]string) (*Catalog, error) {
	c := &Catalog{
		pools: make(map[Pool][]string, len(poolNames)),
		sets:  make(map[Pool]map[string]struct{}, len(poolNames)),
	}
	for _, p := range Pools() {
		list, _ := Normalize(lists[p])
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPool, p)
		}
		c.pools[p] = list
		c.sets[p] = toSet(list)
	}

	// Ensure all answers are also valid guesses.
	valid := c.sets[PoolValid]
	for _, w := range c.pools[PoolSource] {
		if _, ok := valid[w]; !ok {
			valid[w] = struct{}{}
			c.pools[PoolValid] = append(c.pools[PoolValid], w)
		}
	}
	return c, nil
}

// Words returns the ordered contents of p.
func (c *Catalog) Words(p Pool) ([]string, error) {
	list, ok := c.pools[p]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownPool, p)
	}
	return list, nil
}

// Contains reports whether w is in pool p.
func (c *Catalog) Contains(p Pool, w string) bool {
	_, ok := c.sets[p][strings.ToLower(w)]
	return ok
}

// Stats returns the number of words per pool, keyed by pool name.
func (c *Catalog) Stats() map[string]int {
	out := make(map[string]int, len(c.pools))
	for p, list := range c.pools {
		out[p.String()] = len(list)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}
