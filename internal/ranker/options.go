// internal/ranker/options.go
//
// Ranking options. Every option is an explicit enum parsed from a fixed set
// of names; unknown names are rejected instead of falling back to a default.

package ranker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

// DefaultHardThreshold is the answer count at or below which automatic hard
// mode restricts guesses to the possible answers.
const DefaultHardThreshold = 8

var ErrInvalidOption = errors.New("ranker: invalid option")

// Metric selects what a guess is scored by.
type Metric int

const (
	MetricEntropy      Metric = iota // Shannon entropy of the pattern distribution, in bits
	MetricPatternCount               // number of distinct patterns
)

// HardMode decides whether guesses are restricted to the possible answers.
type HardMode int

const (
	HardAuto HardMode = iota // restrict when answers <= HardThreshold
	HardOn
	HardOff
)

// Selection shapes the result.
type Selection int

const (
	SelectAll  Selection = iota // every guess tied at the best metric
	SelectBest                  // one guess, preferring a possible answer
)

// Rule selects how feedback is simulated while scoring.
type Rule int

const (
	RuleSimplified Rule = iota // feedback.Compute
	RuleStandard               // feedback.ComputeStandard
)

var (
	metricNames    = []string{"entropy", "patterns"}
	hardModeNames  = []string{"auto", "on", "off"}
	selectionNames = []string{"all", "best"}
	ruleNames      = []string{"simplified", "standard"}
)

func ParseMetric(s string) (Metric, error) {
	i, err := parseEnum("metric", metricNames, s)
	return Metric(i), err
}

// ParseHardMode accepts auto, on and off; true and false are aliases for on
// and off.
func ParseHardMode(s string) (HardMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return HardOn, nil
	case "false":
		return HardOff, nil
	}
	i, err := parseEnum("hard mode", hardModeNames, s)
	return HardMode(i), err
}

func ParseSelection(s string) (Selection, error) {
	i, err := parseEnum("selection", selectionNames, s)
	return Selection(i), err
}

func ParseRule(s string) (Rule, error) {
	i, err := parseEnum("rule", ruleNames, s)
	return Rule(i), err
}

func (m Metric) String() string    { return enumName(metricNames, int(m)) }
func (h HardMode) String() string  { return enumName(hardModeNames, int(h)) }
func (s Selection) String() string { return enumName(selectionNames, int(s)) }
func (r Rule) String() string      { return enumName(ruleNames, int(r)) }

func parseEnum(kind string, names []string, s string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == v {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q (want one of %s)", ErrInvalidOption, kind, s, strings.Join(names, ", "))
}

func enumName(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("invalid(%d)", i)
}

// Progress observes ranking. Evaluated is called once per scored guess with
// the number finished so far; with Workers > 1 it is called concurrently.
type Progress interface {
	Evaluated(done, total int)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(done, total int)

func (f ProgressFunc) Evaluated(done, total int) { f(done, total) }

// Options configures Rank. Start from DefaultOptions; the zero value has no
// guess pool and fails validation.
type Options struct {
	Metric              Metric
	HardMode            HardMode
	HardThreshold       int
	GuessPool           words.Pool
	IncludeDistribution bool
	Selection           Selection
	Rule                Rule
	Workers             int
	Progress            Progress
	Logger              zerolog.Logger
}

// DefaultOptions ranks by entropy over valid_words, with automatic hard mode
// at DefaultHardThreshold, returning every tied best guess.
func DefaultOptions() Options {
	return Options{
		HardThreshold: DefaultHardThreshold,
		GuessPool:     words.PoolValid,
		Workers:       1,
		Logger:        zerolog.Nop(),
	}
}

// Validate rejects out-of-range enum values and thresholds.
func (o Options) Validate() error {
	switch {
	case o.Metric < MetricEntropy || o.Metric > MetricPatternCount:
		return fmt.Errorf("%w: metric %d", ErrInvalidOption, int(o.Metric))
	case o.HardMode < HardAuto || o.HardMode > HardOff:
		return fmt.Errorf("%w: hard mode %d", ErrInvalidOption, int(o.HardMode))
	case o.Selection < SelectAll || o.Selection > SelectBest:
		return fmt.Errorf("%w: selection %d", ErrInvalidOption, int(o.Selection))
	case o.Rule < RuleSimplified || o.Rule > RuleStandard:
		return fmt.Errorf("%w: rule %d", ErrInvalidOption, int(o.Rule))
	case o.HardThreshold < 0:
		return fmt.Errorf("%w: hard threshold %d", ErrInvalidOption, o.HardThreshold)
	case !o.GuessPool.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidOption, words.ErrUnknownPool)
	}
	return nil
}
