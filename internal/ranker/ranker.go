// internal/ranker/ranker.go
//
// Guess ranking by expected information.
// Responsibilities:
//   - Pick the effective guess pool (hard mode restricts it to the answers).
//   - Score every guess by the partition of the answers it induces:
//     the number of distinct feedback patterns and their Shannon entropy.
//   - Keep exactly the guesses that reach the best metric, ties included.
//
// Notes:
//   - Guesses may be scored by several workers. Each worker reduces a
//     contiguous chunk with a running maximum; chunk results are merged in
//     chunk order (keep the higher, concatenate on equal), so the best set
//     and its order do not depend on scheduling.
//   - No cancellation: a call runs to completion.

package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

var (
	ErrNoAnswers = errors.New("ranker: no possible answers to rank against")
	ErrNoGuesses = errors.New("ranker: guess pool is empty")
)

// PoolSource supplies the external guess pools. *words.Catalog implements it.
type PoolSource interface {
	Words(p words.Pool) ([]string, error)
}

// Score is the evaluation of one guess against the possible answers.
type Score struct {
	Guess        string         `json:"guess"`
	Patterns     int            `json:"patterns"`
	Entropy      float64        `json:"entropy"`
	Metric       float64        `json:"metric"`
	Candidate    bool           `json:"candidate"` // the guess is itself a possible answer
	Distribution map[string]int `json:"distribution,omitempty"`
}

// Result is the outcome of Rank, best first.
type Result struct {
	Best       []Score `json:"best"`
	BestMetric float64 `json:"bestMetric"`
	Metric     string  `json:"metric"`
	HardMode   bool    `json:"hardMode"` // effective, after resolving HardAuto
	PoolSize   int     `json:"poolSize"`
	Answers    int     `json:"answers"`
}

// Rank scores every guess of the effective pool against answers and returns
// the guesses with the highest metric.
func Rank(answers []string, pools PoolSource, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}
	for _, a := range answers {
		if err := words.Validate(a); err != nil {
			return nil, fmt.Errorf("answer: %w", err)
		}
	}

	hard := opts.HardMode == HardOn ||
		(opts.HardMode == HardAuto && len(answers) <= opts.HardThreshold)

	guesses := answers
	if !hard {
		if pools == nil {
			return nil, fmt.Errorf("%w: no pool source for %s", ErrNoGuesses, opts.GuessPool)
		}
		list, err := pools.Words(opts.GuessPool)
		if err != nil {
			return nil, err
		}
		guesses = list
	}
	if len(guesses) == 0 {
		return nil, ErrNoGuesses
	}
	opts.Logger.Debug().Bool("hard", hard).Int("guesses", len(guesses)).Int("answers", len(answers)).Msg("ranking guesses")

	e := &evaluator{
		answers:    answers,
		candidates: toSet(answers),
		compute:    ruleFunc(opts.Rule),
		metric:     opts.Metric,
		keepDist:   opts.IncludeDistribution,
		progress:   opts.Progress,
		total:      len(guesses),
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(guesses) {
		workers = len(guesses)
	}
	size := (len(guesses) + workers - 1) / workers
	parts := make([]partial, (len(guesses)+size-1)/size)

	var g errgroup.Group
	for i := range parts {
		lo, hi := i*size, min((i+1)*size, len(guesses))
		g.Go(func() error {
			p, err := e.run(guesses[lo:hi])
			parts[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best partial
	for _, p := range parts {
		best = merge(best, p)
	}
	sort.SliceStable(best.scores, func(i, j int) bool {
		return best.scores[i].Metric > best.scores[j].Metric
	})

	res := &Result{
		Best:       best.scores,
		BestMetric: best.metric,
		Metric:     opts.Metric.String(),
		HardMode:   hard,
		PoolSize:   len(guesses),
		Answers:    len(answers),
	}
	if opts.Selection == SelectBest {
		res.Best = []Score{pick(best.scores)}
	}
	opts.Logger.Debug().Float64("best", best.metric).Str("metric", res.Metric).Int("tied", len(best.scores)).Msg("best guess found")
	return res, nil
}

// Evaluate scores a single guess against answers, always including the
// pattern distribution. The metric is entropy.
func Evaluate(guess string, answers []string, rule Rule) Score {
	counts := tally(guess, answers, ruleFunc(rule))
	s := score(guess, counts, MetricEntropy)
	s.Distribution = distribution(counts)
	_, s.Candidate = toSet(answers)[guess]
	return s
}

// Entropy returns the Shannon entropy, in bits, of the distribution given
// by counts. Counts are summed in sorted order so equal multisets always
// give bit-identical results.
func Entropy(counts []int) float64 {
	sorted := append([]int(nil), counts...)
	sort.Ints(sorted)
	total := 0
	for _, c := range sorted {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range sorted {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

type evaluator struct {
	answers    []string
	candidates map[string]struct{}
	compute    func(guess, target string) feedback.Pattern
	metric     Metric
	keepDist   bool
	progress   Progress
	total      int
	done       atomic.Int64
}

// partial is the best set of one chunk.
type partial struct {
	ok     bool
	metric float64
	scores []Score
}

// run reduces guesses with a running maximum.
func (e *evaluator) run(guesses []string) (partial, error) {
	var p partial
	for _, g := range guesses {
		if err := words.Validate(g); err != nil {
			return p, fmt.Errorf("guess: %w", err)
		}
		counts := tally(g, e.answers, e.compute)
		s := score(g, counts, e.metric)

		switch {
		case !p.ok || s.Metric > p.metric:
			p = partial{ok: true, metric: s.Metric, scores: []Score{e.finish(s, counts)}}
		case s.Metric == p.metric:
			p.scores = append(p.scores, e.finish(s, counts))
		}

		if e.progress != nil {
			e.progress.Evaluated(int(e.done.Add(1)), e.total)
		}
	}
	return p, nil
}

func (e *evaluator) finish(s Score, counts map[feedback.Pattern]int) Score {
	_, s.Candidate = e.candidates[s.Guess]
	if e.keepDist {
		s.Distribution = distribution(counts)
	}
	return s
}

// merge combines two partial results: the higher metric wins, equal metrics
// concatenate with a first.
func merge(a, b partial) partial {
	switch {
	case !b.ok:
		return a
	case !a.ok || b.metric > a.metric:
		return b
	case a.metric > b.metric:
		return a
	}
	return partial{ok: true, metric: a.metric, scores: append(a.scores, b.scores...)}
}

// pick returns the first score whose guess could be the answer, or the
// first score when none could.
func pick(scores []Score) Score {
	for _, s := range scores {
		if s.Candidate {
			return s
		}
	}
	return scores[0]
}

func tally(guess string, answers []string, compute func(string, string) feedback.Pattern) map[feedback.Pattern]int {
	counts := make(map[feedback.Pattern]int)
	for _, a := range answers {
		counts[compute(guess, a)]++
	}
	return counts
}

func score(guess string, counts map[feedback.Pattern]int, m Metric) Score {
	freq := make([]int, 0, len(counts))
	for _, c := range counts {
		freq = append(freq, c)
	}
	s := Score{Guess: guess, Patterns: len(counts), Entropy: Entropy(freq)}
	if m == MetricPatternCount {
		s.Metric = float64(s.Patterns)
	} else {
		s.Metric = s.Entropy
	}
	return s
}

func distribution(counts map[feedback.Pattern]int) map[string]int {
	out := make(map[string]int, len(counts))
	for p, c := range counts {
		out[p.String()] = c
	}
	return out
}

func ruleFunc(r Rule) func(guess, target string) feedback.Pattern {
	if r == RuleStandard {
		return feedback.ComputeStandard
	}
	return feedback.Compute
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}
