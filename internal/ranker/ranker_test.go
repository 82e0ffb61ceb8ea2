package ranker

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

const eps = 1e-9

type fakePools map[words.Pool][]string

func (f fakePools) Words(p words.Pool) ([]string, error) {
	list, ok := f[p]
	if !ok {
		return nil, words.ErrUnknownPool
	}
	return list, nil
}

var threeAnswers = []string{"crane", "crate", "grape"}

func TestEvaluateSeparatingGuess(t *testing.T) {
	s := Evaluate("crane", threeAnswers, RuleSimplified)
	want := map[string]int{"ggggg": 1, "gggxg": 1, "xggxg": 1}
	if !reflect.DeepEqual(s.Distribution, want) {
		t.Fatalf("distribution = %v, want %v", s.Distribution, want)
	}
	if s.Patterns != 3 {
		t.Fatalf("patterns = %d, want 3", s.Patterns)
	}
	if math.Abs(s.Entropy-math.Log2(3)) > eps {
		t.Fatalf("entropy = %v, want log2(3)", s.Entropy)
	}
	if !s.Candidate {
		t.Fatal("crane is one of the answers")
	}
}

func TestEvaluateMergingGuess(t *testing.T) {
	s := Evaluate("toast", threeAnswers, RuleSimplified)
	want := map[string]int{"xxgxx": 2, "yxgxy": 1}
	if !reflect.DeepEqual(s.Distribution, want) {
		t.Fatalf("distribution = %v, want %v", s.Distribution, want)
	}
	h := -(2.0/3*math.Log2(2.0/3) + 1.0/3*math.Log2(1.0/3))
	if math.Abs(s.Entropy-h) > eps || s.Entropy >= math.Log2(3) {
		t.Fatalf("entropy = %v, want %v", s.Entropy, h)
	}

	if s := Evaluate("vivid", threeAnswers, RuleSimplified); s.Patterns != 1 || s.Entropy != 0 {
		t.Fatalf("vivid: patterns %d entropy %v, want 1 and 0", s.Patterns, s.Entropy)
	}
}

func TestEvaluateStandardRule(t *testing.T) {
	s := Evaluate("eerie", []string{"rebel"}, RuleStandard)
	if !reflect.DeepEqual(s.Distribution, map[string]int{"ygyxx": 1}) {
		t.Fatalf("distribution = %v", s.Distribution)
	}
}

func TestEntropy(t *testing.T) {
	cases := []struct {
		counts []int
		want   float64
	}{
		{nil, 0},
		{[]int{5}, 0},
		{[]int{1, 1}, 1},
		{[]int{1, 1, 1, 1}, 2},
		{[]int{2, 1, 1}, 1.5},
		{[]int{3, 0, 1}, -(0.75*math.Log2(0.75) + 0.25*math.Log2(0.25))},
	}
	for _, c := range cases {
		if got := Entropy(c.counts); math.Abs(got-c.want) > eps {
			t.Errorf("Entropy(%v) = %v, want %v", c.counts, got, c.want)
		}
	}
	if Entropy([]int{3, 1, 7, 2}) != Entropy([]int{7, 2, 3, 1}) {
		t.Error("Entropy depends on count order")
	}
}

func TestRankKeepsAllTies(t *testing.T) {
	pools := fakePools{words.PoolValid: {"toast", "crane", "vivid", "grape", "crate"}}
	opts := DefaultOptions()
	opts.HardMode = HardOff

	res, err := Rank(threeAnswers, pools, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := guessesOf(res.Best); !reflect.DeepEqual(got, []string{"crane", "crate"}) {
		t.Fatalf("best = %v, want [crane crate]", got)
	}
	if math.Abs(res.BestMetric-math.Log2(3)) > eps {
		t.Fatalf("best metric = %v", res.BestMetric)
	}
	if res.HardMode || res.PoolSize != 5 || res.Answers != 3 || res.Metric != "entropy" {
		t.Fatalf("result header = %+v", res)
	}
	for _, s := range res.Best {
		if s.Distribution != nil {
			t.Fatal("distribution attached without IncludeDistribution")
		}
	}
}

func TestRankSelectBestPrefersPossibleAnswer(t *testing.T) {
	// "plumb" and "crane" both split the answers completely; only crane
	// could be the answer.
	answers := []string{"crane", "blimp"}
	pools := fakePools{words.PoolValid: {"plumb", "crane"}}
	opts := DefaultOptions()
	opts.HardMode = HardOff
	opts.Selection = SelectBest

	res, err := Rank(answers, pools, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Best) != 1 || res.Best[0].Guess != "crane" {
		t.Fatalf("best = %+v, want crane", res.Best)
	}

	opts.Selection = SelectAll
	res, _ = Rank(answers, pools, opts)
	if got := guessesOf(res.Best); !reflect.DeepEqual(got, []string{"plumb", "crane"}) {
		t.Fatalf("all best = %v", got)
	}
}

func TestRankSelectBestFallsBackToFirst(t *testing.T) {
	pools := fakePools{words.PoolValid: {"vivid", "toast"}}
	opts := DefaultOptions()
	opts.HardMode = HardOff
	opts.Selection = SelectBest
	res, err := Rank(threeAnswers, pools, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Best[0].Guess != "toast" {
		t.Fatalf("best = %+v, want toast", res.Best)
	}
}

func TestRankHardMode(t *testing.T) {
	pools := fakePools{words.PoolValid: {"vivid"}}

	opts := DefaultOptions()
	res, err := Rank(threeAnswers, pools, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HardMode || res.PoolSize != 3 {
		t.Fatalf("auto with 3 answers should restrict to answers: %+v", res)
	}

	opts.HardThreshold = 2
	res, _ = Rank(threeAnswers, pools, opts)
	if res.HardMode || res.PoolSize != 1 {
		t.Fatalf("auto above threshold should use the pool: %+v", res)
	}

	opts.HardMode = HardOn
	res, _ = Rank(threeAnswers, pools, opts)
	if !res.HardMode || res.PoolSize != 3 {
		t.Fatalf("forced on: %+v", res)
	}

	opts.HardMode = HardOff
	opts.HardThreshold = 100
	res, _ = Rank(threeAnswers, pools, opts)
	if res.HardMode {
		t.Fatalf("forced off: %+v", res)
	}
}

func TestRankPatternCount(t *testing.T) {
	pools := fakePools{words.PoolValid: {"toast", "vivid"}}
	opts := DefaultOptions()
	opts.HardMode = HardOff
	opts.Metric = MetricPatternCount
	opts.IncludeDistribution = true
	res, err := Rank(threeAnswers, pools, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Best) != 1 || res.Best[0].Guess != "toast" || res.BestMetric != 2 {
		t.Fatalf("result = %+v", res)
	}
	total := 0
	for _, c := range res.Best[0].Distribution {
		total += c
	}
	if total != len(threeAnswers) {
		t.Fatalf("distribution covers %d answers, want %d", total, len(threeAnswers))
	}
}

func TestRankErrors(t *testing.T) {
	pools := fakePools{words.PoolValid: {"crane"}, words.PoolSource: {}}

	if _, err := Rank(nil, pools, DefaultOptions()); !errors.Is(err, ErrNoAnswers) {
		t.Errorf("empty answers: err = %v, want ErrNoAnswers", err)
	}
	if _, err := Rank(threeAnswers, pools, Options{}); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("zero options: err = %v, want ErrInvalidOption", err)
	}

	opts := DefaultOptions()
	opts.HardMode = HardOff
	opts.GuessPool = words.PoolSource
	if _, err := Rank(threeAnswers, pools, opts); !errors.Is(err, ErrNoGuesses) {
		t.Errorf("empty pool: err = %v, want ErrNoGuesses", err)
	}
	opts.GuessPool = words.PoolDictionary
	if _, err := Rank(threeAnswers, pools, opts); !errors.Is(err, words.ErrUnknownPool) {
		t.Errorf("missing pool: err = %v", err)
	}
	if _, err := Rank(threeAnswers, nil, opts); !errors.Is(err, ErrNoGuesses) {
		t.Errorf("nil pools: err = %v", err)
	}

	opts.HardMode = HardOn
	if _, err := Rank([]string{"crane", "cr4ne"}, nil, opts); !errors.Is(err, words.ErrInvalidWord) {
		t.Errorf("malformed answer: err = %v", err)
	}

	opts.HardMode = HardOff
	opts.GuessPool = words.PoolValid
	bad := fakePools{words.PoolValid: {"crane", "toolong"}}
	if _, err := Rank(threeAnswers, bad, opts); !errors.Is(err, words.ErrInvalidWord) {
		t.Errorf("malformed guess: err = %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	if h, err := ParseHardMode("TRUE"); err != nil || h != HardOn {
		t.Errorf("ParseHardMode(TRUE) = %v, %v", h, err)
	}
	if h, err := ParseHardMode("auto"); err != nil || h != HardAuto {
		t.Errorf("ParseHardMode(auto) = %v, %v", h, err)
	}
	if _, err := ParseHardMode("Default"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("ParseHardMode(Default) err = %v", err)
	}
	if m, err := ParseMetric("patterns"); err != nil || m != MetricPatternCount {
		t.Errorf("ParseMetric = %v, %v", m, err)
	}
	if s, err := ParseSelection("best"); err != nil || s != SelectBest {
		t.Errorf("ParseSelection = %v, %v", s, err)
	}
	if r, err := ParseRule("standard"); err != nil || r != RuleStandard {
		t.Errorf("ParseRule = %v, %v", r, err)
	}
	for _, f := range []func(string) error{
		func(s string) error { _, err := ParseMetric(s); return err },
		func(s string) error { _, err := ParseSelection(s); return err },
		func(s string) error { _, err := ParseRule(s); return err },
	} {
		if err := f("bogus"); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("bogus value accepted: %v", err)
		}
	}

	opts := DefaultOptions()
	opts.HardThreshold = -1
	if err := opts.Validate(); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("negative threshold: %v", err)
	}
	opts = DefaultOptions()
	opts.HardMode = HardMode(9)
	if err := opts.Validate(); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("out-of-range hard mode: %v", err)
	}
}

func loadCatalog(t *testing.T) *words.Catalog {
	t.Helper()
	c, err := words.Load(context.Background(), words.ConfigFromEnv())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRankBestSetIsOrderIndependent(t *testing.T) {
	cat := loadCatalog(t)
	all, _ := cat.Words(words.PoolSource)
	answers := all[:60]
	pool, _ := cat.Words(words.PoolValid)

	opts := DefaultOptions()
	opts.HardMode = HardOff
	base, err := Rank(answers, cat, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := sortedGuesses(base.Best)

	rng := rand.New(rand.NewSource(42))
	for _, workers := range []int{1, 2, 3, 8} {
		shuffled := append([]string(nil), pool...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		o := opts
		o.Workers = workers
		res, err := Rank(answers, fakePools{words.PoolValid: shuffled}, o)
		if err != nil {
			t.Fatal(err)
		}
		if got := sortedGuesses(res.Best); !reflect.DeepEqual(got, want) {
			t.Fatalf("workers=%d: best = %v, want %v", workers, got, want)
		}
		if res.BestMetric != base.BestMetric {
			t.Fatalf("workers=%d: metric %v, want %v", workers, res.BestMetric, base.BestMetric)
		}
	}

	// Same order, different workers: identical order too.
	o := opts
	o.Workers = 5
	res, _ := Rank(answers, cat, o)
	if !reflect.DeepEqual(guessesOf(res.Best), guessesOf(base.Best)) {
		t.Fatalf("parallel order %v differs from sequential %v", guessesOf(res.Best), guessesOf(base.Best))
	}
}

func TestEntropyBounds(t *testing.T) {
	cat := loadCatalog(t)
	all, _ := cat.Words(words.PoolSource)
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(40)
		idx := rng.Perm(len(all))[:n]
		answers := make([]string, n)
		for i, j := range idx {
			answers[i] = all[j]
		}
		bound := math.Log2(float64(n))
		for k := 0; k < 25; k++ {
			s := Evaluate(all[rng.Intn(len(all))], answers, RuleSimplified)
			if s.Entropy < 0 || s.Entropy > bound+eps {
				t.Fatalf("entropy %v outside [0, %v]", s.Entropy, bound)
			}
			if s.Patterns == n && math.Abs(s.Entropy-bound) > eps {
				t.Fatalf("%q separates all %d answers but entropy %v != %v", s.Guess, n, s.Entropy, bound)
			}
			if s.Patterns < n && s.Entropy > bound-eps {
				t.Fatalf("%q merges answers but reaches the maximum %v", s.Guess, bound)
			}
		}
	}
}

func TestRankReportsProgress(t *testing.T) {
	pool := []string{"crane", "crate", "grape", "toast", "vivid", "plumb", "blimp"}
	var calls, last atomic.Int64
	opts := DefaultOptions()
	opts.HardMode = HardOff
	opts.Workers = 3
	opts.Progress = ProgressFunc(func(done, total int) {
		calls.Add(1)
		if total != len(pool) {
			t.Errorf("total = %d, want %d", total, len(pool))
		}
		if int64(done) > last.Load() {
			last.Store(int64(done))
		}
	})
	if _, err := Rank(threeAnswers, fakePools{words.PoolValid: pool}, opts); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != int64(len(pool)) || last.Load() != int64(len(pool)) {
		t.Fatalf("progress calls = %d, last = %d", calls.Load(), last.Load())
	}
}

func guessesOf(scores []Score) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Guess
	}
	return out
}

func sortedGuesses(scores []Score) []string {
	out := guessesOf(scores)
	sort.Strings(out)
	return out
}

func BenchmarkRank(b *testing.B) {
	c, err := words.Load(context.Background(), words.ConfigFromEnv())
	if err != nil {
		b.Fatal(err)
	}
	answers, _ := c.Words(words.PoolSource)
	opts := DefaultOptions()
	opts.HardMode = HardOff
	opts.Workers = 4
	for i := 0; i < b.N; i++ {
		if _, err := Rank(answers[:100], c, opts); err != nil {
			b.Fatal(err)
		}
	}
}
