// internal/tracker/tracker.go
//
// Constraint tracking for a single solver session.
// Responsibilities:
//   - Accumulate guess feedback into fixed letters, present-elsewhere
//     placements and wrong letters.
//   - Narrow a word pool to the words consistent with every constraint.
//
// A Session is owned by its caller and is not safe for concurrent use;
// the store package serializes access for the HTTP layer.

package tracker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

// Entry is one recorded guess and the feedback it received.
type Entry struct {
	Guess    string           `json:"guess"`
	Feedback feedback.Pattern `json:"feedback"`
}

// Placement records that Letter occurs in the word but not at Position.
type Placement struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

type placement struct {
	pos    int
	letter byte
}

// Session holds the accumulated constraints and the last computed set of
// possible answers.
type Session struct {
	fixed   [feedback.Length]byte // 0 means no fixed letter at that position
	present []placement
	wrong   []byte
	history []Entry

	answers  []string
	computed bool

	log zerolog.Logger
}

type Option func(*Session)

// WithLogger narrates filtering steps at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New returns an empty session.
func New(opts ...Option) *Session {
	s := &Session{log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reset clears every constraint and the cached possible answers.
func (s *Session) Reset() {
	s.fixed = [feedback.Length]byte{}
	s.present = nil
	s.wrong = nil
	s.history = nil
	s.invalidate()
}

// RecordGuess folds one guess and its feedback into the constraints.
//
//   - Exact: fixes the letter at that position (last write wins).
//   - Present: adds a present-elsewhere placement.
//   - Absent: marks the letter wrong unless it is fixed or present
//     elsewhere, in this guess or an earlier one.
//
// Wrong letters that later become fixed or present are dropped, so a
// letter is never both wrong and known.
func (s *Session) RecordGuess(guess string, fb feedback.Pattern) error {
	guess = strings.ToLower(strings.TrimSpace(guess))
	if err := words.Validate(guess); err != nil {
		return err
	}
	for i, m := range fb {
		if m > feedback.Exact {
			return fmt.Errorf("position %d: %w %d", i, feedback.ErrSymbol, uint8(m))
		}
	}

	for i, m := range fb {
		c := guess[i]
		switch m {
		case feedback.Exact:
			s.fixed[i] = c
		case feedback.Present:
			if !slices.Contains(s.present, placement{i, c}) {
				s.present = append(s.present, placement{i, c})
			}
		}
	}
	for i, m := range fb {
		c := guess[i]
		if m == feedback.Absent && !s.known(c) && !slices.Contains(s.wrong, c) {
			s.wrong = append(s.wrong, c)
		}
	}
	s.wrong = slices.DeleteFunc(s.wrong, s.known)

	s.history = append(s.history, Entry{Guess: guess, Feedback: fb})
	s.invalidate()
	return nil
}

// RecordFeedback parses a g/y/x feedback string and records it.
func (s *Session) RecordFeedback(guess, fb string) error {
	p, err := feedback.Parse(fb)
	if err != nil {
		return err
	}
	return s.RecordGuess(guess, p)
}

// RecordGuesses optionally resets, then records each entry in order.
// It stops at the first invalid entry; entries before it stay recorded.
func (s *Session) RecordGuesses(entries []Entry, resetFirst bool) error {
	if resetFirst {
		s.Reset()
	}
	for i, e := range entries {
		if err := s.RecordGuess(e.Guess, e.Feedback); err != nil {
			return fmt.Errorf("guess %d: %w", i, err)
		}
	}
	return nil
}

// PossibleAnswers narrows pool to the words consistent with the recorded
// constraints, in pool order, and caches the result. Three passes run in
// sequence:
//
//  1. every fixed position must hold its letter;
//  2. every present letter must occur, but not at its recorded position;
//  3. every wrong letter must be absent, unless it is also a fixed letter.
func (s *Session) PossibleAnswers(pool []string) []string {
	out := slices.Clone(pool)
	s.log.Debug().Int("words", len(out)).Msg("narrowing word pool")

	for i, c := range s.fixed {
		if c == 0 {
			continue
		}
		out = slices.DeleteFunc(out, func(w string) bool { return w[i] != c })
		s.log.Debug().Str("letter", string(c)).Int("position", i).Int("remaining", len(out)).Msg("fixed letter")
	}

	for _, p := range s.present {
		out = slices.DeleteFunc(out, func(w string) bool {
			return w[p.pos] == p.letter || strings.IndexByte(w, p.letter) < 0
		})
		s.log.Debug().Str("letter", string(p.letter)).Int("position", p.pos).Int("remaining", len(out)).Msg("present elsewhere")
	}

	for _, c := range s.wrong {
		if s.isFixed(c) {
			continue
		}
		out = slices.DeleteFunc(out, func(w string) bool { return strings.IndexByte(w, c) >= 0 })
		s.log.Debug().Str("letter", string(c)).Int("remaining", len(out)).Msg("wrong letter")
	}

	s.answers, s.computed = out, true
	return out
}

// Cached returns the last result of PossibleAnswers. ok is false if nothing
// was computed since the last change to the constraints.
func (s *Session) Cached() (answers []string, ok bool) {
	return s.answers, s.computed
}

// Snapshot is a read-only view of a session's constraints.
type Snapshot struct {
	Fixed   map[int]string `json:"fixed"`
	Present []Placement    `json:"present"`
	Wrong   string         `json:"wrong"`
	History []Entry        `json:"history"`
}

// Constraints copies the current state into a Snapshot.
func (s *Session) Constraints() Snapshot {
	snap := Snapshot{
		Fixed:   make(map[int]string),
		Present: make([]Placement, 0, len(s.present)),
		Wrong:   string(s.wrong),
		History: slices.Clone(s.history),
	}
	for i, c := range s.fixed {
		if c != 0 {
			snap.Fixed[i] = string(c)
		}
	}
	for _, p := range s.present {
		snap.Present = append(snap.Present, Placement{Position: p.pos, Letter: string(p.letter)})
	}
	if snap.History == nil {
		snap.History = []Entry{}
	}
	return snap
}

func (s *Session) invalidate() {
	s.answers, s.computed = nil, false
}

// known reports whether c is a fixed letter or present elsewhere.
func (s *Session) known(c byte) bool {
	if s.isFixed(c) {
		return true
	}
	for _, p := range s.present {
		if p.letter == c {
			return true
		}
	}
	return false
}

func (s *Session) isFixed(c byte) bool {
	for _, f := range s.fixed {
		if f == c {
			return true
		}
	}
	return false
}
