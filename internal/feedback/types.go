// internal/feedback/types.go
//
// Core type definitions for letter feedback.
// Defines:
//   - Mark: per-letter result of a guess (exact/present/absent).
//   - Pattern: the five marks a guess receives against one target.
//
// Wire format: one symbol per position, "g" (exact), "y" (present),
// "x" (absent). "gyxxg" is a valid pattern string.

package feedback

import (
	"errors"
	"fmt"
	"strings"
)

// Length is the number of letters in every word and every pattern.
const Length = 5

// Mark represents the evaluation result for a single letter in a guess.
type Mark uint8

const (
	Absent  Mark = iota // letter does not occur in the target
	Present             // letter occurs in the target, elsewhere
	Exact               // letter is correct and in the correct position
)

var (
	ErrLength = errors.New("feedback: pattern must have 5 symbols")
	ErrSymbol = errors.New("feedback: unknown symbol")
)

// Symbol returns the single-character wire symbol for m.
func (m Mark) Symbol() byte {
	switch m {
	case Exact:
		return 'g'
	case Present:
		return 'y'
	default:
		return 'x'
	}
}

func (m Mark) String() string {
	switch m {
	case Exact:
		return "exact"
	case Present:
		return "present"
	case Absent:
		return "absent"
	}
	return fmt.Sprintf("Mark(%d)", uint8(m))
}

// ParseMark maps a wire symbol back to its Mark.
// Upper-case symbols are accepted.
func ParseMark(c byte) (Mark, error) {
	switch c {
	case 'g', 'G':
		return Exact, nil
	case 'y', 'Y':
		return Present, nil
	case 'x', 'X':
		return Absent, nil
	}
	return Absent, fmt.Errorf("%w %q", ErrSymbol, c)
}

// Pattern is the full feedback for one guess. It is comparable and is used
// directly as a map key when tallying partitions.
type Pattern [Length]Mark

// Parse decodes a five-symbol feedback string such as "gyxxg".
func Parse(s string) (Pattern, error) {
	var p Pattern
	s = strings.TrimSpace(s)
	if len(s) != Length {
		return p, fmt.Errorf("%w: got %q", ErrLength, s)
	}
	for i := 0; i < Length; i++ {
		m, err := ParseMark(s[i])
		if err != nil {
			return p, fmt.Errorf("position %d: %w", i, err)
		}
		p[i] = m
	}
	return p, nil
}

// MustParse is Parse for literals; it panics on malformed input.
func MustParse(s string) Pattern {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string {
	var b [Length]byte
	for i, m := range p {
		b[i] = m.Symbol()
	}
	return string(b[:])
}

// Solved reports whether every position is Exact.
func (p Pattern) Solved() bool {
	for _, m := range p {
		if m != Exact {
			return false
		}
	}
	return true
}

func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pattern) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
