// internal/words/pool.go
//
// Pool names the three interchangeable word lists:
//   - valid_words:  exhaustive valid-guess list.
//   - source_words: smaller likely-answer list.
//   - nltk_words:   general dictionary list.
//
// Pools are parsed from their canonical names only; anything else is
// rejected rather than mapped to a default.

package words

import (
	"errors"
	"fmt"
	"strings"
)

type Pool int

const (
	PoolValid Pool = iota + 1
	PoolSource
	PoolDictionary
)

var ErrUnknownPool = errors.New("words: unknown pool")

var poolNames = map[Pool]string{
	PoolValid:      "valid_words",
	PoolSource:     "source_words",
	PoolDictionary: "nltk_words",
}

// Pools lists every pool in a stable order.
func Pools() []Pool {
	return []Pool{PoolValid, PoolSource, PoolDictionary}
}

// ParsePool maps a canonical pool name to its Pool. Matching ignores case
// and surrounding whitespace.
func ParsePool(s string) (Pool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range poolNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownPool, s)
}

// Valid reports whether p is one of the declared pools.
func (p Pool) Valid() bool {
	_, ok := poolNames[p]
	return ok
}

func (p Pool) String() string {
	if n, ok := poolNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Pool(%d)", int(p))
}

func (p Pool) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownPool, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Pool) UnmarshalText(b []byte) error {
	v, err := ParsePool(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
