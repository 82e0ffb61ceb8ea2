package words

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestParsePool(t *testing.T) {
	cases := []struct {
		in   string
		want Pool
		err  bool
	}{
		{"valid_words", PoolValid, false},
		{" Source_Words ", PoolSource, false},
		{"nltk_words", PoolDictionary, false},
		{"sourcecode words", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParsePool(c.in)
		if c.err {
			if !errors.Is(err, ErrUnknownPool) {
				t.Errorf("ParsePool(%q) err = %v, want ErrUnknownPool", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParsePool(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
}

func TestPoolText(t *testing.T) {
	var p Pool
	if err := p.UnmarshalText([]byte("nltk_words")); err != nil || p != PoolDictionary {
		t.Fatalf("UnmarshalText = %v, %v", p, err)
	}
	if _, err := Pool(42).MarshalText(); err == nil {
		t.Fatal("expected error marshaling an undeclared pool")
	}
}

func TestNormalize(t *testing.T) {
	in := []string{"# header", "", " Crane ", "crane", "toolong", "ab1de", "grape"}
	got, dropped := Normalize(in)
	if want := []string{"crane", "grape"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize = %v, want %v", got, want)
	}
	if dropped != 3 {
		t.Fatalf("dropped = %d, want 3", dropped)
	}
}

func TestValidate(t *testing.T) {
	for _, w := range []string{"crane", "zzzzz"} {
		if err := Validate(w); err != nil {
			t.Errorf("Validate(%q) = %v", w, err)
		}
	}
	for _, w := range []string{"", "cran", "cranes", "Crane", "cr4ne"} {
		if err := Validate(w); !errors.Is(err, ErrInvalidWord) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidWord", w, err)
		}
	}
}

func TestNewCatalogMergesAnswersIntoValid(t *testing.T) {
	c, err := NewCatalog(map[Pool][]string{
		PoolValid:      {"aahed", "crane"},
		PoolSource:     {"crane", "grape"},
		PoolDictionary: {"hello"},
	})
	if err != nil {
		t.Fatal(err)
	}
	valid, _ := c.Words(PoolValid)
	if want := []string{"aahed", "crane", "grape"}; !reflect.DeepEqual(valid, want) {
		t.Fatalf("valid = %v, want %v", valid, want)
	}
	if !c.Contains(PoolValid, "GRAPE") || c.Contains(PoolSource, "aahed") {
		t.Fatal("Contains reports wrong membership")
	}
	if got := c.Stats(); got["valid_words"] != 3 || got["source_words"] != 2 || got["nltk_words"] != 1 {
		t.Fatalf("Stats = %v", got)
	}
}

func TestNewCatalogRejectsEmptyPool(t *testing.T) {
	_, err := NewCatalog(map[Pool][]string{
		PoolValid:  {"crane"},
		PoolSource: {"crane"},
	})
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("err = %v, want ErrEmptyPool", err)
	}
}

func TestLoadEmbedded(t *testing.T) {
	c, err := Load(context.Background(), LoadConfig{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range Pools() {
		list, err := c.Words(p)
		if err != nil || len(list) == 0 {
			t.Fatalf("pool %s: %d words, err %v", p, len(list), err)
		}
	}
	answers, _ := c.Words(PoolSource)
	for _, w := range answers {
		if !c.Contains(PoolValid, w) {
			t.Fatalf("answer %q missing from valid_words", w)
		}
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.txt")
	if err := os.WriteFile(path, []byte("# mine\nROBOT\nstrip\nbad\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(context.Background(), LoadConfig{
		Files:  map[Pool]string{PoolSource: path},
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c.Words(PoolSource)
	if want := []string{"robot", "strip"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("source_words = %v, want %v", got, want)
	}
}

type fakeReader map[Pool][]string

func (f fakeReader) LoadPool(_ context.Context, p Pool) ([]string, error) {
	if list, ok := f[p]; ok {
		return list, nil
	}
	return nil, errors.New("missing")
}

func TestLoadFromReader(t *testing.T) {
	r := fakeReader{
		PoolValid:      {"crane"},
		PoolSource:     {"crate"},
		PoolDictionary: {"grape"},
	}
	c, err := Load(context.Background(), LoadConfig{Reader: r, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Words(PoolValid); !reflect.DeepEqual(got, []string{"crane", "crate"}) {
		t.Fatalf("valid_words = %v", got)
	}

	delete(r, PoolDictionary)
	if _, err := Load(context.Background(), LoadConfig{Reader: r, Logger: zerolog.Nop()}); err == nil {
		t.Fatal("expected error when the reader fails")
	}
}
