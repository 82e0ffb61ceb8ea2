package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/wordle/apps/solver/internal/ranker"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeList(t *testing.T, dir, name string, list ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(list, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// seedDB imports three small pools and returns the database path.
func seedDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "words.db")
	for pool, list := range map[string][]string{
		"valid_words":  {"toast", "vivid", "slate"},
		"source_words": {"crane", "crate", "grape"},
		"nltk_words":   {"hello", "world"},
	} {
		file := writeList(t, dir, pool+".txt", list...)
		out, err := run(t, "import-words", "--db", db, "--pool", pool, file)
		if err != nil {
			t.Fatalf("import %s: %v", pool, err)
		}
		if !strings.Contains(out, "into "+pool) {
			t.Fatalf("import output = %q", out)
		}
	}
	return db
}

func TestSuggestFromDatabase(t *testing.T) {
	db := seedDB(t)
	out, err := run(t, "--db", db, "--guess", "vivid=xxxxx", "--hard", "off", "--best", "--no-progress", "--workers", "2")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	for _, want := range []string{
		"3 possible answers\n  crane crate grape\n",
		"hard mode off, 6 guesses scored",
		"  crane   1.585 bits     3 patterns  *\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "crate   1.585") {
		t.Errorf("--best printed more than one guess:\n%s", out)
	}
}

func TestSuggestDistribution(t *testing.T) {
	db := seedDB(t)
	out, err := run(t, "--db", db, "--guess", "vivid=xxxxx", "--hard", "on", "--dist", "--no-progress")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	// crane and crate tie; each splits the answers into three singletons.
	for _, want := range []string{"hard mode on, 3 guesses scored", "      ggggg 1\n", "      xggxg 1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSuggestEmbeddedLists(t *testing.T) {
	out, err := run(t, "--guess", "crane=xxxxx", "--count", "3", "--no-progress")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "possible answers") || !strings.Contains(out, "best guesses by entropy") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSuggestErrors(t *testing.T) {
	db := seedDB(t)
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"missing feedback", []string{"--guess", "crane"}, nil},
		{"short feedback", []string{"--guess", "crane=xx"}, nil},
		{"bad hard mode", []string{"--hard", "Default"}, ranker.ErrInvalidOption},
		{"no answers left", []string{"--db", db, "--guess", "vivid=ggggg", "--no-progress"}, ranker.ErrNoAnswers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestImportRequiresDB(t *testing.T) {
	file := writeList(t, t.TempDir(), "w.txt", "crane")
	if _, err := run(t, "import-words", "--db", "", "--pool", "source_words", file); err == nil {
		t.Fatal("expected error without --db")
	}
}
