// Package assets embeds the default word lists and the SQL migrations for
// the word-pool database.
package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed allowed.txt answers.txt dictionary.txt
var FS embed.FS

//go:embed sql/*.sql
var sqlFS embed.FS

// Migrations returns the migration scripts rooted at their directory, so
// entries are plain file names like "001_word_pools.sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(sqlFS, "sql")
	if err != nil {
		// only fails for an invalid path literal
		panic(err)
	}
	return sub
}

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// AnswersList is the likely-answer list.
func AnswersList() ([]string, error) {
	return readLines("answers.txt")
}

// AllowedList is the extra valid-guess list; it does not repeat the answers.
func AllowedList() ([]string, error) {
	return readLines("allowed.txt")
}

// DictionaryList is the general-dictionary list.
func DictionaryList() ([]string, error) {
	return readLines("dictionary.txt")
}
