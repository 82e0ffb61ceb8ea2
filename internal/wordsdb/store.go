package wordsdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

// Store reads and replaces word pools. It satisfies words.PoolReader.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Import describes the last import of a pool.
type Import struct {
	Pool       string    `json:"pool"`
	Source     string    `json:"source"`
	WordCount  int       `json:"wordCount"`
	ImportedAt time.Time `json:"importedAt"`
}

// ImportPool replaces the contents of pool with list in one transaction.
// The list is normalized first; the number of stored words is returned.
func (s *Store) ImportPool(ctx context.Context, pool words.Pool, source string, list []string) (int, error) {
	if !pool.Valid() {
		return 0, fmt.Errorf("%w %d", words.ErrUnknownPool, int(pool))
	}
	clean, _ := words.Normalize(list)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM word_pools WHERE pool=?`, pool.String()); err != nil {
		return 0, fmt.Errorf("clear %s: %w", pool, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO word_pools (pool, position, word) VALUES (?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, w := range clean {
		if _, err := stmt.ExecContext(ctx, pool.String(), i, w); err != nil {
			return 0, fmt.Errorf("insert %q: %w", w, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO pool_imports (pool, source, word_count, imported_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(pool) DO UPDATE SET
            source=excluded.source, word_count=excluded.word_count, imported_at=excluded.imported_at`,
		pool.String(), source, len(clean), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}
	return len(clean), tx.Commit()
}

// LoadPool returns the words of pool in their stored order.
func (s *Store) LoadPool(ctx context.Context, pool words.Pool) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word FROM word_pools WHERE pool=? ORDER BY position ASC`, pool.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Imports lists the recorded pool imports ordered by pool name.
func (s *Store) Imports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pool, source, word_count, imported_at FROM pool_imports ORDER BY pool ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var (
			im Import
			at string
		)
		if err := rows.Scan(&im.Pool, &im.Source, &im.WordCount, &at); err != nil {
			return nil, err
		}
		im.ImportedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, im)
	}
	return out, rows.Err()
}
