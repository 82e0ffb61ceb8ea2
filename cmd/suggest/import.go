package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/solver/internal/words"
	"github.com/robalobadob/wordle/apps/solver/internal/wordsdb"
)

// newImportCmd replaces one pool of the word database with a word file.
func newImportCmd(f *suggestFlags) *cobra.Command {
	var pool string
	cmd := &cobra.Command{
		Use:   "import-words --db path --pool name file",
		Short: "Load a word list into a SQLite word database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.db == "" {
				return errors.New("import-words: --db is required")
			}
			p, err := words.ParsePool(pool)
			if err != nil {
				return err
			}
			lines, err := words.ReadFile(args[0])
			if err != nil {
				return err
			}

			db, err := wordsdb.Open(f.db)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := wordsdb.Migrate(cmd.Context(), db, log.Logger); err != nil {
				return err
			}
			n, err := wordsdb.NewStore(db).ImportPool(cmd.Context(), p, args[0], lines)
			if err != nil {
				return err
			}
			log.Info().Str("pool", p.String()).Str("file", args[0]).Int("words", n).Msg("pool imported")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d words into %s\n", n, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "pool to replace (valid_words, source_words, nltk_words)")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}
