package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver/internal/httpserver"
	"github.com/robalobadob/wordle/apps/solver/internal/store"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
	"github.com/robalobadob/wordle/apps/solver/internal/wordsdb"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	ctx := context.Background()

	wcfg := words.ConfigFromEnv()
	wcfg.Logger = log.Logger
	if dsn := os.Getenv("WORDS_DB"); dsn != "" {
		db, err := wordsdb.Open(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", dsn).Msg("failed to open word database")
		}
		defer db.Close()
		if err := wordsdb.Migrate(ctx, db, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate word database")
		}
		wcfg.Reader = wordsdb.NewStore(db)
	}

	cat, err := words.Load(ctx, wcfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	cfg := httpserver.ConfigFromEnv()
	if cfg.SessionSecret == "dev_secret_change_me" {
		log.Warn().Msg("SESSION_SECRET not set, using development secret")
	}

	mem := store.NewMemoryStore(log.Logger)
	go janitor(ctx, mem, cfg.SessionTTL)

	srv := httpserver.New(mem, cat, cfg)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Interface("pools", cat.Stats()).Msg("starting solver")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// janitor drops sessions idle for longer than ttl, once an hour.
func janitor(ctx context.Context, st store.Store, ttl time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Prune(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("prune sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("pruned", n).Msg("idle sessions removed")
			}
		}
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
