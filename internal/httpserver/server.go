// internal/httpserver/server.go
//
// HTTP server wiring for the solver API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/pools", POST /sessions, POST /solve.
//   - Session endpoints (require a session token): mounted under /sessions/{id}.
//   - Mapping core errors to HTTP status codes.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Configuration comes from the environment (ConfigFromEnv).

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/ranker"
	"github.com/robalobadob/wordle/apps/solver/internal/store"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

// Config holds server settings.
type Config struct {
	ClientOrigin  string        // CLIENT_ORIGIN
	Timeout       time.Duration // HTTP_TIMEOUT
	SessionSecret string        // SESSION_SECRET
	SessionTTL    time.Duration // SESSION_TTL_HOURS
	CookieName    string        // COOKIE_NAME
	SecureCookies bool          // NODE_ENV=production
	RankWorkers   int           // RANK_WORKERS
	HardThreshold int           // HARD_THRESHOLD
}

// ConfigFromEnv reads Config from the environment, with development defaults.
func ConfigFromEnv() Config {
	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		log.Warn().Err(err).Msg("invalid HTTP_TIMEOUT, using 30s")
		timeout = 30 * time.Second
	}
	return Config{
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Timeout:       timeout,
		SessionSecret: getEnv("SESSION_SECRET", "dev_secret_change_me"),
		SessionTTL:    time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieName:    getEnv("COOKIE_NAME", "solver_session"),
		SecureCookies: os.Getenv("NODE_ENV") == "production",
		RankWorkers:   envInt("RANK_WORKERS", 1),
		HardThreshold: envInt("HARD_THRESHOLD", ranker.DefaultHardThreshold),
	}
}

// Server bundles router, session store and word pools.
type Server struct {
	r     *chi.Mux
	store store.Store
	words *words.Catalog
	cfg   Config
	key   []byte // session token signing key
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cat *words.Catalog, cfg Config) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		words: cat,
		cfg:   cfg,
		key:   deriveKey(cfg.SessionSecret),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	if cfg.Timeout > 0 {
		s.r.Use(chimw.Timeout(cfg.Timeout))
	}
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordle-solver",
			"endpoints": []string{"/health", "/pools", "POST /sessions", "/sessions/{id}/*", "POST /solve"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/pools", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.words.Stats())
	})

	// Sessions: creating one is public, everything else needs its token.
	s.r.Post("/sessions", s.handleCreateSession)
	s.r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/guesses", s.handleGuesses)
		r.Post("/reset", s.handleReset)
		r.Get("/answers", s.handleAnswers)
		r.Post("/rank", s.handleRank)
	})

	// Stateless one-shot solve.
	s.r.Post("/solve", s.handleSolve)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps a core error to its status code.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ranker.ErrNoAnswers), errors.Is(err, ranker.ErrNoGuesses):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ranker.ErrInvalidOption),
		errors.Is(err, words.ErrUnknownPool),
		errors.Is(err, words.ErrInvalidWord),
		errors.Is(err, feedback.ErrLength),
		errors.Is(err, feedback.ErrSymbol),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt returns the integer value of k, or def if unset or malformed.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
	}
	return def
}
