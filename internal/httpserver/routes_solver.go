// internal/httpserver/routes_solver.go
//
// Solver routes.
//   - POST   /sessions                → create a session, returns its token
//   - GET    /sessions/{id}           → constraint snapshot
//   - DELETE /sessions/{id}           → drop the session
//   - POST   /sessions/{id}/guesses   → record one guess or a batch
//   - POST   /sessions/{id}/reset     → clear constraints
//   - GET    /sessions/{id}/answers   → possible answers for ?pool=
//   - POST   /sessions/{id}/rank      → rank next guesses
//   - POST   /solve                   → stateless guesses + ranking
//
// Request bodies are validated completely before a session is touched, so
// a rejected batch leaves the session unchanged.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solver/internal/feedback"
	"github.com/robalobadob/wordle/apps/solver/internal/ranker"
	"github.com/robalobadob/wordle/apps/solver/internal/tracker"
	"github.com/robalobadob/wordle/apps/solver/internal/words"
)

var errBadRequest = errors.New("bad request")

// guessItem is one guess with its g/y/x feedback string.
type guessItem struct {
	Guess    string `json:"guess"`
	Feedback string `json:"feedback"`
}

// guessesReq accepts a single guess or a batch.
type guessesReq struct {
	guessItem
	Guesses []guessItem `json:"guesses"`
	Reset   bool        `json:"reset"`
}

// rankReq carries ranking options by name; empty fields take defaults.
type rankReq struct {
	AnswerPool    string `json:"answerPool"`
	Metric        string `json:"metric"`
	HardMode      string `json:"hardMode"`
	HardThreshold *int   `json:"hardThreshold"`
	GuessPool     string `json:"guessPool"`
	Distribution  bool   `json:"distribution"`
	Selection     string `json:"selection"`
	Rule          string `json:"rule"`
}

type solveReq struct {
	rankReq
	Guesses []guessItem `json:"guesses"`
}

type sessionRes struct {
	SessionID string           `json:"sessionId"`
	Token     string           `json:"token,omitempty"`
	ExpiresAt string           `json:"expiresAt,omitempty"`
	State     tracker.Snapshot `json:"state"`
}

type answersRes struct {
	Pool    string   `json:"pool"`
	Count   int      `json:"count"`
	Answers []string `json:"answers"`
}

type solveRes struct {
	answersRes
	Ranking *ranker.Result `json:"ranking"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Create(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	tok, exp, err := s.signSessionToken(e.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	log.Debug().Str("session", e.ID).Msg("session created")
	writeJSON(w, http.StatusCreated, sessionRes{
		SessionID: e.ID,
		Token:     tok,
		ExpiresAt: exp.UTC().Format(time.RFC3339),
		State:     tracker.New().Constraints(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e := entryFrom(r)
	var snap tracker.Snapshot
	_ = e.With(func(ts *tracker.Session) error {
		snap = ts.Constraints()
		return nil
	})
	writeJSON(w, http.StatusOK, sessionRes{SessionID: e.ID, State: snap})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), entryFrom(r).ID); err != nil {
		writeErr(w, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGuesses(w http.ResponseWriter, r *http.Request) {
	var req guessesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	items := req.Guesses
	if req.Guess != "" || req.Feedback != "" {
		items = append([]guessItem{req.guessItem}, items...)
	}
	if len(items) == 0 && !req.Reset {
		writeErr(w, fmt.Errorf("%w: no guesses given", errBadRequest))
		return
	}
	entries, err := parseEntries(items)
	if err != nil {
		writeErr(w, err)
		return
	}

	e := entryFrom(r)
	var snap tracker.Snapshot
	err = e.With(func(ts *tracker.Session) error {
		if err := ts.RecordGuesses(entries, req.Reset); err != nil {
			return err
		}
		snap = ts.Constraints()
		return nil
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionRes{SessionID: e.ID, State: snap})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	e := entryFrom(r)
	var snap tracker.Snapshot
	_ = e.With(func(ts *tracker.Session) error {
		ts.Reset()
		snap = ts.Constraints()
		return nil
	})
	writeJSON(w, http.StatusOK, sessionRes{SessionID: e.ID, State: snap})
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	pool, err := s.answerPool(r.URL.Query().Get("pool"))
	if err != nil {
		writeErr(w, err)
		return
	}
	answers, err := s.sessionAnswers(r, pool)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answersRes{Pool: pool.String(), Count: len(answers), Answers: answers})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	pool, opts, err := s.rankOptions(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	answers, err := s.sessionAnswers(r, pool)
	if err != nil {
		writeErr(w, err)
		return
	}
	res, err := ranker.Rank(answers, s.words, opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	pool, opts, err := s.rankOptions(req.rankReq)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, err := parseEntries(req.Guesses)
	if err != nil {
		writeErr(w, err)
		return
	}

	ts := tracker.New(tracker.WithLogger(log.Logger))
	if err := ts.RecordGuesses(entries, false); err != nil {
		writeErr(w, err)
		return
	}
	list, _ := s.words.Words(pool)
	answers := ts.PossibleAnswers(list)

	res, err := ranker.Rank(answers, s.words, opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, solveRes{
		answersRes: answersRes{Pool: pool.String(), Count: len(answers), Answers: answers},
		Ranking:    res,
	})
}

// sessionAnswers narrows pool with the request's session.
func (s *Server) sessionAnswers(r *http.Request, pool words.Pool) ([]string, error) {
	list, err := s.words.Words(pool)
	if err != nil {
		return nil, err
	}
	var answers []string
	err = entryFrom(r).With(func(ts *tracker.Session) error {
		answers = ts.PossibleAnswers(list)
		return nil
	})
	return answers, err
}

// answerPool parses the pool possible answers are drawn from; empty means
// source_words.
func (s *Server) answerPool(name string) (words.Pool, error) {
	if name == "" {
		return words.PoolSource, nil
	}
	return words.ParsePool(name)
}

// rankOptions turns a request into ranker options. Unknown names are
// rejected, empty ones keep the server defaults.
func (s *Server) rankOptions(req rankReq) (words.Pool, ranker.Options, error) {
	opts := ranker.DefaultOptions()
	opts.HardThreshold = s.cfg.HardThreshold
	opts.Workers = s.cfg.RankWorkers
	opts.IncludeDistribution = req.Distribution
	opts.Logger = log.Logger

	pool, err := s.answerPool(req.AnswerPool)
	if err != nil {
		return 0, opts, err
	}
	if req.Metric != "" {
		if opts.Metric, err = ranker.ParseMetric(req.Metric); err != nil {
			return 0, opts, err
		}
	}
	if req.HardMode != "" {
		if opts.HardMode, err = ranker.ParseHardMode(req.HardMode); err != nil {
			return 0, opts, err
		}
	}
	if req.HardThreshold != nil {
		opts.HardThreshold = *req.HardThreshold
	}
	if req.GuessPool != "" {
		if opts.GuessPool, err = words.ParsePool(req.GuessPool); err != nil {
			return 0, opts, err
		}
	}
	if req.Selection != "" {
		if opts.Selection, err = ranker.ParseSelection(req.Selection); err != nil {
			return 0, opts, err
		}
	}
	if req.Rule != "" {
		if opts.Rule, err = ranker.ParseRule(req.Rule); err != nil {
			return 0, opts, err
		}
	}
	return pool, opts, opts.Validate()
}

// parseEntries validates every item before any is recorded.
func parseEntries(items []guessItem) ([]tracker.Entry, error) {
	entries := make([]tracker.Entry, 0, len(items))
	for i, it := range items {
		guess := strings.ToLower(strings.TrimSpace(it.Guess))
		if err := words.Validate(guess); err != nil {
			return nil, fmt.Errorf("guess %d: %w", i, err)
		}
		p, err := feedback.Parse(it.Feedback)
		if err != nil {
			return nil, fmt.Errorf("guess %d: %w", i, err)
		}
		entries = append(entries, tracker.Entry{Guess: guess, Feedback: p})
	}
	return entries, nil
}
