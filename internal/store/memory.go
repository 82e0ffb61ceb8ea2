// internal/store/memory.go
//
// In-memory registry of solver sessions.
//
// Characteristics:
//   - Stores *Entry objects keyed by a random UUID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Each Entry serializes access to its tracker.Session with its own mutex.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/solver/internal/tracker"
)

var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for solver sessions.
type Store interface {
	// Create registers a new, empty session.
	Create(ctx context.Context) (*Entry, error)

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)

	// Delete removes a session, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Prune removes sessions idle since before cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// Entry is one registered session.
type Entry struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	lastUsed time.Time
	session  *tracker.Session
}

// With runs fn with exclusive access to the session.
func (e *Entry) With(fn func(s *tracker.Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = time.Now()
	return fn(e.session)
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Entry
	log      zerolog.Logger
}

// NewMemoryStore constructs a new in-memory Store. Sessions narrate their
// filtering to log at debug level.
func NewMemoryStore(log zerolog.Logger) Store {
	return &memory{sessions: make(map[string]*Entry), log: log}
}

func (m *memory) Create(ctx context.Context) (*Entry, error) {
	now := time.Now()
	e := &Entry{
		ID:       uuid.NewString(),
		Created:  now,
		lastUsed: now,
	}
	e.session = tracker.New(tracker.WithLogger(m.log.With().Str("session", e.ID).Logger()))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[e.ID] = e
	return e, nil
}

func (m *memory) Get(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
