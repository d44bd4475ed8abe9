// Package session keeps the live data-entry sessions of a server in memory.
//
// Each session wraps a core.Session with its own mutex, so commands against
// one session run one at a time while different sessions proceed in
// parallel. Sessions idle for longer than the configured timeout are evicted
// by a background sweeper; nothing is persisted.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/statentry/internal/core"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrLimit is returned by Create when MaxSessions are live.
	ErrLimit = errors.New("too many sessions")
)

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	IdleTimeout   time.Duration // default 30m
	MaxSessions   int           // default 1000
	DefaultFields int           // draft size for new sessions, default core.DefaultFieldCount
}

type entry struct {
	mu       sync.Mutex
	sess     *core.Session
	created  time.Time
	lastUsed time.Time
}

// Manager owns all live sessions.
type Manager struct {
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager creates an empty manager.
func NewManager(opts Options) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if opts.DefaultFields <= 0 {
		opts.DefaultFields = core.DefaultFieldCount
	}
	return &Manager{
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session with a blank draft of DefaultFields slots and
// returns its ID.
func (m *Manager) Create() (string, error) {
	sess := core.NewSession()
	if err := sess.DefineFieldCount(m.opts.DefaultFields); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.opts.MaxSessions {
		return "", ErrLimit
	}

	id := uuid.NewString()
	now := m.now()
	m.sessions[id] = &entry{sess: sess, created: now, lastUsed: now}
	return id, nil
}

// Do runs fn against session id while holding that session's lock. The
// session's idle clock restarts on every call.
func (m *Manager) Do(id string, fn func(*core.Session) error) error {
	e, err := m.touch(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

func (m *Manager) touch(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastUsed = m.now()
	return e, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Info describes a session for listings and logs.
type Info struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	LastUsed time.Time `json:"last_used"`
	Expires  time.Time `json:"expires"`
}

// Info returns timing details for session id without touching it.
func (m *Manager) Info(id string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return Info{}, ErrNotFound
	}
	return Info{
		ID:       id,
		Created:  e.created,
		LastUsed: e.lastUsed,
		Expires:  e.lastUsed.Add(m.opts.IdleTimeout),
	}, nil
}

// Sweep evicts sessions idle longer than IdleTimeout and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper evicts idle sessions every interval until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started",
		"interval", interval,
		"idle_timeout", m.opts.IdleTimeout,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("expired idle sessions", "removed", n, "live", m.Len())
			}
		}
	}
}
