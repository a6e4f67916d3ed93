// Package session binds authenticated users to isolated calculator states.
// Login issues a bearer token; every token owns one keypad state, and each
// session serializes its own events. Completed calculations are handed to a
// single recorder goroutine so the press path never waits on disk while
// per-user append order is preserved.
package session

import (
	"sync"

	"calc-service/internal/keypad"
	"calc-service/internal/observability"
	"calc-service/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one user's live calculator. Its state is exclusively owned
// here; events are applied one at a time under the mutex.
type Session struct {
	mu       sync.Mutex
	username string
	state    keypad.State
	record   func(keypad.Record)
}

// Username returns the account the session belongs to.
func (s *Session) Username() string {
	return s.username
}

// Press applies one button event and returns the resulting state and
// effect. A record effect is queued for persistence before Press returns,
// so records reach the recorder in event order.
func (s *Session) Press(ev keypad.Event) (keypad.State, keypad.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, eff := keypad.Reduce(s.state, ev)
	s.state = next
	if eff.Record != nil {
		s.record(*eff.Record)
	}
	return next, eff
}

// Snapshot returns the current state without applying an event.
func (s *Session) Snapshot() keypad.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type recordEntry struct {
	username string
	rec      keypad.Record
}

// Manager issues session tokens and owns the history recorder.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	history   *store.HistoryStore
	queue     chan recordEntry
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager starts a manager persisting completed calculations to history.
func NewManager(history *store.HistoryStore) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		history:  history,
		queue:    make(chan recordEntry, 256),
		done:     make(chan struct{}),
	}
	go m.recordLoop()
	return m
}

// recordLoop drains the queue one entry at a time. A single drain loop is
// what keeps per-user append order equal to equals-press order.
func (m *Manager) recordLoop() {
	defer close(m.done)
	for entry := range m.queue {
		if err := m.history.Append(entry.username, entry.rec); err != nil {
			observability.Logger.Error("recording calculation failed",
				zap.String("username", entry.username),
				zap.Error(err),
			)
		}
	}
}

// Open creates a fresh calculator session for username and returns its
// bearer token.
func (m *Manager) Open(username string) string {
	token := uuid.New().String()

	sess := &Session{
		username: username,
		state:    keypad.Initial(),
	}
	sess.record = func(rec keypad.Record) {
		m.queue <- recordEntry{username: username, rec: rec}
	}

	m.mu.Lock()
	m.sessions[token] = sess
	m.mu.Unlock()

	return token
}

// Lookup resolves a bearer token to its session.
func (m *Manager) Lookup(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	return sess, ok
}

// End discards the session for token. Ending an unknown token is a no-op.
func (m *Manager) End(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Close stops the recorder after draining queued records. Safe to call
// more than once; the manager must not be used afterwards.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.queue)
	})
	<-m.done
}
