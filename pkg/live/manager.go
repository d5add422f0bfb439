package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/dom"
	"github.com/vango-dev/toastd/pkg/toast"
)

// Manager owns the live sessions of a server.
type Manager struct {
	config   Config
	base     *slog.Logger
	logger   *slog.Logger
	observer toast.Observer
	recorder Recorder

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	done        chan struct{}
	cleanupDone chan struct{}
	stopOnce    sync.Once
}

// NewManager creates a Manager and starts its cleanup loop.
func NewManager(config Config, opts ...Option) *Manager {
	m := &Manager{
		config:      config.withDefaults(),
		base:        slog.Default(),
		recorder:    nopRecorder{},
		sessions:    make(map[string]*Session),
		done:        make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.base.With("component", "live_manager")

	go m.cleanupLoop()
	return m
}

// Config returns the session configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Create registers a new session for doc. The document must not be
// touched by the caller afterwards; it belongs to the session's loop.
func (m *Manager) Create(doc *dom.Document) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errors.New("T011").WithDetail("The session manager is shut down.")
	}
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		m.mu.Unlock()
		return nil, errors.New("T013")
	}
	s := newSession(doc, m.config, m.base, m.observer, m.recorder)
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.recorder.SessionOpened()
	m.logger.Debug("session created", "session_id", s.ID, "active_sessions", count)
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.New("T010").WithDetail("session " + id)
	}
	return s, nil
}

// Close closes and forgets the session with the given ID.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.recorder.SessionClosed()
	}
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// cleanupLoop periodically reaps idle sessions.
func (m *Manager) cleanupLoop() {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.cleanupIdle(now)
		case <-m.done:
			return
		}
	}
}

// cleanupIdle closes sessions that have no connection, no pending
// removals and no activity within the idle timeout. It returns the number
// of sessions closed.
func (m *Manager) cleanupIdle(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.IsClosed() || s.idle(now, m.config.IdleTimeout) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		m.recorder.SessionClosed()
	}

	if len(expired) > 0 {
		m.logger.Info("cleaned up idle sessions",
			"count", len(expired),
			"remaining", remaining)
	}
	return len(expired)
}

// Shutdown stops the cleanup loop and closes every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.done) })

	select {
	case <-m.cleanupDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
			m.recorder.SessionClosed()
		}(s)
	}
	wg.Wait()

	m.logger.Info("session manager shutdown", "closed_sessions", len(sessions))
	return nil
}
