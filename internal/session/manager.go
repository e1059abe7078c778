package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-chi-calculator/internal/solver"
)

// Options configure a Manager.
type Options struct {
	// Solver answers AI prompts. Nil disables Solve.
	Solver solver.Solver
	// SolveTimeout bounds each AI request; zero means no bound.
	SolveTimeout time.Duration
	// IdleTTL evicts sessions untouched for this long; zero disables eviction.
	IdleTTL time.Duration
	Logger  *zap.Logger
}

// Manager is the registry of open sessions.
type Manager struct {
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager builds a Manager and starts its idle janitor when IdleTTL is set.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}

	if opts.IdleTTL > 0 {
		m.wg.Add(1)
		go m.janitor(janitorInterval(opts.IdleTTL))
	}
	return m
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}

// SolverEnabled reports whether sessions can answer AI prompts.
func (m *Manager) SolverEnabled() bool {
	return m.opts.Solver != nil
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	s := newSession(uuid.New().String(), m.opts.Solver, m.opts.SolveTimeout, m.logger)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	activeSessions.Add(context.Background(), 1)
	m.logger.Info("session created", zap.String("session_id", s.ID()))
	return s
}

// Get returns the session with id or ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and forgets the session with id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	activeSessions.Add(context.Background(), -1)
	m.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle since before now minus IdleTTL and returns how
// many were evicted.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.IdleTTL)

	var evicted []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			evicted = append(evicted, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range evicted {
		s.Close()
		activeSessions.Add(context.Background(), -1)
		m.logger.Info("session evicted", zap.String("session_id", s.ID()))
	}
	return len(evicted)
}

func (m *Manager) janitor(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.Sweep(now)
		case <-m.stop:
			return
		}
	}
}

// Close stops the janitor and closes every session.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()

		m.mu.Lock()
		sessions := m.sessions
		m.sessions = make(map[string]*Session)
		m.mu.Unlock()

		for _, s := range sessions {
			s.Close()
		}
		activeSessions.Add(context.Background(), -int64(len(sessions)))
	})
}
