package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/metrics"
)

// ManagerConfig tunes the sessions a Manager creates.
type ManagerConfig struct {
	FetchTimeout time.Duration
	// IdleTimeout evicts sessions unused for this long. Zero keeps them until End.
	IdleTimeout time.Duration
}

// Manager owns one Session per authenticated user.
type Manager struct {
	loader    CourseLoader
	fetcher   Fetcher
	publisher Publisher
	cfg       ManagerConfig
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewManager creates a session registry. publisher may be nil.
func NewManager(loader CourseLoader, fetcher Fetcher, publisher Publisher, cfg ManagerConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		loader:    loader,
		fetcher:   fetcher,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		sessions:  make(map[int64]*Session),
	}
}

// Session returns the user's session, starting one on first use. Starting a
// session loads the enrolled-course set; a store failure there is reported
// as ErrFetchFailed.
func (m *Manager) Session(ctx context.Context, userID int64) (*Session, error) {
	if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}

	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok {
		s.Touch()
		return s, nil
	}

	courses, err := m.loader.EnrolledCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading enrolled courses: %w", apperrors.ErrFetchFailed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have started it while we were loading
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	s = NewSession(userID, courses, m.fetcher, m.publisher, m.cfg.FetchTimeout, m.logger)
	m.sessions[userID] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	m.logger.Info().Int64("userID", userID).Int("courses", len(courses)).Msg("Selection session started")
	return s, nil
}

// End closes and forgets the user's session. Ending a missing session is a no-op.
func (m *Manager) End(userID int64) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if ok {
		s.Close()
		m.logger.Info().Int64("userID", userID).Msg("Selection session ended")
	}
}

// Sweep ends sessions idle since before now minus IdleTimeout and returns
// how many were ended.
func (m *Manager) Sweep(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.logger.Debug().Int("count", len(idle)).Msg("Evicted idle selection sessions")
	}
	return len(idle)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.cfg.IdleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Shutdown ends every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[int64]*Session)
	metrics.ActiveSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
