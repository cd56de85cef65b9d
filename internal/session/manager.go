// Package session holds browser sessions entirely in memory: accumulated
// extraction results, the per-session upload queue, and TTL eviction.
// Nothing in this package touches disk; destroying a session destroys its
// data.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"freightsnap/internal/config"
	"freightsnap/internal/domain"
	"freightsnap/internal/port"
)

// Manager owns the session map and evicts idle sessions after the
// configured TTL.
type Manager struct {
	processor Processor
	meter     port.UsageMeter
	cfg       config.SessionConfig

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager over the given processor and usage meter.
func NewManager(processor Processor, meter port.UsageMeter, cfg config.SessionConfig) *Manager {
	m := &Manager{
		processor: processor,
		meter:     meter,
		cfg:       cfg,
		sessions:  make(map[uuid.UUID]*Session),
	}
	return m
}

// Create starts a new session with its worker goroutine.
func (m *Manager) Create() *Session {
	s := newSession(m.processor, m.meter)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get looks up a session by id and refreshes its idle timer.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.touch()
	return s, nil
}

// Destroy removes a session and stops its worker. Used by session end and
// by the sweeper.
func (m *Manager) Destroy(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.close()
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartSweeper evicts sessions idle past the TTL until ctx is canceled.
// On shutdown every remaining session is closed so workers drain.
func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	log.Printf("sessionSweeper: started (ttl=%s, interval=%s)", m.cfg.TTL, m.cfg.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			log.Printf("sessionSweeper: shutdown complete")
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.expired(m.cfg.TTL, now) {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		log.Printf("sessionSweeper: evicted idle session %s", s.ID)
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		delete(m.sessions, id)
		all = append(all, s)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}
