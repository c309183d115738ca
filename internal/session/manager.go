package session

import (
	"sync"

	"influencer-stats/internal/domain"
)

// Manager hands out one Session per (platform, handle) pair, creating it
// on first use. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for the pair, creating it if absent.
func (m *Manager) Get(platform domain.Platform, handle string) *Session {
	key := string(platform) + "/" + handle
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := New(platform, handle)
	m.sessions[key] = s
	return s
}
