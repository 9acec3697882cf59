package debate

import (
	"errors"
	"sync"
	"time"
)

var ErrNotOwner = errors.New("session belongs to another user")

// Manager keeps live sessions keyed by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	active   map[string]string // identity -> most recent session id
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		active:   make(map[string]string),
	}
}

func (m *Manager) Create(identity string, cfg Config) (*Session, error) {
	s, err := NewSession(identity, cfg)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	m.active[identity] = s.ID()
	return s, nil
}

// Get returns the session with id if identity owns it.
func (m *Manager) Get(identity, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[id]
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if s.Identity() != identity {
		return nil, ErrNotOwner
	}
	return s, nil
}

// Active returns the most recently started session of identity.
func (m *Manager) Active(identity string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.active[identity]
	if !ok {
		return nil, false
	}
	s := m.sessions[id]
	return s, s != nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[id]
	if s == nil {
		return
	}
	delete(m.sessions, id)
	if m.active[s.Identity()] == id {
		delete(m.active, s.Identity())
	}
}

// Sweep drops sessions created before cutoff and returns their ids.
func (m *Manager) Sweep(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, s := range m.sessions {
		if s.state.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			if m.active[s.Identity()] == id {
				delete(m.active, s.Identity())
			}
			removed = append(removed, id)
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
