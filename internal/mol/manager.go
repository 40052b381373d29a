package mol

import (
	"fmt"
	"sync"
)

// SessionID is a unique identifier for an editing session
type SessionID string

// Session owns one editor and serializes access to it. The editor itself is
// not synchronized; every caller goes through Do.
type Session struct {
	mu     sync.Mutex
	editor *Editor
}

// Do runs fn with exclusive access to the session's editor.
func (s *Session) Do(fn func(*Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

// SessionManager manages multiple editing sessions, each isolated from others
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[SessionID]*Session
	notif    *NotificationManager
	logger   Logger
}

// NewSessionManager creates a new session manager. The notification manager
// may be nil; sessions then run without event fan-out.
func NewSessionManager(nm *NotificationManager, logger Logger) *SessionManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &SessionManager{
		sessions: make(map[SessionID]*Session),
		notif:    nm,
		logger:   logger,
	}
}

// CreateSession creates a new session editing the given molecule. A nil
// molecule starts from an empty one.
// Returns an error if a session with that ID already exists
func (sm *SessionManager) CreateSession(id SessionID, m *Molecule) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; exists {
		return nil, fmt.Errorf("session with id %s already exists", id)
	}

	var ed *Editor
	if m == nil {
		ed = NewEditor()
	} else {
		ed = NewEditorFor(m)
	}
	ed.SetLabel(string(id))
	ed.SetLogger(sm.logger)
	if sm.notif != nil {
		ed.SetNotificationManager(sm.notif)
	}

	s := &Session{editor: ed}
	sm.sessions[id] = s
	sm.logger.Infof("session created: id=%s atoms=%d bonds=%d", id, ed.Molecule().AtomCount(), ed.Molecule().BondCount())
	return s, nil
}

// GetSession retrieves a session by ID
// Returns the session and a boolean indicating if it was found
func (sm *SessionManager) GetSession(id SessionID) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, exists := sm.sessions[id]
	return s, exists
}

// DeleteSession removes a session by ID
// Returns an error if the session doesn't exist
func (sm *SessionManager) DeleteSession(id SessionID) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; !exists {
		return fmt.Errorf("session with id %s does not exist", id)
	}

	delete(sm.sessions, id)
	sm.logger.Infof("session deleted: id=%s", id)
	return nil
}

// ListSessions returns a list of all session IDs
func (sm *SessionManager) ListSessions() []SessionID {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]SessionID, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}
