package transport

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Session tracks one client across the stateless HTTP and SSE transports.
// The ID travels in the X-Session-ID header.
type Session struct {
	ID           string
	Transport    string
	CreatedAt    time.Time
	LastActivity time.Time
}

// SessionManager hands out session IDs and expires sessions that have gone
// quiet. Stdio needs none of this; the networked transports share it.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

// NewSessionManager starts a manager that drops sessions idle longer than
// timeout. Expiry is swept every five minutes.
func NewSessionManager(timeout time.Duration) *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		ticker:   time.NewTicker(5 * time.Minute),
		done:     make(chan struct{}),
	}
	go sm.sweep()
	return sm
}

// CreateSession registers a fresh session for the named transport.
func (sm *SessionManager) CreateSession(transport string) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:           id,
		Transport:    transport,
		CreatedAt:    now,
		LastActivity: now,
	}

	sm.mu.Lock()
	sm.sessions[id] = session
	sm.mu.Unlock()
	return session, nil
}

// GetSession looks a session up and, when found, marks it active.
func (sm *SessionManager) GetSession(id string) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[id]
	if ok {
		session.LastActivity = time.Now()
	}
	return session, ok
}

// RemoveSession forgets a session. Unknown IDs are a no-op.
func (sm *SessionManager) RemoveSession(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()
}

// Stop halts the expiry sweeper.
func (sm *SessionManager) Stop() {
	sm.ticker.Stop()
	close(sm.done)
}

func (sm *SessionManager) sweep() {
	for {
		select {
		case <-sm.done:
			return
		case <-sm.ticker.C:
			cutoff := time.Now().Add(-sm.timeout)
			sm.mu.Lock()
			for id, session := range sm.sessions {
				if session.LastActivity.Before(cutoff) {
					delete(sm.sessions, id)
				}
			}
			sm.mu.Unlock()
		}
	}
}

func newSessionID() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
