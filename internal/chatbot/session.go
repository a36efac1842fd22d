package chatbot

import (
	"fmt"
	"sync"
	"time"

	"challengebot/internal/common"
)

// sessionTTL is how long an unfinished admin conversation is kept.
const sessionTTL = 24 * time.Hour

// SessionManager manages admin conversation sessions
type SessionManager struct {
	sessions map[int64]*AdminSession
	mutex    sync.RWMutex
	clock    common.Clock
}

// NewSessionManager creates a new SessionManager instance
func NewSessionManager(clock common.Clock) *SessionManager {
	if clock == nil {
		clock = common.NewRealClock()
	}
	return &SessionManager{
		sessions: make(map[int64]*AdminSession),
		clock:    clock,
	}
}

// GetSession returns a copy of the user's session. Missing or expired
// sessions are reported as idle.
func (sm *SessionManager) GetSession(userID int64) AdminSession {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	session, exists := sm.sessions[userID]
	if !exists || sm.clock.Now().Sub(session.LastActivity) > sessionTTL {
		return AdminSession{UserID: userID, State: SessionStateIdle}
	}
	return *session
}

// SetSession stores a user's session. Unknown states are rejected and the
// stored session is left unchanged.
func (sm *SessionManager) SetSession(session AdminSession) error {
	if !session.State.IsValid() {
		return fmt.Errorf("invalid session state %q", session.State)
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session.LastActivity = sm.clock.Now()
	if session.State == SessionStateIdle {
		delete(sm.sessions, session.UserID)
		return nil
	}
	sm.sessions[session.UserID] = &session
	sm.cleanupInactiveSessions()
	return nil
}

// Reset returns the user's session to idle and drops collected values.
func (sm *SessionManager) Reset(userID int64) {
	_ = sm.SetSession(AdminSession{UserID: userID, State: SessionStateIdle})
}

// cleanupInactiveSessions removes expired sessions; callers hold the write lock.
func (sm *SessionManager) cleanupInactiveSessions() {
	cutoff := sm.clock.Now().Add(-sessionTTL)
	for userID, session := range sm.sessions {
		if session.LastActivity.Before(cutoff) {
			delete(sm.sessions, userID)
		}
	}
}
