package bot

import (
	"sync"
	"time"
)

// Stage is the position of a user inside the /photo conversation.
type Stage int

const (
	StageWaitImage Stage = iota
	StageWaitPrompt
	StageWaitConfirm
)

// Session is the scratch state of one in-flight /photo conversation: the
// uploaded image and prompt held between chat turns. Sessions are created on
// flow start and cleared on completion or abandonment; nothing outside this
// store holds conversation state.
type Session struct {
	Stage      Stage
	ChatID     int64
	ImageBytes []byte
	Prompt     string
	StartedAt  time.Time
}

// Sessions stores in-flight conversations keyed by user id.
type Sessions struct {
	mu       sync.RWMutex
	byUserID map[int64]*Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{byUserID: make(map[int64]*Session)}
}

// Begin starts a fresh session for a user, replacing any abandoned one.
func (s *Sessions) Begin(userID, chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := &Session{Stage: StageWaitImage, ChatID: chatID, StartedAt: time.Now()}
	s.byUserID[userID] = session
	return session
}

// Get returns the user's in-flight session, if any.
func (s *Sessions) Get(userID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byUserID[userID]
	return session, ok
}

// Clear ends the user's session.
func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUserID, userID)
}
