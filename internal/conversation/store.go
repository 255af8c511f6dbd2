package conversation

import (
	"sync"
	"time"

	"geminibot/internal/common"
	"geminibot/internal/llm"
)

// Session is one chat's conversation with the model. Its history is only
// touched while mu is held, which also keeps model calls for one chat in order.
type Session struct {
	ChatID    common.ChatID
	Model     string
	CreatedAt time.Time

	mu           sync.Mutex
	history      []llm.Message
	lastActivity time.Time
}

// History returns a copy of the accumulated turns.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// LastActivity is the time of the last successful exchange, or creation.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Store owns every live session. Sessions never expire and are lost on restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[common.ChatID]*Session
	clock    common.Clock
}

// NewStore creates an empty store
func NewStore(clock common.Clock) *Store {
	if clock == nil {
		clock = common.NewRealClock()
	}
	return &Store{
		sessions: make(map[common.ChatID]*Session),
		clock:    clock,
	}
}

// Get returns the session for chatID, if any.
func (st *Store) Get(chatID common.ChatID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[chatID]
	return s, ok
}

// Replace installs a fresh session for chatID, dropping any previous one.
func (st *Store) Replace(chatID common.ChatID, model string) *Session {
	s := st.newSession(chatID, model)

	st.mu.Lock()
	st.sessions[chatID] = s
	st.mu.Unlock()
	return s
}

// GetOrCreate returns the existing session or installs one using model.
// created reports whether a new session was made.
func (st *Store) GetOrCreate(chatID common.ChatID, model string) (s *Session, created bool) {
	if s, ok := st.Get(chatID); ok {
		return s, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[chatID]; ok {
		return s, false
	}
	s = st.newSession(chatID, model)
	st.sessions[chatID] = s
	return s, true
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) newSession(chatID common.ChatID, model string) *Session {
	now := st.clock.Now()
	return &Session{
		ChatID:       chatID,
		Model:        model,
		CreatedAt:    now,
		lastActivity: now,
	}
}
