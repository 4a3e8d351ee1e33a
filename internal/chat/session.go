package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/logbot/logbot/internal/charts"
	"github.com/logbot/logbot/internal/logstore"
)

var ErrSessionNotFound = errors.New("session not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role      Role                `json:"role"`
	Text      string              `json:"text"`
	SQL       string              `json:"sql,omitempty"`
	Result    *logstore.ResultSet `json:"result,omitempty"`
	Charts    []charts.ChartSpec  `json:"charts,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// Session is an append-only conversation. Turns of one session are handled
// one at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	turnMu sync.Mutex // held for a whole question/answer exchange

	mu    sync.RWMutex
	turns []Turn
}

func (s *Session) append(turns ...Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, turns...)
	s.mu.Unlock()
}

// Turns returns a copy of the history, oldest first.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Turn(nil), s.turns...)
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Store keeps sessions in memory for the life of the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session), now: time.Now}
}

// Create starts an empty session.
func (s *Store) Create() *Session {
	sess := &Session{ID: uuid.NewString(), CreatedAt: s.now().UTC()}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
