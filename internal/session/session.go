// Package session tracks demo conversations and enforces conversation
// affinity: the backend assigns an id on the first send, and every later
// send in the same session must reuse it.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/VoxDesk/voxdesk/internal/logger"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

const (
	// DefaultMaxHistory is the maximum number of messages kept per session
	DefaultMaxHistory = 100
)

// Persister is the interface for session persistence
type Persister interface {
	Save(key, conversationID string, messages []types.Message) error
	Load(key string) (conversationID string, messages []types.Message, err error)
	Delete(key string) error
	ListKeys() ([]string, error)
}

// Session is one demo conversation on one channel.
type Session struct {
	Key        string
	Channel    types.Channel
	UserID     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	MaxHistory int

	conversationID string
	messages       []types.Message
	mu             sync.Mutex
}

// ConversationID returns the backend-assigned conversation id, or empty if
// no message has been exchanged yet.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// BindConversation records the conversation id from the first backend reply.
// Once bound, the id never changes for the life of the session; a different
// id from the backend is logged and ignored.
func (s *Session) BindConversation(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversationID == "" {
		s.conversationID = id
		return
	}
	if s.conversationID != id {
		logger.Warn("backend returned conversation %s for session %s bound to %s, keeping original", id, s.Key, s.conversationID)
	}
}

// Append adds a message to the local transcript, trimming to MaxHistory.
func (s *Session) Append(msg types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	if s.MaxHistory > 0 && len(s.messages) > s.MaxHistory {
		s.messages = s.messages[len(s.messages)-s.MaxHistory:]
	}
	s.UpdatedAt = time.Now()
}

// History returns up to limit most recent messages (all if limit <= 0).
func (s *Session) History(limit int) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.messages)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]types.Message, limit)
	copy(out, s.messages[n-limit:])
	return out
}

// Clear resets the transcript and releases the conversation binding. The
// next send starts a fresh backend conversation.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.conversationID = ""
	s.UpdatedAt = time.Now()
}

// snapshot returns the state needed for persistence under one lock.
func (s *Session) snapshot() (string, []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]types.Message, len(s.messages))
	copy(msgs, s.messages)
	return s.conversationID, msgs
}

// Store manages sessions in memory, keyed by channel and user.
type Store struct {
	sessions  map[string]*Session
	persister Persister
	mu        sync.RWMutex
}

// NewStore creates a new session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Key builds the store key for a channel/user pair.
func Key(channel types.Channel, userID string) string {
	return fmt.Sprintf("%s:%s", channel, userID)
}

// SetPersister sets the persistence backend and loads existing sessions.
func (s *Store) SetPersister(p Persister) error {
	s.mu.Lock()
	s.persister = p
	s.mu.Unlock()

	keys, err := p.ListKeys()
	if err != nil {
		return err
	}

	for _, key := range keys {
		conversationID, messages, err := p.Load(key)
		if err != nil {
			logger.Warn("failed to load session %s: %v", key, err)
			continue
		}

		sess := &Session{
			Key:            key,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
			MaxHistory:     DefaultMaxHistory,
			conversationID: conversationID,
			messages:       messages,
		}

		s.mu.Lock()
		s.sessions[key] = sess
		s.mu.Unlock()
	}

	return nil
}

// GetOrCreate returns the session for a channel/user pair, creating it if
// needed.
func (s *Store) GetOrCreate(channel types.Channel, userID string) *Session {
	key := Key(channel, userID)

	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		return sess
	}

	sess = &Session{
		Key:        key,
		Channel:    channel,
		UserID:     userID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		MaxHistory: DefaultMaxHistory,
	}
	s.sessions[key] = sess
	return sess
}

// Count returns the number of sessions in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Persist writes a session to the persistence backend, if one is set.
func (s *Store) Persist(sess *Session) error {
	s.mu.RLock()
	p := s.persister
	s.mu.RUnlock()
	if p == nil {
		return nil
	}

	conversationID, messages := sess.snapshot()
	return p.Save(sess.Key, conversationID, messages)
}

// Remove drops a session from memory and persistence.
func (s *Store) Remove(channel types.Channel, userID string) error {
	key := Key(channel, userID)

	s.mu.Lock()
	delete(s.sessions, key)
	p := s.persister
	s.mu.Unlock()

	if p != nil {
		return p.Delete(key)
	}
	return nil
}
